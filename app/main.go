package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	tgcontroller "remontbot/internal/controllers/telegram"
	"remontbot/internal/listeners"
	"remontbot/internal/repositories"
	"remontbot/internal/routes"
	"remontbot/internal/services"
	"remontbot/pkg/config"
	"remontbot/pkg/eventbus"
	"remontbot/pkg/logger"
	"remontbot/pkg/telegram"
)

func main() {
	cfg := config.New()
	log := logger.NewLogger()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Fatal("Не удалось применить миграции", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("Не удалось подключиться к Postgres", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()

	// Репозитории
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	catalogRepo := repositories.NewCatalogRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	requestRepo := repositories.NewRequestRepository(pool)
	reminderRepo := repositories.NewReminderRepository(pool)

	// Сервисы
	bus := eventbus.New(log)
	tgService := telegram.NewService(cfg.Telegram.BotToken)
	sessionService := services.NewSessionService(cacheRepo, cfg.Telegram.StateTTL, log)
	catalogService := services.NewCatalogService(catalogRepo, cacheRepo, log)
	userService := services.NewUserService(userRepo, cfg.JWT.SecretKey, cfg.JWT.LinkTokenTTL, log)
	requestService := services.NewRequestService(requestRepo, reminderRepo, bus, log)
	exportService := services.NewExportService(catalogRepo, log)
	reminderService := services.NewReminderService(reminderRepo, requestRepo, userRepo, tgService, cfg.Reminder.PollInterval, log)

	listeners.NewNotificationListener(userRepo, tgService, log).Register(bus)

	tg := tgcontroller.NewTelegramController(
		userService,
		sessionService,
		catalogService,
		requestService,
		exportService,
		tgService,
		cfg.Telegram.PageSize,
		log,
	)

	if cfg.Telegram.WebhookURL != "" {
		if err := tg.RegisterWebhook(cfg.Telegram.BotToken, cfg.Telegram.WebhookURL); err != nil {
			log.Error("Не удалось зарегистрировать вебхук", zap.Error(err))
		}
	}

	// Фоновый опросчик напоминаний: работает с отдельными записями,
	// блокировок с обработкой сообщений не требуется.
	go reminderService.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	routes.InitRouter(e, tg)

	go func() {
		<-ctx.Done()
		log.Info("Остановка сервера")
		_ = e.Shutdown(context.Background())
	}()

	log.Info("Сервер запускается", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Info("Сервер остановлен", zap.Error(err))
	}
}

// runMigrations применяет goose-миграции через database/sql поверх
// драйвера pgx.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}
