package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"remontbot/pkg/config"
	"remontbot/pkg/logger"
	"remontbot/seeders"
)

func main() {
	cfg := config.New()
	log := logger.NewLogger()
	defer log.Sync()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("Не удалось подключиться к Postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := seeders.Run(ctx, pool, log); err != nil {
		log.Fatal("Ошибка сидирования", zap.Error(err))
	}
	log.Info("Сидирование завершено")
}
