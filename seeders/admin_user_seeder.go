package seeders

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"remontbot/internal/entities"
)

// SeedAdminUser создаёт администратора, если его ещё нет. Пароль
// нужен веб-стороне; бот авторизует только по привязанному чату.
func SeedAdminUser(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, entities.RoleAdmin).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Администратор уже существует, пропускаю")
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		logger.Warn("ADMIN_PASSWORD не задан, используется пароль по умолчанию")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (fio, role, password_hash) VALUES ($1, $2, $3)`,
		"Администратор", entities.RoleAdmin, string(hash))
	if err != nil {
		return err
	}

	logger.Info("Администратор создан")
	return nil
}
