package seeders

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Run прогоняет все сидеры по порядку. Сидеры идемпотентны:
// существующие записи не дублируются.
func Run(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if err := SeedAdminUser(ctx, pool, logger); err != nil {
		return err
	}
	if err := SeedDemoCatalog(ctx, pool, logger); err != nil {
		return err
	}
	return nil
}
