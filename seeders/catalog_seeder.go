package seeders

import (
	"context"
	"encoding/json"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"remontbot/internal/entities"
)

// SeedDemoCatalog кладёт стартовый каталог, если документа ещё нет.
func SeedDemoCatalog(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM catalogs`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Каталог уже существует, пропускаю")
		return nil
	}

	catalog := entities.Catalog{
		Works: []entities.Work{
			{
				Name:         "Штукатурка стен",
				Code:         "plaster_wall",
				Unit:         "м2",
				PricePerUnit: 500.50,
				Group:        null.StringFrom("Стены"),
				Materials: []entities.Material{
					{Name: "Цемент", Unit: "кг", QtyPerUnit: 2.5, PricePerUnit: 15.0},
				},
			},
			{
				Name:         "Стяжка пола",
				Code:         "floor_screed",
				Unit:         "м2",
				PricePerUnit: 650,
				Group:        null.StringFrom("Полы"),
				Materials:    []entities.Material{},
			},
		},
		Groups: []string{"Стены", "Полы", "Электрика"},
	}

	raw, err := json.Marshal(&catalog)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO catalogs (id, document) VALUES (1, $1)`, raw); err != nil {
		return err
	}

	logger.Info("Стартовый каталог создан", zap.Int("works", len(catalog.Works)))
	return nil
}
