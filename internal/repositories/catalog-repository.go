package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"remontbot/internal/entities"
	apperrors "remontbot/pkg/errors"
)

// Каталог хранится одной JSONB-строкой и читается/пишется целиком:
// запись атомарна ровно настолько, насколько атомарен UPDATE одной
// строки. Конкурентные правки не сливаются — побеждает последняя.
const catalogRowID = 1

type CatalogRepositoryInterface interface {
	LoadCatalog(ctx context.Context) (*entities.Catalog, error)
	SaveCatalog(ctx context.Context, catalog *entities.Catalog) error
}

type catalogRepository struct{ storage *pgxpool.Pool }

func NewCatalogRepository(storage *pgxpool.Pool) CatalogRepositoryInterface {
	return &catalogRepository{storage: storage}
}

// LoadCatalog всегда читает свежую копию из базы. Отсутствующая
// строка трактуется как пустой каталог.
func (r *catalogRepository) LoadCatalog(ctx context.Context) (*entities.Catalog, error) {
	var raw []byte
	err := r.storage.QueryRow(ctx,
		`SELECT document FROM catalogs WHERE id = $1`, catalogRowID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return &entities.Catalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	var catalog entities.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("%w: повреждён документ каталога: %v", apperrors.ErrStorageUnavailable, err)
	}
	return &catalog, nil
}

func (r *catalogRepository) SaveCatalog(ctx context.Context, catalog *entities.Catalog) error {
	raw, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("ошибка сериализации каталога: %w", err)
	}

	_, err = r.storage.Exec(ctx, `
		INSERT INTO catalogs (id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`,
		catalogRowID, raw)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}
