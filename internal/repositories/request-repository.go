package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"remontbot/internal/entities"
	apperrors "remontbot/pkg/errors"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const requestFields = "id, public_id, number, description, object, urgency, status, author_id, executor_id, due_at, created_at, updated_at"

// RequestFilter — фильтр списка заявок; нулевые поля не участвуют.
type RequestFilter struct {
	AuthorID   uint64
	ExecutorID uint64
	Status     string
}

type RequestRepositoryInterface interface {
	Create(ctx context.Context, req *entities.Request) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.Request, error)
	FindByPublicID(ctx context.Context, publicID string) (*entities.Request, error)
	List(ctx context.Context, filter RequestFilter, limit, offset uint64) ([]entities.Request, uint64, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	Assign(ctx context.Context, id uint64, executorID uint64) error
}

type requestRepository struct{ storage *pgxpool.Pool }

func NewRequestRepository(storage *pgxpool.Pool) RequestRepositoryInterface {
	return &requestRepository{storage: storage}
}

func (r *requestRepository) Create(ctx context.Context, req *entities.Request) (uint64, error) {
	query, args, err := psql.Insert("requests").
		Columns("public_id", "number", "description", "object", "urgency", "status", "author_id", "executor_id", "due_at").
		Values(req.PublicID, req.Number, req.Description, req.Object, req.Urgency, req.Status, req.AuthorID, req.ExecutorID, req.DueAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return id, nil
}

func (r *requestRepository) FindByID(ctx context.Context, id uint64) (*entities.Request, error) {
	query := fmt.Sprintf("SELECT %s FROM requests WHERE id = $1", requestFields)
	return r.scanOne(r.storage.QueryRow(ctx, query, id))
}

func (r *requestRepository) FindByPublicID(ctx context.Context, publicID string) (*entities.Request, error) {
	query := fmt.Sprintf("SELECT %s FROM requests WHERE public_id = $1", requestFields)
	return r.scanOne(r.storage.QueryRow(ctx, query, publicID))
}

func (r *requestRepository) scanOne(row pgx.Row) (*entities.Request, error) {
	var req entities.Request
	err := row.Scan(
		&req.ID, &req.PublicID, &req.Number, &req.Description, &req.Object, &req.Urgency,
		&req.Status, &req.AuthorID, &req.ExecutorID, &req.DueAt, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter, limit, offset uint64) ([]entities.Request, uint64, error) {
	where := sq.And{}
	if filter.AuthorID != 0 {
		where = append(where, sq.Eq{"author_id": filter.AuthorID})
	}
	if filter.ExecutorID != 0 {
		where = append(where, sq.Eq{"executor_id": filter.ExecutorID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}

	countBuilder := psql.Select("COUNT(*)").From("requests")
	listBuilder := psql.Select(requestFields).From("requests")
	if len(where) > 0 {
		countBuilder = countBuilder.Where(where)
		listBuilder = listBuilder.Where(where)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	if total == 0 {
		return []entities.Request{}, 0, nil
	}

	query, args, err := listBuilder.
		OrderBy("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	requests := make([]entities.Request, 0)
	for rows.Next() {
		var req entities.Request
		if err := rows.Scan(
			&req.ID, &req.PublicID, &req.Number, &req.Description, &req.Object, &req.Urgency,
			&req.Status, &req.AuthorID, &req.ExecutorID, &req.DueAt, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id uint64, status string) error {
	return r.execOne(ctx, psql.Update("requests").
		Set("status", status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}))
}

func (r *requestRepository) Assign(ctx context.Context, id uint64, executorID uint64) error {
	return r.execOne(ctx, psql.Update("requests").
		Set("executor_id", executorID).
		Set("status", entities.RequestStatusAssigned).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}))
}

func (r *requestRepository) execOne(ctx context.Context, builder sq.UpdateBuilder) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
