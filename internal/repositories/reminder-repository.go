package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"remontbot/internal/entities"
	apperrors "remontbot/pkg/errors"
)

type ReminderRepositoryInterface interface {
	Create(ctx context.Context, requestID uint64, remindAt time.Time) error
	FindDue(ctx context.Context, now time.Time) ([]entities.Reminder, error)
	MarkSent(ctx context.Context, id uint64, sentAt time.Time) error
}

type reminderRepository struct{ storage *pgxpool.Pool }

func NewReminderRepository(storage *pgxpool.Pool) ReminderRepositoryInterface {
	return &reminderRepository{storage: storage}
}

func (r *reminderRepository) Create(ctx context.Context, requestID uint64, remindAt time.Time) error {
	query, args, err := psql.Insert("reminders").
		Columns("request_id", "remind_at").
		Values(requestID, remindAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.storage.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

// FindDue возвращает просроченные неотправленные напоминания.
// Опросчик — единственный писатель поля sent_at, поэтому блокировок
// между ним и обработкой сообщений не требуется.
func (r *reminderRepository) FindDue(ctx context.Context, now time.Time) ([]entities.Reminder, error) {
	query, args, err := psql.Select("id", "request_id", "remind_at", "sent_at", "created_at").
		From("reminders").
		Where(sq.And{
			sq.LtOrEq{"remind_at": now},
			sq.Eq{"sent_at": nil},
		}).
		OrderBy("remind_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	reminders := make([]entities.Reminder, 0)
	for rows.Next() {
		var rem entities.Reminder
		if err := rows.Scan(&rem.ID, &rem.RequestID, &rem.RemindAt, &rem.SentAt, &rem.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (r *reminderRepository) MarkSent(ctx context.Context, id uint64, sentAt time.Time) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE reminders SET sent_at = $1 WHERE id = $2 AND sent_at IS NULL`, sentAt, id)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
