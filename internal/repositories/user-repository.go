package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"remontbot/internal/entities"
	apperrors "remontbot/pkg/errors"
)

const (
	userTable  = "users"
	userFields = "id, fio, phone, role, tg_chat_id, password_hash, created_at, updated_at"
)

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByChatID(ctx context.Context, chatID int64) (*entities.User, error)
	ListByRole(ctx context.Context, role string) ([]entities.User, error)
	BindChatID(ctx context.Context, userID uint64, chatID int64) error
}

type userRepository struct{ storage *pgxpool.Pool }

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &userRepository{storage: storage}
}

func (r *userRepository) scanOne(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Fio, &u.Phone, &u.Role, &u.TgChatID, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", userFields, userTable)
	return r.scanOne(r.storage.QueryRow(ctx, query, id))
}

func (r *userRepository) FindByChatID(ctx context.Context, chatID int64) (*entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE tg_chat_id = $1", userFields, userTable)
	return r.scanOne(r.storage.QueryRow(ctx, query, chatID))
}

// ListByRole возвращает пользователей роли в алфавитном порядке —
// порядок стабилен между отрисовкой меню и разрешением снимка.
func (r *userRepository) ListByRole(ctx context.Context, role string) ([]entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE role = $1 ORDER BY fio, id", userFields, userTable)
	rows, err := r.storage.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		var u entities.User
		if err := rows.Scan(&u.ID, &u.Fio, &u.Phone, &u.Role, &u.TgChatID, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) BindChatID(ctx context.Context, userID uint64, chatID int64) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE users SET tg_chat_id = $1, updated_at = NOW() WHERE id = $2`, chatID, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
