package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"remontbot/internal/entities"
	apperrors "remontbot/pkg/errors"
)

type memUserRepo struct {
	users map[uint64]*entities.User
}

func (r *memUserRepo) FindByID(_ context.Context, id uint64) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) FindByChatID(_ context.Context, chatID int64) (*entities.User, error) {
	for _, u := range r.users {
		if u.TgChatID.Valid && u.TgChatID.Int64 == chatID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) ListByRole(_ context.Context, role string) ([]entities.User, error) {
	var out []entities.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) BindChatID(_ context.Context, userID uint64, chatID int64) error {
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.TgChatID.SetValid(chatID)
	return nil
}

func newUserFixture(t *testing.T, ttl time.Duration) (*UserService, *memUserRepo) {
	t.Helper()
	repo := &memUserRepo{users: map[uint64]*entities.User{
		1: {ID: 1, Fio: "Иван Петров", Role: entities.RoleClient},
		2: {ID: 2, Fio: "Сергей Мастеров", Role: entities.RoleMaster},
	}}
	return NewUserService(repo, "test-secret", ttl, zap.NewNop()), repo
}

func TestUserService_ListByRole(t *testing.T) {
	svc, _ := newUserFixture(t, time.Minute)

	masters, err := svc.ListByRole(context.Background(), entities.RoleMaster)
	require.NoError(t, err)
	require.Len(t, masters, 1)
	assert.Equal(t, "Сергей Мастеров", masters[0].Fio)
}

func TestUserService_LinkChatByToken(t *testing.T) {
	svc, repo := newUserFixture(t, time.Minute)
	ctx := context.Background()

	token, err := svc.GenerateLinkToken(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := svc.LinkChatByToken(ctx, token, 777)
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", user.Fio)

	linked, err := repo.FindByChatID(ctx, 777)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), linked.ID)

	found, err := svc.FindByChatID(ctx, 777)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), found.ID)
}

func TestUserService_GenerateLinkToken_UnknownUser(t *testing.T) {
	svc, _ := newUserFixture(t, time.Minute)
	_, err := svc.GenerateLinkToken(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_LinkChatByToken_Garbage(t *testing.T) {
	svc, _ := newUserFixture(t, time.Minute)
	_, err := svc.LinkChatByToken(context.Background(), "не-токен", 777)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestUserService_LinkChatByToken_Expired(t *testing.T) {
	svc, _ := newUserFixture(t, -time.Minute)
	ctx := context.Background()

	token, err := svc.GenerateLinkToken(ctx, 1)
	require.NoError(t, err)

	_, err = svc.LinkChatByToken(ctx, token, 777)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestUserService_LinkChatByToken_WrongSecret(t *testing.T) {
	svc, repo := newUserFixture(t, time.Minute)
	ctx := context.Background()

	token, err := svc.GenerateLinkToken(ctx, 1)
	require.NoError(t, err)

	other := NewUserService(repo, "другой-секрет", time.Minute, zap.NewNop())
	_, err = other.LinkChatByToken(ctx, token, 777)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
