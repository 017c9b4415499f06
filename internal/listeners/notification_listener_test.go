package listeners

import (
	"context"
	"sort"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"remontbot/internal/entities"
	"remontbot/internal/events"
	apperrors "remontbot/pkg/errors"
	"remontbot/pkg/telegram"
)

type memUserRepo struct {
	users map[uint64]*entities.User
}

func (r *memUserRepo) FindByID(_ context.Context, id uint64) (*entities.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) FindByChatID(_ context.Context, chatID int64) (*entities.User, error) {
	for _, u := range r.users {
		if u.TgChatID.Valid && u.TgChatID.Int64 == chatID {
			return u, nil
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
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUserRepo) BindChatID(_ context.Context, userID uint64, chatID int64) error {
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.TgChatID = null.Int64From(chatID)
	return nil
}

type sentMessage struct {
	chatID int64
	text   string
}

// recordingTg фиксирует отправленные сообщения вместо похода в Bot API.
type recordingTg struct {
	sent []sentMessage
}

func (f *recordingTg) SendMessage(_ context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *recordingTg) SendMessageEx(_ context.Context, chatID int64, text string, _ ...telegram.MessageOption) error {
	return f.SendMessage(context.Background(), chatID, text)
}

func (f *recordingTg) AnswerCallbackQuery(_ context.Context, _ string, _ string) error { return nil }

func (f *recordingTg) EditMessageText(_ context.Context, _ int64, _ int, _ string, _ ...telegram.MessageOption) error {
	return nil
}

func (f *recordingTg) EditOrSendMessage(_ context.Context, _ int64, _ int, _ string, _ ...telegram.MessageOption) error {
	return nil
}

func (f *recordingTg) SendDocument(_ context.Context, _ int64, _ string, _ []byte, _ string) error {
	return nil
}

func newListenerFixture(users map[uint64]*entities.User) (*NotificationListener, *recordingTg) {
	tg := &recordingTg{}
	listener := NewNotificationListener(&memUserRepo{users: users}, tg, zap.NewNop())
	return listener, tg
}

func TestOnRequestCreated_NotifiesLinkedDispatchers(t *testing.T) {
	listener, tg := newListenerFixture(map[uint64]*entities.User{
		1: {ID: 1, Role: entities.RoleDispatcher, TgChatID: null.Int64From(100)},
		2: {ID: 2, Role: entities.RoleDispatcher}, // чат не привязан
		3: {ID: 3, Role: entities.RoleMaster, TgChatID: null.Int64From(300)},
	})

	err := listener.onRequestCreated(context.Background(), events.RequestCreatedEvent{
		RequestID: 7, Number: "R-20260830-001", AuthorID: 4,
	})
	require.NoError(t, err)

	// Уведомлён только диспетчер с привязанным чатом.
	require.Len(t, tg.sent, 1)
	assert.Equal(t, int64(100), tg.sent[0].chatID)
	assert.Contains(t, tg.sent[0].text, "R-20260830-001")
	assert.Contains(t, tg.sent[0].text, "/requests")
}

func TestOnRequestCreated_NoDispatchers(t *testing.T) {
	listener, tg := newListenerFixture(map[uint64]*entities.User{
		3: {ID: 3, Role: entities.RoleMaster, TgChatID: null.Int64From(300)},
	})

	err := listener.onRequestCreated(context.Background(), events.RequestCreatedEvent{
		RequestID: 7, Number: "R-20260830-001",
	})
	require.NoError(t, err)
	assert.Empty(t, tg.sent)
}

func TestOnRequestAssigned_NotifiesExecutor(t *testing.T) {
	listener, tg := newListenerFixture(map[uint64]*entities.User{
		5: {ID: 5, Role: entities.RoleMaster, TgChatID: null.Int64From(500)},
	})

	err := listener.onRequestAssigned(context.Background(), events.RequestAssignedEvent{
		RequestID: 7, Number: "R-20260830-001", ExecutorID: 5,
	})
	require.NoError(t, err)

	require.Len(t, tg.sent, 1)
	assert.Equal(t, int64(500), tg.sent[0].chatID)
	assert.Contains(t, tg.sent[0].text, "назначена заявка R-20260830-001")
}

func TestOnRequestAssigned_UnlinkedExecutorSkipped(t *testing.T) {
	listener, tg := newListenerFixture(map[uint64]*entities.User{
		5: {ID: 5, Role: entities.RoleMaster},
	})

	err := listener.onRequestAssigned(context.Background(), events.RequestAssignedEvent{
		RequestID: 7, Number: "R-20260830-001", ExecutorID: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, tg.sent)
}

func TestListener_RejectsForeignEvent(t *testing.T) {
	listener, tg := newListenerFixture(nil)

	// Чужой тип под знакомым именем — ошибка, а не паника.
	err := listener.onRequestAssigned(context.Background(), events.RequestCreatedEvent{Number: "R-1"})
	require.Error(t, err)
	assert.Empty(t, tg.sent)
}
