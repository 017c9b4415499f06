package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"remontbot/internal/entities"
	"remontbot/internal/events"
	"remontbot/internal/repositories"
	"remontbot/pkg/eventbus"
	"remontbot/pkg/telegram"
)

// NotificationListener уведомляет исполнителя о назначенной заявке.
// Доставка best-effort: сбой транспорта логируется и не влияет на
// операцию, породившую событие.
type NotificationListener struct {
	userRepo  repositories.UserRepositoryInterface
	tgService telegram.ServiceInterface
	logger    *zap.Logger
}

func NewNotificationListener(
	userRepo repositories.UserRepositoryInterface,
	tgService telegram.ServiceInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		userRepo:  userRepo,
		tgService: tgService,
		logger:    logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.RequestCreatedEventName, l.onRequestCreated)
	bus.Subscribe(events.RequestAssignedEventName, l.onRequestAssigned)
}

// onRequestCreated уведомляет диспетчеров о новой заявке, чтобы она
// не висела без назначения до планового просмотра списка.
func (l *NotificationListener) onRequestCreated(ctx context.Context, event eventbus.Event) error {
	created, ok := event.(events.RequestCreatedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	dispatchers, err := l.userRepo.ListByRole(ctx, entities.RoleDispatcher)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🆕 Новая заявка %s ждёт назначения. Список: /requests", created.Number)
	for _, d := range dispatchers {
		if !d.TgChatID.Valid {
			continue
		}
		if err := l.tgService.SendMessage(ctx, d.TgChatID.Int64, text); err != nil {
			l.logger.Warn("Не удалось уведомить диспетчера",
				zap.Uint64("dispatcher_id", d.ID), zap.Error(err))
		}
	}
	return nil
}

func (l *NotificationListener) onRequestAssigned(ctx context.Context, event eventbus.Event) error {
	assigned, ok := event.(events.RequestAssignedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	executor, err := l.userRepo.FindByID(ctx, assigned.ExecutorID)
	if err != nil {
		return err
	}
	if !executor.TgChatID.Valid {
		l.logger.Debug("У исполнителя нет привязанного чата",
			zap.Uint64("executor_id", assigned.ExecutorID))
		return nil
	}

	text := fmt.Sprintf("🔔 Вам назначена заявка %s. Подробности: /requests", assigned.Number)
	if err := l.tgService.SendMessage(ctx, executor.TgChatID.Int64, text); err != nil {
		l.logger.Warn("Не удалось уведомить исполнителя",
			zap.Uint64("executor_id", assigned.ExecutorID), zap.Error(err))
	}
	return nil
}
