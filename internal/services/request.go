package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"remontbot/internal/dto"
	"remontbot/internal/entities"
	"remontbot/internal/events"
	"remontbot/internal/repositories"
	apperrors "remontbot/pkg/errors"
	"remontbot/pkg/eventbus"
)

type RequestServiceInterface interface {
	Create(ctx context.Context, authorID uint64, payload dto.CreateRequestDTO) (*entities.Request, error)
	FindByPublicID(ctx context.Context, publicID string) (*entities.Request, error)
	ListMine(ctx context.Context, user *entities.User, limit, offset uint64) ([]entities.Request, uint64, error)
	Assign(ctx context.Context, publicID string, executorID uint64) error
	SetStatus(ctx context.Context, publicID string, status string) error
}

// RequestService — CRUD заявок поверх репозитория и шина событий для
// уведомлений.
type RequestService struct {
	repo         repositories.RequestRepositoryInterface
	reminderRepo repositories.ReminderRepositoryInterface
	bus          *eventbus.Bus
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewRequestService(
	repo repositories.RequestRepositoryInterface,
	reminderRepo repositories.ReminderRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		repo:         repo,
		reminderRepo: reminderRepo,
		bus:          bus,
		validate:     validator.New(),
		logger:       logger,
	}
}

func (s *RequestService) Create(ctx context.Context, authorID uint64, payload dto.CreateRequestDTO) (*entities.Request, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, apperrors.NewInvalidInputError("данные заявки не прошли проверку: %v", err)
	}

	now := time.Now()
	req := &entities.Request{
		PublicID:    uuid.NewString(),
		Number:      fmt.Sprintf("R-%s", now.Format("060102-150405")),
		Description: payload.Description,
		Object:      payload.Object,
		Urgency:     payload.Urgency,
		Status:      entities.RequestStatusNew,
		AuthorID:    authorID,
	}

	id, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ID = id

	// Срочные заявки получают напоминание через сутки после подачи.
	if payload.Urgency == entities.UrgencyHigh {
		if err := s.reminderRepo.Create(ctx, id, now.Add(24*time.Hour)); err != nil {
			s.logger.Warn("Не удалось создать напоминание по заявке",
				zap.Uint64("request_id", id), zap.Error(err))
		}
	}

	s.bus.Publish(ctx, events.RequestCreatedEvent{
		RequestID: id,
		Number:    req.Number,
		AuthorID:  authorID,
	})
	return req, nil
}

func (s *RequestService) FindByPublicID(ctx context.Context, publicID string) (*entities.Request, error) {
	return s.repo.FindByPublicID(ctx, publicID)
}

// ListMine возвращает заявки с точки зрения роли: клиент видит свои,
// мастер — назначенные на него, диспетчер и выше — все.
func (s *RequestService) ListMine(ctx context.Context, user *entities.User, limit, offset uint64) ([]entities.Request, uint64, error) {
	filter := repositories.RequestFilter{}
	switch user.Role {
	case entities.RoleClient:
		filter.AuthorID = user.ID
	case entities.RoleMaster:
		filter.ExecutorID = user.ID
	}
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *RequestService) Assign(ctx context.Context, publicID string, executorID uint64) error {
	req, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if err := s.repo.Assign(ctx, req.ID, executorID); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.RequestAssignedEvent{
		RequestID:  req.ID,
		Number:     req.Number,
		ExecutorID: executorID,
	})
	return nil
}

func (s *RequestService) SetStatus(ctx context.Context, publicID string, status string) error {
	switch status {
	case entities.RequestStatusNew, entities.RequestStatusAssigned,
		entities.RequestStatusDone, entities.RequestStatusClosed:
	default:
		return apperrors.NewInvalidInputError("неизвестный статус «%s»", status)
	}

	req, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, req.ID, status)
}
