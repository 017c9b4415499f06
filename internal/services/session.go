package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"remontbot/internal/dto"
	"remontbot/internal/repositories"
)

const chatStateKey = "tg_chat_state:%d"

type SessionServiceInterface interface {
	Get(ctx context.Context, chatID int64) (*dto.ChatState, bool)
	Set(ctx context.Context, chatID int64, state *dto.ChatState) error
	Clear(ctx context.Context, chatID int64) error
}

// SessionService хранит состояния диалогов в Redis. Состояние —
// эфемерный черновик, не кеш каталога: срабатывание TTL равнозначно
// отмене сценария.
type SessionService struct {
	cacheRepo repositories.CacheRepositoryInterface
	ttl       time.Duration
	logger    *zap.Logger
}

func NewSessionService(cacheRepo repositories.CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) *SessionService {
	return &SessionService{
		cacheRepo: cacheRepo,
		ttl:       ttl,
		logger:    logger,
	}
}

func (s *SessionService) Get(ctx context.Context, chatID int64) (*dto.ChatState, bool) {
	raw, err := s.cacheRepo.Get(ctx, fmt.Sprintf(chatStateKey, chatID))
	if err != nil || raw == "" {
		return nil, false
	}
	state, err := dto.ChatStateFromJSON(raw)
	if err != nil {
		s.logger.Warn("Повреждённое состояние диалога, сбрасываю",
			zap.Int64("chat_id", chatID), zap.Error(err))
		_ = s.Clear(ctx, chatID)
		return nil, false
	}
	return state, true
}

func (s *SessionService) Set(ctx context.Context, chatID int64, state *dto.ChatState) error {
	raw, err := state.ToJSON()
	if err != nil {
		return err
	}
	return s.cacheRepo.Set(ctx, fmt.Sprintf(chatStateKey, chatID), raw, s.ttl)
}

func (s *SessionService) Clear(ctx context.Context, chatID int64) error {
	return s.cacheRepo.Del(ctx, fmt.Sprintf(chatStateKey, chatID))
}
