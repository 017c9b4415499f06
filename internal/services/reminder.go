package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"remontbot/internal/entities"
	"remontbot/internal/repositories"
	"remontbot/pkg/telegram"
)

// ReminderService — фоновый опросчик напоминаний. Работает
// параллельно с обработкой сообщений, но пишет только в записи
// напоминаний, поэтому блокировок с основным потоком нет.
type ReminderService struct {
	reminderRepo repositories.ReminderRepositoryInterface
	requestRepo  repositories.RequestRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	tgService    telegram.ServiceInterface
	interval     time.Duration
	logger       *zap.Logger
}

func NewReminderService(
	reminderRepo repositories.ReminderRepositoryInterface,
	requestRepo repositories.RequestRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	tgService telegram.ServiceInterface,
	interval time.Duration,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		tgService:    tgService,
		interval:     interval,
		logger:       logger,
	}
}

// Run опрашивает просроченные напоминания до отмены контекста.
func (s *ReminderService) Run(ctx context.Context) {
	s.logger.Info("Запуск опросчика напоминаний", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Опросчик напоминаний остановлен")
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *ReminderService) poll(ctx context.Context) {
	due, err := s.reminderRepo.FindDue(ctx, time.Now())
	if err != nil {
		s.logger.Error("Ошибка выборки напоминаний", zap.Error(err))
		return
	}

	for _, rem := range due {
		if err := s.notify(ctx, rem.ID, rem.RequestID); err != nil {
			// Доставка best-effort: сбой логируем, напоминание
			// останется неотправленным до следующего цикла.
			s.logger.Warn("Не удалось доставить напоминание",
				zap.Uint64("reminder_id", rem.ID), zap.Error(err))
		}
	}
}

func (s *ReminderService) notify(ctx context.Context, reminderID, requestID uint64) error {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		// Заявка удалена — напоминание больше не актуально.
		return s.reminderRepo.MarkSent(ctx, reminderID, time.Now())
	}
	if req.Status == entities.RequestStatusClosed || !req.ExecutorID.Valid {
		// Некому или незачем напоминать — гасим напоминание.
		return s.reminderRepo.MarkSent(ctx, reminderID, time.Now())
	}

	executor, err := s.userRepo.FindByID(ctx, req.ExecutorID.Uint64)
	if err != nil || !executor.TgChatID.Valid {
		return s.reminderRepo.MarkSent(ctx, reminderID, time.Now())
	}

	text := fmt.Sprintf("⏰ Напоминание: заявка %s («%s») всё ещё в работе.", req.Number, req.Object)
	if err := s.tgService.SendMessage(ctx, executor.TgChatID.Int64, text); err != nil {
		return err
	}
	return s.reminderRepo.MarkSent(ctx, reminderID, time.Now())
}
