package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"remontbot/internal/entities"
	"remontbot/internal/repositories"
	apperrors "remontbot/pkg/errors"
)

type UserServiceInterface interface {
	FindByChatID(ctx context.Context, chatID int64) (*entities.User, error)
	ListByRole(ctx context.Context, role string) ([]entities.User, error)
	GenerateLinkToken(ctx context.Context, userID uint64) (string, error)
	LinkChatByToken(ctx context.Context, token string, chatID int64) (*entities.User, error)
}

// UserService — привязка Telegram-чатов к учёткам. Токен привязки —
// подписанный JWT с id пользователя и коротким сроком жизни: учётку
// создаёт администратор на веб-стороне, бот только привязывает чат.
type UserService struct {
	userRepo  repositories.UserRepositoryInterface
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (s *UserService) FindByChatID(ctx context.Context, chatID int64) (*entities.User, error) {
	return s.userRepo.FindByChatID(ctx, chatID)
}

func (s *UserService) ListByRole(ctx context.Context, role string) ([]entities.User, error) {
	return s.userRepo.ListByRole(ctx, role)
}

func (s *UserService) GenerateLinkToken(ctx context.Context, userID uint64) (string, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"use": "tg_link",
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *UserService) LinkChatByToken(ctx context.Context, tokenString string, chatID int64) (*entities.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["use"] != "tg_link" {
		return nil, apperrors.ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)

	var userID uint64
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil || userID == 0 {
		return nil, apperrors.ErrInvalidToken
	}

	if err := s.userRepo.BindChatID(ctx, userID, chatID); err != nil {
		return nil, err
	}

	s.logger.Info("Чат привязан к пользователю",
		zap.Uint64("user_id", userID), zap.Int64("chat_id", chatID))
	return s.userRepo.FindByID(ctx, userID)
}
