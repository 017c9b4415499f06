package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"remontbot/internal/entities"
	"remontbot/internal/services"
	"remontbot/internal/views"
	apperrors "remontbot/pkg/errors"
	"remontbot/pkg/telegram"
)

const (
	handlerTimeout = 45 * time.Second
	// Текстовый спам старше двух минут игнорируется; нажатия кнопок
	// свежи всегда — дата в callback это дата отправки меню ботом.
	maxMessageAge = 2 * time.Minute
)

type TelegramController struct {
	userService    services.UserServiceInterface
	sessionService services.SessionServiceInterface
	catalogService services.CatalogServiceInterface
	requestService services.RequestServiceInterface
	exportService  *services.ExportService
	tgService      telegram.ServiceInterface
	pageSize       int
	logger         *zap.Logger
}

func NewTelegramController(
	userService services.UserServiceInterface,
	sessionService services.SessionServiceInterface,
	catalogService services.CatalogServiceInterface,
	requestService services.RequestServiceInterface,
	exportService *services.ExportService,
	tgService telegram.ServiceInterface,
	pageSize int,
	logger *zap.Logger,
) *TelegramController {
	return &TelegramController{
		userService:    userService,
		sessionService: sessionService,
		catalogService: catalogService,
		requestService: requestService,
		exportService:  exportService,
		tgService:      tgService,
		pageSize:       pageSize,
		logger:         logger,
	}
}

// HandleTelegramWebhook принимает update и всегда отвечает 200 OK:
// повторная доставка от Telegram нам не нужна. События одного чата
// обрабатываются последовательно в порядке прихода.
func (c *TelegramController) HandleTelegramWebhook(ctx echo.Context) error {
	var update TelegramUpdate
	if err := ctx.Bind(&update); err != nil {
		return ctx.NoContent(http.StatusOK)
	}

	bgCtx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		_ = c.tgService.AnswerCallbackQuery(bgCtx, update.CallbackQuery.ID, "")
		if err := c.handleCallbackQuery(bgCtx, update.CallbackQuery); err != nil {
			c.logger.Error("Ошибка обработки callback", zap.Error(err))
		}
	case update.Message != nil:
		if !c.isMessageRecent(update.Message) {
			break
		}
		if err := c.handleMessage(bgCtx, update.Message); err != nil {
			c.logger.Error("Ошибка обработки сообщения", zap.Error(err))
		}
	}
	return ctx.NoContent(http.StatusOK)
}

func (c *TelegramController) isMessageRecent(msg *TelegramMessage) bool {
	if msg.Date <= 0 {
		return true
	}
	return time.Since(time.Unix(msg.Date, 0)) <= maxMessageAge
}

func (c *TelegramController) handleMessage(ctx context.Context, msg *TelegramMessage) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		return c.handleCommand(ctx, chatID, text)
	}

	state, ok := c.sessionService.Get(ctx, chatID)
	if !ok {
		return c.tgService.SendMessage(ctx, chatID,
			"Я понимаю только команды. Начните с /help.")
	}

	// Глобальная отмена: проверяется раньше любой валидации поля.
	if strings.EqualFold(text, cancelWord) {
		return c.cancelFlow(ctx, chatID)
	}

	user, err := c.userService.FindByChatID(ctx, chatID)
	if err != nil {
		return c.replyError(ctx, chatID, apperrors.ErrUnauthorized)
	}

	switch {
	case strings.HasPrefix(state.State, "work_"), strings.HasPrefix(state.State, "mat_"),
		strings.HasPrefix(state.State, "group_"), strings.HasPrefix(state.State, "catalog_"):
		return c.handleCatalogText(ctx, chatID, user, state, text)
	case strings.HasPrefix(state.State, "request_"):
		return c.handleRequestText(ctx, chatID, user, state, text)
	default:
		c.logger.Warn("Неизвестное состояние диалога, сбрасываю",
			zap.String("state", state.State), zap.Int64("chat_id", chatID))
		return c.cancelFlow(ctx, chatID)
	}
}

func (c *TelegramController) handleCallbackQuery(ctx context.Context, query *TelegramCallbackQuery) error {
	if query.Message == nil {
		return nil
	}
	chatID := query.Message.Chat.ID
	data := query.Data

	state, ok := c.sessionService.Get(ctx, chatID)
	if !ok {
		return c.sendStaleNotice(ctx, chatID)
	}
	// Меню редактируется на месте: запоминаем, какое сообщение наше.
	state.MessageID = query.Message.MessageID

	if data == views.CbCloseMenu {
		return c.cancelFlow(ctx, chatID)
	}

	user, err := c.userService.FindByChatID(ctx, chatID)
	if err != nil {
		return c.replyError(ctx, chatID, apperrors.ErrUnauthorized)
	}

	switch {
	case strings.HasPrefix(state.State, "catalog_"), strings.HasPrefix(state.State, "confirm_"),
		state.State == stWorkCreateGroup:
		return c.handleCatalogCallback(ctx, chatID, user, state, data)
	case strings.HasPrefix(state.State, "request_"):
		return c.handleRequestCallback(ctx, chatID, user, state, data)
	default:
		return c.sendStaleNotice(ctx, chatID)
	}
}

// cancelFlow сбрасывает сценарий: черновик очищается, частично
// введённые данные никуда не пишутся.
func (c *TelegramController) cancelFlow(ctx context.Context, chatID int64) error {
	if err := c.sessionService.Clear(ctx, chatID); err != nil {
		c.logger.Warn("Не удалось очистить состояние", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return c.tgService.SendMessage(ctx, chatID, "Действие отменено. Наберите /help для списка команд.")
}

// renderView показывает View: редактирует сообщение меню на месте,
// если оно известно, иначе отправляет новое.
func (c *TelegramController) renderView(ctx context.Context, chatID int64, messageID int, v views.View) error {
	return c.tgService.EditOrSendMessage(ctx, chatID, messageID, v.Text, telegram.WithKeyboard(v.Keyboard))
}

// replyError — единая точка перевода ошибок в ответы пользователю.
// Валидация и not-found гасятся здесь и не идут выше; верхний уровень
// всегда отвечает хоть чем-то.
func (c *TelegramController) replyError(ctx context.Context, chatID int64, err error) error {
	var invalid *apperrors.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		// Состояние не меняется: пользователь пробует ещё раз.
		return c.tgService.SendMessage(ctx, chatID, "⚠️ "+invalid.Message)
	case errors.Is(err, apperrors.ErrIndexOutOfRange), errors.Is(err, apperrors.ErrNotFound):
		return c.sendStaleNotice(ctx, chatID)
	case errors.Is(err, apperrors.ErrForbidden):
		return c.tgService.SendMessage(ctx, chatID, "⛔ У вас нет прав для этого действия.")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return c.tgService.SendMessage(ctx, chatID,
			"❌ Аккаунт не привязан. Отправьте /start для инструкций.")
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		c.logger.Error("Хранилище недоступно", zap.Int64("chat_id", chatID), zap.Error(err))
		return c.tgService.SendMessage(ctx, chatID,
			"❌ Сервис временно недоступен. Попробуйте ещё раз позже.")
	default:
		c.logger.Error("Необработанная ошибка", zap.Int64("chat_id", chatID), zap.Error(err))
		return c.tgService.SendMessage(ctx, chatID,
			"❌ Внутренняя ошибка. Попробуйте позже или обратитесь в поддержку.")
	}
}

func (c *TelegramController) sendStaleNotice(ctx context.Context, chatID int64) error {
	return c.tgService.SendMessage(ctx, chatID,
		"⚠️ Кнопка устарела, данные могли измениться. Откройте меню заново.")
}

func roleTitle(user *entities.User) string {
	switch user.Role {
	case entities.RoleAdmin:
		return "администратор"
	case entities.RoleManager:
		return "менеджер"
	case entities.RoleDispatcher:
		return "диспетчер"
	case entities.RoleMaster:
		return "мастер"
	default:
		return "клиент"
	}
}

// RegisterWebhook регистрирует URL вебхука у Telegram.
func (c *TelegramController) RegisterWebhook(botToken, baseURL string) error {
	webhookURL := fmt.Sprintf("%s/api/webhooks/telegram", strings.TrimSuffix(baseURL, "/"))
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/setWebhook?url=%s", botToken, webhookURL)

	c.logger.Info("Регистрация вебхука Telegram", zap.String("url", webhookURL))

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		return fmt.Errorf("ошибка регистрации вебхука: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("отказ сервера при регистрации вебхука (код %d)", resp.StatusCode)
	}
	c.logger.Info("Вебхук Telegram зарегистрирован")
	return nil
}

// ==================== ТИПЫ UPDATE ====================

type TelegramUpdate struct {
	UpdateID      int                    `json:"update_id"`
	Message       *TelegramMessage       `json:"message"`
	CallbackQuery *TelegramCallbackQuery `json:"callback_query"`
}

type TelegramMessage struct {
	MessageID int          `json:"message_id"`
	From      TelegramUser `json:"from"`
	Chat      TelegramChat `json:"chat"`
	Text      string       `json:"text"`
	Date      int64        `json:"date"`
}

type TelegramUser struct {
	ID int64 `json:"id"`
}

type TelegramChat struct {
	ID int64 `json:"id"`
}

type TelegramCallbackQuery struct {
	ID      string           `json:"id"`
	From    TelegramUser     `json:"from"`
	Message *TelegramMessage `json:"message"`
	Data    string           `json:"data"`
}
