package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"remontbot/internal/authz"
	"remontbot/internal/dto"
	apperrors "remontbot/pkg/errors"
	"remontbot/pkg/telegram"
)

func (c *TelegramController) handleCommand(ctx context.Context, chatID int64, text string) error {
	parts := strings.Fields(text)
	command := parts[0]
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}

	switch command {
	case "/start":
		return c.cmdStart(ctx, chatID, parts)
	case "/help":
		return c.cmdHelp(ctx, chatID)
	case "/cancel":
		return c.cancelFlow(ctx, chatID)
	case "/catalog":
		return c.cmdCatalog(ctx, chatID)
	case "/new":
		return c.cmdNewRequest(ctx, chatID)
	case "/requests":
		return c.cmdRequests(ctx, chatID)
	case "/export":
		return c.cmdExport(ctx, chatID)
	case "/link":
		return c.cmdLink(ctx, chatID, parts)
	default:
		return c.tgService.SendMessage(ctx, chatID, "Неизвестная команда. Наберите /help.")
	}
}

// mainMenuKeyboard — постоянная клавиатура с базовыми командами,
// показывается привязанным пользователям после /start.
func mainMenuKeyboard() [][]telegram.ReplyKeyboardButton {
	return [][]telegram.ReplyKeyboardButton{
		{{Text: "/new"}, {Text: "/requests"}},
		{{Text: "/help"}},
	}
}

// cmdStart привязывает чат по токену из deep-link («/start <токен>»)
// либо объясняет, как токен получить.
func (c *TelegramController) cmdStart(ctx context.Context, chatID int64, parts []string) error {
	if len(parts) > 1 {
		user, err := c.userService.LinkChatByToken(ctx, parts[1], chatID)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessageEx(ctx, chatID,
			fmt.Sprintf("✅ Готово, %s! Ваша роль: %s.\nНаберите /help для списка команд.",
				user.Fio, roleTitle(user)),
			telegram.WithReplyKeyboard(mainMenuKeyboard()))
	}

	if user, err := c.userService.FindByChatID(ctx, chatID); err == nil {
		return c.tgService.SendMessageEx(ctx, chatID,
			fmt.Sprintf("С возвращением, %s! Наберите /help для списка команд.", user.Fio),
			telegram.WithReplyKeyboard(mainMenuKeyboard()))
	}

	return c.tgService.SendMessage(ctx, chatID,
		"👋 Это бот учёта ремонтных заявок.\n\n"+
			"Аккаунт ещё не привязан: получите токен привязки у администратора "+
			"и отправьте команду /start <токен>.")
}

func (c *TelegramController) cmdHelp(ctx context.Context, chatID int64) error {
	return c.tgService.SendMessage(ctx, chatID,
		"Команды:\n"+
			"/new — подать заявку на ремонт\n"+
			"/requests — мои заявки\n"+
			"/catalog — каталог работ (администратор)\n"+
			"/export — выгрузка каталога в Excel\n"+
			"/link <id> — токен привязки для пользователя (администратор)\n"+
			"/cancel — отменить текущее действие\n\n"+
			"В любом вводе слово «отмена» прерывает сценарий.")
}

// authorize — единая точка входа в сценарий: роль проверяется до
// создания сессии, при отказе состояние не создаётся.
func (c *TelegramController) authorize(ctx context.Context, chatID int64, flow string) (ok bool, err error) {
	user, uerr := c.userService.FindByChatID(ctx, chatID)
	if uerr != nil {
		return false, c.replyError(ctx, chatID, apperrors.ErrUnauthorized)
	}
	if aerr := authz.CheckFlow(user, flow); aerr != nil {
		return false, c.replyError(ctx, chatID, aerr)
	}
	return true, nil
}

func (c *TelegramController) cmdCatalog(ctx context.Context, chatID int64) error {
	if ok, err := c.authorize(ctx, chatID, authz.FlowCatalogEdit); !ok {
		return err
	}
	state := dto.NewChatState(stCatalogGroups)
	return c.showGroupList(ctx, chatID, state)
}

func (c *TelegramController) cmdNewRequest(ctx context.Context, chatID int64) error {
	if ok, err := c.authorize(ctx, chatID, authz.FlowRequestCreate); !ok {
		return err
	}
	state := dto.NewChatState(stRequestDescr)
	if err := c.sessionService.Set(ctx, chatID, state); err != nil {
		return c.replyError(ctx, chatID, err)
	}
	return c.tgService.SendMessage(ctx, chatID,
		"📝 Новая заявка.\n\nШаг 1 из 3. Опишите, что случилось (или «отмена»):")
}

func (c *TelegramController) cmdRequests(ctx context.Context, chatID int64) error {
	if ok, err := c.authorize(ctx, chatID, authz.FlowRequestList); !ok {
		return err
	}
	user, err := c.userService.FindByChatID(ctx, chatID)
	if err != nil {
		return c.replyError(ctx, chatID, apperrors.ErrUnauthorized)
	}
	state := dto.NewChatState(stRequestList)
	return c.showRequestList(ctx, chatID, user, state)
}

func (c *TelegramController) cmdExport(ctx context.Context, chatID int64) error {
	if ok, err := c.authorize(ctx, chatID, authz.FlowCatalogExport); !ok {
		return err
	}

	data, err := c.exportService.ExportCatalog(ctx)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}
	return c.tgService.SendDocument(ctx, chatID, "catalog.xlsx", data, "📊 Выгрузка каталога")
}

// cmdLink выдаёт токен привязки для учётки: администратор пересылает
// его пользователю, тот отправляет боту «/start <токен>».
func (c *TelegramController) cmdLink(ctx context.Context, chatID int64, parts []string) error {
	if ok, err := c.authorize(ctx, chatID, authz.FlowLinkIssue); !ok {
		return err
	}
	if len(parts) < 2 {
		return c.replyError(ctx, chatID,
			apperrors.NewInvalidInputError("укажите id пользователя: /link 42"))
	}
	userID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || userID == 0 {
		return c.replyError(ctx, chatID,
			apperrors.NewInvalidInputError("«%s» не похоже на id пользователя", parts[1]))
	}

	token, err := c.userService.GenerateLinkToken(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return c.replyError(ctx, chatID,
				apperrors.NewInvalidInputError("пользователь с id %d не найден", userID))
		}
		return c.replyError(ctx, chatID, err)
	}

	return c.tgService.SendMessage(ctx, chatID,
		fmt.Sprintf("🔑 Токен привязки для пользователя %d (срок действия ограничен):\n\n%s\n\n"+
			"Пользователь должен отправить боту:\n/start %s", userID, token, token))
}
