package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"remontbot/internal/authz"
	"remontbot/internal/dto"
	"remontbot/internal/entities"
	"remontbot/internal/views"
	apperrors "remontbot/pkg/errors"
	"remontbot/pkg/utils"
)

// showRequestList перечитывает заявки пользователя и снимает снимок
// их публичных идентификаторов перед отрисовкой.
func (c *TelegramController) showRequestList(ctx context.Context, chatID int64, user *entities.User, state *dto.ChatState) error {
	// Страничная выборка идёт по всей ленте пользователя, чтобы снимок
	// покрывал все индексы, которые могут прийти с кнопок.
	requests, total, err := c.requestService.ListMine(ctx, user, 500, 0)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}

	ids := make([]string, len(requests))
	for i, r := range requests {
		ids[i] = r.PublicID
	}

	pageItems, effPage, totalPages := utils.Paginate(requests, state.Page, c.pageSize)

	state.State = stRequestList
	state.Page = effPage
	state.SetSnapshot(ids)
	if err := c.sessionService.Set(ctx, chatID, state); err != nil {
		return c.replyError(ctx, chatID, err)
	}

	return c.renderView(ctx, chatID, state.MessageID,
		views.RequestList(pageItems, effPage, totalPages, c.pageSize, total))
}

func (c *TelegramController) showRequestDetail(ctx context.Context, chatID int64, user *entities.User, state *dto.ChatState, publicID string) error {
	req, err := c.requestService.FindByPublicID(ctx, publicID)

	state.State = stRequestDetail
	state.Set(draftRequestID, publicID)
	if serr := c.sessionService.Set(ctx, chatID, state); serr != nil {
		return c.replyError(ctx, chatID, serr)
	}

	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return c.renderView(ctx, chatID, state.MessageID, views.NotFound(views.CbBackRequests))
		}
		return c.replyError(ctx, chatID, err)
	}
	return c.renderView(ctx, chatID, state.MessageID, views.RequestDetail(req, user))
}

func (c *TelegramController) handleRequestText(ctx context.Context, chatID int64, user *entities.User, state *dto.ChatState, text string) error {
	switch state.State {
	case stRequestDescr:
		if len([]rune(text)) < 5 {
			return c.replyError(ctx, chatID,
				apperrors.NewInvalidInputError("опишите проблему чуть подробнее (минимум 5 символов)"))
		}
		state.Set(draftDescription, text)
		state.State = stRequestObject
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID,
			"Шаг 2 из 3. Где это находится? Адрес, подъезд, помещение (или «отмена»):")

	case stRequestObject:
		if text == "" {
			return c.replyError(ctx, chatID, apperrors.NewInvalidInputError("объект не может быть пустым"))
		}
		state.Set(draftObject, text)
		state.State = stRequestUrgency
		state.MessageID = 0
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.renderView(ctx, chatID, 0, views.UrgencyPick())

	default:
		return c.tgService.SendMessage(ctx, chatID,
			"Используйте кнопки меню или «отмена» для выхода.")
	}
}

func (c *TelegramController) handleRequestCallback(ctx context.Context, chatID int64, user *entities.User, state *dto.ChatState, data string) error {
	if data == views.CbBackRequests {
		return c.showRequestList(ctx, chatID, user, state)
	}

	switch state.State {
	case stRequestUrgency:
		if !strings.HasPrefix(data, views.CbUrgencyPrefix) {
			return c.sendStaleNotice(ctx, chatID)
		}
		return c.finishRequestWizard(ctx, chatID, user, state, strings.TrimPrefix(data, views.CbUrgencyPrefix))

	case stRequestList:
		switch {
		case strings.HasPrefix(data, views.CbRequestPagePre):
			page, err := parseIndex(data, views.CbRequestPagePre)
			if err != nil {
				return c.replyError(ctx, chatID, err)
			}
			state.Page = page
			return c.showRequestList(ctx, chatID, user, state)
		case strings.HasPrefix(data, views.CbRequestPrefix):
			idx, err := parseIndex(data, views.CbRequestPrefix)
			if err != nil {
				return c.replyError(ctx, chatID, err)
			}
			publicID, err := state.ResolveIndex(idx)
			if err != nil {
				return c.replyError(ctx, chatID, err)
			}
			return c.showRequestDetail(ctx, chatID, user, state, publicID)
		default:
			return c.sendStaleNotice(ctx, chatID)
		}

	case stRequestDetail:
		if data == views.CbAssignRequest {
			return c.showExecutorPick(ctx, chatID, user, state)
		}
		if strings.HasPrefix(data, "status:") {
			return c.requestStatusAction(ctx, chatID, user, state, strings.TrimPrefix(data, "status:"))
		}
		return c.sendStaleNotice(ctx, chatID)

	case stRequestAssign:
		if !strings.HasPrefix(data, views.CbExecutorPrefix) {
			return c.sendStaleNotice(ctx, chatID)
		}
		return c.assignRequestAction(ctx, chatID, user, state, data)

	default:
		return c.sendStaleNotice(ctx, chatID)
	}
}

// showExecutorPick снимает снимок мастеров и предлагает выбрать
// исполнителя. Снимок хранит id, а не ФИО: имя — не стабильный ключ.
func (c *TelegramController) showExecutorPick(ctx context.Context, chatID int64, user *entities.User, state *dto.ChatState) error {
	if err := authz.CheckFlow(user, authz.FlowRequestAssign); err != nil {
		return c.replyError(ctx, chatID, err)
	}

	publicID, _ := state.Get(draftRequestID)
	req, err := c.requestService.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return c.renderView(ctx, chatID, state.MessageID, views.NotFound(views.CbBackRequests))
		}
		return c.replyError(ctx, chatID, err)
	}

	masters, err := c.userService.ListByRole(ctx, entities.RoleMaster)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}
	if len(masters) == 0 {
		return c.replyError(ctx, chatID,
			apperrors.NewInvalidInputError("в системе нет ни одного мастера — добавьте мастера в веб-кабинете"))
	}

	ids := make([]string, len(masters))
	for i, m := range masters {
		ids[i] = strconv.FormatUint(m.ID, 10)
	}

	state.State = stRequestAssign
	state.SetSnapshot(ids)
	if err := c.sessionService.Set(ctx, chatID, state); err != nil {
		return c.replyError(ctx, chatID, err)
	}
	return c.renderView(ctx, chatID, state.MessageID, views.ExecutorPick(req.Number, masters))
}

func (c *TelegramController) assignRequestAction(ctx context.Context, chatID int64, user *entities.User, state *dto.ChatState, data string) error {
	if err := authz.CheckFlow(user, authz.FlowRequestAssign); err != nil {
		return c.replyError(ctx, chatID, err)
	}

	idx, err := parseIndex(data, views.CbExecutorPrefix)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}
	idStr, err := state.ResolveIndex(idx)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}
	executorID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return c.replyError(ctx, chatID, apperrors.ErrIndexOutOfRange)
	}

	publicID, _ := state.Get(draftRequestID)
	if err := c.requestService.Assign(ctx, publicID, executorID); err != nil {
		return c.replyError(ctx, chatID, err)
	}
	return c.showRequestDetail(ctx, chatID, user, state, publicID)
}

func (c *TelegramController) finishRequestWizard(ctx context.Context, chatID int64, user *entities.User, state *dto.ChatState, urgency string) error {
	description, _ := state.Get(draftDescription)
	object, _ := state.Get(draftObject)

	payload := dto.CreateRequestDTO{
		Description: description,
		Object:      object,
		Urgency:     urgency,
	}
	req, err := c.requestService.Create(ctx, user.ID, payload)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}

	if err := c.sessionService.Clear(ctx, chatID); err != nil {
		c.logger.Warn("Не удалось очистить состояние после создания заявки", zap.Error(err))
	}
	return c.tgService.SendMessage(ctx, chatID,
		fmt.Sprintf("✅ Заявка %s принята. Диспетчер назначит исполнителя.\nСледите за статусом: /requests", req.Number))
}

// requestStatusAction меняет статус с проверкой права на переход:
// мастер закрывает работу как выполненную, диспетчер — заявку целиком.
func (c *TelegramController) requestStatusAction(ctx context.Context, chatID int64, user *entities.User, state *dto.ChatState, status string) error {
	switch status {
	case entities.RequestStatusDone:
		// Переход доступен и мастеру, и диспетчеру.
	case entities.RequestStatusClosed:
		if err := authz.CheckFlow(user, authz.FlowRequestAssign); err != nil {
			return c.replyError(ctx, chatID, err)
		}
	default:
		return c.sendStaleNotice(ctx, chatID)
	}

	publicID, _ := state.Get(draftRequestID)
	if err := c.requestService.SetStatus(ctx, publicID, status); err != nil {
		return c.replyError(ctx, chatID, err)
	}
	return c.showRequestDetail(ctx, chatID, user, state, publicID)
}
