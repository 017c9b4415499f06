package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"remontbot/internal/authz"
	"remontbot/internal/dto"
	"remontbot/internal/entities"
	"remontbot/internal/views"
	apperrors "remontbot/pkg/errors"
	"remontbot/pkg/utils"
)

func parseIndex(data, prefix string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || n < 0 {
		return 0, apperrors.ErrIndexOutOfRange
	}
	return n, nil
}

// ==================== ОТРИСОВКА МЕНЮ ====================
// Каждое меню перечитывает каталог из хранилища и снимает новый
// снимок ключей в сессию непосредственно перед отрисовкой — кнопки
// всегда указывают в тот снимок, по которому их потом разрешат.

func (c *TelegramController) showGroupList(ctx context.Context, chatID int64, state *dto.ChatState) error {
	catalog, err := c.catalogService.GetCatalog(ctx)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}

	groups := catalog.AllGroups()
	// Работы без группы доступны через псевдогруппу в конце списка.
	if len(catalog.WorksInGroup("")) > 0 {
		groups = append(groups, "")
	}

	worksPerGroup := make(map[string]int, len(groups))
	for _, g := range groups {
		worksPerGroup[groupLabel(g)] = len(catalog.WorksInGroup(g))
	}

	pageItems, effPage, totalPages := utils.Paginate(groups, state.Page, c.pageSize)

	state.State = stCatalogGroups
	state.Page = effPage
	state.SetSnapshot(groups)
	if err := c.sessionService.Set(ctx, chatID, state); err != nil {
		return c.replyError(ctx, chatID, err)
	}

	labels := make([]string, len(pageItems))
	for i, g := range pageItems {
		labels[i] = groupLabel(g)
	}
	return c.renderView(ctx, chatID, state.MessageID,
		views.GroupList(labels, effPage, totalPages, c.pageSize, worksPerGroup))
}

func groupLabel(group string) string {
	if group == "" {
		return "Без группы"
	}
	return group
}

func (c *TelegramController) showWorkList(ctx context.Context, chatID int64, state *dto.ChatState, group string) error {
	catalog, err := c.catalogService.GetCatalog(ctx)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}

	works := catalog.WorksInGroup(group)
	codes := make([]string, len(works))
	for i, w := range works {
		codes[i] = w.Code
	}

	pageItems, effPage, totalPages := utils.Paginate(works, state.Page, c.pageSize)

	state.State = stCatalogWorks
	state.Page = effPage
	state.Set(draftGroup, group)
	state.SetSnapshot(codes)
	if err := c.sessionService.Set(ctx, chatID, state); err != nil {
		return c.replyError(ctx, chatID, err)
	}

	return c.renderView(ctx, chatID, state.MessageID,
		views.WorkList(groupLabel(group), pageItems, effPage, totalPages, c.pageSize))
}

// showWorkDetail перечитывает работу по стабильному коду. Если работу
// успели удалить из другой сессии, показывается безопасный вид
// «не найдено» с единственной кнопкой назад.
func (c *TelegramController) showWorkDetail(ctx context.Context, chatID int64, state *dto.ChatState, code string) error {
	catalog, err := c.catalogService.GetCatalog(ctx)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}

	state.State = stCatalogWorkMenu
	state.Set(draftWorkCode, code)

	work := catalog.FindWork(code)
	if work == nil {
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.renderView(ctx, chatID, state.MessageID, views.NotFound(views.CbBackWorks))
	}

	if err := c.sessionService.Set(ctx, chatID, state); err != nil {
		return c.replyError(ctx, chatID, err)
	}
	return c.renderView(ctx, chatID, state.MessageID, views.WorkDetail(work))
}

func (c *TelegramController) showMaterialDetail(ctx context.Context, chatID int64, state *dto.ChatState, code string, index int) error {
	catalog, err := c.catalogService.GetCatalog(ctx)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}

	work := catalog.FindWork(code)
	if work == nil || index < 0 || index >= len(work.Materials) {
		state.State = stCatalogWorkMenu
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.renderView(ctx, chatID, state.MessageID, views.NotFound(views.CbBackWork))
	}

	state.State = stCatalogMatMenu
	state.Set(draftWorkCode, code)
	state.Set(draftMatIndex, strconv.Itoa(index))
	if err := c.sessionService.Set(ctx, chatID, state); err != nil {
		return c.replyError(ctx, chatID, err)
	}
	return c.renderView(ctx, chatID, state.MessageID, views.MaterialDetail(work, index))
}

// ==================== CALLBACK-ПЕРЕХОДЫ ====================

func (c *TelegramController) handleCatalogCallback(ctx context.Context, chatID int64, user *entities.User, state *dto.ChatState, data string) error {
	if err := authz.CheckFlow(user, authz.FlowCatalogEdit); err != nil {
		return c.replyError(ctx, chatID, err)
	}

	// Кнопки «назад» действуют из любого состояния каталога.
	switch data {
	case views.CbBackGroups:
		state.Page = 0
		return c.showGroupList(ctx, chatID, state)
	case views.CbBackWorks:
		group, _ := state.Get(draftGroup)
		state.Page = 0
		return c.showWorkList(ctx, chatID, state, group)
	case views.CbBackWork:
		code, _ := state.Get(draftWorkCode)
		return c.showWorkDetail(ctx, chatID, state, code)
	}

	switch state.State {
	case stCatalogGroups:
		return c.groupsMenuAction(ctx, chatID, state, data)
	case stCatalogWorks:
		return c.worksMenuAction(ctx, chatID, state, data)
	case stCatalogWorkMenu:
		return c.workDetailAction(ctx, chatID, state, data)
	case stCatalogMatMenu:
		return c.materialDetailAction(ctx, chatID, state, data)
	case stWorkCreateGroup:
		return c.workWizardGroupAction(ctx, chatID, state, data)
	case stConfirmDeleteWork, stConfirmDeleteGroup, stConfirmDeleteMat:
		return c.confirmAction(ctx, chatID, state, data)
	default:
		return c.sendStaleNotice(ctx, chatID)
	}
}

func (c *TelegramController) groupsMenuAction(ctx context.Context, chatID int64, state *dto.ChatState, data string) error {
	switch {
	case strings.HasPrefix(data, views.CbPagePrefix):
		page, err := parseIndex(data, views.CbPagePrefix)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		state.Page = page
		return c.showGroupList(ctx, chatID, state)

	case strings.HasPrefix(data, views.CbGroupPrefix):
		idx, err := parseIndex(data, views.CbGroupPrefix)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		group, err := state.ResolveIndex(idx)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		state.Page = 0
		return c.showWorkList(ctx, chatID, state, group)

	case data == views.CbAddGroup:
		state.State = stGroupCreateName
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID, "Введите название новой группы (или «отмена»):")

	case data == views.CbAddWork:
		return c.startWorkWizard(ctx, chatID, state, "")

	default:
		return c.sendStaleNotice(ctx, chatID)
	}
}

func (c *TelegramController) worksMenuAction(ctx context.Context, chatID int64, state *dto.ChatState, data string) error {
	group, _ := state.Get(draftGroup)

	switch {
	case strings.HasPrefix(data, views.CbPagePrefix):
		page, err := parseIndex(data, views.CbPagePrefix)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		state.Page = page
		return c.showWorkList(ctx, chatID, state, group)

	case strings.HasPrefix(data, views.CbWorkPrefix):
		idx, err := parseIndex(data, views.CbWorkPrefix)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		code, err := state.ResolveIndex(idx)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.showWorkDetail(ctx, chatID, state, code)

	case data == views.CbAddWork:
		return c.startWorkWizard(ctx, chatID, state, group)

	case data == views.CbRenameGroup:
		if group == "" {
			return c.replyError(ctx, chatID,
				apperrors.NewInvalidInputError("псевдогруппу «Без группы» нельзя переименовать"))
		}
		state.State = stGroupRenameName
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID,
			fmt.Sprintf("Введите новое название для группы «%s» (или «отмена»):", group))

	case data == views.CbDeleteGroup:
		if group == "" {
			return c.replyError(ctx, chatID,
				apperrors.NewInvalidInputError("псевдогруппу «Без группы» нельзя удалить"))
		}
		state.State = stConfirmDeleteGroup
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.renderView(ctx, chatID, state.MessageID,
			views.ConfirmDelete(fmt.Sprintf("группу «%s» со всеми её работами", group)))

	default:
		return c.sendStaleNotice(ctx, chatID)
	}
}

func (c *TelegramController) workDetailAction(ctx context.Context, chatID int64, state *dto.ChatState, data string) error {
	code, _ := state.Get(draftWorkCode)

	switch {
	case strings.HasPrefix(data, views.CbWorkFieldPref):
		field := strings.TrimPrefix(data, views.CbWorkFieldPref)
		state.State = stWorkEditField
		state.Set(draftField, field)
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID, workFieldPrompt(field))

	case strings.HasPrefix(data, views.CbMaterialPrefix):
		idx, err := parseIndex(data, views.CbMaterialPrefix)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.showMaterialDetail(ctx, chatID, state, code, idx)

	case data == views.CbAddMaterial:
		state.State = stMatCreateName
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID,
			"➕ Новый материал.\n\nШаг 1 из 4. Название материала (или «отмена»):")

	case data == views.CbDeleteWork:
		state.State = stConfirmDeleteWork
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.renderView(ctx, chatID, state.MessageID,
			views.ConfirmDelete(fmt.Sprintf("работу «%s»", code)))

	default:
		return c.sendStaleNotice(ctx, chatID)
	}
}

func (c *TelegramController) materialDetailAction(ctx context.Context, chatID int64, state *dto.ChatState, data string) error {
	switch {
	case strings.HasPrefix(data, views.CbMatFieldPref):
		field := strings.TrimPrefix(data, views.CbMatFieldPref)
		state.State = stMatEditField
		state.Set(draftField, field)
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID, materialFieldPrompt(field))

	case data == views.CbDelMaterial:
		state.State = stConfirmDeleteMat
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.renderView(ctx, chatID, state.MessageID, views.ConfirmDelete("материал"))

	default:
		return c.sendStaleNotice(ctx, chatID)
	}
}

// confirmAction выполняет подтверждённое удаление ровно один раз.
// Повторное «да» по уже удалённой цели даёт «не найдено», не падение.
func (c *TelegramController) confirmAction(ctx context.Context, chatID int64, state *dto.ChatState, data string) error {
	code, _ := state.Get(draftWorkCode)
	group, _ := state.Get(draftGroup)

	if data == views.CbConfirmNo {
		switch state.State {
		case stConfirmDeleteWork:
			return c.showWorkDetail(ctx, chatID, state, code)
		case stConfirmDeleteGroup:
			return c.showWorkList(ctx, chatID, state, group)
		case stConfirmDeleteMat:
			idxStr, _ := state.Get(draftMatIndex)
			idx, _ := strconv.Atoi(idxStr)
			return c.showMaterialDetail(ctx, chatID, state, code, idx)
		}
	}
	if data != views.CbConfirmYes {
		return c.sendStaleNotice(ctx, chatID)
	}

	switch state.State {
	case stConfirmDeleteWork:
		if err := c.catalogService.DeleteWork(ctx, code); err != nil {
			_ = c.replyError(ctx, chatID, err)
		}
		state.Page = 0
		return c.showWorkList(ctx, chatID, state, group)

	case stConfirmDeleteGroup:
		removed, err := c.catalogService.DeleteGroupCascade(ctx, group)
		if err != nil {
			_ = c.replyError(ctx, chatID, err)
		} else {
			_ = c.tgService.SendMessage(ctx, chatID,
				fmt.Sprintf("🗑 Группа «%s» удалена вместе с %d работами.", group, removed))
		}
		state.Page = 0
		state.MessageID = 0
		return c.showGroupList(ctx, chatID, state)

	case stConfirmDeleteMat:
		idxStr, _ := state.Get(draftMatIndex)
		idx, _ := strconv.Atoi(idxStr)
		if err := c.catalogService.DeleteMaterial(ctx, code, idx); err != nil {
			_ = c.replyError(ctx, chatID, err)
		}
		return c.showWorkDetail(ctx, chatID, state, code)
	}
	return c.sendStaleNotice(ctx, chatID)
}
