package telegram

import (
	"context"
	"fmt"
	"strconv"

	"remontbot/internal/authz"
	"remontbot/internal/dto"
	"remontbot/internal/entities"
	"remontbot/internal/views"
	apperrors "remontbot/pkg/errors"
	"remontbot/pkg/utils"
)

func workFieldPrompt(field string) string {
	switch field {
	case "name":
		return "Введите новое название работы (или «отмена»):"
	case "code":
		return "Введите новый код работы (или «отмена»):"
	case "unit":
		return "Введите новую единицу измерения (или «отмена»):"
	case "price":
		return "Введите новую цену за единицу, например 500.50 (или «отмена»):"
	case "group":
		return "Введите название группы; пустая строка недопустима, «-» убирает группу (или «отмена»):"
	default:
		return "Введите новое значение (или «отмена»):"
	}
}

func materialFieldPrompt(field string) string {
	switch field {
	case "name":
		return "Введите новое название материала (или «отмена»):"
	case "unit":
		return "Введите новую единицу измерения (или «отмена»):"
	case "qty":
		return "Введите расход на единицу работы, например 2.5 (или «отмена»):"
	case "price":
		return "Введите цену за единицу, например 15.0 (или «отмена»):"
	default:
		return "Введите новое значение (или «отмена»):"
	}
}

// startWorkWizard начинает мастер создания работы. Черновик живёт
// только в сессии: в каталог ничего не пишется до финального шага.
func (c *TelegramController) startWorkWizard(ctx context.Context, chatID int64, state *dto.ChatState, group string) error {
	state.State = stWorkCreateName
	state.Draft = map[string]string{draftGroup: group}
	if err := c.sessionService.Set(ctx, chatID, state); err != nil {
		return c.replyError(ctx, chatID, err)
	}
	return c.tgService.SendMessage(ctx, chatID,
		"➕ Новая работа.\n\nШаг 1 из 5. Название работы (или «отмена»):")
}

// ==================== ТЕКСТОВЫЕ ПЕРЕХОДЫ ====================
// Ошибка валидации на любом шаге даёт повторный запрос без смены
// состояния; «отмена» перехватывается раньше, в handleMessage.

func (c *TelegramController) handleCatalogText(ctx context.Context, chatID int64, user *entities.User, state *dto.ChatState, text string) error {
	if err := authz.CheckFlow(user, authz.FlowCatalogEdit); err != nil {
		return c.replyError(ctx, chatID, err)
	}

	switch state.State {
	case stGroupCreateName:
		if err := c.catalogService.CreateGroup(ctx, text); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		state.Page = 0
		state.MessageID = 0
		return c.showGroupList(ctx, chatID, state)

	case stGroupRenameName:
		oldName, _ := state.Get(draftGroup)
		if err := c.catalogService.RenameGroup(ctx, oldName, text); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		state.Page = 0
		state.MessageID = 0
		return c.showWorkList(ctx, chatID, state, text)

	case stWorkCreateName:
		if text == "" {
			return c.replyError(ctx, chatID, apperrors.NewInvalidInputError("название не может быть пустым"))
		}
		state.Set(draftName, text)
		state.State = stWorkCreateCode
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID,
			"Шаг 2 из 5. Уникальный код работы, например plaster_wall (или «отмена»):")

	case stWorkCreateCode:
		if text == "" {
			return c.replyError(ctx, chatID, apperrors.NewInvalidInputError("код не может быть пустым"))
		}
		catalog, err := c.catalogService.GetCatalog(ctx)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		if catalog.HasCode(text) {
			return c.replyError(ctx, chatID,
				apperrors.NewInvalidInputError("код «%s» уже занят другой работой", text))
		}
		state.Set(draftCode, text)
		state.State = stWorkCreateUnit
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID,
			"Шаг 3 из 5. Единица измерения, например м2 (или «отмена»):")

	case stWorkCreateUnit:
		if text == "" {
			return c.replyError(ctx, chatID, apperrors.NewInvalidInputError("единица измерения не может быть пустой"))
		}
		state.Set(draftUnit, text)
		state.State = stWorkCreatePrice
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID,
			"Шаг 4 из 5. Цена за единицу, например 500.50 (или «отмена»):")

	case stWorkCreatePrice:
		price, err := utils.ParseDecimal(text)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		state.Set(draftPrice, strconv.FormatFloat(price, 'f', -1, 64))
		return c.showGroupPick(ctx, chatID, state)

	case stWorkCreateGroup:
		// Текст на шаге выбора группы — название новой группы.
		if text == "" {
			return c.replyError(ctx, chatID, apperrors.NewInvalidInputError("название группы не может быть пустым"))
		}
		return c.finishWorkWizard(ctx, chatID, state, text)

	case stWorkEditField:
		code, _ := state.Get(draftWorkCode)
		field, _ := state.Get(draftField)
		value := text
		if field == "group" && value == "-" {
			value = ""
		}
		if err := c.catalogService.UpdateWorkField(ctx, code, field, value); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		if field == "code" {
			// Код — стабильный ключ; после смены кода меню работы
			// открывается уже по новому коду.
			code = value
		}
		state.MessageID = 0
		return c.showWorkDetail(ctx, chatID, state, code)

	case stMatCreateName, stMatCreateUnit, stMatCreateQty, stMatCreatePrice:
		return c.materialWizardText(ctx, chatID, state, text)

	case stMatEditField:
		code, _ := state.Get(draftWorkCode)
		idxStr, _ := state.Get(draftMatIndex)
		idx, _ := strconv.Atoi(idxStr)
		field, _ := state.Get(draftField)
		if err := c.catalogService.UpdateMaterialField(ctx, code, idx, field, text); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		state.MessageID = 0
		return c.showMaterialDetail(ctx, chatID, state, code, idx)

	default:
		// Текст в меню-состоянии: подсказываем использовать кнопки.
		return c.tgService.SendMessage(ctx, chatID,
			"Используйте кнопки меню или «отмена» для выхода.")
	}
}

// showGroupPick — финальный шаг мастера: выбор существующей группы
// кнопкой или ввод новой текстом.
func (c *TelegramController) showGroupPick(ctx context.Context, chatID int64, state *dto.ChatState) error {
	catalog, err := c.catalogService.GetCatalog(ctx)
	if err != nil {
		return c.replyError(ctx, chatID, err)
	}

	groups := catalog.AllGroups()
	state.State = stWorkCreateGroup
	state.MessageID = 0
	state.SetSnapshot(groups)
	if err := c.sessionService.Set(ctx, chatID, state); err != nil {
		return c.replyError(ctx, chatID, err)
	}

	return c.renderView(ctx, chatID, 0, views.GroupPick(groups))
}

func (c *TelegramController) workWizardGroupAction(ctx context.Context, chatID int64, state *dto.ChatState, data string) error {
	switch {
	case data == views.CbNoGroup:
		return c.finishWorkWizard(ctx, chatID, state, "")
	default:
		idx, err := parseIndex(data, views.CbGroupPrefix)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		group, err := state.ResolveIndex(idx)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.finishWorkWizard(ctx, chatID, state, group)
	}
}

// finishWorkWizard собирает черновик в DTO и записывает работу одной
// операцией. При ошибке (например, код заняли параллельно) состояние
// остаётся на шаге выбора группы.
func (c *TelegramController) finishWorkWizard(ctx context.Context, chatID int64, state *dto.ChatState, group string) error {
	name, _ := state.Get(draftName)
	code, _ := state.Get(draftCode)
	unit, _ := state.Get(draftUnit)
	priceStr, _ := state.Get(draftPrice)
	price, _ := strconv.ParseFloat(priceStr, 64)

	payload := dto.CreateWorkDTO{
		Name:         name,
		Code:         code,
		Unit:         unit,
		PricePerUnit: price,
		Group:        group,
	}
	if err := c.catalogService.CreateWork(ctx, payload); err != nil {
		return c.replyError(ctx, chatID, err)
	}

	_ = c.tgService.SendMessage(ctx, chatID, fmt.Sprintf("✅ Работа «%s» создана.", name))

	state.Draft = map[string]string{draftGroup: group}
	state.Page = 0
	state.MessageID = 0
	return c.showWorkDetail(ctx, chatID, state, code)
}

func (c *TelegramController) materialWizardText(ctx context.Context, chatID int64, state *dto.ChatState, text string) error {
	switch state.State {
	case stMatCreateName:
		if text == "" {
			return c.replyError(ctx, chatID, apperrors.NewInvalidInputError("название не может быть пустым"))
		}
		state.Set("mat_name", text)
		state.State = stMatCreateUnit
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID,
			"Шаг 2 из 4. Единица измерения материала, например кг (или «отмена»):")

	case stMatCreateUnit:
		if text == "" {
			return c.replyError(ctx, chatID, apperrors.NewInvalidInputError("единица измерения не может быть пустой"))
		}
		state.Set("mat_unit", text)
		state.State = stMatCreateQty
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID,
			"Шаг 3 из 4. Расход на единицу работы, например 2.5 (или «отмена»):")

	case stMatCreateQty:
		qty, err := utils.ParseDecimal(text)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		state.Set(draftQty, strconv.FormatFloat(qty, 'f', -1, 64))
		state.State = stMatCreatePrice
		if err := c.sessionService.Set(ctx, chatID, state); err != nil {
			return c.replyError(ctx, chatID, err)
		}
		return c.tgService.SendMessage(ctx, chatID,
			"Шаг 4 из 4. Цена за единицу, например 15.0 (или «отмена»):")

	case stMatCreatePrice:
		price, err := utils.ParseDecimal(text)
		if err != nil {
			return c.replyError(ctx, chatID, err)
		}
		code, _ := state.Get(draftWorkCode)
		name, _ := state.Get("mat_name")
		unit, _ := state.Get("mat_unit")
		qtyStr, _ := state.Get(draftQty)
		qty, _ := strconv.ParseFloat(qtyStr, 64)

		payload := dto.CreateMaterialDTO{
			Name:         name,
			Unit:         unit,
			QtyPerUnit:   qty,
			PricePerUnit: price,
		}
		if err := c.catalogService.AddMaterial(ctx, code, payload); err != nil {
			return c.replyError(ctx, chatID, err)
		}

		_ = c.tgService.SendMessage(ctx, chatID, fmt.Sprintf("✅ Материал «%s» добавлен.", name))
		state.MessageID = 0
		return c.showWorkDetail(ctx, chatID, state, code)
	}
	return c.sendStaleNotice(ctx, chatID)
}
