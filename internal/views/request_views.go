package views

import (
	"fmt"
	"strings"

	"remontbot/internal/entities"
	"remontbot/pkg/telegram"
)

func urgencyLabel(urgency string) string {
	switch urgency {
	case entities.UrgencyHigh:
		return "🔴 срочно"
	case entities.UrgencyLow:
		return "🟢 не к спеху"
	default:
		return "🟡 обычная"
	}
}

func statusLabel(status string) string {
	switch status {
	case entities.RequestStatusNew:
		return "❗ новая"
	case entities.RequestStatusAssigned:
		return "⏳ в работе"
	case entities.RequestStatusDone:
		return "🆗 выполнена"
	case entities.RequestStatusClosed:
		return "✔️ закрыта"
	default:
		return status
	}
}

// RequestList — страница списка заявок текущего пользователя.
func RequestList(pageItems []entities.Request, page, totalPages, pageSize int, total uint64) View {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Заявки (всего: %d)\n\n", total)
	if len(pageItems) == 0 {
		b.WriteString("Заявок нет.")
	} else {
		b.WriteString("Выберите заявку:")
	}

	var rows [][]telegram.InlineKeyboardButton
	offset := page * pageSize
	for i, req := range pageItems {
		label := fmt.Sprintf("%s %s — %s", req.Number, req.Object, statusLabel(req.Status))
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn(label, fmt.Sprintf("%s%d", CbRequestPrefix, offset+i)),
		})
	}
	if nav := navRow(CbRequestPagePre, page, totalPages); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, []telegram.InlineKeyboardButton{btn("✖️ Закрыть", CbCloseMenu)})

	return View{Text: b.String(), Keyboard: rows}
}

// RequestDetail — карточка заявки; действия зависят от роли смотрящего.
func RequestDetail(req *entities.Request, viewer *entities.User) View {
	var b strings.Builder
	fmt.Fprintf(&b, "📄 Заявка %s\n\n", req.Number)
	fmt.Fprintf(&b, "Объект: %s\n", req.Object)
	fmt.Fprintf(&b, "Описание: %s\n", req.Description)
	fmt.Fprintf(&b, "Срочность: %s\n", urgencyLabel(req.Urgency))
	fmt.Fprintf(&b, "Статус: %s\n", statusLabel(req.Status))
	fmt.Fprintf(&b, "Создана: %s\n", req.CreatedAt.Format("02.01.2006 15:04"))

	var rows [][]telegram.InlineKeyboardButton
	switch viewer.Role {
	case entities.RoleMaster:
		if req.Status == entities.RequestStatusAssigned {
			rows = append(rows, []telegram.InlineKeyboardButton{
				btn("🆗 Выполнена", "status:"+entities.RequestStatusDone),
			})
		}
	case entities.RoleDispatcher, entities.RoleManager, entities.RoleAdmin:
		// Назначение и переназначение доступны, пока заявка в работе.
		switch req.Status {
		case entities.RequestStatusNew:
			rows = append(rows, []telegram.InlineKeyboardButton{
				btn("👷 Назначить исполнителя", CbAssignRequest),
			})
		case entities.RequestStatusAssigned:
			rows = append(rows, []telegram.InlineKeyboardButton{
				btn("👷 Переназначить", CbAssignRequest),
			})
		case entities.RequestStatusDone:
			rows = append(rows, []telegram.InlineKeyboardButton{
				btn("✔️ Закрыть заявку", "status:"+entities.RequestStatusClosed),
			})
		}
	}
	rows = append(rows, []telegram.InlineKeyboardButton{btn("⬅️ К списку", CbBackRequests)})

	return View{Text: b.String(), Keyboard: rows}
}

// ExecutorPick — выбор мастера при назначении заявки. Кнопки несут
// индексы в снимок, как и остальные списочные меню.
func ExecutorPick(number string, masters []entities.User) View {
	var rows [][]telegram.InlineKeyboardButton
	for i, m := range masters {
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn(m.Fio, fmt.Sprintf("%s%d", CbExecutorPrefix, i)),
		})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{btn("⬅️ К списку", CbBackRequests)})

	return View{
		Text:     fmt.Sprintf("👷 Кому назначить заявку %s?", number),
		Keyboard: rows,
	}
}

// UrgencyPick — шаг выбора срочности в мастере подачи заявки.
func UrgencyPick() View {
	return View{
		Text: "Шаг 3 из 3. Насколько это срочно?",
		Keyboard: [][]telegram.InlineKeyboardButton{
			{btn(urgencyLabel(entities.UrgencyHigh), CbUrgencyPrefix+entities.UrgencyHigh)},
			{btn(urgencyLabel(entities.UrgencyNormal), CbUrgencyPrefix+entities.UrgencyNormal)},
			{btn(urgencyLabel(entities.UrgencyLow), CbUrgencyPrefix+entities.UrgencyLow)},
		},
	}
}
