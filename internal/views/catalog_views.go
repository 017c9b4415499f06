package views

import (
	"fmt"
	"strings"

	"remontbot/internal/entities"
	"remontbot/pkg/telegram"
)

// GroupList — список групп каталога. pageItems — срез имён групп
// текущей страницы; индексы кнопок считаются от начала страницы с
// учётом смещения, чтобы совпасть со снимком полного списка.
func GroupList(pageItems []string, page, totalPages, pageSize int, worksPerGroup map[string]int) View {
	var b strings.Builder
	b.WriteString("📁 Группы работ\n\n")
	if len(pageItems) == 0 {
		b.WriteString("Каталог пуст. Создайте первую группу или работу.")
	} else {
		b.WriteString("Выберите группу:")
	}

	var rows [][]telegram.InlineKeyboardButton
	offset := page * pageSize
	for i, name := range pageItems {
		label := fmt.Sprintf("%s (%d)", name, worksPerGroup[name])
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn(label, fmt.Sprintf("%s%d", CbGroupPrefix, offset+i)),
		})
	}
	if nav := navRow(CbPagePrefix, page, totalPages); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows,
		[]telegram.InlineKeyboardButton{btn("➕ Группа", CbAddGroup), btn("➕ Работа", CbAddWork)},
		[]telegram.InlineKeyboardButton{btn("✖️ Закрыть", CbCloseMenu)},
	)

	return View{Text: b.String(), Keyboard: rows}
}

// WorkList — работы одной группы.
func WorkList(group string, pageItems []entities.Work, page, totalPages, pageSize int) View {
	title := group
	if title == "" {
		title = "Без группы"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📂 %s\n\n", title)
	if len(pageItems) == 0 {
		b.WriteString("В группе пока нет работ.")
	} else {
		b.WriteString("Выберите работу:")
	}

	var rows [][]telegram.InlineKeyboardButton
	offset := page * pageSize
	for i, w := range pageItems {
		label := fmt.Sprintf("%s — %.2f/%s", w.Name, w.PricePerUnit, w.Unit)
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn(label, fmt.Sprintf("%s%d", CbWorkPrefix, offset+i)),
		})
	}
	if nav := navRow(CbPagePrefix, page, totalPages); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows,
		[]telegram.InlineKeyboardButton{btn("➕ Работа", CbAddWork)},
		[]telegram.InlineKeyboardButton{btn("✏️ Переименовать группу", CbRenameGroup), btn("🗑 Удалить группу", CbDeleteGroup)},
		[]telegram.InlineKeyboardButton{btn("⬅️ К группам", CbBackGroups)},
	)

	return View{Text: b.String(), Keyboard: rows}
}

// WorkDetail — карточка работы со звездой редактирования: меню ↔
// лист-состояние на каждое поле.
func WorkDetail(work *entities.Work) View {
	group := "—"
	if work.Group.Valid {
		group = work.Group.String
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔨 %s\n\n", work.Name)
	fmt.Fprintf(&b, "Код: %s\n", work.Code)
	fmt.Fprintf(&b, "Ед. изм.: %s\n", work.Unit)
	fmt.Fprintf(&b, "Цена: %.2f\n", work.PricePerUnit)
	fmt.Fprintf(&b, "Группа: %s\n", group)
	fmt.Fprintf(&b, "\nМатериалы (%d):\n", len(work.Materials))
	for i, m := range work.Materials {
		fmt.Fprintf(&b, "  %d. %s — %.2f %s по %.2f\n", i+1, m.Name, m.QtyPerUnit, m.Unit, m.PricePerUnit)
	}

	rows := [][]telegram.InlineKeyboardButton{
		{btn("✏️ Название", CbWorkFieldPref+"name"), btn("✏️ Код", CbWorkFieldPref+"code")},
		{btn("✏️ Ед. изм.", CbWorkFieldPref+"unit"), btn("✏️ Цена", CbWorkFieldPref+"price")},
		{btn("✏️ Группа", CbWorkFieldPref+"group")},
	}
	for i := range work.Materials {
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn(fmt.Sprintf("🧱 %s", work.Materials[i].Name), fmt.Sprintf("%s%d", CbMaterialPrefix, i)),
		})
	}
	rows = append(rows,
		[]telegram.InlineKeyboardButton{btn("➕ Материал", CbAddMaterial), btn("🗑 Удалить работу", CbDeleteWork)},
		[]telegram.InlineKeyboardButton{btn("⬅️ К списку", CbBackWorks)},
	)

	return View{Text: b.String(), Keyboard: rows}
}

// MaterialDetail — карточка материала внутри работы.
func MaterialDetail(work *entities.Work, index int) View {
	m := work.Materials[index]

	var b strings.Builder
	fmt.Fprintf(&b, "🧱 %s\n\n", m.Name)
	fmt.Fprintf(&b, "Работа: %s\n", work.Name)
	fmt.Fprintf(&b, "Ед. изм.: %s\n", m.Unit)
	fmt.Fprintf(&b, "Расход на ед. работы: %.2f\n", m.QtyPerUnit)
	fmt.Fprintf(&b, "Цена за ед.: %.2f\n", m.PricePerUnit)

	rows := [][]telegram.InlineKeyboardButton{
		{btn("✏️ Название", CbMatFieldPref+"name"), btn("✏️ Ед. изм.", CbMatFieldPref+"unit")},
		{btn("✏️ Расход", CbMatFieldPref+"qty"), btn("✏️ Цена", CbMatFieldPref+"price")},
		{btn("🗑 Удалить материал", CbDelMaterial)},
		{btn("⬅️ К работе", CbBackWork)},
	}

	return View{Text: b.String(), Keyboard: rows}
}

// ConfirmDelete — обязательный шаг подтверждения перед удалением.
func ConfirmDelete(what string) View {
	return View{
		Text: fmt.Sprintf("❓ Удалить %s?\n\nДействие необратимо.", what),
		Keyboard: [][]telegram.InlineKeyboardButton{
			{btn("✅ Да, удалить", CbConfirmYes), btn("↩️ Нет", CbConfirmNo)},
		},
	}
}

// GroupPick — выбор группы на последнем шаге мастера создания работы.
func GroupPick(groups []string) View {
	var rows [][]telegram.InlineKeyboardButton
	for i, g := range groups {
		rows = append(rows, []telegram.InlineKeyboardButton{
			btn(g, fmt.Sprintf("%s%d", CbGroupPrefix, i)),
		})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{btn("Без группы", CbNoGroup)})

	return View{
		Text:     "Шаг 5 из 5. Выберите группу для работы (или введите название новой группы текстом):",
		Keyboard: rows,
	}
}
