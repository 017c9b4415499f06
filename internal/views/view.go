package views

import (
	"fmt"

	"remontbot/pkg/telegram"
)

// Грамматика callback-данных. Payload несёт короткий целочисленный
// индекс в снимок сессии или имя действия — никогда полное имя
// сущности: Telegram ограничивает длину callback_data 64 байтами.
const (
	CbGroupPrefix    = "g:"  // индекс группы в снимке
	CbWorkPrefix     = "w:"  // индекс работы в снимке
	CbMaterialPrefix = "m:"  // индекс материала в работе
	CbPagePrefix     = "p:"  // номер страницы текущего списка
	CbWorkFieldPref  = "wf:" // имя редактируемого поля работы
	CbMatFieldPref   = "mf:" // имя редактируемого поля материала

	CbAddGroup    = "group_add"
	CbRenameGroup = "group_ren"
	CbDeleteGroup = "group_del"
	CbAddWork     = "work_add"
	CbDeleteWork  = "work_del"
	CbAddMaterial = "mat_add"
	CbDelMaterial = "mat_del"

	CbConfirmYes = "confirm:yes"
	CbConfirmNo  = "confirm:no"

	CbBackGroups = "back:groups"
	CbBackWorks  = "back:works"
	CbBackWork   = "back:work"
	CbCloseMenu  = "close"

	CbNoGroup = "nogroup" // выбор «без группы» в мастере создания

	CbRequestPrefix  = "r:"  // индекс заявки в снимке
	CbRequestPagePre = "rp:" // страница списка заявок
	CbUrgencyPrefix  = "u:"  // срочность в мастере заявки
	CbExecutorPrefix = "e:"  // индекс исполнителя в снимке
	CbAssignRequest  = "req_assign"
	CbBackRequests   = "back:requests"
)

// View — результат отрисовки: текст плюс клавиатура. Отрисовка
// детерминирована: одинаковый вход даёт одинаковый View.
type View struct {
	Text     string
	Keyboard [][]telegram.InlineKeyboardButton
}

func btn(label, data string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: label, CallbackData: data}
}

// navRow строит строку навигации по страницам «⬅️ стр. N/M ➡️».
func navRow(pagePrefix string, page, totalPages int) []telegram.InlineKeyboardButton {
	if totalPages <= 1 {
		return nil
	}
	row := []telegram.InlineKeyboardButton{}
	if page > 0 {
		row = append(row, btn("⬅️", fmt.Sprintf("%s%d", pagePrefix, page-1)))
	}
	row = append(row, btn(fmt.Sprintf("стр. %d/%d", page+1, totalPages), fmt.Sprintf("%s%d", pagePrefix, page)))
	if page < totalPages-1 {
		row = append(row, btn("➡️", fmt.Sprintf("%s%d", pagePrefix, page+1)))
	}
	return row
}

// NotFound — безопасный вид для сущности, удалённой параллельной
// сессией: короткое уведомление и единственная кнопка «назад».
func NotFound(backData string) View {
	return View{
		Text: "⚠️ Запись не найдена — возможно, её только что удалили.\nОбновите список.",
		Keyboard: [][]telegram.InlineKeyboardButton{
			{btn("⬅️ Назад", backData)},
		},
	}
}
