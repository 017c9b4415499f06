package telegram

// Теги состояний диалога. Каждое состояние принимает ровно один вид
// входящего события: свободный текст или семейство callback-кнопок.
const (
	// Просмотр каталога (callback-состояния).
	stCatalogGroups   = "catalog_groups"
	stCatalogWorks    = "catalog_works"
	stCatalogWorkMenu = "catalog_work_menu"
	stCatalogMatMenu  = "catalog_mat_menu"

	// Мастер создания работы: имя → код → ед. изм. → цена → группа.
	// Запись в каталог происходит только на финальном шаге.
	stWorkCreateName  = "work_create_name"
	stWorkCreateCode  = "work_create_code"
	stWorkCreateUnit  = "work_create_unit"
	stWorkCreatePrice = "work_create_price"
	stWorkCreateGroup = "work_create_group"

	// Лист звезды редактирования: меню работы ↔ одно поле.
	stWorkEditField = "work_edit_field"

	// Мастер добавления материала к работе.
	stMatCreateName  = "mat_create_name"
	stMatCreateUnit  = "mat_create_unit"
	stMatCreateQty   = "mat_create_qty"
	stMatCreatePrice = "mat_create_price"

	stMatEditField = "mat_edit_field"

	// Группы.
	stGroupCreateName = "group_create_name"
	stGroupRenameName = "group_rename_name"

	// Подтверждение удаления: «нет» возвращает в предыдущее меню без
	// побочных эффектов, «да» выполняет мутацию ровно один раз.
	stConfirmDeleteWork  = "confirm_delete_work"
	stConfirmDeleteGroup = "confirm_delete_group"
	stConfirmDeleteMat   = "confirm_delete_mat"

	// Заявки.
	stRequestList    = "request_list"
	stRequestDetail  = "request_detail"
	stRequestDescr   = "request_descr"
	stRequestObject  = "request_object"
	stRequestUrgency = "request_urgency"
	stRequestAssign  = "request_assign"
)

// Ключи черновика в состоянии диалога.
const (
	draftGroup    = "group"     // текущая группа при просмотре работ
	draftWorkCode = "work_code" // стабильный ключ открытой работы
	draftMatIndex = "mat_index" // позиция материала в работе
	draftField    = "field"     // редактируемое поле (лист звезды)

	draftName  = "name"
	draftCode  = "code"
	draftUnit  = "unit"
	draftPrice = "price"
	draftQty   = "qty"

	draftDescription = "description"
	draftObject      = "object"
	draftRequestID   = "request_public_id"
)

// Ключевое слово отмены; проверяется до любой валидации поля.
const cancelWord = "отмена"
