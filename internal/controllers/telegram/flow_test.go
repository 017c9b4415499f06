package telegram

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"remontbot/internal/dto"
	"remontbot/internal/entities"
	"remontbot/internal/services"
	apperrors "remontbot/pkg/errors"
	"remontbot/pkg/telegram"
)

// ==================== ФЕЙКИ ====================

// fakeTg записывает всё, что бот отправил бы в Telegram.
type fakeTg struct {
	texts []string
}

func (f *fakeTg) SendMessage(_ context.Context, _ int64, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeTg) SendMessageEx(_ context.Context, _ int64, text string, _ ...telegram.MessageOption) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeTg) AnswerCallbackQuery(_ context.Context, _ string, _ string) error { return nil }

func (f *fakeTg) EditMessageText(_ context.Context, _ int64, _ int, text string, _ ...telegram.MessageOption) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeTg) EditOrSendMessage(_ context.Context, _ int64, _ int, text string, _ ...telegram.MessageOption) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeTg) SendDocument(_ context.Context, _ int64, filename string, _ []byte, _ string) error {
	f.texts = append(f.texts, "document:"+filename)
	return nil
}

func (f *fakeTg) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.texts)
	return f.texts[len(f.texts)-1]
}

type memCatalogRepo struct {
	doc   []byte
	saves int
}

func (r *memCatalogRepo) LoadCatalog(_ context.Context) (*entities.Catalog, error) {
	if r.doc == nil {
		return &entities.Catalog{}, nil
	}
	var catalog entities.Catalog
	if err := json.Unmarshal(r.doc, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (r *memCatalogRepo) SaveCatalog(_ context.Context, catalog *entities.Catalog) error {
	raw, err := json.Marshal(catalog)
	if err != nil {
		return err
	}
	r.doc = raw
	r.saves++
	return nil
}

type memCache struct{ values map[string]string }

func newMemCache() *memCache { return &memCache{values: make(map[string]string)} }

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.values[key] = value.(string)
	return nil
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	return c.values[key], nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

type fakeUserService struct {
	users map[int64]*entities.User
}

func (f *fakeUserService) FindByChatID(_ context.Context, chatID int64) (*entities.User, error) {
	if u, ok := f.users[chatID]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserService) ListByRole(_ context.Context, role string) ([]entities.User, error) {
	var out []entities.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserService) GenerateLinkToken(_ context.Context, userID uint64) (string, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return "tok-" + strconv.FormatUint(userID, 10), nil
		}
	}
	return "", apperrors.ErrNotFound
}

func (f *fakeUserService) LinkChatByToken(_ context.Context, _ string, _ int64) (*entities.User, error) {
	return nil, apperrors.ErrInvalidToken
}

type fakeRequestService struct {
	requests map[string]*entities.Request
}

func newFakeRequestService() *fakeRequestService {
	return &fakeRequestService{requests: make(map[string]*entities.Request)}
}

func (f *fakeRequestService) Create(_ context.Context, authorID uint64, payload dto.CreateRequestDTO) (*entities.Request, error) {
	req := &entities.Request{
		ID:          uint64(len(f.requests) + 1),
		PublicID:    "req-" + strconv.Itoa(len(f.requests)+1),
		Number:      "R-" + strconv.Itoa(len(f.requests)+1),
		Description: payload.Description,
		Object:      payload.Object,
		Urgency:     payload.Urgency,
		Status:      entities.RequestStatusNew,
		AuthorID:    authorID,
	}
	f.requests[req.PublicID] = req
	return req, nil
}

func (f *fakeRequestService) FindByPublicID(_ context.Context, publicID string) (*entities.Request, error) {
	if req, ok := f.requests[publicID]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeRequestService) ListMine(_ context.Context, _ *entities.User, _, _ uint64) ([]entities.Request, uint64, error) {
	var out []entities.Request
	for _, req := range f.requests {
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, uint64(len(out)), nil
}

func (f *fakeRequestService) Assign(_ context.Context, publicID string, executorID uint64) error {
	req, ok := f.requests[publicID]
	if !ok {
		return apperrors.ErrNotFound
	}
	req.ExecutorID = null.Uint64From(executorID)
	req.Status = entities.RequestStatusAssigned
	return nil
}

func (f *fakeRequestService) SetStatus(_ context.Context, publicID string, status string) error {
	req, ok := f.requests[publicID]
	if !ok {
		return apperrors.ErrNotFound
	}
	req.Status = status
	return nil
}

// ==================== ОБВЯЗКА ====================

const testChatID int64 = 777

type fixture struct {
	ctrl     *TelegramController
	tg       *fakeTg
	repo     *memCatalogRepo
	session  services.SessionServiceInterface
	users    *fakeUserService
	requests *fakeRequestService
}

func newFixture(t *testing.T, role string) *fixture {
	t.Helper()
	logger := zap.NewNop()

	repo := &memCatalogRepo{}
	cache := newMemCache()
	session := services.NewSessionService(cache, time.Minute, logger)
	catalog := services.NewCatalogService(repo, newMemCache(), logger)
	export := services.NewExportService(repo, logger)
	tg := &fakeTg{}

	users := &fakeUserService{users: map[int64]*entities.User{}}
	if role != "" {
		users.users[testChatID] = &entities.User{ID: 1, Fio: "Иван Петров", Role: role}
	}
	requests := newFakeRequestService()

	ctrl := NewTelegramController(
		users,
		session,
		catalog,
		requests,
		export,
		tg,
		8,
		logger,
	)
	return &fixture{ctrl: ctrl, tg: tg, repo: repo, session: session, users: users, requests: requests}
}

func (f *fixture) sendText(t *testing.T, text string) {
	t.Helper()
	err := f.ctrl.handleMessage(context.Background(), &TelegramMessage{
		Chat: TelegramChat{ID: testChatID},
		Text: text,
	})
	require.NoError(t, err)
}

func (f *fixture) press(t *testing.T, data string) {
	t.Helper()
	err := f.ctrl.handleCallbackQuery(context.Background(), &TelegramCallbackQuery{
		ID:      "cb1",
		Data:    data,
		Message: &TelegramMessage{MessageID: 10, Chat: TelegramChat{ID: testChatID}},
	})
	require.NoError(t, err)
}

func (f *fixture) state(t *testing.T) *dto.ChatState {
	t.Helper()
	state, ok := f.session.Get(context.Background(), testChatID)
	require.True(t, ok, "ожидалось активное состояние диалога")
	return state
}

func (f *fixture) catalogNow(t *testing.T) *entities.Catalog {
	t.Helper()
	catalog, err := f.repo.LoadCatalog(context.Background())
	require.NoError(t, err)
	return catalog
}

// ==================== ТЕСТЫ ====================

func TestCatalogCommand_ForbiddenForClient(t *testing.T) {
	f := newFixture(t, entities.RoleClient)

	f.sendText(t, "/catalog")

	assert.Contains(t, f.tg.last(t), "нет прав")
	// Отказ в доступе не создаёт сессию.
	_, ok := f.session.Get(context.Background(), testChatID)
	assert.False(t, ok)
}

func TestCatalogCommand_UnlinkedChat(t *testing.T) {
	f := newFixture(t, "")
	f.sendText(t, "/catalog")
	assert.Contains(t, f.tg.last(t), "не привязан")
}

func TestCatalogCommand_OpensGroupList(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)

	f.sendText(t, "/catalog")

	assert.Equal(t, stCatalogGroups, f.state(t).State)
	assert.Contains(t, f.tg.last(t), "Каталог пуст")
}

func TestWorkWizard_FullPath(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)

	f.sendText(t, "/catalog")
	f.press(t, "work_add")
	assert.Equal(t, stWorkCreateName, f.state(t).State)

	f.sendText(t, "Штукатурка стен")
	f.sendText(t, "plaster_wall")
	f.sendText(t, "м2")
	f.sendText(t, "500,50")
	assert.Equal(t, stWorkCreateGroup, f.state(t).State)

	// До финального шага в каталог ничего не записано.
	assert.Zero(t, f.repo.saves)

	f.press(t, "nogroup")

	work := f.catalogNow(t).FindWork("plaster_wall")
	require.NotNil(t, work)
	assert.Equal(t, "Штукатурка стен", work.Name)
	assert.Equal(t, "м2", work.Unit)
	assert.Equal(t, 500.50, work.PricePerUnit)
	assert.False(t, work.Group.Valid)

	// После создания открыта карточка работы.
	assert.Equal(t, stCatalogWorkMenu, f.state(t).State)
	assert.Contains(t, f.tg.last(t), "plaster_wall")
}

func TestWorkWizard_NewGroupByText(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)

	f.sendText(t, "/catalog")
	f.press(t, "work_add")
	f.sendText(t, "Стяжка пола")
	f.sendText(t, "floor_screed")
	f.sendText(t, "м2")
	f.sendText(t, "800")
	// Текст на шаге выбора — имя новой группы.
	f.sendText(t, "Полы")

	catalog := f.catalogNow(t)
	work := catalog.FindWork("floor_screed")
	require.NotNil(t, work)
	assert.Equal(t, "Полы", work.Group.String)
	assert.Contains(t, catalog.AllGroups(), "Полы")
}

func TestWorkWizard_CancelWritesNothing(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)

	f.sendText(t, "/catalog")
	f.press(t, "work_add")
	f.sendText(t, "Штукатурка")
	f.sendText(t, "plaster_wall")

	// Отмена посреди мастера: регистр не важен.
	f.sendText(t, "Отмена")

	assert.Contains(t, f.tg.last(t), "отменено")
	_, ok := f.session.Get(context.Background(), testChatID)
	assert.False(t, ok)
	assert.Zero(t, f.repo.saves)
	assert.Empty(t, f.catalogNow(t).Works)
}

func TestWorkWizard_InvalidPriceKeepsState(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)

	f.sendText(t, "/catalog")
	f.press(t, "work_add")
	f.sendText(t, "Штукатурка")
	f.sendText(t, "plaster_wall")
	f.sendText(t, "м2")

	f.sendText(t, "дорого")

	// Ошибка валидации: предупреждение, состояние и черновик целы.
	assert.Contains(t, f.tg.last(t), "⚠️")
	state := f.state(t)
	assert.Equal(t, stWorkCreatePrice, state.State)
	name, _ := state.Get(draftName)
	assert.Equal(t, "Штукатурка", name)
	assert.Zero(t, f.repo.saves)

	// Повторный ввод продолжает с того же места.
	f.sendText(t, "500.50")
	assert.Equal(t, stWorkCreateGroup, f.state(t).State)
}

func TestWorkWizard_DuplicateCodeRepeatsStep(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	seedWork(t, f, "plaster_wall")

	f.sendText(t, "/catalog")
	f.press(t, "work_add")
	f.sendText(t, "Копия")
	f.sendText(t, "plaster_wall")

	assert.Contains(t, f.tg.last(t), "уже занят")
	assert.Equal(t, stWorkCreateCode, f.state(t).State)
}

func TestGroupList_StaleIndex(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	seedGroup(t, f, "Стены")

	f.sendText(t, "/catalog")
	require.Equal(t, []string{"Стены"}, f.state(t).Snapshot)

	// Кнопка из старого меню, индекс за пределами снимка.
	f.press(t, "g:5")

	assert.Contains(t, f.tg.last(t), "устарела")
}

func TestGroupNavigation(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	seedGroup(t, f, "Стены")
	seedWork(t, f, "plaster_wall")

	f.sendText(t, "/catalog")
	// Группы отсортированы, псевдогруппа «Без группы» в конце.
	assert.Equal(t, []string{"Стены", ""}, f.state(t).Snapshot)

	f.press(t, "g:1")
	state := f.state(t)
	assert.Equal(t, stCatalogWorks, state.State)
	group, _ := state.Get(draftGroup)
	assert.Equal(t, "", group)
	assert.Equal(t, []string{"plaster_wall"}, state.Snapshot)

	f.press(t, "w:0")
	assert.Equal(t, stCatalogWorkMenu, f.state(t).State)
	assert.Contains(t, f.tg.last(t), "plaster_wall")

	f.press(t, "back:works")
	assert.Equal(t, stCatalogWorks, f.state(t).State)

	f.press(t, "back:groups")
	assert.Equal(t, stCatalogGroups, f.state(t).State)
}

func TestConfirmDeleteWork_No(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	seedWork(t, f, "plaster_wall")
	savesBefore := f.repo.saves

	openWorkMenu(t, f, "plaster_wall")
	f.press(t, "work_del")
	assert.Equal(t, stConfirmDeleteWork, f.state(t).State)

	f.press(t, "confirm:no")

	// Отказ возвращает в карточку без побочных эффектов.
	assert.Equal(t, stCatalogWorkMenu, f.state(t).State)
	assert.Equal(t, savesBefore, f.repo.saves)
	assert.NotNil(t, f.catalogNow(t).FindWork("plaster_wall"))
}

func TestConfirmDeleteWork_DoubleYes(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	seedWork(t, f, "plaster_wall")

	openWorkMenu(t, f, "plaster_wall")
	f.press(t, "work_del")
	f.press(t, "confirm:yes")

	assert.Nil(t, f.catalogNow(t).FindWork("plaster_wall"))
	// Первое «да» вернуло пользователя в список работ группы.
	assert.Equal(t, stCatalogWorks, f.state(t).State)

	// Повторное «да» по тому же, уже отработавшему меню: мутация не
	// выполняется второй раз, пользователь получает уведомление.
	savesBefore := f.repo.saves
	f.press(t, "confirm:yes")

	assert.Equal(t, savesBefore, f.repo.saves)
	assert.Contains(t, f.tg.last(t), "устарела")
}

func TestEditWorkField(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	seedWork(t, f, "plaster_wall")

	openWorkMenu(t, f, "plaster_wall")
	f.press(t, "wf:price")
	assert.Equal(t, stWorkEditField, f.state(t).State)

	f.sendText(t, "999,99")

	assert.Equal(t, 999.99, f.catalogNow(t).FindWork("plaster_wall").PricePerUnit)
	// Возврат в карточку работы.
	assert.Equal(t, stCatalogWorkMenu, f.state(t).State)
}

func TestEditWorkCode_ReopensByNewCode(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	seedWork(t, f, "plaster_wall")

	openWorkMenu(t, f, "plaster_wall")
	f.press(t, "wf:code")
	f.sendText(t, "plaster_v2")

	catalog := f.catalogNow(t)
	assert.Nil(t, catalog.FindWork("plaster_wall"))
	require.NotNil(t, catalog.FindWork("plaster_v2"))

	code, _ := f.state(t).Get(draftWorkCode)
	assert.Equal(t, "plaster_v2", code)
}

func TestMaterialWizard(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	seedWork(t, f, "plaster_wall")

	openWorkMenu(t, f, "plaster_wall")
	f.press(t, "mat_add")
	f.sendText(t, "Цемент")
	f.sendText(t, "кг")
	f.sendText(t, "2,5")
	f.sendText(t, "15")

	work := f.catalogNow(t).FindWork("plaster_wall")
	require.Len(t, work.Materials, 1)
	assert.Equal(t, "Цемент", work.Materials[0].Name)
	assert.Equal(t, 2.5, work.Materials[0].QtyPerUnit)
	assert.Equal(t, stCatalogWorkMenu, f.state(t).State)
}

func TestTextWithoutSession(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	f.sendText(t, "привет")
	assert.Contains(t, f.tg.last(t), "/help")
}

func TestCallbackWithoutSession(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	f.press(t, "g:0")
	assert.Contains(t, f.tg.last(t), "устарела")
}

func TestExportCommand(t *testing.T) {
	f := newFixture(t, entities.RoleManager)
	seedWork(t, f, "plaster_wall")

	f.sendText(t, "/export")

	assert.Equal(t, "document:catalog.xlsx", f.tg.last(t))
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	f.sendText(t, "/frobnicate")
	assert.Contains(t, f.tg.last(t), "Неизвестная команда")
}

func TestAssignRequest_DispatcherFullPath(t *testing.T) {
	f := newFixture(t, entities.RoleDispatcher)
	f.users.users[888] = &entities.User{ID: 5, Fio: "Сергей Мастеров", Role: entities.RoleMaster}
	req, err := f.requests.Create(context.Background(), 1,
		dto.CreateRequestDTO{Description: "Течёт кран", Object: "кв. 12", Urgency: entities.UrgencyNormal})
	require.NoError(t, err)

	f.sendText(t, "/requests")
	f.press(t, "r:0")
	assert.Equal(t, stRequestDetail, f.state(t).State)
	assert.Contains(t, f.tg.last(t), "❗ новая")

	f.press(t, "req_assign")
	state := f.state(t)
	assert.Equal(t, stRequestAssign, state.State)
	// Снимок хранит id мастеров, а не ФИО.
	assert.Equal(t, []string{"5"}, state.Snapshot)
	assert.Contains(t, f.tg.last(t), "Кому назначить заявку "+req.Number)

	f.press(t, "e:0")

	stored := f.requests.requests[req.PublicID]
	assert.Equal(t, entities.RequestStatusAssigned, stored.Status)
	assert.Equal(t, uint64(5), stored.ExecutorID.Uint64)
	// После назначения показана обновлённая карточка.
	assert.Equal(t, stRequestDetail, f.state(t).State)
	assert.Contains(t, f.tg.last(t), "в работе")
}

func TestAssignRequest_ForbiddenForMaster(t *testing.T) {
	f := newFixture(t, entities.RoleMaster)
	_, err := f.requests.Create(context.Background(), 1,
		dto.CreateRequestDTO{Description: "Скрипит дверь", Object: "подъезд 2", Urgency: entities.UrgencyLow})
	require.NoError(t, err)

	f.sendText(t, "/requests")
	f.press(t, "r:0")
	f.press(t, "req_assign")

	assert.Contains(t, f.tg.last(t), "нет прав")
	for _, req := range f.requests.requests {
		assert.Equal(t, entities.RequestStatusNew, req.Status)
	}
}

func TestAssignRequest_NoMasters(t *testing.T) {
	f := newFixture(t, entities.RoleDispatcher)
	_, err := f.requests.Create(context.Background(), 1,
		dto.CreateRequestDTO{Description: "Не горит свет", Object: "этаж 3", Urgency: entities.UrgencyHigh})
	require.NoError(t, err)

	f.sendText(t, "/requests")
	f.press(t, "r:0")
	f.press(t, "req_assign")

	assert.Contains(t, f.tg.last(t), "нет ни одного мастера")
	// Сессия остаётся на карточке: выбирать некого.
	assert.Equal(t, stRequestDetail, f.state(t).State)
}

func TestAssignRequest_StaleExecutorIndex(t *testing.T) {
	f := newFixture(t, entities.RoleDispatcher)
	f.users.users[888] = &entities.User{ID: 5, Fio: "Сергей Мастеров", Role: entities.RoleMaster}
	req, err := f.requests.Create(context.Background(), 1,
		dto.CreateRequestDTO{Description: "Течёт кран", Object: "кв. 12", Urgency: entities.UrgencyNormal})
	require.NoError(t, err)

	f.sendText(t, "/requests")
	f.press(t, "r:0")
	f.press(t, "req_assign")
	f.press(t, "e:7")

	assert.Contains(t, f.tg.last(t), "устарела")
	assert.Equal(t, entities.RequestStatusNew, f.requests.requests[req.PublicID].Status)
}

func TestLinkCommand_AdminGetsToken(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	f.users.users[999] = &entities.User{ID: 42, Fio: "Пётр Клиентов", Role: entities.RoleClient}

	f.sendText(t, "/link 42")

	assert.Contains(t, f.tg.last(t), "Токен привязки для пользователя 42")
	assert.Contains(t, f.tg.last(t), "/start tok-42")
}

func TestLinkCommand_UnknownUser(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)
	f.sendText(t, "/link 99")
	assert.Contains(t, f.tg.last(t), "пользователь с id 99 не найден")
}

func TestLinkCommand_BadArgument(t *testing.T) {
	f := newFixture(t, entities.RoleAdmin)

	f.sendText(t, "/link")
	assert.Contains(t, f.tg.last(t), "укажите id пользователя")

	f.sendText(t, "/link сорок")
	assert.Contains(t, f.tg.last(t), "не похоже на id")
}

func TestLinkCommand_ForbiddenForDispatcher(t *testing.T) {
	f := newFixture(t, entities.RoleDispatcher)
	f.sendText(t, "/link 42")
	assert.Contains(t, f.tg.last(t), "нет прав")
}

func TestMainMenuKeyboard(t *testing.T) {
	rows := mainMenuKeyboard()
	require.Len(t, rows, 2)
	assert.Equal(t, "/new", rows[0][0].Text)
	assert.Equal(t, "/requests", rows[0][1].Text)
	assert.Equal(t, "/help", rows[1][0].Text)
}

// ==================== ПОМОЩНИКИ ====================

func seedGroup(t *testing.T, f *fixture, name string) {
	t.Helper()
	catalog, err := f.repo.LoadCatalog(context.Background())
	require.NoError(t, err)
	catalog.EnsureGroup(name)
	require.NoError(t, f.repo.SaveCatalog(context.Background(), catalog))
}

func seedWork(t *testing.T, f *fixture, code string) {
	t.Helper()
	catalog, err := f.repo.LoadCatalog(context.Background())
	require.NoError(t, err)
	catalog.Works = append(catalog.Works, entities.Work{
		Name: "Штукатурка стен", Code: code, Unit: "м2", PricePerUnit: 500.50,
	})
	require.NoError(t, f.repo.SaveCatalog(context.Background(), catalog))
}

// openWorkMenu приводит сессию в карточку работы тем же путём, каким
// туда попадает пользователь.
func openWorkMenu(t *testing.T, f *fixture, code string) {
	t.Helper()
	f.sendText(t, "/catalog")
	state := f.state(t)
	// Работы без группы лежат в псевдогруппе в конце снимка.
	idx := -1
	for i, key := range state.Snapshot {
		if key == "" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0, "в каталоге нет работ без группы")
	f.press(t, "g:"+strconv.Itoa(idx))

	state = f.state(t)
	widx := -1
	for i, key := range state.Snapshot {
		if key == code {
			widx = i
		}
	}
	require.GreaterOrEqual(t, widx, 0, "работа не найдена в снимке")
	f.press(t, "w:"+strconv.Itoa(widx))
	require.Equal(t, stCatalogWorkMenu, f.state(t).State)
}
