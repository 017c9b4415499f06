package services

import (
	"context"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"remontbot/internal/dto"
	"remontbot/internal/entities"
	"remontbot/internal/repositories"
	apperrors "remontbot/pkg/errors"
	"remontbot/pkg/utils"
)

// Ключ кешированной сериализации каталога; сбрасывается после каждой
// успешной записи, чтобы следующее чтение увидело изменение.
const catalogCacheKey = "catalog:document"

// Поля работы, доступные для пошагового редактирования.
const (
	WorkFieldName  = "name"
	WorkFieldCode  = "code"
	WorkFieldUnit  = "unit"
	WorkFieldPrice = "price"
	WorkFieldGroup = "group"
)

// Поля материала.
const (
	MaterialFieldName  = "name"
	MaterialFieldUnit  = "unit"
	MaterialFieldQty   = "qty"
	MaterialFieldPrice = "price"
)

type CatalogServiceInterface interface {
	GetCatalog(ctx context.Context) (*entities.Catalog, error)

	CreateWork(ctx context.Context, payload dto.CreateWorkDTO) error
	UpdateWorkField(ctx context.Context, code, field, rawValue string) error
	DeleteWork(ctx context.Context, code string) error

	AddMaterial(ctx context.Context, workCode string, payload dto.CreateMaterialDTO) error
	UpdateMaterialField(ctx context.Context, workCode string, index int, field, rawValue string) error
	DeleteMaterial(ctx context.Context, workCode string, index int) error

	CreateGroup(ctx context.Context, name string) error
	RenameGroup(ctx context.Context, oldName, newName string) error
	DeleteGroupCascade(ctx context.Context, name string) (int, error)
}

// CatalogService — шлюз мутаций каталога: загрузить целиком, применить
// одно изменение, записать целиком, сбросить кеш. Слияния конкурентных
// правок нет — поздняя запись перекрывает раннюю целиком.
type CatalogService struct {
	repo      repositories.CatalogRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewCatalogService(
	repo repositories.CatalogRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		repo:      repo,
		cacheRepo: cacheRepo,
		validate:  validator.New(),
		logger:    logger,
	}
}

func (s *CatalogService) GetCatalog(ctx context.Context) (*entities.Catalog, error) {
	return s.repo.LoadCatalog(ctx)
}

func (s *CatalogService) save(ctx context.Context, catalog *entities.Catalog) error {
	if err := s.repo.SaveCatalog(ctx, catalog); err != nil {
		return err
	}
	if err := s.cacheRepo.Del(ctx, catalogCacheKey); err != nil {
		// Кеш со временем истечёт сам, операция уже успешна.
		s.logger.Warn("Не удалось сбросить кеш каталога", zap.Error(err))
	}
	return nil
}

func (s *CatalogService) CreateWork(ctx context.Context, payload dto.CreateWorkDTO) error {
	if err := s.validate.Struct(payload); err != nil {
		return apperrors.NewInvalidInputError("данные работы не прошли проверку: %v", err)
	}

	catalog, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	if catalog.HasCode(payload.Code) {
		return apperrors.NewInvalidInputError("код «%s» уже занят другой работой", payload.Code)
	}

	work := entities.Work{
		Name:         payload.Name,
		Code:         payload.Code,
		Unit:         payload.Unit,
		PricePerUnit: payload.PricePerUnit,
		Materials:    []entities.Material{},
	}
	if payload.Group != "" {
		work.Group = null.StringFrom(payload.Group)
		catalog.EnsureGroup(payload.Group)
	}
	catalog.Works = append(catalog.Works, work)

	return s.save(ctx, catalog)
}

// UpdateWorkField применяет одно изменение поля работы. Смена кода
// проверяется на уникальность, смена группы автоматически регистрирует
// группу-назначение в реестре.
func (s *CatalogService) UpdateWorkField(ctx context.Context, code, field, rawValue string) error {
	catalog, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	work := catalog.FindWork(code)
	if work == nil {
		return apperrors.ErrNotFound
	}

	value := strings.TrimSpace(rawValue)

	switch field {
	case WorkFieldName:
		if value == "" {
			return apperrors.NewInvalidInputError("название не может быть пустым")
		}
		work.Name = value
	case WorkFieldCode:
		if value == "" {
			return apperrors.NewInvalidInputError("код не может быть пустым")
		}
		if value != work.Code && catalog.HasCode(value) {
			return apperrors.NewInvalidInputError("код «%s» уже занят другой работой", value)
		}
		work.Code = value
	case WorkFieldUnit:
		if value == "" {
			return apperrors.NewInvalidInputError("единица измерения не может быть пустой")
		}
		work.Unit = value
	case WorkFieldPrice:
		price, err := utils.ParseDecimal(value)
		if err != nil {
			return err
		}
		work.PricePerUnit = price
	case WorkFieldGroup:
		if value == "" {
			work.Group = null.String{}
		} else {
			work.Group = null.StringFrom(value)
			catalog.EnsureGroup(value)
		}
	default:
		return apperrors.NewInvalidInputError("неизвестное поле «%s»", field)
	}

	return s.save(ctx, catalog)
}

func (s *CatalogService) DeleteWork(ctx context.Context, code string) error {
	catalog, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	if !catalog.RemoveWork(code) {
		// Повторное подтверждение удаления по уже удалённой работе.
		return apperrors.ErrNotFound
	}
	return s.save(ctx, catalog)
}

func (s *CatalogService) AddMaterial(ctx context.Context, workCode string, payload dto.CreateMaterialDTO) error {
	if err := s.validate.Struct(payload); err != nil {
		return apperrors.NewInvalidInputError("данные материала не прошли проверку: %v", err)
	}

	catalog, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	work := catalog.FindWork(workCode)
	if work == nil {
		return apperrors.ErrNotFound
	}

	work.Materials = append(work.Materials, entities.Material{
		Name:         payload.Name,
		Unit:         payload.Unit,
		QtyPerUnit:   payload.QtyPerUnit,
		PricePerUnit: payload.PricePerUnit,
	})
	return s.save(ctx, catalog)
}

// UpdateMaterialField меняет поле материала по позиции в списке
// родителя. Позиция действительна только в пределах одного цикла
// отрисовки; устаревший индекс даёт ErrNotFound.
func (s *CatalogService) UpdateMaterialField(ctx context.Context, workCode string, index int, field, rawValue string) error {
	catalog, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	work := catalog.FindWork(workCode)
	if work == nil {
		return apperrors.ErrNotFound
	}
	if index < 0 || index >= len(work.Materials) {
		return apperrors.ErrNotFound
	}
	material := &work.Materials[index]

	value := strings.TrimSpace(rawValue)

	switch field {
	case MaterialFieldName:
		if value == "" {
			return apperrors.NewInvalidInputError("название не может быть пустым")
		}
		material.Name = value
	case MaterialFieldUnit:
		if value == "" {
			return apperrors.NewInvalidInputError("единица измерения не может быть пустой")
		}
		material.Unit = value
	case MaterialFieldQty:
		qty, err := utils.ParseDecimal(value)
		if err != nil {
			return err
		}
		material.QtyPerUnit = qty
	case MaterialFieldPrice:
		price, err := utils.ParseDecimal(value)
		if err != nil {
			return err
		}
		material.PricePerUnit = price
	default:
		return apperrors.NewInvalidInputError("неизвестное поле «%s»", field)
	}

	return s.save(ctx, catalog)
}

func (s *CatalogService) DeleteMaterial(ctx context.Context, workCode string, index int) error {
	catalog, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	work := catalog.FindWork(workCode)
	if work == nil {
		return apperrors.ErrNotFound
	}
	if index < 0 || index >= len(work.Materials) {
		return apperrors.ErrNotFound
	}
	work.Materials = append(work.Materials[:index], work.Materials[index+1:]...)
	return s.save(ctx, catalog)
}

func (s *CatalogService) CreateGroup(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewInvalidInputError("название группы не может быть пустым")
	}

	catalog, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	for _, g := range catalog.AllGroups() {
		if g == name {
			return apperrors.NewInvalidInputError("группа «%s» уже существует", name)
		}
	}
	catalog.EnsureGroup(name)
	return s.save(ctx, catalog)
}

// RenameGroup переименовывает группу в реестре и во всех работах,
// ссылающихся на неё, одной записью каталога.
func (s *CatalogService) RenameGroup(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return apperrors.NewInvalidInputError("название группы не может быть пустым")
	}

	catalog, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return err
	}

	existed := false
	for _, g := range catalog.AllGroups() {
		if g == oldName {
			existed = true
		}
		if g == newName {
			return apperrors.NewInvalidInputError("группа «%s» уже существует", newName)
		}
	}
	if !existed {
		return apperrors.ErrNotFound
	}

	for i := range catalog.Groups {
		if catalog.Groups[i] == oldName {
			catalog.Groups[i] = newName
		}
	}
	for i := range catalog.Works {
		if catalog.Works[i].Group.Valid && catalog.Works[i].Group.String == oldName {
			catalog.Works[i].Group = null.StringFrom(newName)
		}
	}
	catalog.EnsureGroup(newName)

	return s.save(ctx, catalog)
}

// DeleteGroupCascade удаляет группу вместе со всеми её работами одной
// атомарной записью. Возвращает число удалённых работ.
func (s *CatalogService) DeleteGroupCascade(ctx context.Context, name string) (int, error) {
	catalog, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return 0, err
	}
	removed, existed := catalog.DeleteGroup(name)
	if !existed {
		return 0, apperrors.ErrNotFound
	}
	if err := s.save(ctx, catalog); err != nil {
		return 0, err
	}
	return removed, nil
}
