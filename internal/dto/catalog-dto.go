package dto

// CreateWorkDTO — итог мастера создания работы, финальная проверка
// перед записью в каталог.
type CreateWorkDTO struct {
	Name         string  `validate:"required,min=1,max=200"`
	Code         string  `validate:"required,min=1,max=64"`
	Unit         string  `validate:"required,max=32"`
	PricePerUnit float64 `validate:"gte=0"`
	Group        string  `validate:"max=100"`
}

// CreateMaterialDTO — итог мастера добавления материала к работе.
type CreateMaterialDTO struct {
	Name         string  `validate:"required,min=1,max=200"`
	Unit         string  `validate:"required,max=32"`
	QtyPerUnit   float64 `validate:"gte=0"`
	PricePerUnit float64 `validate:"gte=0"`
}

// CreateRequestDTO — итог мастера подачи заявки.
type CreateRequestDTO struct {
	Description string `validate:"required,min=5,max=1000"`
	Object      string `validate:"required,min=1,max=200"`
	Urgency     string `validate:"required,oneof=LOW NORMAL HIGH"`
}
