package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Статусы заявки на ремонт.
const (
	RequestStatusNew      = "NEW"
	RequestStatusAssigned = "ASSIGNED"
	RequestStatusDone     = "DONE"
	RequestStatusClosed   = "CLOSED"
)

// Срочность заявки.
const (
	UrgencyLow    = "LOW"
	UrgencyNormal = "NORMAL"
	UrgencyHigh   = "HIGH"
)

// Request — заявка на ремонт/обслуживание. PublicID — внешний
// идентификатор для ссылок, Number — короткий человекочитаемый номер.
type Request struct {
	ID          uint64
	PublicID    string
	Number      string
	Description string
	Object      string
	Urgency     string
	Status      string
	AuthorID    uint64
	ExecutorID  null.Uint64
	DueAt       null.Time
	CreatedAt   time.Time
	UpdatedAt   null.Time
}
