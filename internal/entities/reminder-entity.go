package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Reminder — отложенное напоминание по заявке. Фоновый опросчик
// рассылает просроченные и помечает их отправленными.
type Reminder struct {
	ID        uint64
	RequestID uint64
	RemindAt  time.Time
	SentAt    null.Time
	CreatedAt time.Time
}
