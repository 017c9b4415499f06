package events

const (
	RequestCreatedEventName  = "request.created"
	RequestAssignedEventName = "request.assigned"
)

// RequestCreatedEvent публикуется после записи новой заявки.
type RequestCreatedEvent struct {
	RequestID uint64
	Number    string
	AuthorID  uint64
}

func (e RequestCreatedEvent) Name() string { return RequestCreatedEventName }

// RequestAssignedEvent публикуется после назначения исполнителя.
// Уведомление исполнителя — best-effort: слушатель логирует сбой
// доставки и не влияет на саму операцию назначения.
type RequestAssignedEvent struct {
	RequestID  uint64
	Number     string
	ExecutorID uint64
}

func (e RequestAssignedEvent) Name() string { return RequestAssignedEventName }
