package errors

import "fmt"

var (
	// Каталог и навигация
	ErrNotFound        = fmt.Errorf("запись не найдена")
	ErrIndexOutOfRange = fmt.Errorf("индекс вне диапазона снимка")

	// Доступ
	ErrForbidden    = fmt.Errorf("доступ запрещён")
	ErrUnauthorized = fmt.Errorf("аккаунт не привязан")

	// Хранилище
	ErrStorageUnavailable = fmt.Errorf("хранилище недоступно")

	// Токены привязки
	ErrInvalidToken = fmt.Errorf("недопустимый токен")
	ErrTokenExpired = fmt.Errorf("срок действия токена истёк")
)

// InvalidInputError — ошибка валидации пользовательского ввода.
// Сообщение показывается пользователю как есть, состояние диалога не меняется.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// IsInvalidInput сообщает, является ли err ошибкой валидации ввода.
func IsInvalidInput(err error) bool {
	_, ok := err.(*InvalidInputError)
	return ok
}
