package dto

import (
	"encoding/json"
	"fmt"

	apperrors "remontbot/pkg/errors"
)

// ChatState — состояние диалога одного чата. Хранится в Redis как
// JSON с TTL; создаётся на первом шаге сценария, очищается при
// завершении или отмене.
type ChatState struct {
	// State — тег текущего шага сценария.
	State string `json:"state"`
	// Draft — накапливаемые поля создаваемой/редактируемой сущности.
	Draft map[string]string `json:"draft"`
	// Snapshot — упорядоченный снимок стабильных ключей (имена групп,
	// коды работ), снятый непосредственно перед отрисовкой меню с
	// индексными кнопками. Нажатие кнопки разрешается только по этому
	// снимку, никогда повторным вычислением выборки.
	Snapshot []string `json:"snapshot,omitempty"`
	// Page — текущая страница последнего отрисованного списка.
	Page int `json:"page"`
	// MessageID — сообщение меню, которое бот редактирует на месте.
	MessageID int `json:"message_id"`
}

func NewChatState(state string) *ChatState {
	return &ChatState{
		State: state,
		Draft: make(map[string]string),
	}
}

// SetSnapshot фиксирует снимок ключей перед отрисовкой меню.
func (s *ChatState) SetSnapshot(keys []string) {
	s.Snapshot = append([]string(nil), keys...)
}

// ResolveIndex переводит индекс из callback-кнопки в стабильный ключ
// по сохранённому снимку. Выход за границы — ожидаемая, восстановимая
// ситуация (пользователь нажал устаревшую кнопку).
func (s *ChatState) ResolveIndex(idx int) (string, error) {
	if idx < 0 || idx >= len(s.Snapshot) {
		return "", apperrors.ErrIndexOutOfRange
	}
	return s.Snapshot[idx], nil
}

// Get возвращает поле черновика.
func (s *ChatState) Get(key string) (string, bool) {
	v, ok := s.Draft[key]
	return v, ok
}

// Set записывает поле черновика.
func (s *ChatState) Set(key, value string) {
	if s.Draft == nil {
		s.Draft = make(map[string]string)
	}
	s.Draft[key] = value
}

func (s *ChatState) ToJSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat state: %w", err)
	}
	return string(data), nil
}

func ChatStateFromJSON(data string) (*ChatState, error) {
	var state ChatState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat state: %w", err)
	}
	if state.Draft == nil {
		state.Draft = make(map[string]string)
	}
	return &state, nil
}
