package dto

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "remontbot/pkg/errors"
)

func TestChatState_ResolveIndex(t *testing.T) {
	state := NewChatState("catalog_groups")
	keys := []string{"Полы", "Стены", "Электрика"}
	state.SetSnapshot(keys)

	for i, want := range keys {
		got, err := state.ResolveIndex(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, idx := range []int{-1, len(keys), 100} {
		_, err := state.ResolveIndex(idx)
		assert.ErrorIs(t, err, apperrors.ErrIndexOutOfRange, fmt.Sprintf("idx=%d", idx))
	}
}

func TestChatState_ResolveIndex_EmptySnapshot(t *testing.T) {
	state := NewChatState("catalog_groups")
	_, err := state.ResolveIndex(0)
	assert.ErrorIs(t, err, apperrors.ErrIndexOutOfRange)
}

func TestChatState_SetSnapshot_Copies(t *testing.T) {
	keys := []string{"a", "b"}
	state := NewChatState("catalog_works")
	state.SetSnapshot(keys)

	keys[0] = "mutated"

	got, err := state.ResolveIndex(0)
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestChatState_JSONRoundTrip(t *testing.T) {
	state := NewChatState("work_create_price")
	state.Set("name", "Штукатурка")
	state.Set("code", "plaster_wall")
	state.SetSnapshot([]string{"g1", "g2"})
	state.Page = 3
	state.MessageID = 42

	raw, err := state.ToJSON()
	require.NoError(t, err)

	restored, err := ChatStateFromJSON(raw)
	require.NoError(t, err)

	assert.Equal(t, state.State, restored.State)
	assert.Equal(t, state.Draft, restored.Draft)
	assert.Equal(t, state.Snapshot, restored.Snapshot)
	assert.Equal(t, state.Page, restored.Page)
	assert.Equal(t, state.MessageID, restored.MessageID)

	name, ok := restored.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Штукатурка", name)
}

func TestChatStateFromJSON_Invalid(t *testing.T) {
	_, err := ChatStateFromJSON("{broken")
	assert.Error(t, err)
}

func TestChatStateFromJSON_NilDraft(t *testing.T) {
	restored, err := ChatStateFromJSON(`{"state":"x"}`)
	require.NoError(t, err)
	require.NotNil(t, restored.Draft)
	// Set по восстановленному состоянию не должен паниковать.
	restored.Set("k", "v")
	v, ok := restored.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}
