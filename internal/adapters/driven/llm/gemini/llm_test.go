package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(context.Background(), Config{})
	assert.Error(t, err)
}

func TestNewLLMService_DefaultModel(t *testing.T) {
	svc, err := NewLLMService(context.Background(), Config{APIKey: "test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestToContents(t *testing.T) {
	system, contents := toContents([]driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "be precise"},
		{Role: driven.RoleUser, Content: "q1"},
		{Role: driven.RoleAssistant, Content: "a1"},
		{Role: driven.RoleUser, Content: "q2"},
	})

	require.NotNil(t, system)
	assert.Equal(t, "be precise", system.Parts[0].Text)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "q2", contents[2].Parts[0].Text)
}

func TestToContents_NoSystem(t *testing.T) {
	system, contents := toContents([]driven.ChatMessage{{Role: driven.RoleUser, Content: "q"}})
	assert.Nil(t, system)
	assert.Len(t, contents, 1)
}

func TestChat_NoUserMessages(t *testing.T) {
	svc, err := NewLLMService(context.Background(), Config{APIKey: "test"})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleSystem, Content: "s"}}, driven.ChatOptions{})
	assert.Error(t, err)
}
