package service

import (
	"coursegen_backend/internal/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOutlinePromptSubstitutesLiterally(t *testing.T) {
	prompt := RenderOutlinePrompt(SessionParams{
		Topic:             "Go <<CONTEXT>> generics",
		Context:           "exam {prep} $HOME",
		KnowledgeLevel:    "beginner",
		LearningGoals:     "pass",
		PreferredDuration: "3-5",
	})

	assert.Contains(t, prompt, "Topic: Go <<CONTEXT>> generics")
	assert.Contains(t, prompt, "Context: exam {prep} $HOME")
	assert.NotContains(t, prompt, "<<TOPIC>>")
	assert.NotContains(t, prompt, "<<KNOWLEDGE_LEVEL>>")
}

func TestRenderEditPrompt(t *testing.T) {
	outline := model.Outline{Title: "Stored Title", Modules: []model.ModuleDraft{{Title: "M1"}}}
	outline.Normalize()

	prompt, err := RenderEditPrompt(SessionParams{Topic: "Biology"}, outline, "", "make it shorter")
	require.NoError(t, err)

	assert.Contains(t, prompt, `"title": "Stored Title"`)
	assert.Contains(t, prompt, emptyTranscript)
	assert.Contains(t, prompt, "make it shorter")
	assert.NotContains(t, prompt, "<<")
}

func TestRenderTranscript(t *testing.T) {
	entries := []model.ConversationEntry{
		{Role: model.RoleUser, Content: "one"},
		{Role: model.RoleAssistant, Content: "two"},
		{Role: model.RoleUser, Content: "three"},
	}

	full := RenderTranscript(entries, 10)
	assert.Equal(t, "Learner: one\nAssistant: two\nLearner: three", full)

	bounded := RenderTranscript(entries, 2)
	lines := strings.Split(bounded, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[1 earlier messages omitted]", lines[0])
	assert.Equal(t, "Assistant: two", lines[1])

	assert.Equal(t, full, RenderTranscript(entries, 0))
	assert.Empty(t, RenderTranscript(nil, 2))
}
