package service

import (
	"context"
	"coursegen_backend/internal/model"
	"coursegen_backend/internal/util"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutlineCreatesSession(t *testing.T) {
	f := newFixture(t)
	f.gw.reply(StageOutline, "Sure! Here it is:\n"+outlineJSON("Photosynthesis Essentials", "Light Reactions", "Calvin Cycle")+"\nEnjoy.")

	session, err := f.outline.GenerateOutline(context.Background(), photosynthesisInput("user-1"))
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, model.SessionOutlineReview, session.Status)
	assert.Equal(t, 1, session.Revision)
	outline := session.Outline()
	assert.GreaterOrEqual(t, len(outline.Modules), 1)
	assert.Equal(t, "Photosynthesis Essentials", outline.Title)

	stored, err := f.outline.GetSession(context.Background(), "user-1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionOutlineReview, stored.Status)
	assert.Equal(t, outline, stored.Outline())
	assert.Equal(t, "Photosynthesis", stored.Topic)
	assert.Equal(t, "3-5", stored.PreferredDuration)

	prompt := f.gw.lastPrompt(StageOutline)
	assert.Contains(t, prompt, "Topic: Photosynthesis")
	assert.Contains(t, prompt, "Context: for a biology exam")
	assert.Contains(t, prompt, "Preferred duration (hours): 3-5")
}

func TestGenerateOutlineValidation(t *testing.T) {
	f := newFixture(t)
	f.gw.reply(StageOutline, outlineJSON("x", "a"))

	tests := []struct {
		name   string
		mutate func(*GenerateOutlineInput)
		field  string
	}{
		{"empty topic", func(in *GenerateOutlineInput) { in.Topic = "" }, "topic"},
		{"whitespace topic", func(in *GenerateOutlineInput) { in.Topic = "   \t" }, "topic"},
		{"whitespace context", func(in *GenerateOutlineInput) { in.Context = "  " }, "context"},
		{"missing knowledge level", func(in *GenerateOutlineInput) { in.KnowledgeLevel = "" }, "knowledge_level"},
		{"missing learning goals", func(in *GenerateOutlineInput) { in.LearningGoals = "" }, "learning_goals"},
		{"missing duration", func(in *GenerateOutlineInput) { in.PreferredDuration = "" }, "preferred_duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := photosynthesisInput("user-1")
			tt.mutate(&in)
			_, err := f.outline.GenerateOutline(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, util.ErrMissingRequiredField)
			assert.Contains(t, util.PublicMessage(err), tt.field)
		})
	}
	assert.Equal(t, 0, f.gw.calls(StageOutline), "validation must happen before any model call")
}

func TestGenerateOutlineMalformedCreatesNothing(t *testing.T) {
	f := newFixture(t)
	f.gw.reply(StageOutline, "I'm sorry, I can't produce JSON right now.")

	_, err := f.outline.GenerateOutline(context.Background(), photosynthesisInput("user-1"))
	require.Error(t, err)
	assert.Equal(t, util.KindMalformedModelOutput, util.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&model.GenerationSession{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerateOutlineWrongShapeIsMalformed(t *testing.T) {
	f := newFixture(t)
	f.gw.reply(StageOutline, `{"title":"Photosynthesis","description":"x","modules":"one big module"}`)

	_, err := f.outline.GenerateOutline(context.Background(), photosynthesisInput("user-1"))
	assert.Equal(t, util.KindMalformedModelOutput, util.KindOf(err))
}

func TestGenerateOutlineProviderErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.gw.fail(StageOutline, util.ProviderUnavailable(errors.New("status 503")))

	_, err := f.outline.GenerateOutline(context.Background(), photosynthesisInput("user-1"))
	assert.Equal(t, util.KindProviderUnavailable, util.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&model.GenerationSession{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetSessionScopedByUser(t *testing.T) {
	f := newFixture(t)
	f.gw.reply(StageOutline, outlineJSON("Photosynthesis", "Light"))
	session, err := f.outline.GenerateOutline(context.Background(), photosynthesisInput("owner"))
	require.NoError(t, err)

	_, err = f.outline.GetSession(context.Background(), "intruder", session.ID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	_, err = f.outline.GetConversation(context.Background(), "intruder", session.ID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	entries, err := f.outline.GetConversation(context.Background(), "owner", session.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
