package service

import (
	"bytes"
	"coursegen_backend/internal/model"
	"encoding/json"
	"fmt"
	"strings"
)

// 模板占位符，取值按字面替换，不会二次展开
const (
	phTopic             = "<<TOPIC>>"
	phContext           = "<<CONTEXT>>"
	phKnowledgeLevel    = "<<KNOWLEDGE_LEVEL>>"
	phLearningGoals     = "<<LEARNING_GOALS>>"
	phPreferredDuration = "<<PREFERRED_DURATION>>"
	phOutline           = "<<OUTLINE_JSON>>"
	phTranscript        = "<<TRANSCRIPT>>"
	phUserMessage       = "<<USER_MESSAGE>>"
)

const outlinePromptTemplate = `Design a course outline for the following learner.

Topic: <<TOPIC>>
Context: <<CONTEXT>>
Knowledge level: <<KNOWLEDGE_LEVEL>>
Learning goals: <<LEARNING_GOALS>>
Preferred duration (hours): <<PREFERRED_DURATION>>

Return a single JSON object with exactly these fields:
{
  "title": "course title",
  "description": "two or three sentences describing the course",
  "duration": "estimated total duration",
  "modules": [
    {"title": "module title", "description": "what the module covers", "rationale": "why it is placed here", "topics": ["topic", "topic"]}
  ],
  "sources": [{"title": "source title", "url": "optional link", "description": "why it is useful"}],
  "notes": "assumptions you made about the learner",
  "review_message": "a short question inviting the learner to review the outline"
}
Order the modules in the sequence they should be studied. Respond with JSON only.`

const editPromptTemplate = `You are revising a course outline together with a learner.

Original request:
Topic: <<TOPIC>>
Context: <<CONTEXT>>
Knowledge level: <<KNOWLEDGE_LEVEL>>
Learning goals: <<LEARNING_GOALS>>
Preferred duration (hours): <<PREFERRED_DURATION>>

Current outline:
<<OUTLINE_JSON>>

Conversation so far:
<<TRANSCRIPT>>

Learner's new request:
<<USER_MESSAGE>>

Apply the request to the current outline and return the complete updated outline as a single JSON object
with the same fields as the current outline (title, description, duration, modules, sources, notes,
review_message). Keep the existing module order unless the learner asks to reorder. Use review_message to
summarize what you changed. Respond with JSON only.`

const coursePromptTemplate = `Write the full course content for the approved outline below.

Topic: <<TOPIC>>
Context: <<CONTEXT>>
Knowledge level: <<KNOWLEDGE_LEVEL>>
Learning goals: <<LEARNING_GOALS>>
Preferred duration (hours): <<PREFERRED_DURATION>>

Approved outline:
<<OUTLINE_JSON>>

For every module, in the same order as the outline, write the lesson text in Markdown, two or three
practice exercises, and three assessment questions. Return a JSON object shaped like:
{
  "modules": [
    {"title": "module title", "content": "lesson text in Markdown", "exercises": ["..."], "assessment_questions": [{"question": "...", "answer": "..."}]}
  ]
}
The "modules" array must contain exactly one entry per outline module.`

const emptyTranscript = "(no previous messages)"

// SessionParams 生成会话的五个原始参数
type SessionParams struct {
	Topic             string
	Context           string
	KnowledgeLevel    string
	LearningGoals     string
	PreferredDuration string
}

func (p SessionParams) pairs() []string {
	return []string{
		phTopic, p.Topic,
		phContext, p.Context,
		phKnowledgeLevel, p.KnowledgeLevel,
		phLearningGoals, p.LearningGoals,
		phPreferredDuration, p.PreferredDuration,
	}
}

func sessionParams(s *model.GenerationSession) SessionParams {
	return SessionParams{
		Topic:             s.Topic,
		Context:           s.Context,
		KnowledgeLevel:    s.KnowledgeLevel,
		LearningGoals:     s.LearningGoals,
		PreferredDuration: s.PreferredDuration,
	}
}

func render(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}

// marshalOutline 不转义 HTML 字符，保持提示词中的原文
func marshalOutline(o model.Outline) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func RenderOutlinePrompt(p SessionParams) string {
	return render(outlinePromptTemplate, p.pairs()...)
}

func RenderEditPrompt(p SessionParams, outline model.Outline, transcript, userMessage string) (string, error) {
	outlineJSON, err := marshalOutline(outline)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(transcript) == "" {
		transcript = emptyTranscript
	}
	pairs := append(p.pairs(),
		phOutline, outlineJSON,
		phTranscript, transcript,
		phUserMessage, userMessage,
	)
	return render(editPromptTemplate, pairs...), nil
}

func RenderCoursePrompt(p SessionParams, outline model.Outline) (string, error) {
	outlineJSON, err := marshalOutline(outline)
	if err != nil {
		return "", err
	}
	pairs := append(p.pairs(), phOutline, outlineJSON)
	return render(coursePromptTemplate, pairs...), nil
}

// RenderTranscript 只保留最近 maxEntries 条，更早的内容用一行说明代替
func RenderTranscript(entries []model.ConversationEntry, maxEntries int) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	if maxEntries > 0 && len(entries) > maxEntries {
		fmt.Fprintf(&b, "[%d earlier messages omitted]\n", len(entries)-maxEntries)
		entries = entries[len(entries)-maxEntries:]
	}
	for _, e := range entries {
		speaker := "Learner"
		if e.Role == model.RoleAssistant {
			speaker = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, e.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
