package service

import (
	"context"
	"coursegen_backend/internal/config"
	"coursegen_backend/internal/repository"
	"coursegen_backend/internal/testutil"
	"coursegen_backend/internal/util"
	"coursegen_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeGateway 按阶段返回预设回复，并记录每次调用的提示词
type fakeGateway struct {
	mu      sync.Mutex
	replies map[string][]string
	errs    map[string]error
	prompts map[string][]string
	before  func(stage string)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		replies: map[string][]string{},
		errs:    map[string]error{},
		prompts: map[string][]string{},
	}
}

// reply 追加一条回复；队列只剩一条时重复使用
func (f *fakeGateway) reply(stage string, texts ...string) *fakeGateway {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[stage] = append(f.replies[stage], texts...)
	return f
}

func (f *fakeGateway) fail(stage string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[stage] = err
}

func (f *fakeGateway) calls(stage string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts[stage])
}

func (f *fakeGateway) lastPrompt(stage string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.prompts[stage]
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (f *fakeGateway) GenerateStructured(ctx context.Context, stage, prompt string, expectJSON bool) (*GenerationOutput, error) {
	f.mu.Lock()
	f.prompts[stage] = append(f.prompts[stage], prompt)
	before := f.before
	err := f.errs[stage]
	var text string
	if queue := f.replies[stage]; len(queue) > 0 {
		text = queue[0]
		if len(queue) > 1 {
			f.replies[stage] = queue[1:]
		}
	}
	f.mu.Unlock()

	if before != nil {
		before(stage)
	}
	if err != nil {
		return nil, err
	}
	if !expectJSON {
		return &GenerationOutput{Text: text}, nil
	}
	doc, err := util.ExtractJSONObject(text)
	if err != nil {
		return nil, util.MalformedModelOutput(err)
	}
	return &GenerationOutput{Text: text, JSON: doc}, nil
}

type fixture struct {
	db        *gorm.DB
	gw        *fakeGateway
	outline   *OutlineService
	refine    *RefinementService
	course    *CourseService
	progress  *ProgressService
	analytics *AnalyticsService
	storage   *StorageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Cleanup(logger.SetForTest(zap.NewNop()))

	db := testutil.NewDB(t)
	gw := newFakeGateway()

	sessions := repository.NewSessionRepository(db)
	conversations := repository.NewConversationRepository(db)
	courses := repository.NewCourseRepository(db)
	progress := repository.NewProgressRepository(db)
	activities := repository.NewActivityRepository(db)

	storage := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()})
	analytics := NewAnalyticsService(courses, progress, activities, nil, 0)

	return &fixture{
		db:        db,
		gw:        gw,
		outline:   NewOutlineService(sessions, conversations, gw),
		refine:    NewRefinementService(sessions, conversations, gw, config.ConversationConfig{MaxTranscriptEntries: 20}),
		course:    NewCourseService(sessions, courses, progress, gw, storage, analytics),
		progress:  NewProgressService(courses, progress, analytics),
		analytics: analytics,
		storage:   storage,
	}
}

// outlineJSON 生成包含 n 个模块的大纲回复
func outlineJSON(title string, modules ...string) string {
	drafts := make([]map[string]interface{}, 0, len(modules))
	for _, m := range modules {
		drafts = append(drafts, map[string]interface{}{
			"title":       m,
			"description": "About " + m,
			"rationale":   "Builds on the previous module",
			"topics":      []string{m + " basics", m + " practice"},
		})
	}
	doc := map[string]interface{}{
		"title":          title,
		"description":    "A course about " + strings.ToLower(title),
		"duration":       "3-5 hours",
		"modules":        drafts,
		"sources":        []map[string]string{{"title": "Campbell Biology", "url": "https://example.com/campbell"}},
		"notes":          "Assumes no prior chemistry",
		"review_message": "Does this outline look right?",
	}
	data, _ := json.Marshal(doc)
	return string(data)
}

func photosynthesisInput(userID string) GenerateOutlineInput {
	return GenerateOutlineInput{
		UserID:            userID,
		Topic:             "Photosynthesis",
		Context:           "for a biology exam",
		KnowledgeLevel:    "beginner",
		LearningGoals:     "pass the exam",
		PreferredDuration: "3-5",
	}
}

func courseBody(modules ...string) string {
	items := make([]map[string]interface{}, 0, len(modules))
	for i, m := range modules {
		items = append(items, map[string]interface{}{
			"title":                m,
			"content":              fmt.Sprintf("## %s\nLesson %d text.", m, i+1),
			"exercises":            []string{"Exercise for " + m},
			"assessment_questions": []map[string]string{{"question": "What is " + m + "?", "answer": m}},
		})
	}
	data, _ := json.Marshal(map[string]interface{}{"modules": items})
	return "Here is your course:\n" + string(data)
}
