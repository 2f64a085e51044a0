package service

import (
	"context"
	"coursegen_backend/internal/model"
	"coursegen_backend/internal/util"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeCourse(t *testing.T) {
	f := newFixture(t)
	session := newSession(t, f, "user-1")
	approved := session.Outline()
	f.gw.reply(StageCourse, "# Photosynthesis\n\nA long narrative course body without structure.")

	result, err := f.course.MaterializeCourse(context.Background(), MaterializeInput{
		UserID: "user-1", SessionID: session.ID, ApprovedOutline: &approved,
	})
	require.NoError(t, err)

	var courses []model.Course
	require.NoError(t, f.db.Where("session_id = ?", session.ID).Find(&courses).Error)
	require.Len(t, courses, 1)
	assert.Equal(t, len(approved.Modules), courses[0].TotalModules)
	persisted, err := f.course.CourseRepo.CountModules(context.Background(), courses[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(courses[0].TotalModules), persisted)
	assert.Equal(t, model.CourseActive, courses[0].Status)
	assert.True(t, courses[0].AIGenerated)
	assert.Nil(t, courses[0].CompletedAt)
	assert.Equal(t, "Photosynthesis", courses[0].Topic)
	assert.Equal(t, []string{"Light Reactions", "Calvin Cycle"}, []string(courses[0].Objectives))

	var modules []model.CourseModule
	require.NoError(t, f.db.Where("course_id = ?", result.Course.ID).Order("order_index").Find(&modules).Error)
	require.Len(t, modules, len(approved.Modules))
	for i, m := range modules {
		assert.Equal(t, i+1, m.OrderIndex)
		assert.Equal(t, approved.Modules[i].Title, m.Title)
		// 未按模块返回时共用完整正文
		assert.Equal(t, result.Content, m.Content)
	}

	var records []model.ProgressRecord
	require.NoError(t, f.db.Where("course_id = ?", result.Course.ID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, float64(0), records[0].ProgressPercentage)
	assert.Equal(t, "user-1", records[0].UserID)

	stored, err := f.outline.GetSession(context.Background(), "user-1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, stored.Status)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(courses[0].Metadata, &meta))
	assert.Equal(t, session.ID, meta["session_id"])
	assert.Contains(t, meta, "approved_outline")
	assert.Equal(t, false, meta["per_module_content"])
	assert.Equal(t, "/uploads/courses/"+result.Course.ID+"/content.md", meta["content_archive"])

	provider := f.storage.Provider.(*LocalStorageProvider)
	archived, err := os.ReadFile(filepath.Join(provider.Config.LocalPath, "courses", result.Course.ID, "content.md"))
	require.NoError(t, err)
	assert.Equal(t, result.Content, string(archived))

	prompt := f.gw.lastPrompt(StageCourse)
	assert.Contains(t, prompt, "Calvin Cycle")
	assert.Contains(t, prompt, "Topic: Photosynthesis")
}

func TestMaterializeCoursePerModuleContent(t *testing.T) {
	f := newFixture(t)
	session := newSession(t, f, "user-1")
	f.gw.reply(StageCourse, courseBody("Light Reactions", "Calvin Cycle"))

	result, err := f.course.MaterializeCourse(context.Background(), MaterializeInput{UserID: "user-1", SessionID: session.ID})
	require.NoError(t, err)

	detail, err := f.course.GetCourse(context.Background(), "user-1", result.Course.ID)
	require.NoError(t, err)
	require.Len(t, detail.Modules, 2)
	assert.Equal(t, "## Light Reactions\nLesson 1 text.", detail.Modules[0].Content)
	assert.Equal(t, "## Calvin Cycle\nLesson 2 text.", detail.Modules[1].Content)
	assert.JSONEq(t, `["Exercise for Calvin Cycle"]`, string(detail.Modules[1].Exercises))
	require.NotNil(t, detail.Progress)
	assert.Equal(t, float64(0), detail.Progress.ProgressPercentage)
}

func TestMaterializeCourseModuleCountMismatchSharesBody(t *testing.T) {
	f := newFixture(t)
	session := newSession(t, f, "user-1")
	f.gw.reply(StageCourse, courseBody("Only One"))

	result, err := f.course.MaterializeCourse(context.Background(), MaterializeInput{UserID: "user-1", SessionID: session.ID})
	require.NoError(t, err)

	detail, err := f.course.GetCourse(context.Background(), "user-1", result.Course.ID)
	require.NoError(t, err)
	for _, m := range detail.Modules {
		assert.Equal(t, result.Content, m.Content)
	}
}

func TestMaterializeCourseOnlyOnce(t *testing.T) {
	f := newFixture(t)
	session := newSession(t, f, "user-1")
	f.gw.reply(StageCourse, "body")

	_, err := f.course.MaterializeCourse(context.Background(), MaterializeInput{UserID: "user-1", SessionID: session.ID})
	require.NoError(t, err)

	_, err = f.course.MaterializeCourse(context.Background(), MaterializeInput{UserID: "user-1", SessionID: session.ID})
	assert.ErrorIs(t, err, util.ErrSessionClosed)
	assert.Equal(t, 1, f.gw.calls(StageCourse), "closed session must be rejected before the model call")

	_, err = f.refine.EditOutline(context.Background(), EditOutlineInput{UserID: "user-1", SessionID: session.ID, UserMessage: "more"})
	assert.ErrorIs(t, err, util.ErrSessionClosed)

	var count int64
	require.NoError(t, f.db.Model(&model.Course{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMaterializeCourseRollbackRemovesArchive(t *testing.T) {
	f := newFixture(t)
	session := newSession(t, f, "user-1")
	f.gw.reply(StageCourse, "body")

	// 模型调用期间另一个请求已经结束了会话
	f.gw.before = func(stage string) {
		if stage != StageCourse {
			return
		}
		require.NoError(t, f.db.Model(&model.GenerationSession{}).
			Where("id = ?", session.ID).
			Update("status", model.SessionCompleted).Error)
	}

	_, err := f.course.MaterializeCourse(context.Background(), MaterializeInput{UserID: "user-1", SessionID: session.ID})
	assert.ErrorIs(t, err, util.ErrSessionClosed)

	var count int64
	require.NoError(t, f.db.Model(&model.Course{}).Count(&count).Error)
	assert.Zero(t, count)

	root := f.storage.Provider.(*LocalStorageProvider).Config.LocalPath
	archives, err := filepath.Glob(filepath.Join(root, "courses", "*", "content.md"))
	require.NoError(t, err)
	assert.Empty(t, archives)
}

func TestMaterializeCourseOtherUser(t *testing.T) {
	f := newFixture(t)
	session := newSession(t, f, "owner")
	f.gw.reply(StageCourse, "body")

	_, err := f.course.MaterializeCourse(context.Background(), MaterializeInput{UserID: "intruder", SessionID: session.ID})
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
	assert.Equal(t, 0, f.gw.calls(StageCourse))
}

func TestMaterializeCourseRejectsEmptyOutline(t *testing.T) {
	f := newFixture(t)
	session := newSession(t, f, "user-1")

	_, err := f.course.MaterializeCourse(context.Background(), MaterializeInput{
		UserID: "user-1", SessionID: session.ID, ApprovedOutline: &model.Outline{Title: "Empty"},
	})
	assert.Equal(t, util.KindValidation, util.KindOf(err))
	assert.Equal(t, 0, f.gw.calls(StageCourse))
}

func TestMaterializeCourseProviderFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	session := newSession(t, f, "user-1")
	f.gw.fail(StageCourse, util.ProviderTimeout(errors.New("deadline exceeded")))

	_, err := f.course.MaterializeCourse(context.Background(), MaterializeInput{UserID: "user-1", SessionID: session.ID})
	assert.Equal(t, util.KindProviderTimeout, util.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&model.Course{}).Count(&count).Error)
	assert.Zero(t, count)

	stored, err := f.outline.GetSession(context.Background(), "user-1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionOutlineReview, stored.Status)
}

func TestListAndGetCoursesScopedByUser(t *testing.T) {
	f := newFixture(t)
	session := newSession(t, f, "user-1")
	f.gw.reply(StageCourse, "body")
	result, err := f.course.MaterializeCourse(context.Background(), MaterializeInput{UserID: "user-1", SessionID: session.ID})
	require.NoError(t, err)

	list, err := f.course.ListCourses(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Progress)

	others, err := f.course.ListCourses(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = f.course.GetCourse(context.Background(), "user-2", result.Course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestParseModuleContents(t *testing.T) {
	contents, ok := parseModuleContents(courseBody("a", "b"), 2)
	require.True(t, ok)
	assert.Len(t, contents, 2)

	_, ok = parseModuleContents(courseBody("a", "b"), 3)
	assert.False(t, ok)

	_, ok = parseModuleContents("plain markdown", 1)
	assert.False(t, ok)

	_, ok = parseModuleContents(`{"modules":[{"title":"a","content":""}]}`, 1)
	assert.False(t, ok)
}
