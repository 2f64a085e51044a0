package service

import (
	"context"
	"coursegen_backend/internal/model"
	"coursegen_backend/internal/repository"
	"coursegen_backend/internal/util"
	"coursegen_backend/pkg/logger"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type MaterializeInput struct {
	UserID    string
	SessionID string
	// ApprovedOutline 为空时使用会话中保存的大纲
	ApprovedOutline *model.Outline
}

type MaterializeResult struct {
	Course   *model.Course
	Content  string
	Progress *model.ProgressRecord
}

// CourseSummary 课程列表项
type CourseSummary struct {
	model.Course
	Progress *model.ProgressRecord `json:"progress"`
}

// CourseDetail 课程详情，包含模块和进度
type CourseDetail struct {
	model.Course
	Progress       *model.ProgressRecord  `json:"progress"`
	ModuleProgress []model.ModuleProgress `json:"module_progress"`
}

// AnalyticsInvalidator 进度或课程变化后清除学习分析缓存
type AnalyticsInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// CourseService 把确认后的大纲展开为完整课程
type CourseService struct {
	SessionRepo  *repository.SessionRepository
	CourseRepo   *repository.CourseRepository
	ProgressRepo *repository.ProgressRepository
	Gateway      ModelGateway
	Storage      *StorageService
	Analytics    AnalyticsInvalidator
}

func NewCourseService(
	sessionRepo *repository.SessionRepository,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	gateway ModelGateway,
	storage *StorageService,
	analytics AnalyticsInvalidator,
) *CourseService {
	return &CourseService{
		SessionRepo:  sessionRepo,
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
		Gateway:      gateway,
		Storage:      storage,
		Analytics:    analytics,
	}
}

func (s *CourseService) MaterializeCourse(ctx context.Context, in MaterializeInput) (*MaterializeResult, error) {
	session, err := loadSession(ctx, s.SessionRepo, in.UserID, in.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionCompleted {
		return nil, util.ErrSessionClosed
	}

	approved := session.Outline()
	if in.ApprovedOutline != nil {
		approved = *in.ApprovedOutline
	}
	if err := approved.Validate(); err != nil {
		return nil, util.Validation("approved_outline is invalid: " + strings.TrimPrefix(err.Error(), model.ErrMalformedOutline.Error()+": "))
	}
	approved.Normalize()

	prompt, err := RenderCoursePrompt(sessionParams(session), approved)
	if err != nil {
		return nil, util.Persistence("render course prompt", err)
	}

	out, err := s.Gateway.GenerateStructured(ctx, StageCourse, prompt, false)
	if err != nil {
		return nil, err
	}
	body := out.Text

	contents, perModule := parseModuleContents(body, len(approved.Modules))

	course := &model.Course{
		UserID:         in.UserID,
		SessionID:      session.ID,
		Title:          approved.Title,
		Description:    approved.Description,
		Topic:          session.Topic,
		Context:        session.Context,
		KnowledgeLevel: session.KnowledgeLevel,
		Objectives:     objectivesFrom(approved),
		TotalModules:   len(approved.Modules),
		Status:         model.CourseActive,
		AIGenerated:    true,
	}
	course.ID = model.GenerateUUID()

	for i, draft := range approved.Modules {
		m := model.CourseModule{
			CourseID:            course.ID,
			OrderIndex:          i + 1,
			Title:               draft.Title,
			Description:         draft.Description,
			Content:             body,
			Topics:              draft.Topics,
			Exercises:           datatypes.JSON("[]"),
			AssessmentQuestions: datatypes.JSON("[]"),
		}
		m.ID = model.GenerateUUID()
		if perModule {
			c := contents[i]
			m.Content = c.Content
			m.Exercises = rawOrEmpty(c.Exercises)
			m.AssessmentQuestions = rawOrEmpty(c.AssessmentQuestions)
		}
		course.Modules = append(course.Modules, m)
	}

	archiveURL := s.archive(ctx, course.ID, body)

	metadata, err := json.Marshal(map[string]interface{}{
		"session_id":         session.ID,
		"session_revision":   session.Revision,
		"approved_outline":   approved,
		"per_module_content": perModule,
		"content_archive":    archiveURL,
	})
	if err != nil {
		return nil, util.Persistence("encode course metadata", err)
	}
	course.Metadata = datatypes.JSON(metadata)

	progress, err := s.CourseRepo.Materialize(ctx, course, session.ID)
	if err != nil {
		if archiveURL != "" {
			s.discardArchive(ctx, course.ID)
		}
		if errors.Is(err, repository.ErrAlreadyMaterialized) {
			return nil, util.ErrSessionClosed
		}
		logger.Log.Error("Course materialization rolled back",
			zap.String("session_id", session.ID),
			zap.String("course_id", course.ID),
			zap.Error(err))
		return nil, util.Persistence("materialize course", err)
	}

	s.invalidate(ctx, in.UserID)

	logger.Log.Info("Course materialized",
		zap.String("session_id", session.ID),
		zap.String("course_id", course.ID),
		zap.String("user_id", in.UserID),
		zap.Int("modules", course.TotalModules),
		zap.Bool("per_module_content", perModule))

	return &MaterializeResult{Course: course, Content: body, Progress: progress}, nil
}

// archive 归档失败不影响课程创建
func (s *CourseService) archive(ctx context.Context, courseID, body string) string {
	if s.Storage == nil {
		return ""
	}
	url, err := s.Storage.ArchiveCourseContent(ctx, courseID, body)
	if err != nil {
		logger.Log.Warn("Failed to archive course content",
			zap.String("course_id", courseID),
			zap.Error(err))
		return ""
	}
	return url
}

// discardArchive 事务回滚后删除已上传的正文
func (s *CourseService) discardArchive(ctx context.Context, courseID string) {
	if err := s.Storage.Delete(ctx, CourseArchiveKey(courseID)); err != nil {
		logger.Log.Warn("Failed to remove orphaned course archive",
			zap.String("course_id", courseID),
			zap.Error(err))
	}
}

func (s *CourseService) invalidate(ctx context.Context, userID string) {
	if s.Analytics != nil {
		s.Analytics.Invalidate(ctx, userID)
	}
}

func (s *CourseService) ListCourses(ctx context.Context, userID string) ([]CourseSummary, error) {
	courses, err := s.CourseRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, util.Persistence("list courses", err)
	}
	records, err := s.ProgressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, util.Persistence("list progress", err)
	}

	byCourse := make(map[string]*model.ProgressRecord, len(records))
	for i := range records {
		byCourse[records[i].CourseID] = &records[i]
	}

	result := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		result = append(result, CourseSummary{Course: c, Progress: byCourse[c.ID]})
	}
	return result, nil
}

func (s *CourseService) GetCourse(ctx context.Context, userID, courseID string) (*CourseDetail, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, util.MissingField("course_id")
	}
	course, err := s.CourseRepo.FindByIDForUser(ctx, courseID, userID, true)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrCourseNotFound
		}
		return nil, util.Persistence("load course", err)
	}

	detail := &CourseDetail{Course: *course, ModuleProgress: []model.ModuleProgress{}}

	progress, err := s.ProgressRepo.FindByUserCourse(ctx, userID, courseID)
	switch {
	case err == nil:
		detail.Progress = progress
	case !repository.IsNotFound(err):
		return nil, util.Persistence("load progress", err)
	}

	modules, err := s.ProgressRepo.ListModuleProgress(ctx, userID, courseID)
	if err != nil {
		return nil, util.Persistence("list module progress", err)
	}
	if modules != nil {
		detail.ModuleProgress = modules
	}
	return detail, nil
}

// moduleContent 模型按模块返回的内容
type moduleContent struct {
	Title               string          `json:"title"`
	Content             string          `json:"content"`
	Exercises           json.RawMessage `json:"exercises"`
	AssessmentQuestions json.RawMessage `json:"assessment_questions"`
}

// parseModuleContents 正文中包含与大纲模块数一致的 {"modules":[...]} 时按模块拆分，否则所有模块共用正文
func parseModuleContents(body string, expected int) ([]moduleContent, bool) {
	doc, err := util.ExtractJSONObject(body)
	if err != nil {
		return nil, false
	}
	var parsed struct {
		Modules []moduleContent `json:"modules"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, false
	}
	if len(parsed.Modules) != expected || expected == 0 {
		return nil, false
	}
	for _, m := range parsed.Modules {
		if strings.TrimSpace(m.Content) == "" {
			return nil, false
		}
	}
	return parsed.Modules, true
}

func rawOrEmpty(raw json.RawMessage) datatypes.JSON {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(trimmed)
}

func objectivesFrom(o model.Outline) datatypes.JSONSlice[string] {
	objectives := make(datatypes.JSONSlice[string], 0, len(o.Modules))
	for _, m := range o.Modules {
		objectives = append(objectives, m.Title)
	}
	return objectives
}
