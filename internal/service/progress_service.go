package service

import (
	"context"
	"coursegen_backend/internal/repository"
	"coursegen_backend/internal/util"
	"coursegen_backend/pkg/logger"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

type UpdateProgressInput struct {
	UserID   string
	CourseID string
	// ProgressPercentage 必填，指针用于区分未传和 0
	ProgressPercentage *float64
	ModuleID           string
	// CompletedModules 为 nil 表示未传，保持不变
	CompletedModules []string
	TimeSpent        *int64
	Notes            string
}

// ProgressService 合并学习进度上报
type ProgressService struct {
	CourseRepo   *repository.CourseRepository
	ProgressRepo *repository.ProgressRepository
	Analytics    AnalyticsInvalidator
	Now          func() time.Time
}

func NewProgressService(courseRepo *repository.CourseRepository, progressRepo *repository.ProgressRepository, analytics AnalyticsInvalidator) *ProgressService {
	return &ProgressService{
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
		Analytics:    analytics,
		Now:          time.Now,
	}
}

func (s *ProgressService) validate(in UpdateProgressInput) error {
	if strings.TrimSpace(in.CourseID) == "" {
		return util.MissingField("course_id")
	}
	if in.ProgressPercentage == nil {
		return util.MissingField("progress_percentage")
	}
	pct := *in.ProgressPercentage
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return util.InvalidRange("progress_percentage", "must be between 0 and 100")
	}
	if in.TimeSpent != nil && *in.TimeSpent < 0 {
		return util.InvalidRange("time_spent", "must not be negative")
	}
	return nil
}

func (s *ProgressService) UpdateProgress(ctx context.Context, in UpdateProgressInput) (*repository.ReconcileResult, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	if _, err := s.CourseRepo.FindByIDForUser(ctx, in.CourseID, in.UserID, false); err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrCourseNotFound
		}
		return nil, util.Persistence("load course", err)
	}

	if in.ModuleID != "" || in.CompletedModules != nil {
		if err := s.checkModules(ctx, in); err != nil {
			return nil, err
		}
	}

	var delta int64
	if in.TimeSpent != nil {
		delta = *in.TimeSpent
	}

	update := repository.ProgressUpdate{
		UserID:     in.UserID,
		CourseID:   in.CourseID,
		Percentage: *in.ProgressPercentage,
		ModuleID:   in.ModuleID,
		TimeSpent:  delta,
		Notes:      strings.TrimSpace(in.Notes),
		At:         s.Now(),
	}
	if in.CompletedModules != nil {
		update.CompletedModules = in.CompletedModules
	}

	result, err := s.ProgressRepo.Reconcile(ctx, update)
	if err != nil {
		return nil, util.Persistence("reconcile progress", err)
	}

	if s.Analytics != nil {
		s.Analytics.Invalidate(ctx, in.UserID)
	}

	fields := []zap.Field{
		zap.String("course_id", in.CourseID),
		zap.String("user_id", in.UserID),
		zap.Float64("progress", result.Progress.ProgressPercentage),
		zap.Int64("time_spent", result.Progress.TimeSpent),
	}
	if result.CourseCompleted {
		logger.Log.Info("Course completed", fields...)
	} else {
		logger.Log.Debug("Progress updated", fields...)
	}
	return result, nil
}

// checkModules 模块必须属于该课程
func (s *ProgressService) checkModules(ctx context.Context, in UpdateProgressInput) error {
	ids, err := s.CourseRepo.ModuleIDs(ctx, in.CourseID)
	if err != nil {
		return util.Persistence("list course modules", err)
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	if in.ModuleID != "" {
		if _, ok := known[in.ModuleID]; !ok {
			return util.Validation("module_id does not belong to this course")
		}
	}
	for _, id := range in.CompletedModules {
		if _, ok := known[id]; !ok {
			return util.Validation("completed_modules contains a module outside this course")
		}
	}
	return nil
}
