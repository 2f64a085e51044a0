package repository

import (
	"context"
	"coursegen_backend/internal/model"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ProgressUpdate 一次进度上报
type ProgressUpdate struct {
	UserID     string
	CourseID   string
	Percentage float64
	// ModuleID 为空时不更新模块进度
	ModuleID string
	// CompletedModules 为 nil 表示保持不变
	CompletedModules []string
	TimeSpent        int64
	Notes            string
	At               time.Time
}

// ReconcileResult 合并后的进度，CourseCompleted 表示本次调用把课程标记为完成
type ReconcileResult struct {
	Progress        *model.ProgressRecord
	Module          *model.ModuleProgress
	CourseCompleted bool
}

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserCourse(ctx context.Context, userID, courseID string) (*model.ProgressRecord, error) {
	var record model.ProgressRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&records).Error
	return records, err
}

func (r *ProgressRepository) ListModuleProgress(ctx context.Context, userID, courseID string) ([]model.ModuleProgress, error) {
	var items []model.ModuleProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&items).Error
	return items, err
}

// Reconcile 合并进度：百分比取最大值，时长累加，已完成模块整体替换，备注非空时替换。
// 同一事务内更新模块进度、追加学习记录，并在达到 100% 时把课程标记为完成
func (r *ProgressRepository) Reconcile(ctx context.Context, in ProgressUpdate) (*ReconcileResult, error) {
	var result *ReconcileResult
	var err error
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		result, err = r.reconcileOnce(ctx, in)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	return result, err
}

func (r *ProgressRepository) reconcileOnce(ctx context.Context, in ProgressUpdate) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := r.upsertRecord(tx, in)
		if err != nil {
			return err
		}
		result.Progress = record

		if in.ModuleID != "" {
			module, err := r.upsertModule(tx, in)
			if err != nil {
				return err
			}
			result.Module = module
		}

		activity := &model.StudyActivity{
			UserID:             in.UserID,
			CourseID:           in.CourseID,
			ModuleID:           in.ModuleID,
			TimeSpent:          in.TimeSpent,
			ProgressPercentage: record.ProgressPercentage,
			AccessedAt:         in.At,
		}
		if err := tx.Create(activity).Error; err != nil {
			return err
		}

		if record.ProgressPercentage >= 100 {
			res := tx.Model(&model.Course{}).
				Where("id = ? AND user_id = ? AND status <> ?", in.CourseID, in.UserID, model.CourseCompleted).
				Updates(map[string]interface{}{
					"status":       model.CourseCompleted,
					"completed_at": in.At,
					"updated_at":   in.At,
				})
			if res.Error != nil {
				return res.Error
			}
			result.CourseCompleted = res.RowsAffected > 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ProgressRepository) upsertRecord(tx *gorm.DB, in ProgressUpdate) (*model.ProgressRecord, error) {
	var record model.ProgressRecord
	err := forUpdate(tx).
		Where("user_id = ? AND course_id = ?", in.UserID, in.CourseID).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = model.ProgressRecord{
			UserID:             in.UserID,
			CourseID:           in.CourseID,
			ProgressPercentage: in.Percentage,
			CompletedModules:   model.StringSet(in.CompletedModules),
			TimeSpent:          in.TimeSpent,
			LastAccessed:       in.At,
			Notes:              in.Notes,
		}
		if err := tx.Create(&record).Error; err != nil {
			return nil, err
		}
		return &record, nil
	}
	if err != nil {
		return nil, err
	}

	// 百分比和时长用 SQL 表达式更新，即使没有行锁也不会丢失并发写入
	updates := map[string]interface{}{
		"progress_percentage": gorm.Expr("CASE WHEN progress_percentage < ? THEN ? ELSE progress_percentage END", in.Percentage, in.Percentage),
		"time_spent":          gorm.Expr("time_spent + ?", in.TimeSpent),
		"last_accessed":       in.At,
		"updated_at":          in.At,
	}
	if in.CompletedModules != nil {
		updates["completed_modules"] = model.StringSet(in.CompletedModules)
	}
	if in.Notes != "" {
		updates["notes"] = in.Notes
	}

	if err := tx.Model(&model.ProgressRecord{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := tx.First(&record, "id = ?", record.ID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ProgressRepository) upsertModule(tx *gorm.DB, in ProgressUpdate) (*model.ModuleProgress, error) {
	completed := in.Percentage >= 100

	var mp model.ModuleProgress
	err := forUpdate(tx).
		Where("user_id = ? AND course_id = ? AND module_id = ?", in.UserID, in.CourseID, in.ModuleID).
		First(&mp).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		mp = model.ModuleProgress{
			UserID:       in.UserID,
			CourseID:     in.CourseID,
			ModuleID:     in.ModuleID,
			Completed:    completed,
			TimeSpent:    in.TimeSpent,
			LastAccessed: in.At,
		}
		if err := tx.Create(&mp).Error; err != nil {
			return nil, err
		}
		return &mp, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"time_spent":    gorm.Expr("time_spent + ?", in.TimeSpent),
		"last_accessed": in.At,
		"updated_at":    in.At,
	}
	// 完成状态只会从 false 变为 true
	if completed {
		updates["completed"] = true
	}
	if err := tx.Model(&model.ModuleProgress{}).Where("id = ?", mp.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := tx.First(&mp, "id = ?", mp.ID).Error; err != nil {
		return nil, err
	}
	return &mp, nil
}
