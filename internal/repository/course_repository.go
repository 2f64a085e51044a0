package repository

import (
	"context"
	"coursegen_backend/internal/model"
	"errors"
	"time"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// Materialize 课程、模块、初始进度和会话状态在同一事务中写入
func (r *CourseRepository) Materialize(ctx context.Context, course *model.Course, sessionID string) (*model.ProgressRecord, error) {
	progress := &model.ProgressRecord{
		UserID:             course.UserID,
		CourseID:           course.ID,
		ProgressPercentage: 0,
		CompletedModules:   []string{},
		TimeSpent:          0,
		LastAccessed:       time.Now(),
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMaterialized
			}
			return err
		}

		if err := tx.Create(progress).Error; err != nil {
			return err
		}

		result := tx.Model(&model.GenerationSession{}).
			Where("id = ? AND user_id = ? AND status = ?", sessionID, course.UserID, model.SessionOutlineReview).
			Updates(map[string]interface{}{
				"status":     model.SessionCompleted,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyMaterialized
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *CourseRepository) FindByIDForUser(ctx context.Context, id, userID string, withModules bool) (*model.Course, error) {
	var course model.Course
	q := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID)
	if withModules {
		q = q.Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		})
	}
	if err := q.First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) ListByUser(ctx context.Context, userID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// ModuleIDs 按顺序返回课程的模块 ID
func (r *CourseRepository) ModuleIDs(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).
		Model(&model.CourseModule{}).
		Where("course_id = ?", courseID).
		Order("order_index ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *CourseRepository) CountModules(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.CourseModule{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}
