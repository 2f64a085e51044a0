package repository

import (
	"context"
	"coursegen_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// ActivityRepository 学习记录查询，供学习分析使用
type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

// Recent 最近的学习记录，附带课程标题
func (r *ActivityRepository) Recent(ctx context.Context, userID string, limit int) ([]model.ActivityItem, error) {
	var items []model.ActivityItem
	err := r.DB.WithContext(ctx).
		Table("study_activities AS a").
		Select("a.course_id, c.title AS course_title, a.module_id, a.time_spent, a.progress_percentage, a.accessed_at").
		Joins("JOIN courses AS c ON c.id = a.course_id").
		Where("a.user_id = ?", userID).
		Order("a.accessed_at DESC, a.id DESC").
		Limit(limit).
		Scan(&items).Error
	return items, err
}

// AccessTimes 全部访问时间，按时间倒序
func (r *ActivityRepository) AccessTimes(ctx context.Context, userID string) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.WithContext(ctx).
		Model(&model.StudyActivity{}).
		Where("user_id = ?", userID).
		Order("accessed_at DESC").
		Pluck("accessed_at", &times).Error
	return times, err
}

func (r *ActivityRepository) Since(ctx context.Context, userID string, since time.Time) ([]model.StudyActivity, error) {
	var activities []model.StudyActivity
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND accessed_at >= ?", userID, since).
		Order("accessed_at ASC").
		Find(&activities).Error
	return activities, err
}
