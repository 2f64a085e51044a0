package model

import (
	"time"

	"gorm.io/datatypes"
)

// ProgressRecord 用户在某门课程上的总体进度，(user_id, course_id) 唯一
// swagger:model
type ProgressRecord struct {
	UUIDBase
	UserID             string                      `gorm:"size:64;not null;uniqueIndex:idx_progress_user_course" json:"user_id"`
	CourseID           string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_course" json:"course_id"`
	ProgressPercentage float64                     `gorm:"not null;default:0" json:"progress_percentage"`
	CompletedModules   datatypes.JSONSlice[string] `json:"completed_modules"`
	TimeSpent          int64                       `gorm:"not null;default:0" json:"time_spent"`
	LastAccessed       time.Time                   `json:"last_accessed"`
	Notes              string                      `gorm:"type:text" json:"notes"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}

// ModuleProgress 模块粒度的进度
// swagger:model
type ModuleProgress struct {
	UUIDBase
	UserID       string    `gorm:"size:64;not null;uniqueIndex:idx_module_progress_key" json:"user_id"`
	CourseID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_module_progress_key" json:"course_id"`
	ModuleID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_module_progress_key" json:"module_id"`
	Completed    bool      `gorm:"not null;default:false" json:"completed"`
	TimeSpent    int64     `gorm:"not null;default:0" json:"time_spent"`
	LastAccessed time.Time `json:"last_accessed"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}

// StudyActivity 每次进度上报追加一条，用于连续学习天数和每周统计
type StudyActivity struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             string    `gorm:"size:64;not null;index:idx_activity_user_time" json:"user_id"`
	CourseID           string    `gorm:"type:varchar(36);not null;index" json:"course_id"`
	ModuleID           string    `gorm:"type:varchar(36)" json:"module_id,omitempty"`
	TimeSpent          int64     `gorm:"not null;default:0" json:"time_spent"`
	ProgressPercentage float64   `json:"progress_percentage"`
	AccessedAt         time.Time `gorm:"not null;index:idx_activity_user_time" json:"accessed_at"`
}

func (StudyActivity) TableName() string {
	return "study_activities"
}

// StringSet 去重并保持顺序
func StringSet(items []string) datatypes.JSONSlice[string] {
	seen := make(map[string]struct{}, len(items))
	out := make(datatypes.JSONSlice[string], 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
