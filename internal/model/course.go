package model

import (
	"time"

	"gorm.io/datatypes"
)

type CourseStatus string

const (
	CourseActive    CourseStatus = "active"
	CourseCompleted CourseStatus = "completed"
)

// swagger:model
type Course struct {
	UUIDBase
	UserID         string                      `gorm:"size:64;not null;index" json:"user_id"`
	SessionID      string                      `gorm:"type:varchar(36);not null;uniqueIndex" json:"session_id"`
	Title          string                      `gorm:"size:255;not null" json:"title"`
	Description    string                      `gorm:"type:text" json:"description"`
	Topic          string                      `gorm:"type:text" json:"topic"`
	Context        string                      `gorm:"type:text" json:"context"`
	KnowledgeLevel string                      `gorm:"size:64" json:"knowledge_level"`
	Objectives     datatypes.JSONSlice[string] `json:"objectives"`
	TotalModules   int                         `gorm:"not null;default:0" json:"total_modules"`
	Status         CourseStatus                `gorm:"size:32;not null;default:'active';index" json:"status"`
	AIGenerated    bool                        `gorm:"not null;default:true" json:"ai_generated"`
	Metadata       datatypes.JSON              `json:"metadata"`
	CompletedAt    *time.Time                  `json:"completed_at"`
	Modules        []CourseModule              `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseModule 课程模块，生成后不再修改
// swagger:model
type CourseModule struct {
	UUIDBase
	CourseID            string                      `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_course_module_order" json:"course_id"`
	OrderIndex          int                         `gorm:"not null;uniqueIndex:idx_course_module_order" json:"order_index"`
	Title               string                      `gorm:"size:255;not null" json:"title"`
	Description         string                      `gorm:"type:text" json:"description"`
	Content             string                      `json:"content"`
	Topics              datatypes.JSONSlice[string] `json:"topics"`
	Exercises           datatypes.JSON              `json:"exercises"`
	AssessmentQuestions datatypes.JSON              `json:"assessment_questions"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}
