package model

import (
	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionOutlineReview SessionStatus = "outline_review"
	SessionCompleted     SessionStatus = "completed"
)

// GenerationSession 记录一次“描述主题 -> 大纲 -> 修改 -> 生成课程”的完整过程
// swagger:model
type GenerationSession struct {
	UUIDBase
	UserID            string                      `gorm:"size:64;not null;index" json:"user_id"`
	Topic             string                      `gorm:"type:text;not null" json:"topic"`
	Context           string                      `gorm:"type:text" json:"context"`
	KnowledgeLevel    string                      `gorm:"size:64" json:"knowledge_level"`
	LearningGoals     string                      `gorm:"type:text" json:"learning_goals"`
	PreferredDuration string                      `gorm:"size:64" json:"preferred_duration"`
	CurrentOutline    datatypes.JSONType[Outline] `json:"current_outline"`
	Status            SessionStatus               `gorm:"size:32;not null;default:'outline_review';index" json:"status"`
	// Revision 每次覆盖大纲时 +1，用于乐观锁
	Revision int `gorm:"not null;default:1" json:"revision"`
}

func (GenerationSession) TableName() string {
	return "generation_sessions"
}

func (s *GenerationSession) Outline() Outline {
	return s.CurrentOutline.Data()
}

type ConversationRole string

const (
	RoleUser      ConversationRole = "user"
	RoleAssistant ConversationRole = "assistant"
)

// ConversationEntry 大纲修改过程中的对话记录，只追加不修改
// swagger:model
type ConversationEntry struct {
	UUIDBase
	SessionID string           `gorm:"type:varchar(36);not null;index:idx_conversation_session_seq,unique" json:"session_id"`
	Seq       int              `gorm:"not null;index:idx_conversation_session_seq,unique" json:"seq"`
	Role      ConversationRole `gorm:"size:16;not null" json:"role"`
	Content   string           `gorm:"type:text;not null" json:"content"`
}

func (ConversationEntry) TableName() string {
	return "conversation_entries"
}
