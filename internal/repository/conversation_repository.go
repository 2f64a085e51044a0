package repository

import (
	"context"
	"coursegen_backend/internal/model"

	"gorm.io/gorm"
)

type ConversationRepository struct {
	DB *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

// ListBySession 按追加顺序返回完整对话
func (r *ConversationRepository) ListBySession(ctx context.Context, sessionID string) ([]model.ConversationEntry, error) {
	var entries []model.ConversationEntry
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&entries).Error
	return entries, err
}

func (r *ConversationRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.ConversationEntry{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}
