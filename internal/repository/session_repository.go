package repository

import (
	"context"
	"coursegen_backend/internal/model"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.GenerationSession) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

// FindByIDForUser 只返回属于该用户的会话，其他用户的会话与不存在同样处理
func (r *SessionRepository) FindByIDForUser(ctx context.Context, id, userID string) (*model.GenerationSession, error) {
	var session model.GenerationSession
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ApplyRefinement 在一个事务里覆盖大纲并追加对话。
// 先做带 revision 和 status 条件的更新，命中后持有会话行锁，再分配对话序号；
// 未命中或序号冲突时整个事务回滚并返回 ErrStaleRevision
func (r *SessionRepository) ApplyRefinement(ctx context.Context, sessionID, userID string, expectedRevision int, outline model.Outline, entries []model.ConversationEntry) (int, error) {
	newRevision := expectedRevision + 1

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.GenerationSession{}).
			Where("id = ? AND user_id = ? AND revision = ? AND status = ?", sessionID, userID, expectedRevision, model.SessionOutlineReview).
			Updates(map[string]interface{}{
				"current_outline": datatypes.NewJSONType(outline),
				"revision":        newRevision,
				"updated_at":      time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleRevision
		}

		var last int
		if err := tx.Model(&model.ConversationEntry{}).
			Where("session_id = ?", sessionID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error; err != nil {
			return err
		}

		for i := range entries {
			entries[i].SessionID = sessionID
			entries[i].Seq = last + i + 1
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrStaleRevision
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newRevision, nil
}
