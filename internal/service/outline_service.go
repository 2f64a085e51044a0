package service

import (
	"context"
	"coursegen_backend/internal/model"
	"coursegen_backend/internal/repository"
	"coursegen_backend/internal/util"
	"coursegen_backend/pkg/logger"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type GenerateOutlineInput struct {
	UserID            string
	Topic             string
	Context           string
	KnowledgeLevel    string
	LearningGoals     string
	PreferredDuration string
}

func (in GenerateOutlineInput) params() SessionParams {
	return SessionParams{
		Topic:             strings.TrimSpace(in.Topic),
		Context:           strings.TrimSpace(in.Context),
		KnowledgeLevel:    strings.TrimSpace(in.KnowledgeLevel),
		LearningGoals:     strings.TrimSpace(in.LearningGoals),
		PreferredDuration: strings.TrimSpace(in.PreferredDuration),
	}
}

// OutlineService 生成初版大纲并创建会话
type OutlineService struct {
	SessionRepo      *repository.SessionRepository
	ConversationRepo *repository.ConversationRepository
	Gateway          ModelGateway
}

func NewOutlineService(sessionRepo *repository.SessionRepository, conversationRepo *repository.ConversationRepository, gateway ModelGateway) *OutlineService {
	return &OutlineService{
		SessionRepo:      sessionRepo,
		ConversationRepo: conversationRepo,
		Gateway:          gateway,
	}
}

func (s *OutlineService) GenerateOutline(ctx context.Context, in GenerateOutlineInput) (*model.GenerationSession, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, util.ErrUnauthenticated
	}
	p := in.params()
	required := []struct{ name, value string }{
		{"topic", p.Topic},
		{"context", p.Context},
		{"knowledge_level", p.KnowledgeLevel},
		{"learning_goals", p.LearningGoals},
		{"preferred_duration", p.PreferredDuration},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, util.MissingField(f.name)
		}
	}

	out, err := s.Gateway.GenerateStructured(ctx, StageOutline, RenderOutlinePrompt(p), true)
	if err != nil {
		return nil, err
	}

	outline, err := model.ParseOutline(out.JSON, model.DraftRequiredKeys)
	if err != nil {
		return nil, util.MalformedModelOutput(err)
	}

	session := &model.GenerationSession{
		UserID:            in.UserID,
		Topic:             p.Topic,
		Context:           p.Context,
		KnowledgeLevel:    p.KnowledgeLevel,
		LearningGoals:     p.LearningGoals,
		PreferredDuration: p.PreferredDuration,
		CurrentOutline:    datatypes.NewJSONType(*outline),
		Status:            model.SessionOutlineReview,
		Revision:          1,
	}
	if err := s.SessionRepo.Create(ctx, session); err != nil {
		return nil, util.Persistence("create session", err)
	}

	logger.Log.Info("Outline generated",
		zap.String("session_id", session.ID),
		zap.String("user_id", in.UserID),
		zap.Int("modules", len(outline.Modules)))
	return session, nil
}

// GetSession 读取会话，不属于该用户时按不存在处理
func (s *OutlineService) GetSession(ctx context.Context, userID, sessionID string) (*model.GenerationSession, error) {
	return loadSession(ctx, s.SessionRepo, userID, sessionID)
}

func (s *OutlineService) GetConversation(ctx context.Context, userID, sessionID string) ([]model.ConversationEntry, error) {
	if _, err := loadSession(ctx, s.SessionRepo, userID, sessionID); err != nil {
		return nil, err
	}
	entries, err := s.ConversationRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, util.Persistence("list conversation", err)
	}
	return entries, nil
}

func loadSession(ctx context.Context, repo *repository.SessionRepository, userID, sessionID string) (*model.GenerationSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, util.MissingField("session_id")
	}
	session, err := repo.FindByIDForUser(ctx, sessionID, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrSessionNotFound
		}
		return nil, util.Persistence("load session", fmt.Errorf("session %s: %w", sessionID, err))
	}
	return session, nil
}
