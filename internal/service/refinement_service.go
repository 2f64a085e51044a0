package service

import (
	"context"
	"coursegen_backend/internal/config"
	"coursegen_backend/internal/model"
	"coursegen_backend/internal/repository"
	"coursegen_backend/internal/util"
	"coursegen_backend/pkg/logger"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type EditOutlineInput struct {
	UserID      string
	SessionID   string
	UserMessage string
	// CurrentOutline 客户端持有的大纲，仅用于比对，以数据库中的为准
	CurrentOutline *model.Outline
	// Revision 客户端读取时的版本号，为空时不校验
	Revision *int
}

type EditOutlineResult struct {
	Outline  model.Outline
	Revision int
	Entries  []model.ConversationEntry
}

// RefinementService 根据用户的自然语言反馈修改大纲
type RefinementService struct {
	SessionRepo      *repository.SessionRepository
	ConversationRepo *repository.ConversationRepository
	Gateway          ModelGateway

	mu  sync.RWMutex
	cfg config.ConversationConfig
}

func NewRefinementService(sessionRepo *repository.SessionRepository, conversationRepo *repository.ConversationRepository, gateway ModelGateway, cfg config.ConversationConfig) *RefinementService {
	return &RefinementService{
		SessionRepo:      sessionRepo,
		ConversationRepo: conversationRepo,
		Gateway:          gateway,
		cfg:              cfg,
	}
}

func (s *RefinementService) UpdateConfig(cfg config.ConversationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *RefinementService) maxTranscriptEntries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.MaxTranscriptEntries
}

func (s *RefinementService) EditOutline(ctx context.Context, in EditOutlineInput) (*EditOutlineResult, error) {
	if strings.TrimSpace(in.UserMessage) == "" {
		return nil, util.MissingField("user_message")
	}

	session, err := loadSession(ctx, s.SessionRepo, in.UserID, in.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionCompleted {
		return nil, util.ErrSessionClosed
	}
	if in.Revision != nil && *in.Revision != session.Revision {
		return nil, util.ErrRevisionConflict
	}

	stored := session.Outline()
	if in.CurrentOutline != nil && !reflect.DeepEqual(*in.CurrentOutline, stored) {
		logger.Log.Debug("Client outline differs from stored outline, using stored",
			zap.String("session_id", session.ID))
	}

	history, err := s.ConversationRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, util.Persistence("list conversation", err)
	}

	transcript := RenderTranscript(history, s.maxTranscriptEntries())
	prompt, err := RenderEditPrompt(sessionParams(session), stored, transcript, in.UserMessage)
	if err != nil {
		return nil, util.Persistence("render edit prompt", err)
	}

	out, err := s.Gateway.GenerateStructured(ctx, StageRefine, prompt, true)
	if err != nil {
		return nil, err
	}

	updated, err := model.ParseOutline(out.JSON, model.EditRequiredKeys)
	if err != nil {
		return nil, util.MalformedModelOutput(err)
	}

	entries := []model.ConversationEntry{
		{Role: model.RoleUser, Content: in.UserMessage},
		{Role: model.RoleAssistant, Content: assistantSummary(updated)},
	}

	revision, err := s.SessionRepo.ApplyRefinement(ctx, session.ID, in.UserID, session.Revision, *updated, entries)
	if err != nil {
		if errors.Is(err, repository.ErrStaleRevision) {
			logger.Log.Warn("Concurrent outline edit rejected",
				zap.String("session_id", session.ID),
				zap.Int("revision", session.Revision))
			return nil, util.ErrRevisionConflict
		}
		return nil, util.Persistence("apply refinement", err)
	}

	logger.Log.Info("Outline refined",
		zap.String("session_id", session.ID),
		zap.String("user_id", in.UserID),
		zap.Int("revision", revision),
		zap.Int("modules", len(updated.Modules)))

	return &EditOutlineResult{Outline: *updated, Revision: revision, Entries: entries}, nil
}

// assistantSummary 助手回复：说明更新后的大纲概况，附带模型给出的说明
func assistantSummary(o *model.Outline) string {
	summary := fmt.Sprintf("Updated the outline %q (%d modules).", o.Title, len(o.Modules))
	if msg := strings.TrimSpace(o.ReviewMessage.String()); msg != "" {
		summary += " " + msg
	}
	return summary
}
