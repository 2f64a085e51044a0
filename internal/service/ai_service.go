package service

import (
	"bytes"
	"context"
	"coursegen_backend/internal/config"
	"coursegen_backend/internal/util"
	"coursegen_backend/pkg/logger"
	"coursegen_backend/pkg/monitoring"
	"coursegen_backend/pkg/tracing"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// 生成阶段，用于日志和监控标签
const (
	StageOutline = "outline"
	StageRefine  = "refine"
	StageCourse  = "course"
)

const defaultSystemPrompt = "You are an expert instructional designer. You design clear, well-structured courses " +
	"for self-directed learners and always follow the requested output format exactly."

const strictJSONInstruction = "\n\nIMPORTANT: Your previous reply could not be parsed. Respond with ONE valid JSON object only. " +
	"No markdown fences, no commentary before or after the object."

// GenerationOutput 模型返回。ExpectJSON 时 JSON 为解析出的对象
type GenerationOutput struct {
	Text string
	JSON json.RawMessage
}

// ModelGateway 外部文本生成服务。每次调用都是一次计费请求，不做缓存
type ModelGateway interface {
	GenerateStructured(ctx context.Context, stage, prompt string, expectJSON bool) (*GenerationOutput, error)
}

type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{config: cfg, client: &http.Client{}}
}

// UpdateConfig 配置热更新
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

func (s *AIService) currentConfig() config.AIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message      AIChatMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) GenerateStructured(ctx context.Context, stage, prompt string, expectJSON bool) (*GenerationOutput, error) {
	cfg := s.currentConfig()

	text, err := s.chat(ctx, cfg, stage, prompt)
	if err != nil {
		return nil, err
	}
	if !expectJSON {
		return &GenerationOutput{Text: text}, nil
	}

	doc, err := util.ExtractJSONObject(text)
	if err == nil {
		return &GenerationOutput{Text: text, JSON: doc}, nil
	}

	if !cfg.RetryMalformed {
		logger.Log.Warn("Model output is not JSON",
			zap.String("stage", stage),
			zap.Int("length", len(text)))
		return nil, util.MalformedModelOutput(err)
	}

	logger.Log.Info("Model output is not JSON, retrying with strict instruction", zap.String("stage", stage))
	text, err = s.chat(ctx, cfg, stage, prompt+strictJSONInstruction)
	if err != nil {
		return nil, err
	}
	doc, err = util.ExtractJSONObject(text)
	if err != nil {
		return nil, util.MalformedModelOutput(err)
	}
	return &GenerationOutput{Text: text, JSON: doc}, nil
}

func (s *AIService) chat(ctx context.Context, cfg config.AIConfig, stage, prompt string) (string, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ai.chat", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.stage", stage),
		attribute.String("ai.model", cfg.Model),
	)

	start := time.Now()
	text, err := s.doChat(ctx, cfg, prompt)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = string(util.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		logger.Log.Error("Generation provider call failed",
			zap.String("stage", stage),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		logger.Log.Debug("Generation provider call finished",
			zap.String("stage", stage),
			zap.Duration("elapsed", elapsed),
			zap.Int("length", len(text)))
	}
	monitoring.ObserveGeneration(stage, outcome, elapsed)

	return text, err
}

func (s *AIService) doChat(ctx context.Context, cfg config.AIConfig, prompt string) (string, error) {
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	reqBody := ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", util.ProviderUnavailable(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", util.ProviderUnavailable(fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, truncate(string(body), 512)))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", util.MalformedModelOutput(fmt.Errorf("decode completion envelope: %w", err))
	}
	if result.Error != nil {
		return "", util.ProviderUnavailable(errors.New(result.Error.Message))
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", util.MalformedModelOutput(errors.New("AI returned no choices"))
	}
	if result.Usage != nil {
		logger.Log.Debug("Generation token usage",
			zap.Int("prompt_tokens", result.Usage.PromptTokens),
			zap.Int("completion_tokens", result.Usage.CompletionTokens),
			zap.String("finish_reason", result.Choices[0].FinishReason))
	}

	return result.Choices[0].Message.Content, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return util.ProviderTimeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return util.ProviderTimeout(err)
	}
	return util.ProviderUnavailable(err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
