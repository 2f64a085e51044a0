package service

import (
	"context"
	"coursegen_backend/internal/config"
	"coursegen_backend/internal/util"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completion(content string) string {
	data, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20},
	})
	return string(data)
}

func newProvider(t *testing.T, handler http.HandlerFunc) (*AIService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc := NewAIService(config.AIConfig{
		BaseURL:        srv.URL,
		APIKey:         "sk-test",
		Model:          "test-model",
		Temperature:    0.7,
		MaxTokens:      1024,
		TimeoutSeconds: 5,
	})
	return svc, srv
}

func TestGenerateStructuredSendsConfiguredRequest(t *testing.T) {
	var got ChatCompletionRequest
	svc, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(completion(`Here you go: {"title":"Go"} hope it helps`)))
	})

	out, err := svc.GenerateStructured(context.Background(), StageOutline, "design a course", true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Go"}`, string(out.JSON))

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 1024, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "design a course", got.Messages[1].Content)
}

func TestGenerateStructuredText(t *testing.T) {
	svc, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completion("# Course\nplain markdown")))
	})

	out, err := svc.GenerateStructured(context.Background(), StageCourse, "write", false)
	require.NoError(t, err)
	assert.Equal(t, "# Course\nplain markdown", out.Text)
	assert.Nil(t, out.JSON)
}

func TestGenerateStructuredMalformedNotRetried(t *testing.T) {
	var calls int32
	svc, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(completion("Sorry, I can only answer in prose.")))
	})

	_, err := svc.GenerateStructured(context.Background(), StageRefine, "edit", true)
	assert.Equal(t, util.KindMalformedModelOutput, util.KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerateStructuredRetriesWhenEnabled(t *testing.T) {
	var calls int32
	svc, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Write([]byte(completion("prose only")))
			return
		}
		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Messages[1].Content, "ONE valid JSON object")
		w.Write([]byte(completion(`{"title":"ok"}`)))
	})
	cfg := svc.currentConfig()
	cfg.RetryMalformed = true
	svc.UpdateConfig(cfg)

	out, err := svc.GenerateStructured(context.Background(), StageOutline, "outline", true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"ok"}`, string(out.JSON))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerateStructuredProviderErrors(t *testing.T) {
	svc, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	})
	_, err := svc.GenerateStructured(context.Background(), StageOutline, "x", true)
	assert.Equal(t, util.KindProviderUnavailable, util.KindOf(err))

	empty, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	_, err = empty.GenerateStructured(context.Background(), StageOutline, "x", false)
	assert.Equal(t, util.KindMalformedModelOutput, util.KindOf(err))

	down := NewAIService(config.AIConfig{BaseURL: "http://127.0.0.1:1", Model: "m", Temperature: 0.5, MaxTokens: 10})
	_, err = down.GenerateStructured(context.Background(), StageOutline, "x", false)
	assert.Equal(t, util.KindProviderUnavailable, util.KindOf(err))
}

func TestGenerateStructuredTimeout(t *testing.T) {
	release := make(chan struct{})
	svc, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.GenerateStructured(ctx, StageCourse, "x", false)
	assert.Equal(t, util.KindProviderTimeout, util.KindOf(err))
}
