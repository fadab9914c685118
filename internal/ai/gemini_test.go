package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hpungsan/gemshot/internal/config"
	"github.com/hpungsan/gemshot/internal/errors"
)

var testPNG = []byte("\x89PNG\r\n\x1a\nfake")

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGeminiClient("test-key")
	c.baseURL = srv.URL
	c.retryDelay = time.Millisecond
	return c
}

func writeCandidate(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
		}},
	})
}

func TestGemini_Analyze(t *testing.T) {
	var got geminiRequest
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/"+Model+":generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("api key header = %q", r.Header.Get("x-goog-api-key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeCandidate(w, "Title: Login Bug | Tags: auth | Summary: broken")
	})

	text, err := c.Analyze(context.Background(), testPNG, "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !strings.HasPrefix(text, "Title: Login Bug") {
		t.Errorf("text = %q", text)
	}

	parts := got.Contents[0].Parts
	if parts[0].Text != AnalyzePrompt("") {
		t.Errorf("prompt = %q", parts[0].Text)
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/png" {
		t.Fatalf("inline data = %+v", parts[1].InlineData)
	}
	if parts[1].InlineData.Data != base64.StdEncoding.EncodeToString(testPNG) {
		t.Error("image not base64 encoded")
	}
	if got.GenerationConfig != nil {
		t.Errorf("analyze should not force a response mime type, got %+v", got.GenerationConfig)
	}
}

func TestGemini_SmartFillRequestsJSON(t *testing.T) {
	var got geminiRequest
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeCandidate(w, `{"title":"x"}`)
	})

	if _, err := c.SmartFill(context.Background(), testPNG, "focus on dates"); err != nil {
		t.Fatalf("SmartFill() error = %v", err)
	}
	if got.GenerationConfig == nil || got.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("generationConfig = %+v", got.GenerationConfig)
	}
	if !strings.Contains(got.Contents[0].Parts[0].Text, "IMPORTANT - USER INSTRUCTIONS: focus on dates") {
		t.Error("custom instructions missing from prompt")
	}
}

func TestGemini_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded"}}`))
			return
		}
		writeCandidate(w, "ok")
	})

	text, err := c.Analyze(context.Background(), testPNG, "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if text != "ok" || calls.Load() != 3 {
		t.Errorf("text = %q after %d calls, want ok after 3", text, calls.Load())
	}
}

func TestGemini_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	})

	_, err := c.Analyze(context.Background(), testPNG, "")
	if !errors.Is(err, errors.ErrAIFailed) {
		t.Fatalf("expected ErrAIFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error = %v, want API message", err)
	}
	if calls.Load() != geminiMaxRetries {
		t.Errorf("calls = %d, want %d", calls.Load(), geminiMaxRetries)
	}
}

func TestGemini_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	})

	_, err := c.Analyze(context.Background(), testPNG, "")
	if !errors.Is(err, errors.ErrAIFailed) {
		t.Fatalf("expected ErrAIFailed, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGemini_EmptyAndBlockedResponses(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	_, err := c.Analyze(context.Background(), testPNG, "")
	if !errors.Is(err, errors.ErrAIFailed) || !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("expected blocked ErrAIFailed, got %v", err)
	}
}

func TestGemini_MissingKey(t *testing.T) {
	c := NewGeminiClient("")
	_, err := c.Analyze(context.Background(), testPNG, "")
	if !errors.Is(err, errors.ErrAIUnavailable) {
		t.Errorf("expected ErrAIUnavailable, got %v", err)
	}
}

func TestGemini_NoImage(t *testing.T) {
	c := NewGeminiClient("k")
	_, err := c.SmartFill(context.Background(), nil, "")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNewBackend(t *testing.T) {
	t.Setenv(APIKeyEnv, "env-key")

	cfg := config.DefaultConfig()
	b := NewBackend(cfg)
	g, ok := b.(*GeminiClient)
	if !ok {
		t.Fatalf("NewBackend() = %T, want *GeminiClient", b)
	}
	if g.apiKey != "env-key" {
		t.Errorf("apiKey = %q, want env fallback", g.apiKey)
	}

	cfg.GeminiAPIKey = "cfg-key"
	if g := NewBackend(cfg).(*GeminiClient); g.apiKey != "cfg-key" {
		t.Errorf("apiKey = %q, want config key", g.apiKey)
	}

	cfg.AIProxyURL = "http://127.0.0.1:8000/"
	p, ok := NewBackend(cfg).(*ProxyClient)
	if !ok {
		t.Fatalf("NewBackend() = %T, want *ProxyClient", NewBackend(cfg))
	}
	if p.baseURL != "http://127.0.0.1:8000" {
		t.Errorf("baseURL = %q", p.baseURL)
	}
}

func TestPrompts(t *testing.T) {
	if !strings.HasPrefix(AnalyzePrompt(""), "Analyze this screenshot.") {
		t.Error("default analyze prompt changed")
	}
	if !strings.HasPrefix(AnalyzePrompt("read the error"), "USER INSTRUCTION: read the error") {
		t.Error("custom analyze prompt missing instruction")
	}
	for _, field := range []string{"title", "tags", "summary", "deadline", "type", "software", "file_path"} {
		if !strings.Contains(SmartFillPrompt(""), `"`+field+`"`) {
			t.Errorf("smart fill prompt missing %q", field)
		}
	}
	if strings.Contains(SmartFillPrompt(""), "IMPORTANT") {
		t.Error("default smart fill prompt should carry no user instructions")
	}
}
