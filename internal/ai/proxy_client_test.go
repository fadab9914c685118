package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hpungsan/gemshot/internal/errors"
)

func TestProxyClient_Endpoints(t *testing.T) {
	var paths []string
	var last ProxyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if err := json.NewDecoder(r.Body).Decode(&last); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ProxyResponse{Result: "result for " + r.URL.Path})
	}))
	defer srv.Close()

	c := NewProxyClient(srv.URL)
	ctx := context.Background()

	text, err := c.Analyze(ctx, testPNG, "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if text != "result for /analyze" {
		t.Errorf("text = %q", text)
	}

	text, err = c.SmartFill(ctx, testPNG, "only dates")
	if err != nil {
		t.Fatalf("SmartFill() error = %v", err)
	}
	if text != "result for /smart_fill" {
		t.Errorf("text = %q", text)
	}
	if last.Instructions != "only dates" {
		t.Errorf("instructions = %q", last.Instructions)
	}
	if last.Image != base64.StdEncoding.EncodeToString(testPNG) {
		t.Error("image not base64 encoded")
	}
	if strings.Join(paths, ",") != "/analyze,/smart_fill" {
		t.Errorf("paths = %v", paths)
	}
}

func TestProxyClient_ErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ProxyError{Detail: "GEMINI_API_KEY not set in environment"})
	}))
	defer srv.Close()

	_, err := NewProxyClient(srv.URL).Analyze(context.Background(), testPNG, "")
	if !errors.Is(err, errors.ErrAIFailed) {
		t.Fatalf("expected ErrAIFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY not set") {
		t.Errorf("error = %v, want proxy detail", err)
	}
}

func TestProxyClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewProxyClient(url).Analyze(context.Background(), testPNG, "")
	if !errors.Is(err, errors.ErrAIFailed) {
		t.Errorf("expected ErrAIFailed, got %v", err)
	}
}
