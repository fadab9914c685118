package proxy

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hpungsan/gemshot/internal/ai"
	"github.com/hpungsan/gemshot/internal/errors"
)

type fakeBackend struct {
	gotPNG          []byte
	gotInstructions string
	err             error
}

func (f *fakeBackend) Analyze(ctx context.Context, png []byte, instructions string) (string, error) {
	f.gotPNG, f.gotInstructions = png, instructions
	if f.err != nil {
		return "", f.err
	}
	return "Title: Chart | Tags: data | Summary: a chart", nil
}

func (f *fakeBackend) SmartFill(ctx context.Context, png []byte, instructions string) (string, error) {
	f.gotPNG, f.gotInstructions = png, instructions
	if f.err != nil {
		return "", f.err
	}
	return `{"title":"Chart"}`, nil
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func requestBody(png []byte, instructions string) string {
	data, _ := json.Marshal(ai.ProxyRequest{
		Image:        base64.StdEncoding.EncodeToString(png),
		Instructions: instructions,
	})
	return string(data)
}

func TestAnalyze(t *testing.T) {
	backend := &fakeBackend{}
	h := Router(backend, nil)

	w := post(t, h, "/analyze", requestBody([]byte("png-bytes"), "what is this"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ai.ProxyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(resp.Result, "Title: Chart") {
		t.Errorf("result = %q", resp.Result)
	}
	if string(backend.gotPNG) != "png-bytes" || backend.gotInstructions != "what is this" {
		t.Errorf("backend got (%q, %q)", backend.gotPNG, backend.gotInstructions)
	}
}

func TestSmartFill(t *testing.T) {
	h := Router(&fakeBackend{}, nil)

	w := post(t, h, "/smart_fill", requestBody([]byte("png"), ""))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ai.ProxyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Result != `{"title":"Chart"}` {
		t.Errorf("result = %q", resp.Result)
	}
}

func TestBadRequests(t *testing.T) {
	h := Router(&fakeBackend{}, nil)

	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"invalid base64", `{"image":"%%% not base64 %%%"}`, "Invalid base64 image"},
		{"empty image", `{"image":""}`, "Invalid base64 image"},
		{"malformed json", `{"image":`, "Invalid request body"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := post(t, h, "/analyze", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var e ai.ProxyError
			if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if e.Detail != tc.detail {
				t.Errorf("detail = %q, want %q", e.Detail, tc.detail)
			}
		})
	}
}

func TestBackendFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.NewAIUnavailable("no Gemini API key configured")}
	h := Router(backend, nil)

	w := post(t, h, "/smart_fill", requestBody([]byte("png"), ""))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var e ai.ProxyError
	if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Detail != "no Gemini API key configured" {
		t.Errorf("detail = %q", e.Detail)
	}

	backend.err = fmt.Errorf("plain failure")
	w = post(t, h, "/analyze", requestBody([]byte("png"), ""))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := Router(&fakeBackend{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

// TestProxyClientRoundTrip drives the real client against the real router.
func TestProxyClientRoundTrip(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(Router(backend, nil))
	defer srv.Close()

	client := ai.NewProxyClient(srv.URL)
	text, err := client.SmartFill(context.Background(), []byte("png"), "dates only")
	if err != nil {
		t.Fatalf("SmartFill() error = %v", err)
	}
	if text != `{"title":"Chart"}` || backend.gotInstructions != "dates only" {
		t.Errorf("text = %q, instructions = %q", text, backend.gotInstructions)
	}

	backend.err = errors.NewAIFailed(fmt.Errorf("quota exceeded"))
	_, err = client.Analyze(context.Background(), []byte("png"), "")
	if !errors.Is(err, errors.ErrAIFailed) || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected ErrAIFailed with detail, got %v", err)
	}
}
