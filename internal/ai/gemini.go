package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/gemshot/internal/errors"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	geminiMaxRetries   = 3
	geminiInitialDelay = 1 * time.Second
	geminiTimeout      = 60 * time.Second
)

// GeminiClient calls the Gemini generateContent endpoint.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	retryDelay time.Duration
	client     *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiClient creates a client for the given API key. An empty key is
// accepted; every call then fails with AI_UNAVAILABLE.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    geminiBaseURL,
		model:      Model,
		retryDelay: geminiInitialDelay,
		client:     &http.Client{Timeout: geminiTimeout},
	}
}

// Analyze implements Backend.
func (c *GeminiClient) Analyze(ctx context.Context, png []byte, instructions string) (string, error) {
	return c.generate(ctx, AnalyzePrompt(instructions), png, "")
}

// SmartFill implements Backend. The model is asked for JSON output.
func (c *GeminiClient) SmartFill(ctx context.Context, png []byte, instructions string) (string, error) {
	return c.generate(ctx, SmartFillPrompt(instructions), png, "application/json")
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, png []byte, mimeType string) (string, error) {
	if c.apiKey == "" {
		return "", errors.NewAIUnavailable("no Gemini API key configured")
	}
	if len(png) == 0 {
		return "", errors.NewInvalidRequest("no image provided")
	}

	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{
			{Text: prompt},
			{InlineData: &inlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(png)}},
		}}},
	}
	if mimeType != "" {
		req.GenerationConfig = &generationConfig{ResponseMimeType: mimeType}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to marshal request: %w", err))
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	// Retry with exponential backoff
	var lastErr error
	for attempt := 0; attempt < geminiMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.retryDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", errors.NewAIFailed(ctx.Err())
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", errors.NewInternal(fmt.Errorf("failed to create request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var gErr geminiError
			if json.Unmarshal(respBody, &gErr) == nil && gErr.Error.Message != "" {
				lastErr = fmt.Errorf("Gemini API error (%d): %s", resp.StatusCode, gErr.Error.Message)
			} else {
				lastErr = fmt.Errorf("Gemini API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
			}

			// Retry on rate limit (429) or server errors (5xx)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return "", errors.NewAIFailed(lastErr)
		}

		var gResp geminiResponse
		if err := json.Unmarshal(respBody, &gResp); err != nil {
			return "", errors.NewAIFailed(fmt.Errorf("failed to decode response: %w", err))
		}
		text := gResp.text()
		if text == "" {
			if gResp.PromptFeedback.BlockReason != "" {
				return "", errors.NewAIFailed(fmt.Errorf("request blocked: %s", gResp.PromptFeedback.BlockReason))
			}
			return "", errors.NewAIFailed(fmt.Errorf("empty response from model"))
		}
		return text, nil
	}

	return "", errors.NewAIFailed(fmt.Errorf("max retries exceeded: %w", lastErr))
}

// text joins the text parts of the first candidate.
func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
