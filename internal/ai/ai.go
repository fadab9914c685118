// Package ai talks to the vision model that analyzes captures: directly
// through the Gemini REST API, or through the local proxy.
package ai

import (
	"context"
	"os"
	"strings"

	"github.com/hpungsan/gemshot/internal/config"
)

// Model is the Gemini model used for every request.
const Model = "gemini-2.0-flash-lite"

// APIKeyEnv is consulted when the config carries no API key.
const APIKeyEnv = "GEMINI_API_KEY"

// Backend analyzes PNG images.
type Backend interface {
	// Analyze returns a free-text analysis of the image.
	Analyze(ctx context.Context, png []byte, instructions string) (string, error)

	// SmartFill returns a JSON object describing the image
	// (title, tags, summary, deadline, type, software, file_path).
	SmartFill(ctx context.Context, png []byte, instructions string) (string, error)
}

// NewBackend picks the backend the config asks for: the proxy when
// ai_proxy_url is set, otherwise Gemini directly.
func NewBackend(cfg *config.Config) Backend {
	if u := strings.TrimSpace(cfg.AIProxyURL); u != "" {
		return NewProxyClient(u)
	}
	return NewGeminiClient(APIKey(cfg))
}

// APIKey returns the configured Gemini key, falling back to the environment.
func APIKey(cfg *config.Config) string {
	if k := strings.TrimSpace(cfg.GeminiAPIKey); k != "" {
		return k
	}
	return strings.TrimSpace(os.Getenv(APIKeyEnv))
}
