package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/gemshot/internal/errors"
)

// ProxyTimeout bounds every proxy request.
const ProxyTimeout = 30 * time.Second

// ProxyRequest is the body accepted by the proxy endpoints.
type ProxyRequest struct {
	Image        string `json:"image"` // base64 PNG
	Instructions string `json:"instructions"`
}

// ProxyResponse is the proxy's success body.
type ProxyResponse struct {
	Result string `json:"result"`
}

// ProxyError is the proxy's failure body.
type ProxyError struct {
	Detail string `json:"detail"`
}

// ProxyClient sends analysis requests to a local proxy that holds the API key.
type ProxyClient struct {
	baseURL string
	client  *http.Client
}

// NewProxyClient creates a client for the proxy at baseURL.
func NewProxyClient(baseURL string) *ProxyClient {
	return &ProxyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: ProxyTimeout},
	}
}

// Analyze implements Backend.
func (c *ProxyClient) Analyze(ctx context.Context, png []byte, instructions string) (string, error) {
	return c.post(ctx, "/analyze", png, instructions)
}

// SmartFill implements Backend.
func (c *ProxyClient) SmartFill(ctx context.Context, png []byte, instructions string) (string, error) {
	return c.post(ctx, "/smart_fill", png, instructions)
}

func (c *ProxyClient) post(ctx context.Context, endpoint string, png []byte, instructions string) (string, error) {
	if len(png) == 0 {
		return "", errors.NewInvalidRequest("no image provided")
	}
	body, err := json.Marshal(ProxyRequest{
		Image:        base64.StdEncoding.EncodeToString(png),
		Instructions: instructions,
	})
	if err != nil {
		return "", errors.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.NewAIFailed(fmt.Errorf("proxy request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewAIFailed(fmt.Errorf("failed to read proxy response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var pErr ProxyError
		if json.Unmarshal(respBody, &pErr) == nil && pErr.Detail != "" {
			return "", errors.NewAIFailed(fmt.Errorf("proxy error (%d): %s", resp.StatusCode, pErr.Detail))
		}
		return "", errors.NewAIFailed(fmt.Errorf("proxy error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var out ProxyResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", errors.NewAIFailed(fmt.Errorf("failed to decode proxy response: %w", err))
	}
	return out.Result, nil
}
