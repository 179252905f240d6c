// Package ai holds the outbound OpenRouter client used by the
// server-side connectivity test.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultProbeModel = "anthropic/claude-haiku-4.5"

type OpenRouterClient struct {
	BaseURL string
	Client  *http.Client
}

type openRouterMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterChatReq struct {
	Model       string          `json:"model"`
	Messages    []openRouterMsg `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

// UpstreamError carries a non-2xx upstream status and body so the
// handler can relay them verbatim.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("openrouter: %s", msg)
}

func NewOpenRouterClient(baseURL string, timeout time.Duration) *OpenRouterClient {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenRouterClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

// RateProbe sends a fixed short rating prompt with the caller's key and
// model. Exactly one attempt; no retries. The raw upstream JSON is
// returned on 2xx, an *UpstreamError on any other status.
func (c *OpenRouterClient) RateProbe(ctx context.Context, apiKey, model string) (json.RawMessage, error) {
	if c.Client == nil {
		return nil, errors.New("openrouter: http client is nil")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openrouter: api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultProbeModel
	}

	reqBody := openRouterChatReq{
		Model: model,
		Messages: []openRouterMsg{
			{Role: "system", Content: "Return only a number from 0 to 10"},
			{Role: "user", Content: "Rate this: Hello world"},
		},
		MaxTokens:   10,
		Temperature: 0.1,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(c.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return json.RawMessage(body), nil
}
