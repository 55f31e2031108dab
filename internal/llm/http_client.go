package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/deckforge/internal/retry"
)

// HTTPClient talks to an OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
	policy  retry.Policy
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying *http.Client (used in tests).
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithRetryPolicy overrides the transient-failure backoff policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(h *HTTPClient) { h.policy = p }
}

// NewHTTPClient creates a client for the given endpoint and model.
func NewHTTPClient(baseURL, model, apiKey string, timeout time.Duration, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		policy:  retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Info returns the configured model identity.
func (h *HTTPClient) Info() ModelInfo {
	return ModelInfo{Model: h.model, BaseURL: h.baseURL}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends prompt as a single user message and decodes the JSON
// payload of the reply into out. Transient HTTP failures (5xx, network
// errors) are retried per the client's backoff policy; 4xx responses
// and malformed payloads are not.
func (h *HTTPClient) Generate(ctx context.Context, prompt string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= h.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := h.policy.Delay(attempt)
			slog.Debug("retrying generation call", "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		content, retryable, err := h.complete(ctx, prompt)
		if err == nil {
			return DecodeResponse(content, out)
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return fmt.Errorf("generation call failed after %d retries: %w", h.policy.MaxRetries, lastErr)
}

// complete performs one chat-completions round trip. The second return
// value reports whether the failure is worth retrying.
func (h *HTTPClient) complete(ctx context.Context, prompt string) (string, bool, error) {
	body, err := json.Marshal(chatRequest{
		Model:    h.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", false, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		h.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", true, fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("chat endpoint returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return "", false, fmt.Errorf("parse chat response: %w", err)
	}
	if cr.Error != nil {
		return "", false, fmt.Errorf("chat endpoint error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", false, fmt.Errorf("chat response contained no choices")
	}
	return cr.Choices[0].Message.Content, false, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
