// Package llm is the chat-completion layer: an Anthropic Messages API client
// with rate-limit retries, a token budget that spaces requests out instead of
// sleeping a fixed interval, and JSON extraction from free-form model output.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/jacksonhblau/patent-detector/internal/config"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"

	defaultMaxTokens = 4096
)

// backoffSchedule is the wait ladder used when a 429 arrives without a
// Retry-After hint. Attempts beyond the ladder reuse the last step.
func backoffSchedule(step time.Duration, attempt int) time.Duration {
	const maxMultiplier = 4
	m := attempt + 1
	if m > maxMultiplier {
		m = maxMultiplier
	}
	return step * time.Duration(m)
}

// sleeper lets tests replace real waiting.
type sleeper func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Client implements port.Completer against the Anthropic Messages API.
type Client struct {
	apiKey      string
	model       string
	endpoint    string
	maxRetries  int
	backoffStep time.Duration
	httpClient  *http.Client
	budget      *TokenBudget
	sleep       sleeper
}

// NewClient creates a completion client from configuration.
func NewClient(cfg *config.LLMConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		endpoint:    endpoint,
		maxRetries:  cfg.MaxRetries,
		backoffStep: cfg.BackoffStep,
		httpClient:  &http.Client{Timeout: timeout},
		budget:      NewTokenBudget(cfg.TokensPerMinute),
		sleep:       defaultSleep,
	}
}

type messageRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
	Tools     []tool        `json:"tools,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

// apiResponse models the Messages API response. Tool-use turns interleave
// non-text blocks; only text blocks contribute to the result.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Complete runs one chat completion and returns the concatenated text blocks.
// 429 responses are retried up to the configured limit, waiting the provider's
// Retry-After when present and the backoff ladder otherwise. Any other
// non-2xx status fails immediately with the response body attached.
func (c *Client) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	if err := c.budget.Wait(ctx, estimateTokens(req)); err != nil {
		return "", fmt.Errorf("llm.Complete: token budget: %w", err)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
	}
	if req.UseWebSearch {
		body.Tools = []tool{{Type: "web_search_20250305", Name: "web_search", MaxUses: 5}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm.Complete: marshaling request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		text, err := c.send(ctx, payload)
		if err == nil {
			return text, nil
		}

		var rle *RateLimitError
		if !errors.As(err, &rle) {
			return "", err
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}
		wait := rle.RetryAfter
		if wait <= 0 {
			wait = backoffSchedule(c.backoffStep, attempt)
		}
		log.Printf("llm.Complete: rate limited, waiting %s (attempt %d/%d)", wait, attempt+1, c.maxRetries)
		if err := c.sleep(ctx, wait); err != nil {
			return "", fmt.Errorf("llm.Complete: %w", err)
		}
	}
	return "", fmt.Errorf("llm.Complete: retries exhausted: %w", lastErr)
}

func (c *Client) send(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", NewRateLimitError("claude", baseErr, retryAfter)
		}
		return "", baseErr
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if parsed.StopReason == "max_tokens" {
		return "", fmt.Errorf("output truncated (stop_reason: max_tokens)")
	}

	var out bytes.Buffer
	for _, block := range parsed.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	return out.String(), nil
}

// estimateTokens sizes a request for the budget: a conservative four
// characters per token over the prompt plus the reserved output window.
func estimateTokens(req port.CompletionRequest) int {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return len(req.Prompt)/4 + len(req.System)/4 + maxTokens
}
