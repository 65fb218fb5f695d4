package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/pkg/circuitbreaker"
	"github.com/respira-app/respira-server/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the text-generation API client.
type ClientConfig struct {
	// BaseURL is the API base URL (OpenAI-compatible chat completions).
	BaseURL string

	// APIKey authenticates requests.
	APIKey string

	// Model is the model identifier sent with every request.
	Model string

	// Temperature controls sampling randomness.
	Temperature float64

	// MaxTokens bounds the response length.
	MaxTokens int

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables debug logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:     baseURL,
		Model:       "llama-3.1-8b-instant",
		Temperature: 0.7,
		MaxTokens:   300,
		Timeout:     30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client talks to the external text-generation service.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a text-generation API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:  config.Logger,
		retrier: retry.CoachRetrier(),
	}
	c.breaker = circuitbreaker.CoachAPIBreaker(func(name string, from, to circuitbreaker.State) {
		c.logger.Warn("coach api circuit state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	})
	return c
}

// chatRequest is the OpenAI-compatible chat completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the completions response we consume.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends a system and user prompt pair and returns the cleaned
// response text. Requests are retried on transient failures and blocked
// while the circuit is open.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var text string

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			resp, err := c.doRequest(ctx, systemPrompt, userPrompt)
			if err != nil {
				return err
			}
			text = resp
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return "", shared.ErrCoachUnavailable
		}
		return "", err
	}
	return text, nil
}

// doRequest performs a single completions request.
func (c *Client) doRequest(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	if c.config.Debug {
		c.logger.Debug("coach api request", "model", c.config.Model)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", retry.Permanent(shared.ErrCoachTimeout)
		}
		return "", retry.Retryable(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", retry.Retryable(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", retry.Retryable(shared.ErrRateLimited)
	case resp.StatusCode >= 500:
		return "", retry.Retryable(fmt.Errorf("api error: status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return "", retry.Permanent(fmt.Errorf("api error: status %d: %s", resp.StatusCode, string(respBody)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", retry.Permanent(shared.WrapError("coach", "Parse", shared.ErrInvalidFormat, "invalid completions payload", err))
	}
	if len(parsed.Choices) == 0 {
		return "", retry.Permanent(shared.ErrCoachInvalidResponse)
	}

	return CleanResponse(parsed.Choices[0].Message.Content), nil
}

// CleanResponse strips markdown emphasis the model sometimes emits despite
// the plain-text rule, and trims whitespace.
func CleanResponse(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "*", ""))
}

// IsHealthy reports whether the service answered a trivial request recently.
func (c *Client) IsHealthy() bool {
	return !c.breaker.IsOpen()
}

// Reset resets the circuit breaker.
func (c *Client) Reset() {
	c.breaker.Reset()
}
