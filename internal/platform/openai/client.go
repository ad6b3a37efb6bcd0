// Package openai implements the translation provider boundary over an
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/translation"
)

// Config holds the HTTP and retry settings for the client.
type Config struct {
	// BaseURL is the API root; the client appends /v1/chat/completions.
	BaseURL string

	// APIKey is forwarded to the endpoint with each request.
	APIKey string

	// MaxAttempts is the total number of tries per chunk, first call
	// included.
	MaxAttempts int

	// RetryBaseDelay is the delay before the first retry; it doubles per
	// attempt up to RetryMaxDelay.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// RequestTimeout bounds each individual attempt.
	RequestTimeout time.Duration
}

// Client calls a chat completions endpoint and retries transient failures
// with exponential backoff. Safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client. The http.Client carries no timeout of its own;
// per-attempt deadlines come from Config.RequestTimeout.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Provider string        `json:"provider"`
	APIKey   string        `json:"api_key,omitempty"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// TranslateChunk sends one chunk for translation. Transient failures
// (connection errors, timeouts, 429, 5xx) are retried with exponential
// backoff; exhaustion maps to translation.ErrProviderTimeout. Client errors
// and malformed responses fail immediately with translation.ErrProvider.
func (c *Client) TranslateChunk(ctx context.Context, model domain.AIModel, systemPrompt, chunk string) (translation.ChunkResult, error) {
	log := logger.FromContext(ctx)

	body, err := json.Marshal(chatRequest{
		Model:    model.Name,
		Provider: model.Provider,
		APIKey:   c.cfg.APIKey,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: chunk},
		},
	})
	if err != nil {
		return translation.ChunkResult{}, fmt.Errorf("encoding request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		result, err := c.doAttempt(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isTransient(err) {
			return translation.ChunkResult{}, err
		}

		log.Warn("provider request failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.cfg.MaxAttempts),
			slog.String("model", model.Name),
			slog.String("error", err.Error()))

		if attempt == c.cfg.MaxAttempts {
			break
		}

		select {
		case <-time.After(c.backoff(attempt)):
		case <-ctx.Done():
			return translation.ChunkResult{}, fmt.Errorf("%w: %v", translation.ErrProviderTimeout, ctx.Err())
		}
	}

	return translation.ChunkResult{}, fmt.Errorf("%w: %d attempts failed: %v",
		translation.ErrProviderTimeout, c.cfg.MaxAttempts, lastErr)
}

// transientError marks failures worth retrying. Unexported; callers only
// ever see the translation sentinels.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func (c *Client) doAttempt(ctx context.Context, body []byte) (translation.ChunkResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost,
		c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return translation.ChunkResult{}, fmt.Errorf("%w: building request: %v", translation.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection failures and attempt timeouts are both retryable.
		return translation.ChunkResult{}, &transientError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return translation.ChunkResult{}, &transientError{err: fmt.Errorf("reading response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return translation.ChunkResult{}, &transientError{
			err: fmt.Errorf("provider returned status %d", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		return translation.ChunkResult{}, fmt.Errorf("%w: status %d", translation.ErrProvider, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return translation.ChunkResult{}, fmt.Errorf("%w: decoding response: %v", translation.ErrProvider, err)
	}
	if len(parsed.Choices) == 0 {
		return translation.ChunkResult{}, fmt.Errorf("%w: response has no choices", translation.ErrProvider)
	}

	return translation.ChunkResult{
		Text:       parsed.Choices[0].Message.Content,
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}

// maxResponseBytes bounds response reads. Translated chunks are a few
// hundred words; anything near this limit is a broken endpoint.
const maxResponseBytes = 10 << 20

// backoff doubles the base delay per completed attempt, capped at the
// configured maximum.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.cfg.RetryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.cfg.RetryMaxDelay {
			return c.cfg.RetryMaxDelay
		}
	}
	if delay > c.cfg.RetryMaxDelay {
		return c.cfg.RetryMaxDelay
	}
	return delay
}
