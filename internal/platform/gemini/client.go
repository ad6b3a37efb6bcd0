// Package gemini implements the translation provider boundary over the
// Gemini API. It is selected for models whose provider is "gemini"; the
// retry envelope mirrors the openai client.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/avetrov/babel-api/internal/chunker"
	"github.com/avetrov/babel-api/internal/domain"
	"github.com/avetrov/babel-api/internal/platform/logger"
	"github.com/avetrov/babel-api/internal/translation"
)

// Config holds the API and retry settings for the client.
type Config struct {
	APIKey         string
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	RequestTimeout time.Duration
}

// generateFunc issues one generation request and returns the produced text
// and the reported total token count (0 when the API omitted usage data).
type generateFunc func(ctx context.Context, model, systemPrompt, chunk string) (string, int, error)

// Client calls the Gemini API with the system prompt as a system
// instruction and the chunk as user content. Safe for concurrent use.
type Client struct {
	cfg      Config
	generate generateFunc
}

// NewClient creates a Client connected to the Gemini API.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Client{
		cfg: cfg,
		generate: func(ctx context.Context, model, systemPrompt, chunk string) (string, int, error) {
			resp, err := api.Models.GenerateContent(ctx, model, genai.Text(chunk),
				&genai.GenerateContentConfig{
					SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
				})
			if err != nil {
				return "", 0, err
			}
			text := resp.Text()
			tokens := 0
			if resp.UsageMetadata != nil {
				tokens = int(resp.UsageMetadata.TotalTokenCount)
			}
			return text, tokens, nil
		},
	}, nil
}

// TranslateChunk sends one chunk for translation. Rate limits and server
// errors are retried with exponential backoff; exhaustion maps to
// translation.ErrProviderTimeout. Rejected requests and empty completions
// are permanent translation.ErrProvider failures and are not retried.
func (c *Client) TranslateChunk(ctx context.Context, model domain.AIModel, systemPrompt, chunk string) (translation.ChunkResult, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		text, tokens, err := c.doAttempt(ctx, model.Name, systemPrompt, chunk)
		if err == nil {
			if text == "" {
				return translation.ChunkResult{}, fmt.Errorf("%w: empty completion", translation.ErrProvider)
			}
			if tokens == 0 {
				// Usage metadata is occasionally absent; approximate so the
				// task cost never silently drops to zero.
				tokens = chunker.CountWords(chunk) + chunker.CountWords(text)
			}
			return translation.ChunkResult{Text: text, TokensUsed: tokens}, nil
		}
		if !transient(err) {
			log.Warn("gemini rejected request",
				slog.String("model", model.Name),
				slog.String("error", err.Error()))
			return translation.ChunkResult{}, fmt.Errorf("%w: %v", translation.ErrProvider, err)
		}
		lastErr = err

		log.Warn("gemini request failed",
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

// transient reports whether an attempt error is worth retrying. Rate limits
// and server-side failures are; any other API status (invalid argument,
// auth, safety block) means the request itself is bad and a retry cannot
// succeed. Errors without an API status are network-level and retried.
func transient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

func (c *Client) doAttempt(ctx context.Context, model, systemPrompt, chunk string) (string, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	return c.generate(attemptCtx, model, systemPrompt, chunk)
}

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
