// Package gemini implements the text-generation client backed by the Gemini API.
// Every agent prompt in the system flows through this client, so it carries
// the resilience layer for the model backend: retry with backoff for transient
// failures and a circuit breaker that sheds load when the API degrades.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/campus-hub/clubevent-hub/internal/domain/shared"
	"github.com/campus-hub/clubevent-hub/pkg/circuitbreaker"
	"github.com/campus-hub/clubevent-hub/pkg/logger"
	"github.com/campus-hub/clubevent-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

const defaultModel = "gemini-2.5-flash"

// Config contains configuration for the Gemini client.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Model is the model name. Defaults to gemini-2.5-flash.
	Model string

	// RequestTimeout bounds a single generation call.
	RequestTimeout time.Duration

	// Logger for structured logging.
	Logger *logger.Logger
}

// DefaultConfig returns sensible defaults for the given API key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:         apiKey,
		Model:          defaultModel,
		RequestTimeout: 60 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Common errors.
var (
	// ErrEmptyPrompt is returned when the prompt is blank.
	ErrEmptyPrompt = errors.New("prompt must not be empty")
	// ErrEmptyResponse is returned when the API produced no usable text.
	ErrEmptyResponse = errors.New("gemini api returned empty response")
)

// Client wraps the Google GenAI client behind a retrier and a circuit breaker.
// It satisfies the agents.TextGenerator contract.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration

	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// New creates a Client configured for the Gemini API backend.
func New(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	breaker := circuitbreaker.ModelBreaker(func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state change",
			logger.Component(name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})

	return &Client{
		client:  genaiClient,
		model:   model,
		timeout: timeout,
		retrier: retry.ModelRetrier(),
		breaker: breaker,
		log:     log,
	}, nil
}

// Generate sends the prompt to the model and returns the textual response.
// Transient failures are retried; repeated failures open the circuit and the
// call fails fast until the backend recovers.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	start := time.Now()

	result, err := retry.DoWithData(ctx, c.retrier, func(ctx context.Context) (string, error) {
		var text string
		cbErr := c.breaker.Execute(ctx, func(ctx context.Context) error {
			var genErr error
			text, genErr = c.generateOnce(ctx, prompt)
			return genErr
		})
		if cbErr != nil {
			if errors.Is(cbErr, circuitbreaker.ErrCircuitOpen) || errors.Is(cbErr, circuitbreaker.ErrTooManyRequests) {
				// Fail fast - retrying while the circuit is open only burns time.
				return "", retry.Permanent(cbErr)
			}
			if errors.Is(cbErr, ErrEmptyPrompt) {
				return "", retry.Permanent(cbErr)
			}
			return "", retry.Retryable(cbErr)
		}
		return text, nil
	})
	if err != nil {
		c.log.Error("generation failed",
			logger.Component("gemini"),
			logger.String("model", c.model),
			logger.Latency(time.Since(start)),
			logger.Err(err),
		)
		return "", shared.WrapError("gemini", "Generate", shared.ErrModelUnavailable, "model request failed", err)
	}

	c.log.Debug("generation completed",
		logger.Component("gemini"),
		logger.String("model", c.model),
		logger.Latency(time.Since(start)),
	)

	return result, nil
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", ErrEmptyResponse
	}

	return output, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}
