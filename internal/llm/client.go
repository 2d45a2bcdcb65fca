// Package llm wraps the language-model providers used by the query assistant
// behind one small text-in/text-out interface.
package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Provider names accepted in configuration.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("no text response from model")

// Request is a single-turn generation request.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Client generates text for a single-turn request.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
}

// NewClient builds the configured provider wrapped in a circuit breaker.
func NewClient(cfg Config, logger *zap.Logger) (Client, error) {
	var (
		inner Client
		err   error
	)
	switch cfg.Provider {
	case ProviderAnthropic, "":
		inner, err = NewAnthropicClient(cfg, logger)
	case ProviderOpenAI:
		inner, err = NewOpenAIClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewBreakerClient(inner, cfg.Provider, DefaultBreakerSettings(), logger), nil
}
