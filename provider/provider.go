package provider

import (
	"context"
	"errors"

	"github.com/adhikar-ai/adhikar/config"
	gemini_provider "github.com/adhikar-ai/adhikar/provider/gemini"
	openai_provider "github.com/adhikar-ai/adhikar/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
	Gemini Client = "gemini"
)

// Provider is the interface that all LLM implementations must satisfy.
// Complete sends one prompt and returns raw model text. When wantJSON is set
// the backend is asked for a JSON object response; callers still have to treat
// the output as untrusted and decode defensively.
type Provider interface {
	Complete(ctx context.Context, prompt string, wantJSON bool) (string, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key not set")
	}
	switch Client(cfg.Provider) {
	case OpenAI:
		return openai_provider.NewClient(cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens, cfg.Timeout), nil
	case Gemini:
		return gemini_provider.NewClient(cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens, cfg.Timeout), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
