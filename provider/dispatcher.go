package provider

import (
	"context"
	"strings"

	"github.com/xiaot623/chatrelay/config"
	"github.com/xiaot623/chatrelay/domain"
)

// Dispatcher selects one backend per chat turn. The rule: an explicit
// "gemini" provider flag or a model id prefixed "gemini" routes to the
// generative backend, everything else to the completions backend. No
// fallback between providers.
type Dispatcher struct {
	openai Backend
	gemini Backend

	defaultProvider string
	defaultModel    string
}

// NewDispatcher builds a dispatcher with both backends configured from cfg.
func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		openai:          NewOpenAIBackend(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.MaxOutputTokens, cfg.LLMTimeout),
		gemini:          NewGeminiBackend(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.LLMTimeout),
		defaultProvider: cfg.DefaultProvider,
		defaultModel:    cfg.DefaultModel,
	}
}

// NewDispatcherWithBackends builds a dispatcher over the given backends.
// Tests use it to substitute fakes.
func NewDispatcherWithBackends(openai, gemini Backend, defaultProvider, defaultModel string) *Dispatcher {
	return &Dispatcher{
		openai:          openai,
		gemini:          gemini,
		defaultProvider: defaultProvider,
		defaultModel:    defaultModel,
	}
}

// Generate routes the transcript to exactly one backend and returns its
// normalized text reply.
func (d *Dispatcher) Generate(ctx context.Context, transcript []domain.Message, model, providerName string) (string, error) {
	if providerName == "" {
		providerName = d.defaultProvider
	}
	if model == "" {
		model = d.defaultModel
	}

	backend := d.openai
	if strings.EqualFold(providerName, d.gemini.Name()) || strings.HasPrefix(model, "gemini") {
		backend = d.gemini
	}

	return backend.Generate(ctx, transcript, model)
}
