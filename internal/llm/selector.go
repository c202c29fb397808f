package llm

import (
	"context"
	"fmt"

	"codeberg.org/notecanvas/server/internal/logger"
)

// ParseProvider maps a selector string onto Provider. Unknown values,
// including the empty string, fail with ErrInvalidConfiguration.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(name); p {
	case ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderGoogle:
		return p, nil
	}

	return "", fmt.Errorf("%w: unsupported model provider %q", ErrInvalidConfiguration, name)
}

// Resolve picks the provider (settings.Model first, then stateModel) and
// returns the full model configuration for it. Every configuration uses
// temperature 0.
func Resolve(settings Settings, stateModel string) (ModelConfig, error) {
	requested := settings.Model
	if requested == "" {
		requested = stateModel
	}

	provider, err := ParseProvider(requested)
	if err != nil {
		return ModelConfig{}, err
	}

	maxTokens := settings.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	cfg := ModelConfig{Provider: provider, Temperature: 0, MaxTokens: maxTokens}

	switch provider {
	case ProviderOpenAI:
		cfg.Model = OpenAIModel
		cfg.APIKey = settings.OpenAIAPIKey
	case ProviderDeepSeek:
		cfg.Model = orDefault(settings.DeepSeekModel, DefaultDeepSeekModel)
		cfg.BaseURL = orDefault(settings.OpenAIBaseURL, DefaultDeepSeekURL)
		cfg.APIKey = settings.OpenAIAPIKey
	case ProviderAnthropic:
		cfg.Model = AnthropicModel
		cfg.BaseURL = settings.AnthropicBaseURL
		cfg.APIKey = settings.AnthropicAPIKey
	case ProviderGoogle:
		cfg.Model = GoogleModel
		cfg.APIKey = settings.GoogleAPIKey
	}

	return cfg, nil
}

// NewChatModel builds the client for an already resolved configuration.
func NewChatModel(ctx context.Context, cfg ModelConfig) (ChatModel, error) {
	switch cfg.Provider {
	case ProviderOpenAI, ProviderDeepSeek:
		return NewOpenAIChat(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicChat(cfg), nil
	case ProviderGoogle:
		return NewGenAIChat(ctx, cfg)
	}

	return nil, fmt.Errorf("%w: unsupported model provider %q", ErrInvalidConfiguration, cfg.Provider)
}

// Selector turns a state's model field into a chat model, reading
// overrides through Load on every call.
type Selector struct {
	Load func() Settings
	New  func(ctx context.Context, cfg ModelConfig) (ChatModel, error)
}

// returns a selector backed by the process environment
func NewSelector() *Selector {
	return &Selector{Load: LoadSettings, New: NewChatModel}
}

func (s *Selector) Select(ctx context.Context, stateModel string) (ChatModel, error) {
	cfg, err := Resolve(s.Load(), stateModel)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("model selected",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"base_url", cfg.BaseURL,
		"temperature", cfg.Temperature,
	)

	return s.New(ctx, cfg)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}

	return v
}
