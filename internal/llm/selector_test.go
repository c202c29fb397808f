package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSupportedProviders(t *testing.T) {
	settings := Settings{
		OpenAIAPIKey:    "sk-openai",
		AnthropicAPIKey: "sk-ant",
		MaxTokens:       1000,
	}

	tests := []struct {
		name  string
		model string
		want  ModelConfig
	}{
		{
			name:  "openai",
			model: "openai",
			want:  ModelConfig{Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-openai", MaxTokens: 1000},
		},
		{
			name:  "deepseek defaults",
			model: "deepseek",
			want: ModelConfig{
				Provider:  ProviderDeepSeek,
				Model:     "ep-20250206170923-bx29l",
				BaseURL:   "https://ark.cn-beijing.volces.com/api/v3",
				APIKey:    "sk-openai",
				MaxTokens: 1000,
			},
		},
		{
			name:  "anthropic",
			model: "anthropic",
			want:  ModelConfig{Provider: ProviderAnthropic, Model: "claude-3-5-sonnet-20240620", APIKey: "sk-ant", MaxTokens: 1000},
		},
		{
			name:  "google without key",
			model: "google_genai",
			want:  ModelConfig{Provider: ProviderGoogle, Model: "gemini-1.5-pro", MaxTokens: 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(settings, tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, got.Temperature)
		})
	}
}

func TestResolveDeepSeekOverrides(t *testing.T) {
	got, err := Resolve(Settings{
		DeepSeekModel: "deepseek-chat",
		OpenAIBaseURL: "https://api.deepseek.com/v1",
	}, "deepseek")

	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, "https://api.deepseek.com/v1", got.BaseURL)
}

func TestResolveOverrideWinsOverState(t *testing.T) {
	got, err := Resolve(Settings{Model: "anthropic"}, "openai")

	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, got.Provider)
}

func TestResolveFallsBackToState(t *testing.T) {
	got, err := Resolve(Settings{}, "openai")

	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, got.Provider)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
}

func TestResolveRejectsUnknownProvider(t *testing.T) {
	for _, model := range []string{"", "gpt-4o", "OpenAI", "mistral"} {
		_, err := Resolve(Settings{}, model)
		require.Error(t, err, model)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration), model)
	}

	// an invalid override is not rescued by a valid state value
	_, err := Resolve(Settings{Model: "bogus"}, "openai")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestResolveIsRepeatable(t *testing.T) {
	s := Settings{OpenAIAPIKey: "k"}

	a, err := Resolve(s, "deepseek")
	require.NoError(t, err)
	b, err := Resolve(s, "deepseek")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

type stubModel struct {
	cfg ModelConfig
}

func (s *stubModel) Generate(context.Context, ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Text: "ok"}, nil
}

func (s *stubModel) Config() ModelConfig { return s.cfg }

func TestSelectorReadsSettingsPerCall(t *testing.T) {
	calls := 0
	override := "openai"

	sel := &Selector{
		Load: func() Settings {
			calls++
			return Settings{Model: override}
		},
		New: func(_ context.Context, cfg ModelConfig) (ChatModel, error) {
			return &stubModel{cfg: cfg}, nil
		},
	}

	m, err := sel.Select(context.Background(), "deepseek")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, m.Config().Provider)

	override = ""
	m, err = sel.Select(context.Background(), "deepseek")
	require.NoError(t, err)
	assert.Equal(t, ProviderDeepSeek, m.Config().Provider)
	assert.Equal(t, 2, calls)
}

func TestSelectorInvalidConfiguration(t *testing.T) {
	built := false
	sel := &Selector{
		Load: func() Settings { return Settings{} },
		New: func(_ context.Context, cfg ModelConfig) (ChatModel, error) {
			built = true
			return &stubModel{cfg: cfg}, nil
		},
	}

	_, err := sel.Select(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.False(t, built, "no client may be built for an unknown provider")
}

func TestNewChatModelKeepsConfig(t *testing.T) {
	for _, model := range []string{"openai", "deepseek", "anthropic"} {
		cfg, err := Resolve(Settings{OpenAIAPIKey: "k", AnthropicAPIKey: "k"}, model)
		require.NoError(t, err)

		m, err := NewChatModel(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, cfg, m.Config())
		assert.Zero(t, m.Config().Temperature)
	}

	_, err := NewChatModel(context.Background(), ModelConfig{Provider: "other"})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
