package llm

import (
	"os"
	"strconv"
)

const (
	OpenAIModel          = "gpt-4o"
	DefaultDeepSeekModel = "ep-20250206170923-bx29l"
	DefaultDeepSeekURL   = "https://ark.cn-beijing.volces.com/api/v3"
	AnthropicModel       = "claude-3-5-sonnet-20240620"
	GoogleModel          = "gemini-1.5-pro"

	defaultMaxTokens = 2048
)

// LoadSettings reads the provider overrides from the environment. It is
// called once per selection so operators can change them without a restart.
func LoadSettings() Settings {
	maxTokens := defaultMaxTokens
	if raw := os.Getenv("LLM_MAX_TOKENS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			maxTokens = n
		}
	}

	return Settings{
		Model:            os.Getenv("MODEL"),
		DeepSeekModel:    os.Getenv("DEEPSEEK_MODEL"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		MaxTokens:        maxTokens,
	}
}
