package llm

import (
	"context"
	"errors"
)

// Provider is the closed set of model back ends a canvas can select.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderDeepSeek  Provider = "deepseek"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google_genai"
)

// every supported provider, in display order
var Providers = []Provider{ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderGoogle}

var (
	// the requested provider is not one of Providers; never defaulted
	ErrInvalidConfiguration = errors.New("invalid model configuration")

	// a known-benign upstream rejection of the message role field
	ErrUpstreamValidation = errors.New("upstream role validation warning")
)

// environment overrides, read fresh on every selection
type Settings struct {
	Model            string // MODEL, wins over the state's model field
	DeepSeekModel    string // DEEPSEEK_MODEL
	OpenAIBaseURL    string // OPENAI_BASE_URL, used for deepseek
	OpenAIAPIKey     string // OPENAI_API_KEY, used for openai and deepseek
	AnthropicAPIKey  string
	AnthropicBaseURL string
	GoogleAPIKey     string // optional
	MaxTokens        int
}

// ModelConfig is the resolved shape of a chat model handle.
type ModelConfig struct {
	Provider    Provider `json:"provider"`
	Model       string   `json:"model"`
	BaseURL     string   `json:"base_url,omitempty"`
	APIKey      string   `json:"-"`
	Temperature float64  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int // 0 means the model's configured limit
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type ChatResponse struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// ChatModel is a configured, deterministic chat completion client.
type ChatModel interface {
	Generate(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Config() ModelConfig
}

// message roles accepted in ChatRequest.Messages
const (
	RoleSystem    = "system"
	RoleDeveloper = "developer"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
