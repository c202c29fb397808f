package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIChat serves both openai and deepseek; the latter is the same
// wire protocol behind a different base URL and model identifier.
type OpenAIChat struct {
	config ModelConfig
	client openai.Client
}

func NewOpenAIChat(cfg ModelConfig) *OpenAIChat {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIChat{
		config: cfg,
		client: openai.NewClient(opts...),
	}
}

func (o *OpenAIChat) Config() ModelConfig {
	return o.config
}

func (o *OpenAIChat) Generate(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)

	// system stays "system"; some compatible endpoints reject "developer"
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}

	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleDeveloper:
			msgs = append(msgs, openai.DeveloperMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.config.Model),
		Messages:    msgs,
		Temperature: openai.Float(o.config.Temperature),
		MaxTokens:   openai.Int(int64(maxTokensFor(req, o.config))),
	})
	if err != nil {
		return nil, fmt.Errorf("%s chat completion: %w", o.config.Provider, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s chat completion: empty choices", o.config.Provider)
	}

	return &ChatResponse{
		Text: strings.TrimSpace(resp.Choices[0].Message.Content),
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}
