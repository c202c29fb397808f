package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GenAIChat struct {
	config ModelConfig
	client *genai.Client
}

// NewGenAIChat creates a Gemini client. An empty API key leaves credential
// resolution to the SDK (GOOGLE_API_KEY / GEMINI_API_KEY in the environment).
func NewGenAIChat(ctx context.Context, cfg ModelConfig) (*GenAIChat, error) {
	clientConfig := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GenAIChat{config: cfg, client: client}, nil
}

func (g *GenAIChat) Config() ModelConfig {
	return g.config
}

func (g *GenAIChat) Generate(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	system, conversation := splitSystem(req)

	contents := make([]*genai.Content, 0, len(conversation))
	for _, m := range conversation {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	temperature := float32(g.config.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(maxTokensFor(req, g.config)),
	}

	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(system)}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("google_genai generate content: %w", err)
	}

	out := &ChatResponse{Text: strings.TrimSpace(resp.Text())}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	return out, nil
}
