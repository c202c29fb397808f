package llm

import (
	"errors"
	"strings"

	"github.com/openai/openai-go"
)

const roleParam = "messages.role"

// paramError is implemented by upstream errors that report the offending
// request parameter.
type paramError interface {
	ErrorParam() string
}

// IsRoleCompatibilityError reports whether err is the provider rejecting
// the message role field (typically a "developer" role sent to an
// OpenAI-compatible endpoint that does not know it). These are harmless
// for the conversation and are answered with a synthetic success.
func IsRoleCompatibilityError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrUpstreamValidation) {
		return true
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Param == roleParam {
		return true
	}

	var pe paramError
	if errors.As(err, &pe) && pe.ErrorParam() == roleParam {
		return true
	}

	return strings.Contains(err.Error(), "invalid value: `developer`")
}

// splits system/developer messages out of the conversation, joined in order
func splitSystem(req ChatRequest) (string, []Message) {
	var system []string
	if req.SystemPrompt != "" {
		system = append(system, req.SystemPrompt)
	}

	rest := make([]Message, 0, len(req.Messages))

	for _, m := range req.Messages {
		if m.Role == RoleSystem || m.Role == RoleDeveloper {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}

	return strings.Join(system, "\n\n"), rest
}

func maxTokensFor(req ChatRequest, cfg ModelConfig) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}

	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}

	return defaultMaxTokens
}
