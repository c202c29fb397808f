package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/state"
)

const maxRemoteBody = 1 << 20

// chooses a chat model for a model field value
type ModelSelector interface {
	Select(ctx context.Context, stateModel string) (llm.ChatModel, error)
}

// finds the state store of a live session
type StoreResolver func(ctx context.Context, sessionID string) (*state.Store, error)

// Proxy answers chat requests, either by forwarding them to a remote agent
// or by completing them with the selected model.
type Proxy struct {
	remoteURL string
	client    *http.Client
	selector  ModelSelector
	resolve   StoreResolver
}

// agent turns may wait minutes for a human decision, so the client has
// no timeout of its own and follows the request context
func NewProxy(remoteURL string, selector ModelSelector, resolve StoreResolver) *Proxy {
	return &Proxy{
		remoteURL: strings.TrimRight(remoteURL, "/"),
		client:    &http.Client{},
		selector:  selector,
		resolve:   resolve,
	}
}

func (p *Proxy) Forward(ctx context.Context, req Request) (*Response, error) {
	if p.remoteURL == "" {
		return nil, fmt.Errorf("%w: REMOTE_ACTION_URL is not set", llm.ErrInvalidConfiguration)
	}

	body, err := json.Marshal(remoteRunRequest{SessionID: req.SessionID, Messages: req.Messages})
	if err != nil {
		return nil, fmt.Errorf("failed to encode agent request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/agents/%s/run", p.remoteURL, url.PathEscape(req.Agent))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build agent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach remote agent: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read agent response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		remoteErr := &RemoteError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, &remoteErr.Body); err != nil || remoteErr.Body.Error == "" {
			remoteErr.Body = errors.ErrorResponse{Error: errors.CodeUpstreamError, Message: http.StatusText(resp.StatusCode)}
		}

		return nil, remoteErr
	}

	var run remoteRunResponse
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("failed to decode agent response: %w", err)
	}

	return &Response{
		Success:  true,
		Reply:    run.Reply,
		Intent:   run.Intent,
		Provider: run.Provider,
		Model:    run.Model,
		Version:  run.Version,
	}, nil
}

// Complete answers with the selected model directly. System messages are
// passed through as they are.
func (p *Proxy) Complete(ctx context.Context, req Request) (*Response, error) {
	modelName := req.Model

	if modelName == "" && req.SessionID != "" && p.resolve != nil {
		if store, err := p.resolve(ctx, req.SessionID); err == nil {
			modelName = store.State().Model
		}
	}

	if modelName == "" {
		modelName = state.DefaultModel
	}

	model, err := p.selector.Select(ctx, modelName)
	if err != nil {
		return nil, err
	}

	resp, err := model.Generate(ctx, llm.ChatRequest{Messages: req.Messages})
	if err != nil {
		return nil, err
	}

	cfg := model.Config()
	usage := resp.Usage

	return &Response{
		Success:  true,
		Reply:    resp.Text,
		Provider: cfg.Provider,
		Model:    cfg.Model,
		Usage:    &usage,
	}, nil
}
