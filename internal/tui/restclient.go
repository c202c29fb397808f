package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/notecanvas/server/api/rest/chat"
	"codeberg.org/notecanvas/server/internal/agent"
	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/llm"
)

// talks to the chat bridge over HTTP
type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRESTClient(serverURL string) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: chatRequestTimeout,
		},
	}
}

// Chat sends the conversation to the note agent of sessionID.
func (c *RESTClient) Chat(ctx context.Context, sessionID string, messages []llm.Message) (*chat.Response, error) {
	payload := chat.Request{
		Agent:     agent.Name,
		SessionID: sessionID,
		Messages:  messages,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/chat", bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errors.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
		}
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result chat.Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}

// returns a tea.Cmd that runs one chat turn
func (c *RESTClient) ChatCmd(sessionID string, messages []llm.Message) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatRequestTimeout)
		defer cancel()

		resp, err := c.Chat(ctx, sessionID, messages)
		if err != nil {
			return ChatErrorMsg{err: err}
		}

		return ChatReplyMsg{resp: resp}
	}
}

// address of the rendered note page
func (c *RESTClient) NoteURL(sessionID string) string {
	return fmt.Sprintf("%s/api/v1/sessions/%s/note.html", c.baseURL, sessionID)
}
