package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentcore "codeberg.org/notecanvas/server/internal/agent"
	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/sessions"
)

type mockRunner struct {
	resp *agentcore.RunResponse
	err  error
	got  agentcore.RunRequest
}

func (m *mockRunner) Run(_ context.Context, req agentcore.RunRequest) (*agentcore.RunResponse, error) {
	m.got = req
	return m.resp, m.err
}

func postRun(t *testing.T, runner *mockRunner, name string, body any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), runner)

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/"+name+"/run", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

var validBody = RunRequest{
	SessionID: "s1",
	Messages:  []llm.Message{{Role: llm.RoleUser, Content: "写一篇笔记"}},
}

func TestRunHandler(t *testing.T) {
	runner := &mockRunner{resp: &agentcore.RunResponse{Reply: "好的", Intent: agentcore.IntentNoteCreation, Version: 4}}

	w := postRun(t, runner, agentcore.Name, validBody)
	require.Equal(t, http.StatusOK, w.Code)

	var resp agentcore.RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "好的", resp.Reply)
	assert.Equal(t, uint64(4), resp.Version)
	assert.Equal(t, "s1", runner.got.SessionID)
	assert.Len(t, runner.got.Messages, 1)
}

func TestRunHandlerUnknownAgent(t *testing.T) {
	w := postRun(t, &mockRunner{}, "other_agent", validBody)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"missing session", sessions.ErrSessionNotFound, http.StatusNotFound, errors.CodeSessionNotFound},
		{"busy", agentcore.ErrRunInProgress, http.StatusConflict, errors.CodeConflict},
		{"invalid model", fmt.Errorf("%w: %q", llm.ErrInvalidConfiguration, "mistral"), http.StatusInternalServerError, errors.CodeInvalidConfiguration},
		{"role error", fmt.Errorf("failed to route message: %w", llm.ErrUpstreamValidation), http.StatusBadGateway, errors.CodeUpstreamValidation},
		{"upstream", fmt.Errorf("connection refused"), http.StatusBadGateway, errors.CodeUpstreamError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postRun(t, &mockRunner{err: tt.err}, agentcore.Name, validBody)
			require.Equal(t, tt.wantCode, w.Code)

			var resp errors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Error)
		})
	}
}

func TestRunHandlerValidation(t *testing.T) {
	w := postRun(t, &mockRunner{}, agentcore.Name, map[string]any{"messages": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
