package sessions

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/sessions"
	"codeberg.org/notecanvas/server/internal/state"
)

func setupRouter(t *testing.T) (*gin.Engine, *sessions.Manager, *bridge.Bridge) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr := sessions.NewManager(time.Hour, nil, nil)
	b := bridge.New()

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), mgr, b)

	return router, mgr, b
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body) //nolint:errcheck
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestCreateSessionReturnsInitialState(t *testing.T) {
	router, mgr, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, uint64(0), resp.Version)
	assert.Equal(t, state.Initial(), resp.State)
	assert.Equal(t, 1, mgr.GetSessionCount())

	// list fields are arrays on the wire, never null
	assert.Contains(t, w.Body.String(), `"reference_materials":[]`)
	assert.Contains(t, w.Body.String(), `"logs":[]`)
}

func TestGetStateUnknownSession(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/sessions/nope/state", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeSessionNotFound, resp.Error)
}

func TestReplaceStateIsWholeState(t *testing.T) {
	router, mgr, _ := setupRouter(t)
	session := mgr.CreateSession()
	session.Store.Replace(session.Store.State().WithNote("agent wrote this"))

	next := state.Initial().WithProductName("云朵面霜")
	w := doJSON(router, http.MethodPut, "/api/v1/sessions/"+session.ID+"/state", ReplaceStateRequest{State: &next, BaseVersion: 1})
	require.Equal(t, http.StatusOK, w.Code)

	var resp StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(2), resp.Version)
	assert.Equal(t, "云朵面霜", resp.State.ProductInfo.Name)

	// no merge: the note written before is gone
	assert.Empty(t, session.Store.State().Note)
}

func TestReplaceStateRequiresState(t *testing.T) {
	router, mgr, _ := setupRouter(t)
	session := mgr.CreateSession()

	w := doJSON(router, http.MethodPut, "/api/v1/sessions/"+session.ID+"/state", map[string]any{"base_version": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, uint64(0), session.Store.Version())
}

func TestNoteHTML(t *testing.T) {
	router, mgr, _ := setupRouter(t)
	session := mgr.CreateSession()

	w := doJSON(router, http.MethodGet, "/api/v1/sessions/"+session.ID+"/note.html", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	session.Store.Replace(session.Store.State().WithNote("**好用**"))

	w = doJSON(router, http.MethodGet, "/api/v1/sessions/"+session.ID+"/note.html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<strong>好用</strong>")
}

func TestListActionsShowsMatchingMaterials(t *testing.T) {
	router, mgr, b := setupRouter(t)
	session := mgr.CreateSession()
	session.Store.Replace(session.Store.State().WithReferenceMaterials([]state.ReferenceMaterial{
		{URL: "a", Title: "A"},
		{URL: "b", Title: "B"},
	}))

	req, err := b.Issue(session.ID, bridge.ActionDeleteReferenceMaterials, bridge.DeleteReferenceMaterialsArgs{URLs: []string{"a", "ghost"}})
	require.NoError(t, err)

	_, err = b.Issue("other-session", bridge.ActionDeleteReferenceMaterials, bridge.DeleteReferenceMaterialsArgs{URLs: []string{"b"}})
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/api/v1/sessions/"+session.ID+"/actions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ActionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, req.ID, resp.Actions[0].ID)
	assert.True(t, resp.Actions[0].Available)
	require.Len(t, resp.Actions[0].Materials, 1)
	assert.Equal(t, "A", resp.Actions[0].Materials[0].Title)
}

func TestDecideAction(t *testing.T) {
	router, mgr, b := setupRouter(t)
	session := mgr.CreateSession()
	session.Store.Replace(session.Store.State().WithReferenceMaterials([]state.ReferenceMaterial{{URL: "a"}}))

	req, err := b.Issue(session.ID, bridge.ActionDeleteReferenceMaterials, bridge.DeleteReferenceMaterialsArgs{URLs: []string{"a"}})
	require.NoError(t, err)

	path := "/api/v1/sessions/" + session.ID + "/actions/" + req.ID

	w := doJSON(router, http.MethodPost, path, DecisionRequest{Decision: "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, path, DecisionRequest{Decision: "YES"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+req.ID+`","decision":"YES"}`, w.Body.String())

	// deciding is a signal only; the agent performs the delete
	assert.Len(t, session.Store.State().ReferenceMaterials, 1)
	assert.False(t, b.Available(req.ID))

	w = doJSON(router, http.MethodPost, path, DecisionRequest{Decision: "NO"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDecideActionOfOtherSession(t *testing.T) {
	router, mgr, b := setupRouter(t)
	session := mgr.CreateSession()

	req, err := b.Issue("other-session", bridge.ActionDeleteReferenceMaterials, bridge.DeleteReferenceMaterialsArgs{})
	require.NoError(t, err)

	w := doJSON(router, http.MethodPost, "/api/v1/sessions/"+session.ID+"/actions/"+req.ID, DecisionRequest{Decision: "YES"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, b.Available(req.ID))
}

func TestDeleteSession(t *testing.T) {
	router, mgr, _ := setupRouter(t)
	session := mgr.CreateSession()

	w := doJSON(router, http.MethodDelete, "/api/v1/sessions/"+session.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, mgr.GetSessionCount())
}
