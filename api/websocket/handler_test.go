package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/sessions"
	"codeberg.org/notecanvas/server/internal/state"
	ws "codeberg.org/notecanvas/server/internal/websocket"
)

type testServer struct {
	url    string
	mgr    *sessions.Manager
	bridge *bridge.Bridge
}

func startServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr := sessions.NewManager(time.Hour, nil, nil)
	b := bridge.New()
	hub := ws.NewHub()

	mgr.OnRegister(func(s *sessions.Session) { hub.AttachStore(s.ID, s.Store) })
	hub.AttachBridge(b)
	hub.OnClientRegistered(ws.SyncOnConnect(mgr.Store, b))
	hub.RegisterHandler(ws.TypeStateReplace, ws.StateReplaceHandler(mgr.Store))
	hub.RegisterHandler(ws.TypeActionResponse, ws.ActionResponseHandler(b))

	go hub.Run()
	t.Cleanup(hub.Shutdown)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), hub, mgr)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testServer{
		url:    "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws",
		mgr:    mgr,
		bridge: b,
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": msgType, "payload": json.RawMessage(raw)}))
}

func TestConnectCreatesSessionAndSendsSnapshot(t *testing.T) {
	srv := startServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(srv.url, nil)
	require.NoError(t, err)
	defer conn.Close() //nolint:errcheck

	msg := readMessage(t, conn)
	require.Equal(t, ws.TypeStateSnapshot, msg.Type)
	assert.NotEmpty(t, msg.SessionID)

	var snap ws.StateSnapshotPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, uint64(0), snap.Version)
	assert.Equal(t, state.Initial(), snap.State)
	assert.Equal(t, 1, srv.mgr.GetSessionCount())
}

func TestReplaceRoundTrip(t *testing.T) {
	srv := startServer(t)
	session := srv.mgr.CreateSession()

	conn, _, err := websocket.DefaultDialer.Dial(srv.url+"?session_id="+session.ID, nil)
	require.NoError(t, err)
	defer conn.Close() //nolint:errcheck

	require.Equal(t, ws.TypeStateSnapshot, readMessage(t, conn).Type)

	next := state.Initial().WithProductName("云朵面霜")
	sendMessage(t, conn, ws.TypeStateReplace, ws.StateReplacePayload{State: next})

	msg := readMessage(t, conn)
	require.Equal(t, ws.TypeStateSnapshot, msg.Type)

	var snap ws.StateSnapshotPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, "云朵面霜", snap.State.ProductInfo.Name)
	assert.Equal(t, "云朵面霜", session.Store.State().ProductInfo.Name)
}

func TestActionRequestRoundTrip(t *testing.T) {
	srv := startServer(t)
	session := srv.mgr.CreateSession()

	conn, _, err := websocket.DefaultDialer.Dial(srv.url+"?session_id="+session.ID, nil)
	require.NoError(t, err)
	defer conn.Close() //nolint:errcheck

	require.Equal(t, ws.TypeStateSnapshot, readMessage(t, conn).Type)
	time.Sleep(100 * time.Millisecond)

	req, err := srv.bridge.Issue(session.ID, bridge.ActionDeleteReferenceMaterials, bridge.DeleteReferenceMaterialsArgs{URLs: []string{"a"}})
	require.NoError(t, err)

	msg := readMessage(t, conn)
	require.Equal(t, ws.TypeActionRequest, msg.Type)

	sendMessage(t, conn, ws.TypeActionResponse, ws.ActionResponsePayload{ID: req.ID, Decision: bridge.No})

	msg = readMessage(t, conn)
	require.Equal(t, ws.TypeActionResolved, msg.Type)

	var resolved ws.ActionResolvedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &resolved))
	assert.Equal(t, req.ID, resolved.ID)
	assert.Equal(t, bridge.No, resolved.Decision)
	assert.False(t, srv.bridge.Available(req.ID))
}

func TestConnectUnknownSession(t *testing.T) {
	srv := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(srv.url+"?session_id="+uuid.New().String(), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConnectInvalidSessionID(t *testing.T) {
	srv := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(srv.url+"?session_id=not-a-uuid", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
