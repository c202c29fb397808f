package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/state"
)

func staticResolver(store *state.Store) StoreResolver {
	return func(_ context.Context, _ string) (*state.Store, error) {
		return store, nil
	}
}

func replaceMessage(t *testing.T, s state.AgentState, base uint64) *Message {
	t.Helper()

	msg, err := NewMessage(TypeStateReplace, "session-1", StateReplacePayload{State: s, BaseVersion: base})
	require.NoError(t, err)

	return msg
}

func TestStateReplaceHandlerBroadcastsNewSnapshot(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	sender := newTestClient(hub, "client-1", "session-1")
	watcher := newTestClient(hub, "client-2", "session-1")
	hub.Register <- sender
	hub.Register <- watcher
	time.Sleep(100 * time.Millisecond)

	store := state.NewStore(state.Initial())
	hub.AttachStore("session-1", store)

	next := store.State().WithProductName("保湿面霜").WithTargetAudience("学生党")
	handler := StateReplaceHandler(staticResolver(store))
	require.NoError(t, handler(hub, sender, replaceMessage(t, next, 0)))

	assert.Equal(t, uint64(1), store.Version())
	assert.Equal(t, "保湿面霜", store.State().ProductInfo.Name)

	for _, c := range []*Client{sender, watcher} {
		msg := nextMessage(t, c)
		require.Equal(t, TypeStateSnapshot, msg.Type)

		var payload StateSnapshotPayload
		require.NoError(t, msg.UnmarshalPayload(&payload))
		assert.Equal(t, uint64(1), payload.Version)
		assert.Equal(t, "学生党", payload.State.TargetAudience)
	}
}

func TestStateReplaceHandlerStaleBaseStillWins(t *testing.T) {
	store := state.NewStore(state.Initial())
	store.Replace(store.State().WithNote("first"))
	store.Replace(store.State().WithNote("second"))

	client := newTestClient(nil, "client-1", "session-1")
	handler := StateReplaceHandler(staticResolver(store))

	require.NoError(t, handler(nil, client, replaceMessage(t, state.Initial().WithNote("stale"), 1)))

	assert.Equal(t, uint64(3), store.Version())
	assert.Equal(t, "stale", store.State().Note)
}

func TestStateReplaceHandlerNormalizesLists(t *testing.T) {
	store := state.NewStore(state.Initial())
	client := newTestClient(nil, "client-1", "session-1")

	msg := &Message{
		Type:      TypeStateReplace,
		SessionID: "session-1",
		Payload:   json.RawMessage(`{"state":{"model":"openai","reference_materials":null}}`),
	}

	require.NoError(t, StateReplaceHandler(staticResolver(store))(nil, client, msg))

	got := store.State()
	assert.Equal(t, "openai", got.Model)
	assert.NotNil(t, got.ReferenceMaterials)
	assert.NotNil(t, got.Tags)
	assert.NotNil(t, got.Logs)
}

func TestStateReplaceHandlerRejectsBadPayload(t *testing.T) {
	store := state.NewStore(state.Initial())
	client := newTestClient(nil, "client-1", "session-1")

	msg := &Message{Type: TypeStateReplace, SessionID: "session-1", Payload: json.RawMessage(`"nope"`)}

	assert.Error(t, StateReplaceHandler(staticResolver(store))(nil, client, msg))
	assert.Equal(t, uint64(0), store.Version())
	assert.Equal(t, TypeError, nextMessage(t, client).Type)
}

func TestStateReplaceHandlerRateLimited(t *testing.T) {
	store := state.NewStore(state.Initial())
	client := newTestClient(nil, "client-1", "session-1")
	handler := StateReplaceHandler(staticResolver(store))

	for range maxStateReplacesPerSecond {
		require.NoError(t, handler(nil, client, replaceMessage(t, state.Initial(), 0)))
	}

	assert.ErrorIs(t, handler(nil, client, replaceMessage(t, state.Initial(), 0)), ErrRateLimitExceeded)
	assert.Equal(t, uint64(maxStateReplacesPerSecond), store.Version())
}

func actionResponse(t *testing.T, id string, decision string) *Message {
	t.Helper()

	msg, err := NewMessage(TypeActionResponse, "session-1", map[string]string{"id": id, "decision": decision})
	require.NoError(t, err)

	return msg
}

func TestActionResponseHandlerDecidesOnce(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	b := bridge.New()
	hub.AttachBridge(b)

	client := newTestClient(hub, "client-1", "session-1")
	hub.Register <- client
	time.Sleep(100 * time.Millisecond)

	req, err := b.Issue("session-1", bridge.ActionDeleteReferenceMaterials,
		bridge.DeleteReferenceMaterialsArgs{URLs: []string{"https://example.com/a"}})
	require.NoError(t, err)

	issued := nextMessage(t, client)
	require.Equal(t, TypeActionRequest, issued.Type)

	var request ActionRequestPayload
	require.NoError(t, issued.UnmarshalPayload(&request))
	assert.Equal(t, req.ID, request.ID)
	assert.Equal(t, bridge.ActionDeleteReferenceMaterials, request.Name)

	handler := ActionResponseHandler(b)
	require.NoError(t, handler(hub, client, actionResponse(t, req.ID, "YES")))

	resolved := nextMessage(t, client)
	require.Equal(t, TypeActionResolved, resolved.Type)

	var payload ActionResolvedPayload
	require.NoError(t, resolved.UnmarshalPayload(&payload))
	assert.Equal(t, req.ID, payload.ID)
	assert.Equal(t, bridge.Yes, payload.Decision)
	assert.False(t, b.Available(req.ID))

	// a second decision is refused and the first one stands
	assert.ErrorIs(t, handler(hub, client, actionResponse(t, req.ID, "NO")), bridge.ErrAlreadyDecided)
	assert.Equal(t, TypeError, nextMessage(t, client).Type)

	decision, err := b.Await(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, bridge.Yes, decision)
}

func TestActionResponseHandlerRejectsOtherSession(t *testing.T) {
	b := bridge.New()
	req, err := b.Issue("session-2", bridge.ActionDeleteReferenceMaterials, bridge.DeleteReferenceMaterialsArgs{})
	require.NoError(t, err)

	client := newTestClient(nil, "client-1", "session-1")

	assert.ErrorIs(t, ActionResponseHandler(b)(nil, client, actionResponse(t, req.ID, "YES")), bridge.ErrUnknownRequest)
	assert.True(t, b.Available(req.ID))
}

func TestActionResponseHandlerRejectsInvalidDecision(t *testing.T) {
	b := bridge.New()
	req, err := b.Issue("session-1", bridge.ActionDeleteReferenceMaterials, bridge.DeleteReferenceMaterialsArgs{})
	require.NoError(t, err)

	client := newTestClient(nil, "client-1", "session-1")

	assert.ErrorIs(t, ActionResponseHandler(b)(nil, client, actionResponse(t, req.ID, "maybe")), bridge.ErrInvalidDecision)
	assert.True(t, b.Available(req.ID))
}

func TestSyncOnConnectSendsSnapshotAndPending(t *testing.T) {
	store := state.NewStore(state.Initial())
	store.Replace(store.State().WithModel("openai"))

	b := bridge.New()
	first, err := b.Issue("session-1", bridge.ActionDeleteReferenceMaterials, bridge.DeleteReferenceMaterialsArgs{URLs: []string{"a"}})
	require.NoError(t, err)
	decided, err := b.Issue("session-1", bridge.ActionDeleteReferenceMaterials, bridge.DeleteReferenceMaterialsArgs{URLs: []string{"b"}})
	require.NoError(t, err)
	require.NoError(t, b.Respond(decided.ID, bridge.No))

	client := newTestClient(nil, "client-1", "session-1")
	SyncOnConnect(staticResolver(store), b)(client)

	snapshot := nextMessage(t, client)
	require.Equal(t, TypeStateSnapshot, snapshot.Type)

	var payload StateSnapshotPayload
	require.NoError(t, snapshot.UnmarshalPayload(&payload))
	assert.Equal(t, uint64(1), payload.Version)
	assert.Equal(t, "openai", payload.State.Model)

	pending := nextMessage(t, client)
	require.Equal(t, TypeActionRequest, pending.Type)

	var request ActionRequestPayload
	require.NoError(t, pending.UnmarshalPayload(&request))
	assert.Equal(t, first.ID, request.ID)

	assertNoMessage(t, client)
}

func TestPingHandler(t *testing.T) {
	client := newTestClient(nil, "client-1", "session-1")

	require.NoError(t, PingHandler()(nil, client, &Message{Type: TypePing}))
	assert.Equal(t, TypePong, nextMessage(t, client).Type)
}
