package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueDelete(t *testing.T, b *Bridge, session string, urls ...string) Request {
	t.Helper()

	req, err := b.Issue(session, ActionDeleteReferenceMaterials, DeleteReferenceMaterialsArgs{URLs: urls})
	require.NoError(t, err)

	return req
}

func TestIssueAndRespond(t *testing.T) {
	b := New()
	req := issueDelete(t, b, "s1", "u1")

	assert.NotEmpty(t, req.ID)
	assert.True(t, b.Available(req.ID))

	done := make(chan Decision, 1)
	go func() {
		d, err := b.Await(context.Background(), req.ID)
		assert.NoError(t, err)
		done <- d
	}()

	require.NoError(t, b.Respond(req.ID, Yes))

	select {
	case d := <-done:
		assert.Equal(t, Yes, d)
	case <-time.After(time.Second):
		t.Fatal("await did not return")
	}

	assert.False(t, b.Available(req.ID))
}

func TestAtMostOneDecision(t *testing.T) {
	b := New()
	req := issueDelete(t, b, "s1", "u1")

	require.NoError(t, b.Respond(req.ID, No))
	assert.ErrorIs(t, b.Respond(req.ID, Yes), ErrAlreadyDecided)

	d, err := b.Await(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, No, d, "the first decision stands")
}

func TestConcurrentRespondsDecideOnce(t *testing.T) {
	b := New()
	req := issueDelete(t, b, "s1", "u1")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := Yes
			if i%2 == 0 {
				d = No
			}
			if b.Respond(req.ID, d) == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestRespondValidation(t *testing.T) {
	b := New()
	req := issueDelete(t, b, "s1")

	assert.ErrorIs(t, b.Respond(req.ID, "maybe"), ErrInvalidDecision)
	assert.ErrorIs(t, b.Respond("nope", Yes), ErrUnknownRequest)
	assert.True(t, b.Available(req.ID), "an invalid decision does not consume the request")
}

func TestAwaitTimeoutLeavesRequestPending(t *testing.T) {
	b := New()
	req := issueDelete(t, b, "s1", "u1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := b.Await(ctx, req.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, status, ok := b.Get(req.ID)
	require.True(t, ok)
	assert.Equal(t, StatusPending, status, "no default decision is applied")
	assert.Len(t, b.Pending("s1"), 1)

	require.NoError(t, b.Respond(req.ID, Yes))
}

func TestCancel(t *testing.T) {
	b := New()
	req := issueDelete(t, b, "s1", "u1")

	var resolved []Resolution
	b.OnResolve(func(r Resolution) { resolved = append(resolved, r) })

	require.NoError(t, b.Cancel(req.ID))
	assert.False(t, b.Available(req.ID))
	assert.ErrorIs(t, b.Respond(req.ID, Yes), ErrRequestClosed)

	_, err := b.Await(context.Background(), req.ID)
	assert.ErrorIs(t, err, ErrRequestClosed)

	// second cancel is a no-op
	require.NoError(t, b.Cancel(req.ID))
	require.Len(t, resolved, 1)
	assert.True(t, resolved[0].Closed)
}

func TestPendingAndForget(t *testing.T) {
	b := New()
	first := issueDelete(t, b, "s1", "a")
	second := issueDelete(t, b, "s1", "b")
	other := issueDelete(t, b, "s2", "c")

	require.NoError(t, b.Respond(second.ID, No))

	pending := b.Pending("s1")
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	b.Forget("s1")

	assert.Empty(t, b.Pending("s1"))
	_, _, ok := b.Get(first.ID)
	assert.False(t, ok)
	assert.True(t, b.Available(other.ID))
}

func TestHooks(t *testing.T) {
	b := New()

	var issued []Request
	var resolved []Resolution
	b.OnIssue(func(r Request) { issued = append(issued, r) })
	b.OnResolve(func(r Resolution) { resolved = append(resolved, r) })

	req := issueDelete(t, b, "s1", "u1")
	require.NoError(t, b.Respond(req.ID, Yes))

	require.Len(t, issued, 1)
	assert.Equal(t, req.ID, issued[0].ID)
	require.Len(t, resolved, 1)
	assert.Equal(t, Resolution{RequestID: req.ID, SessionID: "s1", Decision: Yes}, resolved[0])
}

func TestDecodeDeleteArgs(t *testing.T) {
	b := New()
	req := issueDelete(t, b, "s1", "u1", "u2")

	args, err := DecodeDeleteArgs(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, args.URLs)

	empty, err := DecodeDeleteArgs(Request{Name: ActionDeleteReferenceMaterials, Args: []byte(`{}`)})
	require.NoError(t, err)
	assert.NotNil(t, empty.URLs)

	_, err = DecodeDeleteArgs(Request{Name: "Other", Args: []byte(`{}`)})
	assert.Error(t, err)
}

func TestPendingKeepsIssueOrderOnTiedTimestamps(t *testing.T) {
	b := New()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	var ids []string
	for _, u := range []string{"a", "b", "c", "d"} {
		ids = append(ids, issueDelete(t, b, "s1", u).ID)
	}

	for range 5 {
		pending := b.Pending("s1")
		require.Len(t, pending, len(ids))
		for i, r := range pending {
			assert.Equal(t, ids[i], r.ID)
		}
	}
}

func TestResolvedEntriesArePruned(t *testing.T) {
	b := New()

	var ids []string
	for range maxResolvedPerSession + 5 {
		req := issueDelete(t, b, "s1", "u")
		require.NoError(t, b.Respond(req.ID, No))
		ids = append(ids, req.ID)
	}
	kept := issueDelete(t, b, "s1", "still pending")

	for _, id := range ids[:5] {
		_, _, ok := b.Get(id)
		assert.False(t, ok, "oldest resolved entry should be dropped")
	}
	for _, id := range ids[5:] {
		_, status, ok := b.Get(id)
		require.True(t, ok)
		assert.Equal(t, StatusDecided, status)
	}
	assert.True(t, b.Available(kept.ID))

	last := ids[len(ids)-1]
	assert.ErrorIs(t, b.Respond(last, Yes), ErrAlreadyDecided)
}

func TestLateResolvedEntrySurvivesPruning(t *testing.T) {
	b := New()
	old := issueDelete(t, b, "s1", "old")

	for range maxResolvedPerSession {
		req := issueDelete(t, b, "s1", "u")
		require.NoError(t, b.Respond(req.ID, Yes))
	}

	// issued first, decided last
	require.NoError(t, b.Respond(old.ID, No))
	assert.ErrorIs(t, b.Respond(old.ID, Yes), ErrAlreadyDecided)

	_, status, ok := b.Get(old.ID)
	require.True(t, ok)
	assert.Equal(t, StatusDecided, status)
}
