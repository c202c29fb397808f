package bridge

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Bridge carries action requests from the agent to the canvas and the
// human's YES/NO back. It records decisions only; whatever the action
// does to the state is up to the agent that issued it.
type Bridge struct {
	mu        sync.Mutex
	entries   map[string]*entry
	nextSeq   uint64
	onIssue   []func(Request)
	onResolve []func(Resolution)
	now       func() time.Time
}

func New() *Bridge {
	return &Bridge{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// registers fn to run after every Issue (e.g. to push the request to clients)
func (b *Bridge) OnIssue(fn func(Request)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.onIssue = append(b.onIssue, fn)
}

// registers fn to run after a request is decided or closed
func (b *Bridge) OnResolve(fn func(Resolution)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.onResolve = append(b.onResolve, fn)
}

// Issue records a new pending request with a fresh id.
func (b *Bridge) Issue(sessionID, name string, args any) (Request, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return Request{}, fmt.Errorf("failed to encode %s args: %w", name, err)
	}

	req := Request{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Name:      name,
		Args:      raw,
		IssuedAt:  b.now(),
	}

	b.mu.Lock()
	b.nextSeq++
	b.entries[req.ID] = &entry{req: req, seq: b.nextSeq, status: StatusPending, done: make(chan struct{})}
	hooks := slices.Clone(b.onIssue)
	b.mu.Unlock()

	for _, fn := range hooks {
		fn(req)
	}

	return req, nil
}

// Await blocks until the request is decided or closed, or ctx ends.
// A ctx timeout does not decide anything: the request stays pending and
// the caller chooses whether to Cancel it.
func (b *Bridge) Await(ctx context.Context, id string) (Decision, error) {
	b.mu.Lock()
	e, ok := b.entries[id]
	b.mu.Unlock()

	if !ok {
		return "", ErrUnknownRequest
	}

	select {
	case <-e.done:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if e.status == StatusClosed {
		return "", ErrRequestClosed
	}

	return e.decision, nil
}

// Respond records the one decision a request may receive.
func (b *Bridge) Respond(id string, decision Decision) error {
	if _, err := ParseDecision(string(decision)); err != nil {
		return err
	}

	b.mu.Lock()
	e, ok := b.entries[id]
	if !ok {
		b.mu.Unlock()
		return ErrUnknownRequest
	}

	switch e.status {
	case StatusDecided:
		b.mu.Unlock()
		return ErrAlreadyDecided
	case StatusClosed:
		b.mu.Unlock()
		return ErrRequestClosed
	}

	e.status = StatusDecided
	e.decision = decision
	b.nextSeq++
	e.resolvedSeq = b.nextSeq
	close(e.done)
	b.pruneLocked(e.req.SessionID)

	res := Resolution{RequestID: id, SessionID: e.req.SessionID, Decision: decision}
	hooks := slices.Clone(b.onResolve)
	b.mu.Unlock()

	for _, fn := range hooks {
		fn(res)
	}

	return nil
}

// Cancel closes a pending request. Canceling a decided or closed request
// is a no-op.
func (b *Bridge) Cancel(id string) error {
	b.mu.Lock()
	e, ok := b.entries[id]
	if !ok {
		b.mu.Unlock()
		return ErrUnknownRequest
	}

	if e.status != StatusPending {
		b.mu.Unlock()
		return nil
	}

	res := b.closeLocked(e)
	b.pruneLocked(e.req.SessionID)
	hooks := slices.Clone(b.onResolve)
	b.mu.Unlock()

	for _, fn := range hooks {
		fn(res)
	}

	return nil
}

// returns the pending requests of a session, oldest first
func (b *Bridge) Pending(sessionID string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	var pending []*entry
	for _, e := range b.entries {
		if e.req.SessionID == sessionID && e.status == StatusPending {
			pending = append(pending, e)
		}
	}

	slices.SortFunc(pending, bySeq)

	out := make([]Request, len(pending))
	for i, e := range pending {
		out[i] = e.req
	}

	return out
}

// returns the request with id, whatever its status
func (b *Bridge) Get(id string) (Request, Status, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[id]
	if !ok {
		return Request{}, "", false
	}

	return e.req, e.status, true
}

// Available reports whether a decision can still be sent for id. The
// canvas hides the YES/NO affordance once this is false.
func (b *Bridge) Available(id string) bool {
	_, status, ok := b.Get(id)
	return ok && status == StatusPending
}

// Forget closes every pending request of a session and drops all of its
// entries. Called when the session ends.
func (b *Bridge) Forget(sessionID string) {
	b.mu.Lock()

	var resolved []Resolution
	for id, e := range b.entries {
		if e.req.SessionID != sessionID {
			continue
		}
		if e.status == StatusPending {
			resolved = append(resolved, b.closeLocked(e))
		}
		delete(b.entries, id)
	}

	hooks := slices.Clone(b.onResolve)
	b.mu.Unlock()

	for _, res := range resolved {
		for _, fn := range hooks {
			fn(res)
		}
	}
}

// drops the earliest resolved entries of a session beyond
// maxResolvedPerSession. pending entries are never dropped here, and the
// entry resolved last always survives.
func (b *Bridge) pruneLocked(sessionID string) {
	var resolved []*entry
	for _, e := range b.entries {
		if e.req.SessionID == sessionID && e.status != StatusPending {
			resolved = append(resolved, e)
		}
	}

	if len(resolved) <= maxResolvedPerSession {
		return
	}

	slices.SortFunc(resolved, func(a, b *entry) int {
		return cmp.Compare(a.resolvedSeq, b.resolvedSeq)
	})

	for _, e := range resolved[:len(resolved)-maxResolvedPerSession] {
		delete(b.entries, e.req.ID)
	}
}

func bySeq(a, b *entry) int {
	return cmp.Compare(a.seq, b.seq)
}

func (b *Bridge) closeLocked(e *entry) Resolution {
	e.status = StatusClosed
	b.nextSeq++
	e.resolvedSeq = b.nextSeq
	close(e.done)

	return Resolution{RequestID: e.req.ID, SessionID: e.req.SessionID, Closed: true}
}
