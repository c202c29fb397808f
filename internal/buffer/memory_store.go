package buffer

import (
	"context"
	"sync"
	"time"

	"codeberg.org/notecanvas/server/internal/state"
)

type memoryEntry struct {
	snap      state.Snapshot
	expiresAt time.Time
}

// in-process SnapshotStore, used when REDIS_URL is not set
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, snap state.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[sessionID] = memoryEntry{
		snap:      state.Snapshot{Version: snap.Version, State: snap.State.Clone()},
		expiresAt: m.now().Add(m.ttl),
	}

	return nil
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (state.Snapshot, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[sessionID]
	m.mu.RUnlock()

	if !ok {
		return state.Snapshot{}, false, nil
	}

	if m.ttl > 0 && m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, sessionID)
		m.mu.Unlock()

		return state.Snapshot{}, false, nil
	}

	return state.Snapshot{Version: e.snap.Version, State: e.snap.State.Clone()}, true, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, sessionID)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
