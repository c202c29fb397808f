package state

import (
	"slices"
	"sync"
)

// Store holds the current AgentState of one session. Reads are snapshots;
// the only write is Replace. Concurrent writers race and the last call wins.
type Store struct {
	mu        sync.RWMutex
	notifyMu  sync.Mutex // held across a Replace so listeners see versions in order
	current   Snapshot
	listeners []func(Snapshot)
}

func NewStore(initial AgentState) *Store {
	return &Store{
		current: Snapshot{State: initial.Normalize().Clone()},
	}
}

// restores a store from a previously saved snapshot, keeping its version
func RestoreStore(snap Snapshot) *Store {
	return &Store{
		current: Snapshot{Version: snap.Version, State: snap.State.Normalize().Clone()},
	}
}

// returns a copy of the current value; callers may modify it freely
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{Version: s.current.Version, State: s.current.State.Clone()}
}

func (s *Store) State() AgentState {
	return s.Snapshot().State
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.Version
}

// Replace installs next as the whole new state and notifies listeners in
// registration order. Notifications of concurrent Replace calls never
// interleave, so listeners observe strictly increasing versions. Readers
// are not blocked while listeners run; listeners must not call Replace.
func (s *Store) Replace(next AgentState) Snapshot {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.current = Snapshot{
		Version: s.current.Version + 1,
		State:   next.Normalize().Clone(),
	}
	snap := Snapshot{Version: s.current.Version, State: s.current.State.Clone()}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}

	return snap
}

// registers fn to run after every Replace
func (s *Store) OnReplace(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}
