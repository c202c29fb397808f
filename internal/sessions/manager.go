package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeberg.org/notecanvas/server/internal/buffer"
	"codeberg.org/notecanvas/server/internal/logger"
	"codeberg.org/notecanvas/server/internal/state"
)

// one canvas session: its store plus bookkeeping
type Session struct {
	ID        string
	Store     *state.Store
	CreatedAt time.Time

	mu           sync.Mutex
	lastActivity time.Time
	expiresAt    time.Time
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastActivity
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.expiresAt
}

func (s *Session) touch(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActivity = now
	s.expiresAt = now.Add(ttl)
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return now.After(s.expiresAt)
}

// Manager keeps live sessions in memory, mirrors their snapshots into a
// buffer.Flusher and restores them from the snapshot store after a restart.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration

	// serializes register so one id never gets two stores
	registerMu sync.Mutex

	snapshots buffer.SnapshotStore
	flusher   *buffer.Flusher

	onRegister []func(session *Session)
	onExpire   []func(sessionID string)
	now        func() time.Time
}

// snapshots and flusher may be nil (no restore, no mirroring)
func NewManager(ttl time.Duration, snapshots buffer.SnapshotStore, flusher *buffer.Flusher) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		snapshots: snapshots,
		flusher:   flusher,
		now:       time.Now,
	}
}

// registers fn to run for every session created or restored
func (m *Manager) OnRegister(fn func(session *Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onRegister = append(m.onRegister, fn)
}

// registers fn to run when a session expires or is deleted
func (m *Manager) OnExpire(fn func(sessionID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onExpire = append(m.onExpire, fn)
}

// creates a session holding the initial state
func (m *Manager) CreateSession() *Session {
	session, _ := m.register(uuid.New().String(), state.NewStore(state.Initial()))

	logger.Info("session created", "session_id", session.ID)

	return session
}

// adds a session for id unless one is already registered, in which case
// the existing session is returned with created=false. The session becomes
// visible to lookups only after the OnRegister hooks ran; hooks must not
// register sessions themselves.
func (m *Manager) register(id string, store *state.Store) (session *Session, created bool) {
	m.registerMu.Lock()
	defer m.registerMu.Unlock()

	m.mu.RLock()
	existing, ok := m.sessions[id]
	hooks := append([]func(*Session){}, m.onRegister...)
	m.mu.RUnlock()

	if ok {
		return existing, false
	}

	now := m.now()
	session = &Session{
		ID:           id,
		Store:        store,
		CreatedAt:    now,
		lastActivity: now,
		expiresAt:    now.Add(m.ttl),
	}

	if m.flusher != nil {
		flusher := m.flusher
		store.OnReplace(func(snap state.Snapshot) {
			flusher.MarkDirty(id, snap)
		})
		flusher.MarkDirty(id, store.Snapshot())
	}

	for _, fn := range hooks {
		fn(session)
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	return session, true
}

// GetSession returns a live session, restoring it from the snapshot store
// when this process has not seen it yet.
func (m *Manager) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[sessionID]
	m.mu.RUnlock()

	if exists {
		if session.expired(m.now()) {
			m.DeleteSession(ctx, sessionID)
			return nil, ErrSessionExpired
		}

		return session, nil
	}

	if m.snapshots == nil {
		return nil, ErrSessionNotFound
	}

	snap, ok, err := m.snapshots.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	if !ok {
		return nil, ErrSessionNotFound
	}

	// a concurrent request may have restored it first; register keeps theirs
	session, created := m.register(sessionID, state.RestoreStore(snap))
	if created {
		logger.Info("session restored", "session_id", sessionID, "version", snap.Version)
	}

	return session, nil
}

// returns the state store of a live session and extends its lifetime
func (m *Manager) Store(ctx context.Context, sessionID string) (*state.Store, error) {
	session, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.touch(m.now(), m.ttl)

	return session.Store, nil
}

// extends a session's lifetime
func (m *Manager) Touch(sessionID string) {
	m.mu.RLock()
	session, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if ok {
		session.touch(m.now(), m.ttl)
	}
}

// ends a session and drops its cached snapshot
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) {
	m.mu.Lock()
	_, existed := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	hooks := append([]func(string){}, m.onExpire...)
	m.mu.Unlock()

	if m.flusher != nil {
		m.flusher.Forget(sessionID)
	}

	if m.snapshots != nil {
		if err := m.snapshots.Delete(ctx, sessionID); err != nil {
			logger.ErrorErr(err, "failed to delete session snapshot", "session_id", sessionID)
		}
	}

	if existed {
		for _, fn := range hooks {
			fn(sessionID)
		}
	}
}

// Start runs the expiry sweep until ctx is done.
func (m *Manager) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupExpired(ctx)
		}
	}
}

// removes expired sessions and returns how many were removed
func (m *Manager) CleanupExpired(ctx context.Context) int {
	now := m.now()

	m.mu.RLock()
	var expired []string
	for id, session := range m.sessions {
		if session.expired(now) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		logger.Info("session expired", "session_id", id)
		m.DeleteSession(ctx, id)
	}

	return len(expired)
}

// returns the number of live sessions
func (m *Manager) GetSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
