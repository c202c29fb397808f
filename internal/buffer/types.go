package buffer

import (
	"context"

	"codeberg.org/notecanvas/server/internal/state"
)

// SnapshotStore caches the latest snapshot of each live session so a
// restarted server can pick sessions back up. Entries expire with the
// session; nothing here is durable storage.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, snap state.Snapshot) error
	Load(ctx context.Context, sessionID string) (state.Snapshot, bool, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// redis key patterns
const (
	// notecanvas:session:{sessionID}:state - JSON encoded state.Snapshot
	keySessionState = "notecanvas:session:%s:state"
)
