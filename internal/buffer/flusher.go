package buffer

import (
	"context"
	"sync"
	"time"

	"codeberg.org/notecanvas/server/internal/logger"
	"codeberg.org/notecanvas/server/internal/state"
)

// Flusher collects the latest snapshot per session and writes them to a
// SnapshotStore on an interval, so a burst of replaces costs one write.
type Flusher struct {
	store    SnapshotStore
	interval time.Duration

	mu    sync.Mutex
	dirty map[string]state.Snapshot

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewFlusher(store SnapshotStore, interval time.Duration) *Flusher {
	return &Flusher{
		store:    store,
		interval: interval,
		dirty:    make(map[string]state.Snapshot),
		stopCh:   make(chan struct{}),
	}
}

// records snap as the session's latest value; older pending values are dropped
func (f *Flusher) MarkDirty(sessionID string, snap state.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if prev, ok := f.dirty[sessionID]; ok && prev.Version > snap.Version {
		return
	}

	f.dirty[sessionID] = snap
}

// drops any pending write for the session
func (f *Flusher) Forget(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.dirty, sessionID)
}

func (f *Flusher) Start() {
	f.wg.Add(1)
	go f.run()
	logger.Info("snapshot flusher started", "interval", f.interval.String())
}

// stops the loop after a final flush
func (f *Flusher) Stop() {
	close(f.stopCh)
	f.wg.Wait()
	logger.Info("snapshot flusher stopped")
}

func (f *Flusher) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.flushWithTimeout()
		case <-f.stopCh:
			logger.Info("flushing remaining snapshots before shutdown")
			f.flushWithTimeout()
			return
		}
	}
}

func (f *Flusher) flushWithTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f.Flush(ctx)
}

// Flush writes every pending snapshot and returns how many were saved.
// Failed writes are re-queued unless a newer value arrived meanwhile.
func (f *Flusher) Flush(ctx context.Context) int {
	f.mu.Lock()
	pending := f.dirty
	f.dirty = make(map[string]state.Snapshot)
	f.mu.Unlock()

	if len(pending) == 0 {
		return 0
	}

	logger.Debug("flushing session snapshots", "count", len(pending))

	saved := 0
	for sessionID, snap := range pending {
		if err := f.store.Save(ctx, sessionID, snap); err != nil {
			logger.ErrorErr(err, "failed to flush session snapshot", "session_id", sessionID)
			f.MarkDirty(sessionID, snap)
			continue
		}
		saved++
	}

	return saved
}
