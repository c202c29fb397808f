package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReplaceIsIdempotent(t *testing.T) {
	seed := Initial().
		WithProductName("serum").
		WithTags([]Tag{{Name: "护肤", HeatLevel: HeatHigh, Category: "beauty"}}).
		WithBloggerPersona(BloggerPersona{Name: "小雅", Expertise: []string{"护肤"}})
	seed, _ = seed.AddReferenceMaterial(material("u1", "T"))

	store := NewStore(seed)
	before := store.Snapshot()

	after := store.Replace(before.State)

	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.Version+1, after.Version)
}

func TestStoreSnapshotIsIsolated(t *testing.T) {
	store := NewStore(Initial().WithTags([]Tag{{Name: "a"}}))

	snap := store.Snapshot()
	snap.State.Tags[0].Name = "mutated"

	assert.Equal(t, "a", store.State().Tags[0].Name)
}

func TestStoreReplaceNormalizes(t *testing.T) {
	store := NewStore(Initial())
	snap := store.Replace(AgentState{Model: "openai"})

	assert.NotNil(t, snap.State.ReferenceMaterials)
	assert.NotNil(t, store.State().Logs)
}

func TestStoreLastWriterWins(t *testing.T) {
	store := NewStore(Initial())
	base := store.State()

	// both sides derive from the same snapshot
	fromCanvas := base.WithProductName("canvas")
	fromAgent := base.WithNote("agent note")

	store.Replace(fromCanvas)
	store.Replace(fromAgent)

	got := store.State()
	assert.Equal(t, "agent note", got.Note)
	assert.Equal(t, "", got.ProductInfo.Name, "the later whole-state write replaces the earlier one")
}

func TestStoreListeners(t *testing.T) {
	store := NewStore(Initial())

	var got []uint64
	store.OnReplace(func(s Snapshot) { got = append(got, s.Version) })

	store.Replace(store.State().WithNote("a"))
	store.Replace(store.State().WithNote("b"))

	assert.Equal(t, []uint64{1, 2}, got)
}

func TestStoreConcurrentReplace(t *testing.T) {
	store := NewStore(Initial())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Replace(store.State().WithNote("x"))
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(50), store.Version())
}

func TestRestoreStoreKeepsVersion(t *testing.T) {
	store := RestoreStore(Snapshot{Version: 7, State: AgentState{Model: "anthropic"}})

	snap := store.Snapshot()
	require.Equal(t, uint64(7), snap.Version)
	assert.Equal(t, "anthropic", snap.State.Model)
	assert.NotNil(t, snap.State.Tags)
}

func TestReplaceNotifiesInVersionOrder(t *testing.T) {
	store := NewStore(Initial())

	release := make(chan struct{})
	entered := make(chan struct{})

	var mu sync.Mutex
	var seen []uint64
	store.OnReplace(func(s Snapshot) {
		if s.Version == 1 {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, s.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		store.Replace(Initial().WithNote("first"))
	}()

	<-entered
	go func() {
		defer wg.Done()
		store.Replace(Initial().WithNote("canvas"))
	}()

	// the second writer is held until the first notification finishes
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, uint64(1), store.Version())

	close(release)
	wg.Wait()

	require.Equal(t, []uint64{1, 2}, seen)
	assert.Equal(t, store.Version(), seen[len(seen)-1])
	assert.Equal(t, "canvas", store.State().Note)
}
