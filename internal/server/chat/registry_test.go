package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/shack/internal/server/models"
)

func TestRegistry_AddAssignsUniqueIDs(t *testing.T) {
	r := NewRegistry()

	seen := map[uint64]bool{}
	for i := 0; i < 10; i++ {
		s, _ := newTestSession()
		id := r.Add(s)
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Equal(t, 10, r.Len())
}

func TestRegistry_IDsStayUniqueAcrossRemoves(t *testing.T) {
	r := NewRegistry()

	a, _ := newTestSession()
	first := r.Add(a)
	r.Remove(first)

	b, _ := newTestSession()
	second := r.Add(b)
	assert.NotEqual(t, first, second)
}

func TestRegistry_ConcurrentAddsAreUnique(t *testing.T) {
	r := NewRegistry()

	const n = 64
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, _ := newTestSession()
			ids <- r.Add(s)
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{}
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestRegistry_AddPublishesRosterImmediately(t *testing.T) {
	r := NewRegistry()

	s := NewSession(models.Authenticated("alice"), &stubConn{})
	r.Add(s)

	// No tick has run; the new user must already be visible.
	require.Equal(t, []models.User{models.Authenticated("alice")}, r.Roster())
}

func TestRegistry_RemoveLeavesRosterUntilRebuild(t *testing.T) {
	r := NewRegistry()

	s := NewSession(models.Authenticated("alice"), &stubConn{})
	id := r.Add(s)

	r.Remove(id)
	assert.Len(t, r.Roster(), 1, "remove alone must not republish")

	r.RebuildRoster()
	assert.Empty(t, r.Roster())
}

func TestRegistry_SnapshotOrderedByID(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"alice", "bob", "carol"} {
		r.Add(NewSession(models.Authenticated(name), &stubConn{}))
	}

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "alice", snapshot[0].User().Username)
	assert.Equal(t, "bob", snapshot[1].User().Username)
	assert.Equal(t, "carol", snapshot[2].User().Username)
}

func TestRegistry_RosterIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Add(NewSession(models.Authenticated("alice"), &stubConn{}))

	roster := r.Roster()
	roster[0] = models.Authenticated("mallory")

	assert.Equal(t, "alice", r.Roster()[0].Username)
}
