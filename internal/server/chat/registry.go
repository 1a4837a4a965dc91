package chat

import (
	"sort"
	"sync"

	"github.com/dmitrijs2005/shack/internal/server/models"
)

// Registry is the concurrent-safe collection of live sessions plus the
// published roster snapshot. The registry lock covers only map operations;
// per-session state has its own lock and is never touched while the
// registry lock is held.
type Registry struct {
	mu       sync.Mutex
	nextID   uint64
	sessions map[uint64]*Session

	rosterMu sync.RWMutex
	roster   []models.User
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uint64]*Session),
	}
}

// Add assigns the next id to the session, stores it, and immediately
// publishes the user into the roster so a new arrival is visible without
// waiting for the next sync tick.
func (r *Registry) Add(s *Session) uint64 {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	s.setID(id)
	r.sessions[id] = s
	r.mu.Unlock()

	r.rosterMu.Lock()
	roster := make([]models.User, 0, len(r.roster)+1)
	roster = append(roster, r.roster...)
	roster = append(roster, s.User())
	r.roster = roster
	r.rosterMu.Unlock()

	return id
}

// Remove deletes the entry. The roster is not touched here; the sync loop
// rebuilds it wholesale after reaping.
func (r *Registry) Remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Snapshot returns the registered sessions ordered by id. The slice is a
// consistent copy; sessions themselves are shared handles.
func (r *Registry) Snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Roster returns a copy of the published user snapshot. Readers never
// observe a partially-rebuilt roster.
func (r *Registry) Roster() []models.User {
	r.rosterMu.RLock()
	defer r.rosterMu.RUnlock()

	out := make([]models.User, len(r.roster))
	copy(out, r.roster)
	return out
}

// RebuildRoster republishes the roster from the surviving sessions.
func (r *Registry) RebuildRoster() {
	snapshot := r.Snapshot()

	roster := make([]models.User, 0, len(snapshot))
	for _, s := range snapshot {
		roster = append(roster, s.User())
	}

	r.rosterMu.Lock()
	r.roster = roster
	r.rosterMu.Unlock()
}
