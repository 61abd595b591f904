package server

import (
	"sync"

	"github.com/datagamesbr/dpohero/internal/session"
)

// Registry holds the live mission sessions, at most one per player.
// A session lives here only while its scene is active; the registry
// never persists anything, outcomes go through the progress store.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session.Session),
	}
}

// Get returns the player's live session, if any.
func (r *Registry) Get(playerID string) (*session.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[playerID]
	return s, ok
}

// Put installs a session for the player, replacing any previous one.
// The replaced session is discarded, not finalized: abandoning a
// mission mid-run awards nothing.
func (r *Registry) Put(playerID string, s *session.Session) {
	r.mu.Lock()
	r.sessions[playerID] = s
	r.mu.Unlock()
}

// Remove drops the player's live session.
func (r *Registry) Remove(playerID string) {
	r.mu.Lock()
	delete(r.sessions, playerID)
	r.mu.Unlock()
}
