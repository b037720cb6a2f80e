package realtime

import (
	"sort"
	"sync"
)

// Registry is the live mapping from user identity to connections. It
// tracks every open connection (anonymous ones included) and, per user,
// the set of connections bound to that user — one entry per tab or
// device. Invariant: a user id is present in byUser iff it owns at
// least one live connection.
//
// All mutation funnels through Track/Bind/Forget, each idempotent, so
// concurrent duplicate calls are safe. The maps are guarded by a single
// mutex; callers get snapshots, never live map references.
type Registry struct {
	mu     sync.RWMutex
	conns  map[*Conn]struct{}
	owner  map[*Conn]string
	byUser map[string]map[*Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[*Conn]struct{}),
		owner:  make(map[*Conn]string),
		byUser: make(map[string]map[*Conn]struct{}),
	}
}

// Track adds a connection in its anonymous state.
func (r *Registry) Track(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
}

// Bind associates a tracked connection with a user id. Re-binding the
// same connection to the same id is a no-op. Binding to a different id
// moves the connection, which can take the previous owner offline.
// bound is false when the connection is no longer tracked (a disconnect
// raced the register); cameOnline and wentOffline report presence
// changes for the new and previous owner — the caller broadcasts the
// roster when either is set.
func (r *Registry) Bind(c *Conn, userID string) (cameOnline, wentOffline, bound bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c]; !ok {
		return false, false, false
	}
	if prev, ok := r.owner[c]; ok {
		if prev == userID {
			return false, false, true
		}
		wentOffline = r.removeFromUser(c, prev)
	}
	r.owner[c] = userID
	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[*Conn]struct{})
		r.byUser[userID] = set
	}
	set[c] = struct{}{}
	return len(set) == 1, wentOffline, true
}

// Forget removes a connection entirely. Safe to call multiple times and
// for never-tracked connections. Returns the user id the connection was
// bound to (empty for anonymous) and whether that user went offline as
// a result.
func (r *Registry) Forget(c *Conn) (userID string, wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c]; !ok {
		return "", false
	}
	delete(r.conns, c)
	userID, bound := r.owner[c]
	if !bound {
		return "", false
	}
	delete(r.owner, c)
	return userID, r.removeFromUser(c, userID)
}

// removeFromUser must be called with the lock held. Returns true if the
// user's set became empty and was dropped.
func (r *Registry) removeFromUser(c *Conn, userID string) bool {
	set, ok := r.byUser[userID]
	if !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.byUser, userID)
		return true
	}
	return false
}

// IsOnline reports whether the user id owns at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// ListOnline returns a sorted snapshot of currently-bound user ids.
func (r *Registry) ListOnline() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Connections returns a snapshot of the user's connection set.
func (r *Registry) Connections(userID string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byUser[userID]
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// All returns a snapshot of every tracked connection, anonymous ones
// included.
func (r *Registry) All() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		out = append(out, c)
	}
	return out
}

// UserOf returns the bound user id for a connection, if any.
func (r *Registry) UserOf(c *Conn) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.owner[c]
	return id, ok
}
