package session

import "sync"

// Store is the in-memory registry of active sessions, keyed by user
// id. The mutex covers the map only; per-session state is serialized
// by the session's own lock. Sessions live in memory alone and are
// lost on restart, which the expiry notice already tells users to
// recover from by starting over.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Put registers a session for its user and returns the session it
// replaced, if one was active.
func (st *Store) Put(s *Session) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	old := st.sessions[s.User]
	st.sessions[s.User] = s
	return old
}

func (st *Store) Get(userID int64) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[userID]
}

// Delete removes the user's entry only if it still is the given
// session, so a sweep cannot evict a replacement that won the race.
func (st *Store) Delete(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.sessions[s.User] == s {
		delete(st.sessions, s.User)
	}
}

func (st *Store) Active(userID int64) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.sessions[userID]
	return ok
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Snapshot returns the current sessions without holding the map lock
// for the caller's iteration.
func (st *Store) Snapshot() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	return out
}
