package grapple

// Store maps actor identity to the one active session per actor. It is
// accessed only on the engine's logical thread, so it carries no lock;
// iteration runs over a snapshot of keys so sessions may be removed while a
// pass is in flight without faulting or revisiting.
type Store struct {
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (st *Store) Get(id string) *Session { return st.sessions[id] }

func (st *Store) Len() int { return len(st.sessions) }

// Insert registers a session for an actor. Returns false if the actor
// already has one; the existing session is kept.
func (st *Store) Insert(id string, s *Session) bool {
	if _, ok := st.sessions[id]; ok {
		return false
	}
	st.sessions[id] = s
	return true
}

func (st *Store) Remove(id string) {
	delete(st.sessions, id)
}

// ForEach visits every live session. The callback may remove any session,
// including the one being visited: removed sessions are skipped by the
// existence re-check, never revisited.
func (st *Store) ForEach(fn func(id string, s *Session)) {
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	for _, id := range ids {
		s, ok := st.sessions[id]
		if !ok {
			continue
		}
		fn(id, s)
	}
}
