package session

import "sync"

// Store indexes sessions by peer and session id. Sessions are never
// evicted on termination; an ended session still answers requests with
// its terminal semantics.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: map[string]map[string]*Session{}}
}

func (st *Store) Put(peer string, s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	byID, found := st.sessions[peer]
	if !found {
		byID = map[string]*Session{}
		st.sessions[peer] = byID
	}
	byID[s.SID()] = s
}

func (st *Store) Get(peer, sid string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[peer][sid]
}

// ForPeer snapshots every session held for one peer.
func (st *Store) ForPeer(peer string) []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions[peer]))
	for _, s := range st.sessions[peer] {
		out = append(out, s)
	}
	return out
}

// All snapshots every session across all peers.
func (st *Store) All() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []*Session
	for _, byID := range st.sessions {
		for _, s := range byID {
			out = append(out, s)
		}
	}
	return out
}

func (st *Store) Drop(peer, sid string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions[peer], sid)
}
