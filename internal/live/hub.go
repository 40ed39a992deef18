package live

import "sync"

// Hub tracks the open sessions.
type Hub struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
}

type Stats struct {
	Sessions int `json:"sessions"`
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[*Session]struct{})}
}

func (h *Hub) Add(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Sessions: len(h.sessions)}
}

// CloseAll drops every connection; each session's read loop then ends and
// removes itself.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.sessions {
		_ = s.conn.Close()
	}
}
