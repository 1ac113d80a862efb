package chat

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Session pairs a live connection with the name it registered under.
type Session struct {
	ID   string
	Name string

	peer *peer
}

// Send writes one line to the session's connection.
func (s *Session) Send(line string) error {
	return s.peer.writeLine(line)
}

// Registry is the set of live sessions in registration order. One mutex
// covers the whole set and is never held while writing to a connection.
type Registry struct {
	mu       sync.Mutex
	sessions []*Session
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a session for p. Names need not be unique. Registering a
// connection twice returns the session created the first time.
func (r *Registry) Register(p *peer, name string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := lo.Find(r.sessions, func(s *Session) bool { return s.peer == p }); ok {
		return existing
	}

	s := &Session{ID: uuid.NewString(), Name: name, peer: p}
	r.sessions = append(r.sessions, s)
	ConnectedClients.Set(float64(len(r.sessions)))
	return s
}

// Unregister removes the session for p. Removing an absent connection is a no-op.
func (r *Registry) Unregister(p *peer) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, idx, ok := lo.FindIndexOf(r.sessions, func(s *Session) bool { return s.peer == p })
	if !ok {
		return nil, false
	}
	r.sessions = slices.Delete(r.sessions, idx, idx+1)
	ConnectedClients.Set(float64(len(r.sessions)))
	return s, true
}

// FindByName returns the earliest registered session called name.
func (r *Registry) FindByName(name string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.Find(r.sessions, func(s *Session) bool { return s.Name == name })
}

// Snapshot returns a point-in-time copy safe to iterate without the lock.
func (r *Registry) Snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*Session(nil), r.sessions...)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Names lists registered names in registration order, duplicates included.
func (r *Registry) Names() []string {
	return lo.Map(r.Snapshot(), func(s *Session, _ int) string { return s.Name })
}
