package upload

import (
	"sync"
	"time"
)

// Session is the in-memory record of one chunked upload. Fields are guarded
// by the owning Registry; handlers never hold a Session across requests.
type Session struct {
	ID          string
	FileName    string
	FileSize    int64
	MimeType    string
	Category    Category
	FileID      string
	TotalChunks int

	// received tracks distinct chunk indices; duplicates overwrite the
	// fragment without inflating the count, so received never exceeds total.
	received map[int]bool

	ChunkDir     string
	CreatedAt    time.Time
	LastActivity time.Time
}

func (s *Session) receivedCount() int { return len(s.received) }

// Registry holds active upload sessions behind a single mutex. It is
// injected into the service rather than living in package state, and its
// lifetime is the serving process.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Update runs fn on the named session under the registry lock. Returns
// ErrUnknownSession when the id is not active.
func (r *Registry) Update(id string, fn func(*Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return ErrUnknownSession
	}
	return fn(s)
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// TakeExpired removes and returns sessions idle since before cutoff. The
// caller owns the returned sessions and their fragment directories.
func (r *Registry) TakeExpired(cutoff time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []*Session
	for id, s := range r.sessions {
		if s.LastActivity.Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	return expired
}
