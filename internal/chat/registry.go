package chat

import (
	"log/slog"
	"strings"
	"sync"
)

// Registry is the one owner of the live-session set. Every operation runs
// under a single mutex; enumerations return copies so callers can broadcast
// without holding up new connects and disconnects.
type Registry struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
	logger   *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[*Session]struct{}),
		logger:   logger,
	}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s] = struct{}{}
	n := len(r.sessions)
	r.mu.Unlock()

	ConnectedSessions.Set(float64(n))
}

// Remove reports whether the session was still registered. Teardown can race
// between the read loop, the writer and the monitor; whoever gets true owns
// the single userlogout broadcast.
func (r *Registry) Remove(s *Session) bool {
	r.mu.Lock()
	_, ok := r.sessions[s]
	delete(r.sessions, s)
	n := len(r.sessions)
	r.mu.Unlock()

	ConnectedSessions.Set(float64(n))
	if ok && s.UserName() != "" {
		r.logger.Info("session removed", "user", s.UserName(), "session_id", s.SessionID())
	}
	return ok
}

// IsNameTaken compares case-insensitively against logged-in sessions only.
func (r *Registry) IsNameTaken(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nameTakenLocked(name)
}

// Claim re-checks the name and assigns the session's identity under the
// registry lock. Credential checks happen before the claim under the
// credential store's own lock, so of two clients racing to log in with the
// same valid name exactly one gets true here and the other is told the name
// is taken.
func (r *Registry) Claim(s *Session, name, sessionID, clientType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTakenLocked(name) {
		return false
	}
	s.setIdentity(name, sessionID, clientType)
	return true
}

func (r *Registry) nameTakenLocked(name string) bool {
	for s := range r.sessions {
		if user := s.UserName(); user != "" && strings.EqualFold(user, name) {
			return true
		}
	}
	return false
}

// LoggedIn snapshots the authenticated sessions.
func (r *Registry) LoggedIn() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		if s.UserName() != "" {
			out = append(out, s)
		}
	}
	return out
}

// All snapshots every registered session, authenticated or not. The liveness
// monitor sweeps this.
func (r *Registry) All() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
