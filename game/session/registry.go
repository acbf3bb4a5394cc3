package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nkapoor/dots-and-boxes/game/user"
	"github.com/nkapoor/dots-and-boxes/protocol"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrHijack          = errors.New("connection hijack")
)

// Registry tracks live sessions. All mutation goes through the Registry;
// expiry timers fire back into it and re-check liveness under the lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	log      *slog.Logger

	// onExpired is called outside the lock after a session expires, so
	// interested parties can refresh the user's presence elsewhere.
	onExpired func(*user.User)
}

// NewRegistry creates a registry whose sessions live for ttl after
// creation. The timer is flat: activity does not extend it.
func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      logger,
	}
}

// OnExpired registers the expiry hook. Wiring-time only, not safe to
// call once the registry is in use.
func (r *Registry) OnExpired(fn func(*user.User)) { r.onExpired = fn }

// Create starts a session for the user over conn, expiring any prior
// session of the same user first.
func (r *Registry) Create(u *user.User, conn protocol.Conn) *Session {
	r.mu.Lock()

	var superseded []*user.User
	for _, s := range r.sessions {
		if s.User.ID == u.ID && r.expireLocked(s) {
			superseded = append(superseded, s.User)
		}
	}

	s := &Session{
		ID:        newToken(),
		User:      u,
		conn:      conn,
		active:    true,
		createdAt: time.Now(),
	}
	r.sessions[s.ID] = s
	s.timer = time.AfterFunc(r.ttl, func() { r.Expire(s.ID) })
	r.mu.Unlock()

	r.log.Info("session created", "session_id", s.ID, "username", u.Username)
	r.fireExpired(superseded)
	return s
}

// Lookup returns the session with the given id, if any.
func (r *Registry) Lookup(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// Alive reports whether the session still exists.
func (r *Registry) Alive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id] != nil
}

// UserFor returns the owning user of a live session.
func (r *Registry) UserFor(id string) (*user.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.sessions[id]; s != nil {
		return s.User, true
	}
	return nil, false
}

// ActiveSession returns the session currently bound to conn, if any.
func (r *Registry) ActiveSession(conn protocol.Conn) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked(conn)
}

func (r *Registry) activeLocked(conn protocol.Conn) *Session {
	for _, s := range r.sessions {
		if s.conn == conn {
			return s
		}
	}
	return nil
}

// Resolve applies the connection-ownership rule used for every
// session-scoped message: a connection with an active session may only
// address that session; otherwise the referenced session is adopted when
// abandoned, and a session bound to another connection is a hijack.
// The adopted return is true when this call rebound the session.
func (r *Registry) Resolve(id string, conn protocol.Conn) (*Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if active := r.activeLocked(conn); active != nil {
		if active.ID != id {
			return nil, false, ErrHijack
		}
		return active, false, nil
	}

	s := r.sessions[id]
	if s == nil {
		return nil, false, ErrSessionNotFound
	}
	if s.conn != nil {
		return nil, false, ErrHijack
	}

	s.conn = conn
	r.log.Info("session reconnected", "session_id", s.ID, "username", s.User.Username)
	return s, true, nil
}

// Reconnect binds conn to the session only when the session exists and
// has no connection. It returns false on a missing session or a hijack
// attempt.
func (r *Registry) Reconnect(id string, conn protocol.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[id]
	if s == nil || s.conn != nil {
		return false
	}
	s.conn = conn
	r.log.Info("session reconnected", "session_id", s.ID, "username", s.User.Username)
	return true
}

// Disconnect detaches whatever session is bound to conn and returns it.
// The session stays live and adoptable.
func (r *Registry) Disconnect(conn protocol.Conn) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.activeLocked(conn)
	if s == nil {
		return nil
	}
	s.conn = nil
	r.log.Info("session disconnected", "session_id", s.ID, "username", s.User.Username)
	return s
}

// Expire removes the session, notifying its last-known connection.
// Expiring an already-expired session is a no-op.
func (r *Registry) Expire(id string) {
	r.mu.Lock()
	s := r.sessions[id]
	expired := s != nil && r.expireLocked(s)
	r.mu.Unlock()

	if expired {
		r.fireExpired([]*user.User{s.User})
	}
}

// expireLocked marks the session inactive, notifies and detaches its
// connection, and drops it from the registry. Caller holds the lock.
func (r *Registry) expireLocked(s *Session) bool {
	if !s.active {
		return false
	}
	s.active = false
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.conn != nil {
		s.conn.Send(protocol.NewSessionExpired(s.ID))
		s.conn = nil
	}
	delete(r.sessions, s.ID)
	r.log.Info("session expired", "session_id", s.ID, "username", s.User.Username)
	return true
}

func (r *Registry) fireExpired(users []*user.User) {
	if r.onExpired == nil {
		return
	}
	for _, u := range users {
		r.onExpired(u)
	}
}

// ConnFor returns the live connection of the user's current session, or
// nil when the user has no connected session. It implements the match
// registry's presence view.
func (r *Registry) ConnFor(userID string) protocol.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.User.ID == userID && s.conn != nil {
			return s.conn
		}
	}
	return nil
}

// Sessions snapshots all live sessions for inspection surfaces.
func (r *Registry) Sessions() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, Info{
			ID:        s.ID,
			UserID:    s.User.ID,
			Username:  s.User.Username,
			Connected: s.conn != nil,
			CreatedAt: s.createdAt,
		})
	}
	return infos
}
