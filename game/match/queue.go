package match

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/nkapoor/dots-and-boxes/game/user"
	"github.com/nkapoor/dots-and-boxes/protocol"
)

// RequiredPlayers is the participant quota a match forms at.
const RequiredPlayers = 2

// ErrAlreadyQueued rejects a connection that is already waiting.
var ErrAlreadyQueued = errors.New("connection already queued")

// Sessions is the queue's view of the session registry.
type Sessions interface {
	Alive(sessionID string) bool
	UserFor(sessionID string) (*user.User, bool)
}

type entry struct {
	sessionID string
	conn      protocol.Conn
}

// Queue buffers connections waiting for enough participants. Formation
// is all-or-nothing: when the quota is met a match is created from every
// queued entry and the queue is cleared, with no partial carryover.
type Queue struct {
	mu       sync.Mutex
	entries  []entry
	sessions Sessions
	matches  *Registry
	log      *slog.Logger
}

// NewQueue creates a matchmaking queue feeding the match registry.
func NewQueue(sessions Sessions, matches *Registry, logger *slog.Logger) *Queue {
	return &Queue{sessions: sessions, matches: matches, log: logger}
}

// Join queues the session's connection. Entries whose session has since
// expired are pruned first. Once RequiredPlayers connections are
// waiting, a match is formed from their users and broadcast to every
// queued connection.
func (q *Queue) Join(sessionID string, conn protocol.Conn) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.conn == conn {
			return ErrAlreadyQueued
		}
	}

	kept := q.entries[:0]
	for _, e := range q.entries {
		if q.sessions.Alive(e.sessionID) {
			kept = append(kept, e)
		} else {
			q.log.Info("pruned stale matchmaking entry", "session_id", e.sessionID)
		}
	}
	q.entries = append(kept, entry{sessionID: sessionID, conn: conn})

	if len(q.entries) < RequiredPlayers {
		q.log.Info("queued for match", "session_id", sessionID, "waiting", len(q.entries))
		return nil
	}

	users := make([]*user.User, 0, len(q.entries))
	for _, e := range q.entries {
		u, ok := q.sessions.UserFor(e.sessionID)
		if !ok {
			// Session died between the prune and now; keep waiting.
			return nil
		}
		users = append(users, u)
	}

	m, err := q.matches.Create(users)
	if err != nil {
		return err
	}
	q.entries = nil
	q.matches.Broadcast(m.ID)
	return nil
}

// Remove drops the pending entry of a closing connection, if any.
func (q *Queue) Remove(conn protocol.Conn) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.conn == conn {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			q.log.Info("removed matchmaking entry", "session_id", e.sessionID)
			return
		}
	}
}

// Len returns the number of waiting connections.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
