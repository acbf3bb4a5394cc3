package match

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkapoor/dots-and-boxes/game/engine"
	"github.com/nkapoor/dots-and-boxes/game/user"
)

// fakeSessions backs the queue with an in-memory session table.
type fakeSessions struct {
	mu    sync.Mutex
	users map[string]*user.User // session id -> user
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{users: make(map[string]*user.User)}
}

func (s *fakeSessions) add(sessionID string, u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[sessionID] = u
}

func (s *fakeSessions) expire(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, sessionID)
}

func (s *fakeSessions) Alive(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[sessionID] != nil
}

func (s *fakeSessions) UserFor(sessionID string) (*user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[sessionID]
	return u, ok
}

func newTestQueue(t *testing.T) (*Queue, *fakeSessions, *fakePresence) {
	t.Helper()
	sessions := newFakeSessions()
	presence := newFakePresence()
	matches := NewRegistry(presence, engine.DefaultGrid, testTimeouts, testLogger())
	return NewQueue(sessions, matches, testLogger()), sessions, presence
}

func TestJoinFormsMatchAtQuota(t *testing.T) {
	q, sessions, presence := newTestQueue(t)

	alice := &user.User{ID: "u1", Username: "alice"}
	bob := &user.User{ID: "u2", Username: "bobby"}
	connA, connB := &fakeConn{}, &fakeConn{}
	sessions.add("s1", alice)
	sessions.add("s2", bob)
	presence.set("u1", connA)
	presence.set("u2", connB)

	require.NoError(t, q.Join("s1", connA))
	assert.Equal(t, 1, q.Len())
	assert.Empty(t, connA.messages(), "notified before match formed")

	require.NoError(t, q.Join("s2", connB))
	assert.Equal(t, 0, q.Len(), "queue not cleared after formation")

	gameA := connA.lastGame(t)
	gameB := connB.lastGame(t)
	assert.Equal(t, gameA.GameID, gameB.GameID, "participants got different matches")
	assert.False(t, gameA.GameData.GameOver)
	assert.Len(t, gameA.GameData.ChosenEdges, 0, "board not unstarted")
	assert.Equal(t, []engine.Player{
		{UserID: "u1", Username: "alice"},
		{UserID: "u2", Username: "bobby"},
	}, gameA.GameData.Players)
}

func TestJoinRejectsDuplicateConnection(t *testing.T) {
	q, sessions, _ := newTestQueue(t)
	sessions.add("s1", &user.User{ID: "u1", Username: "alice"})

	conn := &fakeConn{}
	require.NoError(t, q.Join("s1", conn))

	err := q.Join("s1", conn)
	assert.ErrorIs(t, err, ErrAlreadyQueued)
	assert.Equal(t, 1, q.Len())
}

func TestJoinPrunesExpiredSessions(t *testing.T) {
	q, sessions, _ := newTestQueue(t)

	sessions.add("s1", &user.User{ID: "u1", Username: "alice"})
	sessions.add("s2", &user.User{ID: "u2", Username: "bobby"})

	connA := &fakeConn{}
	require.NoError(t, q.Join("s1", connA))

	// Alice's session dies while she waits; Bob's join must not form a
	// match against a ghost.
	sessions.expire("s1")

	connB := &fakeConn{}
	require.NoError(t, q.Join("s2", connB))
	assert.Equal(t, 1, q.Len())
	assert.Empty(t, connB.messages())
}

func TestRemoveDropsPendingEntry(t *testing.T) {
	q, sessions, _ := newTestQueue(t)
	sessions.add("s1", &user.User{ID: "u1", Username: "alice"})

	conn := &fakeConn{}
	require.NoError(t, q.Join("s1", conn))
	q.Remove(conn)
	assert.Equal(t, 0, q.Len())

	// Removing an unknown connection is harmless.
	q.Remove(&fakeConn{})
}
