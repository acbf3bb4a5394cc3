package match

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkapoor/dots-and-boxes/game/engine"
	"github.com/nkapoor/dots-and-boxes/game/user"
	"github.com/nkapoor/dots-and-boxes/protocol"
)

// fakeConn records every outbound message it receives.
type fakeConn struct {
	mu   sync.Mutex
	msgs []protocol.Outbound
}

func (c *fakeConn) Send(msg protocol.Outbound) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *fakeConn) messages() []protocol.Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.Outbound(nil), c.msgs...)
}

func (c *fakeConn) lastGame(t *testing.T) protocol.Game {
	t.Helper()
	msgs := c.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if g, ok := msgs[i].(protocol.Game); ok {
			return g
		}
	}
	t.Fatal("no GAME message received")
	return protocol.Game{}
}

// fakePresence maps user ids to connections.
type fakePresence struct {
	mu    sync.Mutex
	conns map[string]protocol.Conn
}

func newFakePresence() *fakePresence {
	return &fakePresence{conns: make(map[string]protocol.Conn)}
}

func (p *fakePresence) ConnFor(userID string) protocol.Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conns[userID]
}

func (p *fakePresence) set(userID string, conn protocol.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn == nil {
		delete(p.conns, userID)
	} else {
		p.conns[userID] = conn
	}
}

var testTimeouts = Timeouts{
	Idle:    time.Hour,
	Max:     time.Hour,
	Cleanup: time.Hour,
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func testUsers() []*user.User {
	return []*user.User{
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bobby"},
	}
}

// newTestMatch wires a registry on a 1x1 grid with both users connected.
func newTestMatch(t *testing.T, timeouts Timeouts) (*Registry, *Match, *fakePresence, *fakeConn, *fakeConn) {
	t.Helper()
	presence := newFakePresence()
	connA, connB := &fakeConn{}, &fakeConn{}
	presence.set("u1", connA)
	presence.set("u2", connB)

	r := NewRegistry(presence, engine.Grid{Rows: 1, Columns: 1}, timeouts, testLogger())
	m, err := r.Create(testUsers())
	require.NoError(t, err)
	return r, m, presence, connA, connB
}

func TestCreateRequiresEnoughUsers(t *testing.T) {
	r := NewRegistry(newFakePresence(), engine.DefaultGrid, testTimeouts, testLogger())

	_, err := r.Create([]*user.User{{ID: "u1", Username: "alice"}})
	assert.ErrorIs(t, err, engine.ErrInsufficientPlayers)
}

func TestMakeMoveBroadcastsToAllParticipants(t *testing.T) {
	r, m, _, connA, connB := newTestMatch(t, testTimeouts)

	users := testUsers()
	err := r.MakeMove(m.ID, users[0], engine.NewHorizontalEdge(engine.Dot{X: 0, Y: 0}))
	require.NoError(t, err)

	for _, conn := range []*fakeConn{connA, connB} {
		game := conn.lastGame(t)
		assert.Equal(t, m.ID, game.GameID)
		assert.Equal(t, 1, game.GameData.Turn, "turn did not pass")
		assert.Equal(t, []string{protocol.StatusActive, protocol.StatusActive}, game.PlayerStatus)
	}
}

func TestMakeMoveRejections(t *testing.T) {
	r, m, _, connA, connB := newTestMatch(t, testTimeouts)
	users := testUsers()
	edge := engine.NewHorizontalEdge(engine.Dot{X: 0, Y: 0})

	err := r.MakeMove("no-such-match", users[0], edge)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	outsider := &user.User{ID: "u3", Username: "carol"}
	err = r.MakeMove(m.ID, outsider, edge)
	assert.ErrorIs(t, err, ErrNotParticipant)

	// Out of turn: no broadcast, no state change.
	err = r.MakeMove(m.ID, users[1], edge)
	assert.ErrorIs(t, err, engine.ErrNotPlayersTurn)
	assert.Empty(t, connA.messages(), "rejected move was broadcast")
	assert.Empty(t, connB.messages(), "rejected move was broadcast")
}

func TestGameIsReadOnly(t *testing.T) {
	r, m, _, _, _ := newTestMatch(t, testTimeouts)
	users := testUsers()

	game, err := r.Game(m.ID, users[1])
	require.NoError(t, err)
	assert.Equal(t, m.ID, game.GameID)
	assert.False(t, game.GameData.GameOver)

	_, err = r.Game(m.ID, &user.User{ID: "u3"})
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = r.Game("gone", users[0])
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestExpireNotifiesAndIsIdempotent(t *testing.T) {
	r, m, _, connA, connB := newTestMatch(t, testTimeouts)

	r.Expire(m.ID)
	r.Expire(m.ID)

	for _, conn := range []*fakeConn{connA, connB} {
		msgs := conn.messages()
		require.Len(t, msgs, 1, "expected exactly one expiry notification")
		expired, ok := msgs[0].(protocol.GameExpired)
		require.True(t, ok, "expected GAME_EXPIRED, got %T", msgs[0])
		assert.Equal(t, m.ID, expired.GameID)
	}

	_, err := r.Game(m.ID, testUsers()[0])
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestIdleTimeoutExpiresMatch(t *testing.T) {
	timeouts := testTimeouts
	timeouts.Idle = 30 * time.Millisecond
	r, m, _, connA, _ := newTestMatch(t, timeouts)

	assert.Eventually(t, func() bool {
		_, _, err := r.GameInfo(m.ID)
		return err != nil
	}, time.Second, 5*time.Millisecond, "match did not expire")

	msgs := connA.messages()
	require.NotEmpty(t, msgs)
	assert.IsType(t, protocol.GameExpired{}, msgs[len(msgs)-1])
}

func TestMovesRearmIdleTimer(t *testing.T) {
	timeouts := testTimeouts
	timeouts.Idle = 150 * time.Millisecond
	r, m, _, _, _ := newTestMatch(t, timeouts)

	// Keep playing more often than the idle window for longer than the
	// window itself; the match must survive.
	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) {
		info, state, err := r.GameInfo(m.ID)
		require.NoError(t, err, "match expired despite activity")
		if state.GameOver {
			break
		}
		current := info.Players[state.Turn]
		err = r.MakeMove(m.ID, &user.User{ID: current.UserID, Username: current.Username}, state.PendingEdges[0])
		require.NoError(t, err)
		time.Sleep(40 * time.Millisecond)
	}
}

func TestMaxLifetimeExpiresActiveMatch(t *testing.T) {
	timeouts := testTimeouts
	timeouts.Max = 60 * time.Millisecond
	r, m, _, _, _ := newTestMatch(t, timeouts)
	users := testUsers()

	// Activity rearms the idle timer but never the max timer.
	require.NoError(t, r.MakeMove(m.ID, users[0], engine.NewHorizontalEdge(engine.Dot{X: 0, Y: 0})))

	assert.Eventually(t, func() bool {
		_, _, err := r.GameInfo(m.ID)
		return err != nil
	}, time.Second, 5*time.Millisecond, "match outlived its max lifetime")
}

func TestCleanupAfterGameOver(t *testing.T) {
	timeouts := testTimeouts
	timeouts.Cleanup = 30 * time.Millisecond
	r, m, _, connA, _ := newTestMatch(t, timeouts)

	playOutMatch(t, r, m.ID)

	_, state, err := r.GameInfo(m.ID)
	require.NoError(t, err)
	require.True(t, state.GameOver)

	assert.Eventually(t, func() bool {
		_, _, err := r.GameInfo(m.ID)
		return err != nil
	}, time.Second, 5*time.Millisecond, "finished match was not cleaned up")

	msgs := connA.messages()
	assert.IsType(t, protocol.GameExpired{}, msgs[len(msgs)-1])
}

func TestResetCancelsCleanupAndRestoresBoard(t *testing.T) {
	timeouts := testTimeouts
	timeouts.Cleanup = 50 * time.Millisecond
	r, m, _, connA, _ := newTestMatch(t, timeouts)
	users := testUsers()

	playOutMatch(t, r, m.ID)
	require.NoError(t, r.Reset(m.ID, users[0]))

	game := connA.lastGame(t)
	assert.False(t, game.GameData.GameOver)
	assert.Len(t, game.GameData.PendingEdges, 4)
	assert.Equal(t, []int{0, 0}, game.GameData.Scores)

	// The cleanup timer armed at game over must not fire after reset.
	time.Sleep(150 * time.Millisecond)
	_, _, err := r.GameInfo(m.ID)
	assert.NoError(t, err, "cancelled cleanup timer expired the match")
}

func TestExit(t *testing.T) {
	r, m, _, _, connB := newTestMatch(t, testTimeouts)
	users := testUsers()

	assert.ErrorIs(t, r.Exit(m.ID, &user.User{ID: "u3"}), ErrNotParticipant)

	require.NoError(t, r.Exit(m.ID, users[0]))
	msgs := connB.messages()
	require.NotEmpty(t, msgs)
	assert.IsType(t, protocol.GameExpired{}, msgs[len(msgs)-1])

	assert.ErrorIs(t, r.Exit(m.ID, users[0]), ErrMatchNotFound)
}

func TestNotifyStatusMarksDisconnectedPlayer(t *testing.T) {
	r, m, presence, _, connB := newTestMatch(t, testTimeouts)
	users := testUsers()

	// Player A drops; B gets a status vector, no expiry.
	presence.set("u1", nil)
	r.NotifyStatus(users[0])

	msgs := connB.messages()
	require.Len(t, msgs, 1)
	status, ok := msgs[0].(protocol.PlayerStatus)
	require.True(t, ok, "expected PLAYER_STATUS, got %T", msgs[0])
	assert.Equal(t, m.ID, status.GameID)
	assert.Equal(t, []string{protocol.StatusInactive, protocol.StatusActive}, status.PlayerStatus)

	_, _, err := r.GameInfo(m.ID)
	assert.NoError(t, err, "disconnect expired the match")
}

// playOutMatch claims every pending edge, always as the current player.
func playOutMatch(t *testing.T, r *Registry, id string) {
	t.Helper()
	for {
		info, state, err := r.GameInfo(id)
		require.NoError(t, err)
		if state.GameOver {
			return
		}
		current := info.Players[state.Turn]
		err = r.MakeMove(id, &user.User{ID: current.UserID, Username: current.Username}, state.PendingEdges[0])
		require.NoError(t, err)
	}
}
