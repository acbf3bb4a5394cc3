package session

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func testRegistry(ttl time.Duration) *Registry {
	return NewRegistry(ttl, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func testUser(id, name string) *user.User {
	return &user.User{ID: id, Username: name}
}

func TestCreateSupersedesPriorSession(t *testing.T) {
	r := testRegistry(time.Hour)
	alice := testUser("u1", "alice")

	connA, connB := &fakeConn{}, &fakeConn{}
	first := r.Create(alice, connA)
	second := r.Create(alice, connB)

	assert.Nil(t, r.Lookup(first.ID), "superseded session still registered")
	require.NotNil(t, r.Lookup(second.ID))

	msgs := connA.messages()
	require.Len(t, msgs, 1)
	expired, ok := msgs[0].(protocol.SessionExpired)
	require.True(t, ok, "expected SESSION_EXPIRED, got %T", msgs[0])
	assert.Equal(t, first.ID, expired.SessionID)

	assert.Empty(t, connB.messages())
}

func TestResolveActiveConnection(t *testing.T) {
	r := testRegistry(time.Hour)
	conn := &fakeConn{}
	sess := r.Create(testUser("u1", "alice"), conn)

	got, adopted, err := r.Resolve(sess.ID, conn)
	require.NoError(t, err)
	assert.False(t, adopted)
	assert.Equal(t, sess.ID, got.ID)

	// A connection with an active session cannot address another one.
	other := r.Create(testUser("u2", "bobby"), &fakeConn{})
	_, _, err = r.Resolve(other.ID, conn)
	assert.ErrorIs(t, err, ErrHijack)
}

func TestResolveAdoptsAbandonedSession(t *testing.T) {
	r := testRegistry(time.Hour)
	connA := &fakeConn{}
	sess := r.Create(testUser("u1", "alice"), connA)

	require.NotNil(t, r.Disconnect(connA))

	connB := &fakeConn{}
	got, adopted, err := r.Resolve(sess.ID, connB)
	require.NoError(t, err)
	assert.True(t, adopted)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, protocol.Conn(connB), r.ConnFor("u1"))
}

func TestResolveRejectsHijack(t *testing.T) {
	r := testRegistry(time.Hour)
	connA := &fakeConn{}
	sess := r.Create(testUser("u1", "alice"), connA)

	// Still bound to connA: another connection may not take it over.
	_, _, err := r.Resolve(sess.ID, &fakeConn{})
	assert.ErrorIs(t, err, ErrHijack)

	_, _, err = r.Resolve("no-such-session", &fakeConn{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReconnect(t *testing.T) {
	r := testRegistry(time.Hour)
	connA := &fakeConn{}
	sess := r.Create(testUser("u1", "alice"), connA)

	assert.False(t, r.Reconnect(sess.ID, &fakeConn{}), "hijacked a bound session")
	assert.False(t, r.Reconnect("missing", &fakeConn{}))

	r.Disconnect(connA)
	assert.True(t, r.Reconnect(sess.ID, &fakeConn{}))
}

func TestDisconnectDetachesWithoutExpiry(t *testing.T) {
	r := testRegistry(time.Hour)
	conn := &fakeConn{}
	sess := r.Create(testUser("u1", "alice"), conn)

	got := r.Disconnect(conn)
	require.NotNil(t, got)
	assert.Equal(t, sess.ID, got.ID)

	// Session is still live and received no expiry notice.
	assert.NotNil(t, r.Lookup(sess.ID))
	assert.Empty(t, conn.messages())

	assert.Nil(t, r.Disconnect(conn), "second disconnect found a session")
}

func TestExpireIsIdempotent(t *testing.T) {
	r := testRegistry(time.Hour)
	conn := &fakeConn{}
	sess := r.Create(testUser("u1", "alice"), conn)

	var hookCalls int
	r.OnExpired(func(*user.User) { hookCalls++ })

	r.Expire(sess.ID)
	r.Expire(sess.ID)
	r.Expire("never-existed")

	assert.Nil(t, r.Lookup(sess.ID))
	assert.Len(t, conn.messages(), 1, "duplicate expiry notification")
	assert.Equal(t, 1, hookCalls)
}

func TestIdleExpiry(t *testing.T) {
	r := testRegistry(20 * time.Millisecond)
	conn := &fakeConn{}
	sess := r.Create(testUser("u1", "alice"), conn)

	assert.Eventually(t, func() bool {
		return r.Lookup(sess.ID) == nil
	}, time.Second, 5*time.Millisecond, "session did not expire")

	msgs := conn.messages()
	require.Len(t, msgs, 1)
	assert.IsType(t, protocol.SessionExpired{}, msgs[0])
}

func TestSessionsSnapshot(t *testing.T) {
	r := testRegistry(time.Hour)
	conn := &fakeConn{}
	r.Create(testUser("u1", "alice"), conn)
	bob := r.Create(testUser("u2", "bobby"), &fakeConn{})
	r.Disconnect(conn)

	infos := r.Sessions()
	require.Len(t, infos, 2)
	byUser := make(map[string]Info)
	for _, info := range infos {
		byUser[info.UserID] = info
	}
	assert.False(t, byUser["u1"].Connected)
	assert.True(t, byUser["u2"].Connected)
	assert.Equal(t, bob.ID, byUser["u2"].ID)
}
