package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/nkapoor/dots-and-boxes/game/user"
	"github.com/nkapoor/dots-and-boxes/protocol"
)

// Session is one authenticated identity, bound to at most one
// connection. All fields besides ID and User are guarded by the owning
// Registry; only the Registry mutates a Session.
type Session struct {
	ID   string
	User *user.User

	conn      protocol.Conn
	active    bool
	createdAt time.Time
	timer     *time.Timer
}

// Info is a read-only snapshot of a session used by inspection surfaces.
type Info struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Connected bool      `json:"connected"`
	CreatedAt time.Time `json:"created_at"`
}

// newToken generates an unguessable session id.
func newToken() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
