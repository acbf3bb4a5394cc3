package protocol

import (
	"github.com/nkapoor/dots-and-boxes/game/engine"
)

// Outbound message type tags.
const (
	TypeAuthenticated   = "AUTHENTICATED"
	TypeUnauthenticated = "UNAUTHENTICATED"
	TypeSessionExpired  = "SESSION_EXPIRED"
	TypeGame            = "GAME"
	TypePlayerStatus    = "PLAYER_STATUS"
	TypeGameExpired     = "GAME_EXPIRED"
	TypeUnauthorized    = "UNAUTHORIZED"
)

// Connection-status values reported in player_status vectors, indexed
// like the match's participant list.
const (
	StatusActive   = "SESSION_ACTIVE"
	StatusInactive = "SESSION_INACTIVE"
)

// Conn is one connected client able to receive outbound messages. Send
// enqueues best-effort and never blocks; messages to a closed or slow
// peer are dropped without retry.
type Conn interface {
	Send(msg Outbound)
}

// Outbound is the closed set of server-to-client messages.
type Outbound interface{ isOutbound() }

type Authenticated struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type Unauthenticated struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type SessionExpired struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type Game struct {
	Type         string        `json:"type"`
	GameID       string        `json:"game_id"`
	GameData     *engine.State `json:"game_data"`
	PlayerStatus []string      `json:"player_status"`
}

type PlayerStatus struct {
	Type         string   `json:"type"`
	GameID       string   `json:"game_id"`
	PlayerStatus []string `json:"player_status"`
}

type GameExpired struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
}

type Unauthorized struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (Authenticated) isOutbound()   {}
func (Unauthenticated) isOutbound() {}
func (SessionExpired) isOutbound()  {}
func (Game) isOutbound()            {}
func (PlayerStatus) isOutbound()    {}
func (GameExpired) isOutbound()     {}
func (Unauthorized) isOutbound()    {}

func NewAuthenticated(sessionID, userID string) Authenticated {
	return Authenticated{Type: TypeAuthenticated, SessionID: sessionID, UserID: userID}
}

func NewUnauthenticated(reason string) Unauthenticated {
	return Unauthenticated{Type: TypeUnauthenticated, Error: reason}
}

func NewSessionExpired(sessionID string) SessionExpired {
	return SessionExpired{Type: TypeSessionExpired, SessionID: sessionID}
}

func NewGame(gameID string, state *engine.State, playerStatus []string) Game {
	return Game{Type: TypeGame, GameID: gameID, GameData: state, PlayerStatus: playerStatus}
}

func NewPlayerStatus(gameID string, playerStatus []string) PlayerStatus {
	return PlayerStatus{Type: TypePlayerStatus, GameID: gameID, PlayerStatus: playerStatus}
}

func NewGameExpired(gameID string) GameExpired {
	return GameExpired{Type: TypeGameExpired, GameID: gameID}
}

func NewUnauthorized(reason string) Unauthorized {
	return Unauthorized{Type: TypeUnauthorized, Error: reason}
}
