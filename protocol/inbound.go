package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nkapoor/dots-and-boxes/game/engine"
)

// Inbound message type tags.
const (
	TypeSignUp    = "SIGN_UP"
	TypeLogin     = "LOGIN"
	TypeLogout    = "LOGOUT"
	TypeStatus    = "STATUS"
	TypeJoinGame  = "JOIN_GAME"
	TypeGetGame   = "GET_GAME"
	TypeMakeMove  = "MAKE_MOVE"
	TypeResetGame = "RESET_GAME"
	TypeExitGame  = "EXIT_GAME"
)

// ErrMalformed marks frames that cannot be decoded into a known variant.
var ErrMalformed = errors.New("malformed message")

// Inbound is the closed set of client-to-server messages.
type Inbound interface{ isInbound() }

type SignUp struct {
	Username string
	Password string
}

type Login struct {
	Username string
	Password string
}

type Logout struct {
	SessionID string
}

type Status struct {
	SessionID string
}

type JoinGame struct {
	SessionID string
}

type GetGame struct {
	SessionID string
	GameID    string
}

type MakeMove struct {
	SessionID string
	GameID    string
	Move      engine.Edge
}

type ResetGame struct {
	SessionID string
	GameID    string
}

type ExitGame struct {
	SessionID string
	GameID    string
}

func (SignUp) isInbound()    {}
func (Login) isInbound()     {}
func (Logout) isInbound()    {}
func (Status) isInbound()    {}
func (JoinGame) isInbound()  {}
func (GetGame) isInbound()   {}
func (MakeMove) isInbound()  {}
func (ResetGame) isInbound() {}
func (ExitGame) isInbound()  {}

// envelope is the superset of all inbound fields; Decode picks the ones
// the tagged variant requires.
type envelope struct {
	Type      string       `json:"type"`
	Username  string       `json:"username"`
	Password  string       `json:"password"`
	SessionID string       `json:"session_id"`
	GameID    string       `json:"game_id"`
	Move      *engine.Edge `json:"move"`
}

// Decode parses one frame into its typed inbound variant.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.Type {
	case TypeSignUp:
		if err := required(env.Type, "username", env.Username, "password", env.Password); err != nil {
			return nil, err
		}
		return SignUp{Username: env.Username, Password: env.Password}, nil
	case TypeLogin:
		if err := required(env.Type, "username", env.Username, "password", env.Password); err != nil {
			return nil, err
		}
		return Login{Username: env.Username, Password: env.Password}, nil
	case TypeLogout:
		if err := required(env.Type, "session_id", env.SessionID); err != nil {
			return nil, err
		}
		return Logout{SessionID: env.SessionID}, nil
	case TypeStatus:
		if err := required(env.Type, "session_id", env.SessionID); err != nil {
			return nil, err
		}
		return Status{SessionID: env.SessionID}, nil
	case TypeJoinGame:
		if err := required(env.Type, "session_id", env.SessionID); err != nil {
			return nil, err
		}
		return JoinGame{SessionID: env.SessionID}, nil
	case TypeGetGame:
		if err := required(env.Type, "session_id", env.SessionID, "game_id", env.GameID); err != nil {
			return nil, err
		}
		return GetGame{SessionID: env.SessionID, GameID: env.GameID}, nil
	case TypeMakeMove:
		if err := required(env.Type, "session_id", env.SessionID, "game_id", env.GameID); err != nil {
			return nil, err
		}
		if env.Move == nil {
			return nil, fmt.Errorf("%w: %s missing move", ErrMalformed, env.Type)
		}
		return MakeMove{SessionID: env.SessionID, GameID: env.GameID, Move: *env.Move}, nil
	case TypeResetGame:
		if err := required(env.Type, "session_id", env.SessionID, "game_id", env.GameID); err != nil {
			return nil, err
		}
		return ResetGame{SessionID: env.SessionID, GameID: env.GameID}, nil
	case TypeExitGame:
		if err := required(env.Type, "session_id", env.SessionID, "game_id", env.GameID); err != nil {
			return nil, err
		}
		return ExitGame{SessionID: env.SessionID, GameID: env.GameID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformed, env.Type)
	}
}

// required checks name/value pairs and reports the first missing field.
func required(msgType string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("%w: %s missing %s", ErrMalformed, msgType, pairs[i])
		}
	}
	return nil
}
