// Command bot is a WebSocket client that plays complete games against a
// running server. It signs up two throwaway users, queues them both,
// and plays random legal moves until the game finishes. Useful as a
// smoke test and for generating load during development.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nkapoor/dots-and-boxes/game/engine"
	"github.com/nkapoor/dots-and-boxes/protocol"
)

var (
	serverURL = flag.String("server", "ws://localhost:8080/ws", "WebSocket URL of the game server")
	games     = flag.Int("games", 1, "Number of games to play")
	delay     = flag.Duration("delay", 100*time.Millisecond, "Pause between moves")
)

// player is one bot-controlled connection.
type player struct {
	name      string
	conn      *websocket.Conn
	sessionID string
	userID    string
}

// frame is the superset of outbound fields the bot cares about.
type frame struct {
	Type      string        `json:"type"`
	Error     string        `json:"error"`
	SessionID string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	GameID    string        `json:"game_id"`
	GameData  *engine.State `json:"game_data"`
}

func main() {
	flag.Parse()

	for i := 0; i < *games; i++ {
		if err := playGame(i); err != nil {
			log.Fatalf("game %d: %v", i+1, err)
		}
	}
	log.Printf("played %d game(s)", *games)
}

func playGame(round int) error {
	suffix := rand.Intn(10000)
	p1, err := connect(fmt.Sprintf("bot%04dA", suffix))
	if err != nil {
		return err
	}
	defer p1.conn.Close()

	p2, err := connect(fmt.Sprintf("bot%04dB", suffix))
	if err != nil {
		return err
	}
	defer p2.conn.Close()

	gameID, state, err := joinMatch(p1, p2)
	if err != nil {
		return err
	}
	log.Printf("game %d started: %s (%dx%d)", round+1, gameID, state.Grid.Rows, state.Grid.Columns)

	byUser := map[string]*player{p1.userID: p1, p2.userID: p2}
	for !state.GameOver {
		mover := byUser[state.Players[state.Turn].UserID]
		move := state.PendingEdges[rand.Intn(len(state.PendingEdges))]

		if err := mover.send(protocol.TypeMakeMove, map[string]interface{}{
			"session_id": mover.sessionID,
			"game_id":    gameID,
			"move":       move,
		}); err != nil {
			return err
		}

		// Every move is broadcast to both players, so the mover may
		// have a backlog of older frames; skip until this move shows.
		f, err := mover.await(func(f *frame) bool {
			return f.Type == protocol.TypeGame &&
				f.GameData.LastMove != nil && *f.GameData.LastMove == move
		})
		if err != nil {
			return err
		}
		state = f.GameData
		time.Sleep(*delay)
	}

	log.Printf("game %d over, scores %v", round+1, state.Scores)
	return p1.send(protocol.TypeExitGame, map[string]interface{}{
		"session_id": p1.sessionID,
		"game_id":    gameID,
	})
}

// connect dials the server and signs up a fresh user.
func connect(username string) (*player, error) {
	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", *serverURL, err)
	}

	p := &player{name: username, conn: conn}
	if err := p.send(protocol.TypeSignUp, map[string]interface{}{
		"username": username,
		"password": fmt.Sprintf("pw%06d", rand.Intn(1000000)),
	}); err != nil {
		return nil, err
	}

	f, err := p.await(func(f *frame) bool { return f.Type == protocol.TypeAuthenticated })
	if err != nil {
		return nil, fmt.Errorf("sign up %s: %w", username, err)
	}
	p.sessionID = f.SessionID
	p.userID = f.UserID
	return p, nil
}

// joinMatch queues both players and waits for the game broadcast.
func joinMatch(p1, p2 *player) (string, *engine.State, error) {
	for _, p := range []*player{p1, p2} {
		if err := p.send(protocol.TypeJoinGame, map[string]interface{}{
			"session_id": p.sessionID,
		}); err != nil {
			return "", nil, err
		}
	}

	isGame := func(f *frame) bool { return f.Type == protocol.TypeGame }
	f, err := p1.await(isGame)
	if err != nil {
		return "", nil, err
	}
	if _, err := p2.await(isGame); err != nil {
		return "", nil, err
	}
	return f.GameID, f.GameData, nil
}

func (p *player) send(msgType string, fields map[string]interface{}) error {
	fields["type"] = msgType
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// await reads frames until one matches. Server errors abort
// immediately.
func (p *player) await(want func(*frame) bool) (*frame, error) {
	p.conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("bad frame %q: %w", data, err)
		}
		switch {
		case want(&f):
			return &f, nil
		case f.Type == protocol.TypeUnauthenticated || f.Type == protocol.TypeUnauthorized:
			return nil, fmt.Errorf("server rejected %s: %s", p.name, f.Error)
		}
	}
}
