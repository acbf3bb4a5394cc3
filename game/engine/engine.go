package engine

import (
	"errors"
	"sort"
)

// MinPlayers is the smallest number of participants a game can have.
const MinPlayers = 2

var (
	ErrInsufficientPlayers = errors.New("insufficient number of players")
	ErrGameOver            = errors.New("game over")
	ErrNotPlayersTurn      = errors.New("player cannot make the move")
	ErrEdgeUnavailable     = errors.New("cannot select specified edge")
)

// Player identifies a match participant. Players are linked to users,
// not sessions: a user can lose their session mid-game and rejoin with a
// fresh one while the game continues.
type Player struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Engine holds the mutable state of one Dots and Boxes game. The grid
// and player list are fixed at construction; everything else changes as
// moves are made and can be rolled back to the initial state with Reset.
type Engine struct {
	grid    Grid
	players []Player

	turn         int
	pendingEdges map[Edge]bool
	pendingBoxes map[Box]int // box -> number of unclaimed bordering edges
	chosenEdges  map[Edge]int
	wonBoxes     map[Box]int
	lastMove     *Edge
}

// New creates an engine for the given players on the given grid.
func New(players []Player, grid Grid) (*Engine, error) {
	if len(players) < MinPlayers {
		return nil, ErrInsufficientPlayers
	}
	e := &Engine{grid: grid, players: players}
	e.Reset()
	return e, nil
}

// Reset returns the game to its initial state with the same players.
func (e *Engine) Reset() {
	edges := AllEdges(e.grid)
	e.turn = 0
	e.pendingEdges = make(map[Edge]bool, len(edges))
	for _, edge := range edges {
		e.pendingEdges[edge] = true
	}
	boxes := AllBoxes(e.grid)
	e.pendingBoxes = make(map[Box]int, len(boxes))
	for _, box := range boxes {
		e.pendingBoxes[box] = 4
	}
	e.chosenEdges = make(map[Edge]int)
	e.wonBoxes = make(map[Box]int)
	e.lastMove = nil
}

// MakeMove claims edge for player. It fails without mutating anything
// when the game is over, it is not the player's turn, or the edge is not
// pending. Completing a box keeps the turn with the player.
func (e *Engine) MakeMove(player Player, edge Edge) error {
	if e.GameOver() {
		return ErrGameOver
	}
	if player != e.CurrentPlayer() {
		return ErrNotPlayersTurn
	}
	if !e.pendingEdges[edge] {
		return ErrEdgeUnavailable
	}

	idx := e.turn
	delete(e.pendingEdges, edge)
	e.chosenEdges[edge] = idx

	passTurn := true
	for _, box := range edge.AdjacentBoxes(e.grid) {
		e.pendingBoxes[box]--
		if e.pendingBoxes[box] == 0 {
			delete(e.pendingBoxes, box)
			e.wonBoxes[box] = idx
			passTurn = false
		}
	}
	if passTurn {
		e.turn = (e.turn + 1) % len(e.players)
	}
	move := edge
	e.lastMove = &move
	return nil
}

// CurrentPlayer returns the player whose turn it is.
func (e *Engine) CurrentPlayer() Player { return e.players[e.turn] }

// Players returns the fixed participant list in turn order.
func (e *Engine) Players() []Player { return e.players }

// Grid returns the board size.
func (e *Engine) Grid() Grid { return e.grid }

// GameOver reports whether every edge has been claimed.
func (e *Engine) GameOver() bool { return len(e.pendingEdges) == 0 }

// Score returns the number of boxes won by the player at index idx.
func (e *Engine) Score(idx int) int {
	score := 0
	for _, winner := range e.wonBoxes {
		if winner == idx {
			score++
		}
	}
	return score
}

// Scores returns per-player box counts indexed like Players.
func (e *Engine) Scores() []int {
	scores := make([]int, len(e.players))
	for _, winner := range e.wonBoxes {
		scores[winner]++
	}
	return scores
}

// Winners returns the players holding the leading box count. Before any
// box is won every player is leading; the result only decides the game
// once GameOver reports true.
func (e *Engine) Winners() []Player {
	scores := e.Scores()
	max := 0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	var winners []Player
	for i, s := range scores {
		if s == max {
			winners = append(winners, e.players[i])
		}
	}
	return winners
}

// ChosenEdge records which player claimed an edge.
type ChosenEdge struct {
	Edge   Edge `json:"edge"`
	Player int  `json:"player"`
}

// WonBox records which player completed a box.
type WonBox struct {
	Box    Box `json:"box"`
	Player int `json:"player"`
}

// State is a snapshot of the game suitable for serialization. Slices are
// sorted so that equal game states produce identical snapshots.
type State struct {
	Grid         Grid         `json:"grid"`
	Players      []Player     `json:"players"`
	Turn         int          `json:"turn"`
	LastMove     *Edge        `json:"last_move"`
	PendingEdges []Edge       `json:"pending_edges"`
	ChosenEdges  []ChosenEdge `json:"chosen_edges"`
	WonBoxes     []WonBox     `json:"won_boxes"`
	Scores       []int        `json:"scores"`
	GameOver     bool         `json:"game_over"`
	Winners      []Player     `json:"winners,omitempty"`
}

// State captures the current game state.
func (e *Engine) State() *State {
	st := &State{
		Grid:         e.grid,
		Players:      e.players,
		Turn:         e.turn,
		PendingEdges: make([]Edge, 0, len(e.pendingEdges)),
		ChosenEdges:  make([]ChosenEdge, 0, len(e.chosenEdges)),
		WonBoxes:     make([]WonBox, 0, len(e.wonBoxes)),
		Scores:       e.Scores(),
		GameOver:     e.GameOver(),
	}
	if e.lastMove != nil {
		move := *e.lastMove
		st.LastMove = &move
	}
	for edge := range e.pendingEdges {
		st.PendingEdges = append(st.PendingEdges, edge)
	}
	sort.Slice(st.PendingEdges, func(i, j int) bool {
		return lessEdge(st.PendingEdges[i], st.PendingEdges[j])
	})
	for edge, player := range e.chosenEdges {
		st.ChosenEdges = append(st.ChosenEdges, ChosenEdge{Edge: edge, Player: player})
	}
	sort.Slice(st.ChosenEdges, func(i, j int) bool {
		return lessEdge(st.ChosenEdges[i].Edge, st.ChosenEdges[j].Edge)
	})
	for box, player := range e.wonBoxes {
		st.WonBoxes = append(st.WonBoxes, WonBox{Box: box, Player: player})
	}
	sort.Slice(st.WonBoxes, func(i, j int) bool {
		return lessDot(st.WonBoxes[i].Box.Start, st.WonBoxes[j].Box.Start)
	})
	if st.GameOver {
		st.Winners = e.Winners()
	}
	return st
}

func lessDot(a, b Dot) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func lessEdge(a, b Edge) bool {
	if a.Start != b.Start {
		return lessDot(a.Start, b.Start)
	}
	return lessDot(a.End, b.End)
}
