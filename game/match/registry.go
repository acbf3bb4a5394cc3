package match

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkapoor/dots-and-boxes/game/engine"
	"github.com/nkapoor/dots-and-boxes/game/user"
	"github.com/nkapoor/dots-and-boxes/protocol"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotParticipant = errors.New("user is not a match participant")
)

// Presence is the registry's view of who is reachable. It is implemented
// by the session registry.
type Presence interface {
	// ConnFor returns the live connection of the user's current session,
	// or nil when the user has no connected session.
	ConnFor(userID string) protocol.Conn
}

// Registry tracks live matches and drives their expiry timers.
type Registry struct {
	mu       sync.Mutex
	matches  map[string]*Match
	presence Presence
	grid     engine.Grid
	timeouts Timeouts
	log      *slog.Logger
}

// NewRegistry creates a match registry playing on the given grid.
func NewRegistry(presence Presence, grid engine.Grid, timeouts Timeouts, logger *slog.Logger) *Registry {
	return &Registry{
		matches:  make(map[string]*Match),
		presence: presence,
		grid:     grid,
		timeouts: timeouts,
		log:      logger,
	}
}

// Create starts a match between the given users, arming the idle and max
// lifetime timers. The participant list is fixed from here on.
func (r *Registry) Create(users []*user.User) (*Match, error) {
	players := make([]engine.Player, len(users))
	for i, u := range users {
		players[i] = engine.Player{UserID: u.ID, Username: u.Username}
	}

	eng, err := engine.New(players, r.grid)
	if err != nil {
		return nil, err
	}

	m := &Match{
		ID:        uuid.NewString(),
		Engine:    eng,
		active:    true,
		createdAt: time.Now(),
	}

	r.mu.Lock()
	r.matches[m.ID] = m
	r.armIdleLocked(m)
	m.maxTimer = time.AfterFunc(r.timeouts.Max, func() { r.Expire(m.ID) })
	r.mu.Unlock()

	r.log.Info("match created", "game_id", m.ID, "players", len(players))
	return m, nil
}

// MakeMove plays a move for the user. Engine rejections (game over, out
// of turn, unavailable edge) surface unchanged and leave state and
// timers untouched. A successful move rearms the idle timer, broadcasts
// the new state, and arms the cleanup timer once the game is over.
func (r *Registry) MakeMove(id string, u *user.User, move engine.Edge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.matches[id]
	if m == nil {
		return ErrMatchNotFound
	}
	player, ok := m.participant(u.ID)
	if !ok {
		return ErrNotParticipant
	}
	if err := m.Engine.MakeMove(player, move); err != nil {
		return err
	}

	r.armIdleLocked(m)
	if m.Engine.GameOver() && m.cleanupTimer == nil {
		r.armCleanupLocked(m)
	}
	r.broadcastLocked(m, r.gameMessageLocked(m))
	return nil
}

// Reset reinitializes the engine with the same participants, rearms the
// idle and max timers, cancels any pending cleanup, and broadcasts.
func (r *Registry) Reset(id string, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.matches[id]
	if m == nil {
		return ErrMatchNotFound
	}
	if _, ok := m.participant(u.ID); !ok {
		return ErrNotParticipant
	}

	m.Engine.Reset()
	r.armIdleLocked(m)
	if m.maxTimer != nil {
		m.maxTimer.Stop()
	}
	m.maxTimer = time.AfterFunc(r.timeouts.Max, func() { r.Expire(m.ID) })
	m.cleanupGen++
	if m.cleanupTimer != nil {
		m.cleanupTimer.Stop()
		m.cleanupTimer = nil
	}

	r.log.Info("match reset", "game_id", m.ID, "username", u.Username)
	r.broadcastLocked(m, r.gameMessageLocked(m))
	return nil
}

// Game returns the current state message for a participant. It is a
// read: the caller delivers it to the requesting connection only.
func (r *Registry) Game(id string, u *user.User) (protocol.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.matches[id]
	if m == nil {
		return protocol.Game{}, ErrMatchNotFound
	}
	if _, ok := m.participant(u.ID); !ok {
		return protocol.Game{}, ErrNotParticipant
	}
	return r.gameMessageLocked(m), nil
}

// Exit expires the match on behalf of a participant.
func (r *Registry) Exit(id string, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.matches[id]
	if m == nil {
		return ErrMatchNotFound
	}
	if _, ok := m.participant(u.ID); !ok {
		return ErrNotParticipant
	}
	r.expireLocked(m)
	return nil
}

// Expire removes the match, cancelling its timers and notifying every
// connected participant. Expiring an already-removed match is a no-op.
func (r *Registry) Expire(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m := r.matches[id]; m != nil {
		r.expireLocked(m)
	}
}

// Broadcast pushes the match's full state to every connected
// participant. Used after match formation.
func (r *Registry) Broadcast(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m := r.matches[id]; m != nil {
		r.broadcastLocked(m, r.gameMessageLocked(m))
	}
}

// NotifyStatus pushes the per-participant connection-status vector of
// every match containing the user to every connected participant. It is
// triggered by disconnects, reconnects, and session expiry, independent
// of move activity.
func (r *Registry) NotifyStatus(u *user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.matches {
		if _, ok := m.participant(u.ID); ok {
			r.broadcastLocked(m, protocol.NewPlayerStatus(m.ID, r.statusVectorLocked(m)))
		}
	}
}

// Games snapshots all live matches for inspection surfaces.
func (r *Registry) Games() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.matches))
	for _, m := range r.matches {
		infos = append(infos, r.infoLocked(m))
	}
	return infos
}

// GameInfo returns one match's inspection snapshot together with its
// full engine state.
func (r *Registry) GameInfo(id string) (Info, *engine.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.matches[id]
	if m == nil {
		return Info{}, nil, ErrMatchNotFound
	}
	return r.infoLocked(m), m.Engine.State(), nil
}

// armIdleLocked rearms the idle timer, invalidating any firing already
// scheduled for the previous arming.
func (r *Registry) armIdleLocked(m *Match) {
	m.idleGen++
	gen := m.idleGen
	if m.idleTimer != nil {
		m.idleTimer.Stop()
	}
	m.idleTimer = time.AfterFunc(r.timeouts.Idle, func() { r.expireIdle(m.ID, gen) })
}

func (r *Registry) armCleanupLocked(m *Match) {
	m.cleanupGen++
	gen := m.cleanupGen
	m.cleanupTimer = time.AfterFunc(r.timeouts.Cleanup, func() { r.expireCleanup(m.ID, gen) })
}

// expireIdle is the idle timer callback. The generation check discards
// firings that raced with a rearm or cancellation.
func (r *Registry) expireIdle(id string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.matches[id]
	if m == nil || m.idleGen != gen {
		return
	}
	r.log.Info("match idle timeout", "game_id", id)
	r.expireLocked(m)
}

func (r *Registry) expireCleanup(id string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.matches[id]
	if m == nil || m.cleanupGen != gen {
		return
	}
	r.log.Info("match cleanup timeout", "game_id", id)
	r.expireLocked(m)
}

func (r *Registry) expireLocked(m *Match) {
	if !m.active {
		return
	}
	m.active = false
	m.stopTimers()
	delete(r.matches, m.ID)
	r.broadcastLocked(m, protocol.NewGameExpired(m.ID))
	r.log.Info("match expired", "game_id", m.ID)
}

func (r *Registry) gameMessageLocked(m *Match) protocol.Game {
	return protocol.NewGame(m.ID, m.Engine.State(), r.statusVectorLocked(m))
}

func (r *Registry) statusVectorLocked(m *Match) []string {
	players := m.Players()
	statuses := make([]string, len(players))
	for i, p := range players {
		if r.presence.ConnFor(p.UserID) != nil {
			statuses[i] = protocol.StatusActive
		} else {
			statuses[i] = protocol.StatusInactive
		}
	}
	return statuses
}

func (r *Registry) broadcastLocked(m *Match, msg protocol.Outbound) {
	for _, p := range m.Players() {
		if conn := r.presence.ConnFor(p.UserID); conn != nil {
			conn.Send(msg)
		}
	}
}

func (r *Registry) infoLocked(m *Match) Info {
	return Info{
		ID:           m.ID,
		Players:      m.Players(),
		PlayerStatus: r.statusVectorLocked(m),
		GameOver:     m.Engine.GameOver(),
		CreatedAt:    m.createdAt,
	}
}
