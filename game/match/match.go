package match

import (
	"time"

	"github.com/nkapoor/dots-and-boxes/game/engine"
)

// Timeouts groups the three expiry windows every match runs under.
type Timeouts struct {
	// Idle expires a match with no successful moves for the duration.
	Idle time.Duration
	// Max expires a match this long after creation regardless of
	// activity.
	Max time.Duration
	// Cleanup is the grace period between game over and removal.
	Cleanup time.Duration
}

// Match is one live game instance. The participant list is immutable
// after creation; only the engine state and the timers mutate, and only
// under the owning Registry's lock.
type Match struct {
	ID     string
	Engine *engine.Engine

	active    bool
	createdAt time.Time

	// One-shot expiry timers. The generation counters invalidate
	// callbacks of timers that were rearmed or cancelled after firing
	// was already scheduled; the max timer needs none because it is
	// never rearmed and match removal alone voids its callback.
	idleTimer    *time.Timer
	idleGen      uint64
	maxTimer     *time.Timer
	cleanupTimer *time.Timer
	cleanupGen   uint64
}

// Players returns the fixed participant list in turn order.
func (m *Match) Players() []engine.Player { return m.Engine.Players() }

// participant returns the player record for a user id.
func (m *Match) participant(userID string) (engine.Player, bool) {
	for _, p := range m.Players() {
		if p.UserID == userID {
			return p, true
		}
	}
	return engine.Player{}, false
}

// stopTimers cancels every outstanding timer. Stopping an already-fired
// or already-stopped timer is a no-op.
func (m *Match) stopTimers() {
	m.idleGen++
	m.cleanupGen++
	for _, t := range []*time.Timer{m.idleTimer, m.maxTimer, m.cleanupTimer} {
		if t != nil {
			t.Stop()
		}
	}
}

// Info is a read-only snapshot of a match used by inspection surfaces.
type Info struct {
	ID           string          `json:"game_id"`
	Players      []engine.Player `json:"players"`
	PlayerStatus []string        `json:"player_status"`
	GameOver     bool            `json:"game_over"`
	CreatedAt    time.Time       `json:"created_at"`
}
