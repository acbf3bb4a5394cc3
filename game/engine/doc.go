// Package engine implements the rules of Dots and Boxes.
//
// The board is a Grid of boxes whose corners are Dots; adjacent dots are
// joined by Edges. Players take turns claiming pending edges. Claiming
// the fourth edge of a box wins that box for the player and keeps the
// turn; otherwise the turn passes to the next player. The game is over
// when no edge is pending, and the winners are the players with the
// leading box count.
//
// The Engine is not safe for concurrent use; callers serialize access.
// State produces a deterministic JSON-serializable snapshot used as the
// game_data payload on the wire.
package engine
