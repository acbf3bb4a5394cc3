// Command analyze prints quick, human-readable statistics about board
// sizes: dot, edge, and box counts, the number of moves a full game
// takes, and how long a game runs at an assumed pace. It is a tuning
// aid for picking grid dimensions and match timeouts.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/nkapoor/dots-and-boxes/game/engine"
)

var (
	maxSize     = flag.Int("max-size", 8, "Largest square grid to analyze")
	secondsTurn = flag.Int("seconds-per-turn", 15, "Assumed thinking time per move")
	rows        = flag.Int("rows", 0, "Analyze a single grid instead (use with -columns)")
	columns     = flag.Int("columns", 0, "Analyze a single grid instead (use with -rows)")
)

// gridStats summarizes the geometry of one board size.
type gridStats struct {
	Grid       engine.Grid
	Dots       int
	Edges      int
	Boxes      int
	GameTime   time.Duration
	BoxPerEdge float64
}

// analyze computes the stats for a grid at the given pace. Every edge
// is claimed exactly once, so a full game is one move per edge; box
// completions grant extra turns but never add moves.
func analyze(g engine.Grid, perTurn time.Duration) gridStats {
	edges := len(engine.AllEdges(g))
	boxes := len(engine.AllBoxes(g))
	return gridStats{
		Grid:       g,
		Dots:       (g.Rows + 1) * (g.Columns + 1),
		Edges:      edges,
		Boxes:      boxes,
		GameTime:   time.Duration(edges) * perTurn,
		BoxPerEdge: float64(boxes) / float64(edges),
	}
}

func printStats(s gridStats) {
	fmt.Printf("=== %dx%d grid ===\n", s.Grid.Rows, s.Grid.Columns)
	fmt.Printf("Dots: %d  Edges: %d  Boxes: %d\n", s.Dots, s.Edges, s.Boxes)
	fmt.Printf("Moves to finish: %d\n", s.Edges)
	fmt.Printf("Boxes per edge: %.3f\n", s.BoxPerEdge)
	fmt.Printf("Estimated game length: %s\n\n", s.GameTime)
}

func main() {
	flag.Parse()
	perTurn := time.Duration(*secondsTurn) * time.Second

	if *rows > 0 && *columns > 0 {
		printStats(analyze(engine.Grid{Rows: *rows, Columns: *columns}, perTurn))
		return
	}

	for n := 1; n <= *maxSize; n++ {
		printStats(analyze(engine.Grid{Rows: n, Columns: n}, perTurn))
	}
}
