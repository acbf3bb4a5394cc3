package engine

// Grid is the size of the board counted in boxes. A Rows x Columns grid
// has (Rows+1) x (Columns+1) dots.
type Grid struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// DefaultGrid is the board size used for matchmade games.
var DefaultGrid = Grid{Rows: 5, Columns: 5}

// Dot is a single point on the board. X is the row index and Y the
// column index, both starting at zero in the top-left corner.
type Dot struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Edge joins two adjacent dots. Start is always the lesser dot, so a
// given line segment has exactly one Edge value and edges are usable as
// map keys.
type Edge struct {
	Start Dot `json:"start"`
	End   Dot `json:"end"`
}

// NewHorizontalEdge returns the edge running from start to the dot one
// column to its right.
func NewHorizontalEdge(start Dot) Edge {
	return Edge{Start: start, End: Dot{X: start.X, Y: start.Y + 1}}
}

// NewVerticalEdge returns the edge running from start to the dot one row
// below it.
func NewVerticalEdge(start Dot) Edge {
	return Edge{Start: start, End: Dot{X: start.X + 1, Y: start.Y}}
}

// Horizontal reports whether the edge runs along a row of dots.
func (e Edge) Horizontal() bool { return e.Start.X == e.End.X }

// Vertical reports whether the edge runs along a column of dots.
func (e Edge) Vertical() bool { return e.Start.Y == e.End.Y }

// AllEdges returns every edge of the grid, horizontal edges first.
func AllEdges(g Grid) []Edge {
	edges := make([]Edge, 0, g.Rows*(g.Columns+1)+g.Columns*(g.Rows+1))
	for i := 0; i <= g.Rows; i++ {
		for j := 0; j < g.Columns; j++ {
			edges = append(edges, NewHorizontalEdge(Dot{X: i, Y: j}))
		}
	}
	for i := 0; i < g.Rows; i++ {
		for j := 0; j <= g.Columns; j++ {
			edges = append(edges, NewVerticalEdge(Dot{X: i, Y: j}))
		}
	}
	return edges
}

// AdjacentBoxes returns the one or two boxes the edge borders on the
// grid. Edges on the outer boundary border a single box.
func (e Edge) AdjacentBoxes(g Grid) []Box {
	if (e.Start.X == 0 && e.Horizontal()) || (e.Start.Y == 0 && e.Vertical()) {
		return []Box{{Start: e.Start}}
	}
	if (e.End.X == g.Rows && e.Horizontal()) || (e.End.Y == g.Columns && e.Vertical()) {
		return []Box{boxFromEnd(e.End)}
	}
	return []Box{{Start: e.Start}, boxFromEnd(e.End)}
}

// Box is one unit square of the board, identified by its top-left dot.
type Box struct {
	Start Dot `json:"start"`
}

func boxFromEnd(end Dot) Box {
	return Box{Start: Dot{X: end.X - 1, Y: end.Y - 1}}
}

// AllBoxes returns every box of the grid in row-major order.
func AllBoxes(g Grid) []Box {
	boxes := make([]Box, 0, g.Rows*g.Columns)
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Columns; j++ {
			boxes = append(boxes, Box{Start: Dot{X: i, Y: j}})
		}
	}
	return boxes
}
