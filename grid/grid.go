// Package grid provides the cell matrix for an active nonogram puzzle.
// A grid is a pure container: it stores marks and answers reads, while all
// toggle and history semantics live in the session layer.
package grid

// ColorID identifies an entry in a puzzle's palette. Two sentinel values
// share the number line with palette colors: Blank for an untouched cell and
// Empty for a cell the player has explicitly marked as empty ("X").
type ColorID int

const (
	// Blank means the cell carries no mark at all.
	Blank ColorID = -1

	// Empty means the cell is explicitly marked empty.
	Empty ColorID = 0
)

// Cell is a single grid cell. Certain distinguishes confirmed marks from
// tentative pencil guesses; uncertain cells never satisfy clues.
type Cell struct {
	Value   ColorID `json:"v"`
	Certain bool    `json:"c"`
}

// BlankCell is the state of an untouched cell.
var BlankCell = Cell{Value: Blank, Certain: true}

// IsBlank reports whether the cell carries no mark.
func (c Cell) IsBlank() bool {
	return c.Value == Blank
}

// Grid is a fixed-size matrix of cells in row-major order. Dimensions are
// set at construction and never change; switching puzzles creates a new
// grid rather than resizing this one.
type Grid struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Cells  [][]Cell `json:"cells"`
}

// New creates a grid of the given dimensions with every cell blank.
func New(width, height int) *Grid {
	cells := make([][]Cell, height)
	for r := range cells {
		row := make([]Cell, width)
		for c := range row {
			row[c] = BlankCell
		}
		cells[r] = row
	}
	return &Grid{Width: width, Height: height, Cells: cells}
}

// Get returns the cell at (row, col). Out-of-range coordinates yield the
// blank cell; reads never mutate storage.
func (g *Grid) Get(row, col int) Cell {
	if row < 0 || row >= g.Height || col < 0 || col >= g.Width {
		return BlankCell
	}
	return g.Cells[row][col]
}

// Set overwrites the cell at (row, col) unconditionally. Callers are
// expected to have resolved toggle semantics and bounds already; writes
// outside the grid are ignored.
func (g *Grid) Set(row, col int, value ColorID, certain bool) {
	if row < 0 || row >= g.Height || col < 0 || col >= g.Width {
		return
	}
	g.Cells[row][col] = Cell{Value: value, Certain: certain}
}

// Row returns a copy of row r.
func (g *Grid) Row(r int) []Cell {
	out := make([]Cell, g.Width)
	copy(out, g.Cells[r])
	return out
}

// Col returns a copy of column c.
func (g *Grid) Col(c int) []Cell {
	out := make([]Cell, g.Height)
	for r := 0; r < g.Height; r++ {
		out[r] = g.Cells[r][c]
	}
	return out
}

// Snapshot returns a deep copy of the grid.
func (g *Grid) Snapshot() *Grid {
	if g == nil {
		return nil
	}
	out := &Grid{Width: g.Width, Height: g.Height, Cells: make([][]Cell, g.Height)}
	for r := range g.Cells {
		row := make([]Cell, g.Width)
		copy(row, g.Cells[r])
		out.Cells[r] = row
	}
	return out
}

// Equal reports whether two grids have identical dimensions and cells.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.Width != other.Width || g.Height != other.Height {
		return false
	}
	for r := range g.Cells {
		for c := range g.Cells[r] {
			if g.Cells[r][c] != other.Cells[r][c] {
				return false
			}
		}
	}
	return true
}

// UncertainCount counts cells holding pencil marks.
func (g *Grid) UncertainCount() int {
	n := 0
	for _, row := range g.Cells {
		for _, cell := range row {
			if !cell.Certain {
				n++
			}
		}
	}
	return n
}

// MarkedCount counts cells carrying any mark, pencil or confirmed.
func (g *Grid) MarkedCount() int {
	n := 0
	for _, row := range g.Cells {
		for _, cell := range row {
			if !cell.IsBlank() {
				n++
			}
		}
	}
	return n
}
