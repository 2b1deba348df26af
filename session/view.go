package session

import (
	"github.com/nonogarden/go-nonogram/grid"
	"github.com/nonogarden/go-nonogram/puzzle"
)

// View is the client-visible play state, assembled under one lock so the
// renderer never sees a half-applied edit.
type View struct {
	PuzzleIndex int             `json:"puzzle_index"`
	Title       string          `json:"title"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Palette     []string        `json:"palette"`
	RowClues    [][]puzzle.Clue `json:"row_clues"`
	ColClues    [][]puzzle.Clue `json:"col_clues"`
	Cells       [][]grid.Cell   `json:"cells"`
	RowsSat     []bool          `json:"rows_satisfied"`
	ColsSat     []bool          `json:"cols_satisfied"`
	Won         bool            `json:"won"`
	Revealed    bool            `json:"revealed"`
	PencilMode  bool            `json:"pencil_mode"`
	ActiveColor grid.ColorID    `json:"active_color"`
	CanUndo     bool            `json:"can_undo"`
	CanRedo     bool            `json:"can_redo"`
	Uncertain   int             `json:"uncertain_cells"`
	Marked      int             `json:"marked_cells"`
}

// Snapshot returns the current view, or nil when no puzzle is loaded.
func (s *Session) Snapshot() *View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.puzzle == nil {
		return nil
	}

	palette := make([]string, 0, len(s.puzzle.ColorMap))
	for i := 1; i <= len(s.puzzle.ColorMap); i++ {
		palette = append(palette, s.puzzle.ColorMap[grid.ColorID(i)].Hex())
	}
	rowsSat := make([]bool, len(s.rowSat))
	copy(rowsSat, s.rowSat)
	colsSat := make([]bool, len(s.colSat))
	copy(colsSat, s.colSat)

	snap := s.grid.Snapshot()
	return &View{
		PuzzleIndex: s.puzzleIndex,
		Title:       s.puzzle.Title,
		Width:       s.puzzle.Width,
		Height:      s.puzzle.Height,
		Palette:     palette,
		RowClues:    s.puzzle.RowClues,
		ColClues:    s.puzzle.ColClues,
		Cells:       snap.Cells,
		RowsSat:     rowsSat,
		ColsSat:     colsSat,
		Won:         s.won,
		Revealed:    s.revealed,
		PencilMode:  s.pencil,
		ActiveColor: s.activeColor,
		CanUndo:     s.history.CanUndo(),
		CanRedo:     s.history.CanRedo(),
		Uncertain:   snap.UncertainCount(),
		Marked:      snap.MarkedCount(),
	}
}
