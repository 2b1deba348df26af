// Package session orchestrates play of a single nonogram puzzle: it owns
// the active grid, resolves fill-request toggle semantics, recomputes clue
// satisfaction, and records every edit with the history manager. A Session
// is an explicit instance; there is no package-level game state.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/nonogarden/go-nonogram/grid"
	"github.com/nonogarden/go-nonogram/history"
	"github.com/nonogarden/go-nonogram/puzzle"
	"github.com/nonogarden/go-nonogram/rules"
)

// Action types recorded in history.
const (
	ActionFill          = history.ActionFill
	ActionClearPencil   = "clear_pencil"
	ActionConfirmPencil = "confirm_pencil"
	ActionReset         = "reset"
	ActionReveal        = "reveal"
)

var (
	// ErrLoadInProgress is returned when a puzzle load starts while a
	// previous one is still in flight.
	ErrLoadInProgress = errors.New("puzzle load already in progress")

	// ErrNoPuzzle is returned by operations that need a loaded puzzle.
	ErrNoPuzzle = errors.New("no puzzle loaded")

	// ErrUnknownPuzzle is returned for catalog indexes out of range.
	ErrUnknownPuzzle = errors.New("no such puzzle in catalog")
)

// SavedSession is a resumable session snapshot from the store.
type SavedSession struct {
	PuzzleIndex int
	Difficulty  string
	Grid        *grid.Grid
}

// Store is the persistence collaborator. Implementations must treat a nil
// grid in SavePuzzleGrid as "clear the saved grid". Read failures should
// surface as errors; the session degrades to fresh state rather than
// refusing to play.
type Store interface {
	PuzzleGrid(ctx context.Context, puzzleID string) (*grid.Grid, error)
	SavePuzzleGrid(ctx context.Context, puzzleID string, g *grid.Grid) error
	SaveSession(ctx context.Context, puzzleIndex int, difficulty string, g *grid.Grid) error
	Session(ctx context.Context) (*SavedSession, error)
	ClearSession(ctx context.Context) error
	CompletePuzzle(ctx context.Context, puzzleID string) error
	PuzzleCompleted(ctx context.Context, puzzleID string) (bool, error)
}

// Session holds all mutable play state for one player.
type Session struct {
	mu      sync.RWMutex
	catalog *puzzle.Catalog
	store   Store

	puzzle      *puzzle.Puzzle
	puzzleIndex int
	grid        *grid.Grid
	history     *history.Manager

	activeColor grid.ColorID
	pencil      bool

	rowSat []bool
	colSat []bool
	won    bool

	// revealed suppresses win detection and completion recording after
	// the solution has been shown.
	revealed bool

	// loading rejects a second concurrent puzzle load.
	loading bool
}

// New creates a session over the given catalog and store. The store may be
// nil, in which case nothing persists.
func New(catalog *puzzle.Catalog, store Store) *Session {
	return &Session{
		catalog:     catalog,
		store:       store,
		puzzleIndex: -1,
		history:     history.NewManager(history.MaxHistory),
	}
}

// SetCatalog swaps the catalog, e.g. after a hot reload. The active puzzle
// keeps playing against its original descriptor.
func (s *Session) SetCatalog(c *puzzle.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
}

// LoadPuzzle activates the puzzle at the given catalog index, restoring any
// saved grid for it. A load attempted while another is in flight is
// rejected with a warning and the original load proceeds uninterrupted.
func (s *Session) LoadPuzzle(ctx context.Context, index int) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		log.Printf("session: rejecting puzzle load %d: %v", index, ErrLoadInProgress)
		return ErrLoadInProgress
	}
	p := s.catalog.At(index)
	if p == nil {
		s.mu.Unlock()
		return ErrUnknownPuzzle
	}
	s.loading = true
	s.mu.Unlock()

	// Saved progress is best-effort: a storage failure degrades to a
	// fresh grid.
	var g *grid.Grid
	if s.store != nil {
		saved, err := s.store.PuzzleGrid(ctx, p.ID)
		if err != nil {
			log.Printf("session: loading saved grid for %s: %v", p.ID, err)
		} else {
			g = saved
		}
	}
	if g == nil || g.Width != p.Width || g.Height != p.Height {
		g = grid.New(p.Width, p.Height)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.puzzle = p
	s.puzzleIndex = index
	s.grid = g
	s.history.Clear()
	s.won = false
	s.revealed = false
	s.activeColor = 1
	s.recomputeAllLocked()
	return nil
}

// Resume restores the last saved session, if any. Returns false when there
// is nothing to resume.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	saved, err := s.store.Session(ctx)
	if err != nil {
		log.Printf("session: reading saved session: %v", err)
		return false, nil
	}
	if saved == nil {
		return false, nil
	}
	if err := s.LoadPuzzle(ctx, saved.PuzzleIndex); err != nil {
		return false, err
	}
	return true, nil
}

// SelectColor sets the active palette color for subsequent fills. Colors
// outside the puzzle palette are ignored; grid.Empty selects the "mark as
// empty" tool.
func (s *Session) SelectColor(c grid.ColorID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puzzle == nil {
		return
	}
	if c != grid.Empty {
		if _, ok := s.puzzle.ColorMap[c]; !ok {
			return
		}
	}
	s.activeColor = c
}

// TogglePencilMode flips between pencil (tentative) and pen (confirmed)
// input and returns the new mode. Pencil mode only affects the certainty
// flag supplied with fills; it is session UI state, not engine state.
func (s *Session) TogglePencilMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pencil = !s.pencil
	return s.pencil
}

// ActiveColor returns the selected palette color.
func (s *Session) ActiveColor() grid.ColorID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeColor
}

// PencilMode reports whether fills are currently tentative.
func (s *Session) PencilMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pencil
}

// Puzzle returns the active puzzle descriptor, or nil.
func (s *Session) Puzzle() *puzzle.Puzzle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puzzle
}

// PuzzleIndex returns the catalog index of the active puzzle, -1 if none.
func (s *Session) PuzzleIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puzzleIndex
}

// Grid returns a snapshot of the active grid, or nil.
func (s *Session) Grid() *grid.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Snapshot()
}

// Won reports whether the active puzzle has been completed.
func (s *Session) Won() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.won
}

// RowSatisfied reports whether row r currently satisfies its clues.
func (s *Session) RowSatisfied(r int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return r >= 0 && r < len(s.rowSat) && s.rowSat[r]
}

// ColSatisfied reports whether column c currently satisfies its clues.
func (s *Session) ColSatisfied(c int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c >= 0 && c < len(s.colSat) && s.colSat[c]
}

// CanUndo reports whether an undo is available.
func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo is available.
func (s *Session) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanRedo()
}

// recomputeAllLocked rebuilds both satisfaction caches from the grid.
func (s *Session) recomputeAllLocked() {
	if s.puzzle == nil || s.grid == nil {
		s.rowSat = nil
		s.colSat = nil
		return
	}
	s.rowSat = make([]bool, s.puzzle.Height)
	s.colSat = make([]bool, s.puzzle.Width)
	for r := 0; r < s.puzzle.Height; r++ {
		s.rowSat[r] = rules.LineSatisfied(s.grid.Row(r), s.puzzle.RowClues[r])
	}
	for c := 0; c < s.puzzle.Width; c++ {
		s.colSat[c] = rules.LineSatisfied(s.grid.Col(c), s.puzzle.ColClues[c])
	}
}

// recomputeLineLocked refreshes the caches for one touched cell's row and
// column.
func (s *Session) recomputeLineLocked(row, col int) {
	if s.puzzle == nil {
		return
	}
	if row >= 0 && row < len(s.rowSat) {
		s.rowSat[row] = rules.LineSatisfied(s.grid.Row(row), s.puzzle.RowClues[row])
	}
	if col >= 0 && col < len(s.colSat) {
		s.colSat[col] = rules.LineSatisfied(s.grid.Col(col), s.puzzle.ColClues[col])
	}
}

// allLinesSatisfiedLocked is the cheap precheck before the full win scan.
func (s *Session) allLinesSatisfiedLocked() bool {
	for _, ok := range s.rowSat {
		if !ok {
			return false
		}
	}
	for _, ok := range s.colSat {
		if !ok {
			return false
		}
	}
	return len(s.rowSat) > 0
}

// checkWinLocked runs win detection and, on a win, clears history and
// records completion. Win detection is suppressed after a solution reveal.
func (s *Session) checkWinLocked(ctx context.Context) {
	if s.won || s.revealed {
		return
	}
	if !s.allLinesSatisfiedLocked() {
		return
	}
	if !rules.Won(s.grid, s.puzzle) {
		return
	}
	s.won = true
	s.history.Clear()
	if s.store != nil {
		if err := s.store.CompletePuzzle(ctx, s.puzzle.ID); err != nil {
			log.Printf("session: recording completion for %s: %v", s.puzzle.ID, err)
		}
		if err := s.store.SavePuzzleGrid(ctx, s.puzzle.ID, nil); err != nil {
			log.Printf("session: clearing saved grid for %s: %v", s.puzzle.ID, err)
		}
		if err := s.store.ClearSession(ctx); err != nil {
			log.Printf("session: clearing saved session: %v", err)
		}
	}
}

// persistLocked saves the current grid snapshot. Failures are logged and
// play continues.
func (s *Session) persistLocked(ctx context.Context) {
	if s.store == nil || s.puzzle == nil || s.won {
		return
	}
	if err := s.store.SavePuzzleGrid(ctx, s.puzzle.ID, s.grid); err != nil {
		log.Printf("session: saving grid for %s: %v", s.puzzle.ID, err)
		return
	}
	if err := s.store.SaveSession(ctx, s.puzzleIndex, string(s.puzzle.Difficulty), s.grid); err != nil {
		log.Printf("session: saving session: %v", err)
	}
}
