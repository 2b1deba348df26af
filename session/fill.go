package session

import (
	"context"

	"github.com/nonogarden/go-nonogram/grid"
)

// resolveToggle is the decision table for the first touch of a gesture.
// Given the cell's current state and the requested mark, it yields the
// final state:
//
//	current                  requested            outcome
//	same color, pencil       same color, pen      confirm: keep color, certain
//	exactly the request      (non-blank)          erase: back to blank
//	anything else            any                  overwrite with the request
//
// Continuation fills of a drag skip this table entirely (see FillCell), so
// drag painting stays deterministic against the state captured at the
// drag's first touch.
func resolveToggle(current, requested grid.Cell) grid.Cell {
	switch {
	case requested.Certain && !current.Certain && current.Value == requested.Value:
		return grid.Cell{Value: current.Value, Certain: true}
	case current == requested && !current.IsBlank():
		return grid.BlankCell
	default:
		return requested
	}
}

// FillCell applies a fill request to (row, col). skipToggle marks the call
// as a continuation of an active drag: the requested state is applied
// verbatim. First touches go through the toggle table instead. Returns
// whether the cell changed.
//
// A change is recorded with history before the grid mutates, the touched
// row and column satisfaction is refreshed, the win check runs, and the
// grid snapshot is persisted. A request that resolves to the current state
// does none of that.
func (s *Session) FillCell(ctx context.Context, row, col int, value grid.ColorID, certain bool, skipToggle bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.puzzle == nil || s.won {
		return false
	}
	if row < 0 || row >= s.puzzle.Height || col < 0 || col >= s.puzzle.Width {
		return false
	}

	current := s.grid.Get(row, col)
	requested := grid.Cell{Value: value, Certain: certain}

	// Requests come straight off the wire: a blank request is always the
	// canonical blank (an uncertain blank would block the win check and
	// not survive a save/load round trip), and any other value must be
	// the empty marker or a palette color.
	if requested.Value == grid.Blank {
		requested = grid.BlankCell
	} else if requested.Value != grid.Empty {
		if _, ok := s.puzzle.ColorMap[requested.Value]; !ok {
			return false
		}
	}

	final := requested
	if !skipToggle {
		final = resolveToggle(current, requested)
	}
	if final == current {
		return false
	}

	s.history.Record(row, col, current, final)
	s.grid.Set(row, col, final.Value, final.Certain)
	s.recomputeLineLocked(row, col)
	s.checkWinLocked(ctx)
	s.persistLocked(ctx)
	return true
}

// Fill applies a fill using the session's active color and pencil mode,
// the common single-tap path.
func (s *Session) Fill(ctx context.Context, row, col int) bool {
	s.mu.RLock()
	value, certain := s.activeColor, !s.pencil
	s.mu.RUnlock()
	return s.FillCell(ctx, row, col, value, certain, false)
}

// BeginStroke opens a drag gesture: every FillCell until EndStroke or
// CancelStroke accumulates into one undoable action.
func (s *Session) BeginStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puzzle == nil {
		return
	}
	s.history.Begin(ActionFill)
}

// EndStroke commits the open drag gesture.
func (s *Session) EndStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Commit()
}

// CancelStroke aborts the open drag gesture, discarding its recorded
// changes. Cells already applied to the grid stay applied; callers must
// cancel before applying, or accept unrecorded marks. This preserves the
// long-standing gesture semantics rather than silently reverting the grid.
func (s *Session) CancelStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Cancel()
}

// PerformUndo reverts the most recent action. Returns whether anything
// was undone.
func (s *Session) PerformUndo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puzzle == nil || s.won {
		return false
	}
	changes := s.history.Undo()
	if changes == nil {
		return false
	}
	for _, ch := range changes {
		s.grid.Set(ch.Row, ch.Col, ch.Before.Value, ch.Before.Certain)
	}
	s.recomputeAllLocked()
	s.checkWinLocked(ctx)
	s.persistLocked(ctx)
	return true
}

// PerformRedo reapplies the most recently undone action. Returns whether
// anything was redone.
func (s *Session) PerformRedo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puzzle == nil || s.won {
		return false
	}
	changes := s.history.Redo()
	if changes == nil {
		return false
	}
	for _, ch := range changes {
		s.grid.Set(ch.Row, ch.Col, ch.After.Value, ch.After.Certain)
	}
	s.recomputeAllLocked()
	s.checkWinLocked(ctx)
	s.persistLocked(ctx)
	return true
}
