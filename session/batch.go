package session

import (
	"context"

	"github.com/nonogarden/go-nonogram/grid"
	"github.com/nonogarden/go-nonogram/history"
)

// applyBatchLocked records and applies a bulk edit as exactly one history
// entry, then refreshes satisfaction, win state, and persistence. Change
// lists contain only cells that actually change, so a no-op bulk action
// leaves history untouched.
func (s *Session) applyBatchLocked(ctx context.Context, actionType string, changes []history.Change) bool {
	if len(changes) == 0 {
		return false
	}
	s.history.RecordBatch(actionType, changes)
	for _, ch := range changes {
		s.grid.Set(ch.Row, ch.Col, ch.After.Value, ch.After.Certain)
	}
	s.recomputeAllLocked()
	s.checkWinLocked(ctx)
	s.persistLocked(ctx)
	return true
}

// collectLocked builds a change list from a per-cell transform, skipping
// cells the transform leaves unchanged.
func (s *Session) collectLocked(transform func(grid.Cell) (grid.Cell, bool)) []history.Change {
	var changes []history.Change
	for r := 0; r < s.grid.Height; r++ {
		for c := 0; c < s.grid.Width; c++ {
			cur := s.grid.Cells[r][c]
			next, ok := transform(cur)
			if !ok || next == cur {
				continue
			}
			changes = append(changes, history.Change{Row: r, Col: c, Before: cur, After: next})
		}
	}
	return changes
}

// ClearAllPencilMarks erases every tentative mark in one undoable action.
func (s *Session) ClearAllPencilMarks(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puzzle == nil || s.won {
		return false
	}
	changes := s.collectLocked(func(c grid.Cell) (grid.Cell, bool) {
		if c.Certain {
			return c, false
		}
		return grid.BlankCell, true
	})
	return s.applyBatchLocked(ctx, ActionClearPencil, changes)
}

// ConfirmAllPencilMarks promotes every tentative mark to a confirmed one
// in one undoable action.
func (s *Session) ConfirmAllPencilMarks(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puzzle == nil || s.won {
		return false
	}
	changes := s.collectLocked(func(c grid.Cell) (grid.Cell, bool) {
		if c.Certain {
			return c, false
		}
		return grid.Cell{Value: c.Value, Certain: true}, true
	})
	return s.applyBatchLocked(ctx, ActionConfirmPencil, changes)
}

// ResetPuzzle returns every cell to blank. Prior history is discarded
// first, so afterwards exactly one action, the reset itself, is undoable.
func (s *Session) ResetPuzzle(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puzzle == nil {
		return false
	}
	s.won = false
	s.revealed = false
	changes := s.collectLocked(func(c grid.Cell) (grid.Cell, bool) {
		if c == grid.BlankCell {
			return c, false
		}
		return grid.BlankCell, true
	})
	s.history.Clear()
	return s.applyBatchLocked(ctx, ActionReset, changes)
}

// RevealSolution fills the grid with the authored solution. Like reset it
// discards prior history and leaves the reveal as the single undoable
// action. Revealed puzzles never count as won and record no completion.
func (s *Session) RevealSolution(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puzzle == nil || s.won || s.puzzle.Solution == nil {
		return false
	}
	s.revealed = true
	var changes []history.Change
	for r := 0; r < s.grid.Height; r++ {
		for c := 0; c < s.grid.Width; c++ {
			cur := s.grid.Cells[r][c]
			next := grid.BlankCell
			if v := s.puzzle.Solution[r][c]; v > grid.Empty {
				next = grid.Cell{Value: v, Certain: true}
			}
			if next == cur {
				continue
			}
			changes = append(changes, history.Change{Row: r, Col: c, Before: cur, After: next})
		}
	}
	s.history.Clear()
	return s.applyBatchLocked(ctx, ActionReveal, changes)
}
