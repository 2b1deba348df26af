// Package history tracks undoable actions over a puzzle grid. An action
// bundles every cell change of one user-visible edit: a single tap, a full
// pointer drag, or a bulk operation. Interactive gestures accumulate into a
// pending action via Begin/Record/Commit; bulk edits bypass the buffer with
// RecordBatch.
package history

import (
	"time"

	"github.com/nonogarden/go-nonogram/grid"
)

// MaxHistory is the default depth of the undo and redo stacks.
const MaxHistory = 100

// ActionFill is the implicit type for interactively recorded actions.
const ActionFill = "fill"

// Change captures one cell's transition inside an action.
type Change struct {
	Row    int
	Col    int
	Before grid.Cell
	After  grid.Cell
}

// Action is one undoable unit of change.
type Action struct {
	Type      string
	Changes   []Change
	Timestamp time.Time
}

// Manager owns the bounded undo/redo stacks and the single pending action.
// It is not safe for concurrent use; the session serializes access.
type Manager struct {
	undo    []*Action
	redo    []*Action
	pending *Action
	max     int
}

// NewManager creates a manager with the given stack depth. Depths below 1
// fall back to MaxHistory.
func NewManager(max int) *Manager {
	if max < 1 {
		max = MaxHistory
	}
	return &Manager{max: max}
}

// Begin opens a new pending action of the given type. A stale pending
// action with recorded changes is committed first, so a gesture that never
// ended cleanly cannot swallow the next one.
func (m *Manager) Begin(actionType string) {
	if m.pending != nil && len(m.pending.Changes) > 0 {
		m.Commit()
	}
	m.pending = &Action{Type: actionType, Timestamp: time.Now()}
}

// Record adds one cell change to the pending action, opening an implicit
// fill action if none is pending. Recording the same cell twice in one
// action keeps the original before state and updates only the after state,
// so a drag crossing a cell repeatedly still undoes to the pre-gesture
// value. Identical before/after pairs are dropped.
func (m *Manager) Record(row, col int, before, after grid.Cell) {
	if before == after {
		return
	}
	if m.pending == nil {
		m.Begin(ActionFill)
	}
	for i := range m.pending.Changes {
		ch := &m.pending.Changes[i]
		if ch.Row == row && ch.Col == col {
			ch.After = after
			return
		}
	}
	m.pending.Changes = append(m.pending.Changes, Change{Row: row, Col: col, Before: before, After: after})
}

// Commit closes the pending action. Changes that became net no-ops during
// the gesture are filtered out; if anything remains the action is pushed
// onto the undo stack and the redo stack is cleared. Returns whether an
// action was pushed. The pending action is cleared either way.
func (m *Manager) Commit() bool {
	action := m.pending
	m.pending = nil
	if action == nil {
		return false
	}
	kept := action.Changes[:0]
	for _, ch := range action.Changes {
		if ch.Before != ch.After {
			kept = append(kept, ch)
		}
	}
	action.Changes = kept
	if len(action.Changes) == 0 {
		return false
	}
	m.push(action)
	return true
}

// Cancel discards the pending action without touching either stack. It
// does not revert the grid; callers aborting a gesture must cancel before
// applying changes, or accept applied-but-unrecorded cells.
func (m *Manager) Cancel() {
	m.pending = nil
}

// RecordBatch pushes a bulk edit as one action, bypassing the pending
// buffer. Empty change lists are ignored.
func (m *Manager) RecordBatch(actionType string, changes []Change) {
	if len(changes) == 0 {
		return
	}
	m.push(&Action{Type: actionType, Changes: changes, Timestamp: time.Now()})
}

// push appends to the undo stack, evicting the oldest action past the
// depth bound, and invalidates redo history.
func (m *Manager) push(a *Action) {
	m.undo = append(m.undo, a)
	if len(m.undo) > m.max {
		m.undo = m.undo[1:]
	}
	m.redo = m.redo[:0]
}

// Undo pops the most recent action onto the redo stack and returns its
// changes; callers apply each change's Before state. Returns nil when
// there is nothing to undo.
func (m *Manager) Undo() []Change {
	if len(m.undo) == 0 {
		return nil
	}
	a := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, a)
	return a.Changes
}

// Redo pops the most recently undone action back onto the undo stack and
// returns its changes; callers apply each change's After state. Returns
// nil when there is nothing to redo.
func (m *Manager) Redo() []Change {
	if len(m.redo) == 0 {
		return nil
	}
	a := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, a)
	return a.Changes
}

// Clear empties both stacks and the pending action.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
	m.pending = nil
}

// CanUndo reports whether the undo stack is non-empty.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoDepth returns the number of committed actions available to undo.
func (m *Manager) UndoDepth() int { return len(m.undo) }

// Pending reports whether a gesture is currently accumulating.
func (m *Manager) Pending() bool { return m.pending != nil }
