// Package rules implements clue satisfaction for nonogram lines and the
// whole-puzzle win condition. All functions are stateless.
package rules

import (
	"github.com/nonogarden/go-nonogram/grid"
	"github.com/nonogarden/go-nonogram/puzzle"
)

// ExtractRuns performs the canonical nonogram run-length encoding of a
// line: each maximal span of equal positive values becomes one run, in
// scan order. Blank and explicitly empty cells terminate runs.
func ExtractRuns(line []grid.ColorID) []puzzle.Clue {
	runs := make([]puzzle.Clue, 0, len(line)/2+1)
	var current grid.ColorID
	count := 0
	flush := func() {
		if count > 0 {
			runs = append(runs, puzzle.Clue{Count: count, Color: current})
			count = 0
		}
	}
	for _, v := range line {
		if v <= grid.Empty {
			flush()
			continue
		}
		if count > 0 && v == current {
			count++
			continue
		}
		flush()
		current = v
		count = 1
	}
	flush()
	return runs
}

// RunsMatch reports whether runs and clues agree positionally in both
// count and color. A differing number of runs fails.
func RunsMatch(runs, clues []puzzle.Clue) bool {
	if len(runs) != len(clues) {
		return false
	}
	for i := range runs {
		if runs[i] != clues[i] {
			return false
		}
	}
	return true
}

// LineSatisfied reports whether a line of cells satisfies its clues.
// Any uncertain cell disqualifies the whole line: pencil marks never
// count toward satisfaction.
func LineSatisfied(cells []grid.Cell, clues []puzzle.Clue) bool {
	values := make([]grid.ColorID, len(cells))
	for i, c := range cells {
		if !c.Certain {
			return false
		}
		if c.IsBlank() {
			values[i] = grid.Empty
		} else {
			values[i] = c.Value
		}
	}
	return RunsMatch(ExtractRuns(values), clues)
}

// Won reports whether the grid completes the puzzle: every cell certain,
// every row satisfying its row clues and every column its column clues.
//
// The check is structural against the clues, not against the authored
// solution. Nonogram clues do not always determine a unique fill; any
// clue-consistent fill counts as a win here even when it differs from
// Puzzle.Solution.
func Won(g *grid.Grid, p *puzzle.Puzzle) bool {
	if g == nil || p == nil {
		return false
	}
	for _, row := range g.Cells {
		for _, cell := range row {
			if !cell.Certain {
				return false
			}
		}
	}
	for r := 0; r < g.Height; r++ {
		if !LineSatisfied(g.Row(r), p.RowClues[r]) {
			return false
		}
	}
	for c := 0; c < g.Width; c++ {
		if !LineSatisfied(g.Col(c), p.ColClues[c]) {
			return false
		}
	}
	return true
}
