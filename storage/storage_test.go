package storage

import (
	"context"
	"testing"

	"github.com/nonogarden/go-nonogram/grid"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInstallID(t *testing.T) {
	s := testStore(t)
	if s.InstallID() == "" {
		t.Error("install id should be assigned on first open")
	}
}

func TestPuzzleGridRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	if g, err := s.PuzzleGrid(ctx, "missing"); err != nil || g != nil {
		t.Fatalf("missing grid = (%v, %v), want (nil, nil)", g, err)
	}

	g := grid.New(3, 2)
	g.Set(0, 0, 1, true)
	g.Set(1, 2, 2, false)
	if err := s.SavePuzzleGrid(ctx, "p1", g); err != nil {
		t.Fatalf("save grid: %v", err)
	}

	got, err := s.PuzzleGrid(ctx, "p1")
	if err != nil {
		t.Fatalf("load grid: %v", err)
	}
	if !g.Equal(got) {
		t.Error("loaded grid differs from saved")
	}

	// Overwriting replaces the snapshot.
	g.Set(0, 1, 1, true)
	if err := s.SavePuzzleGrid(ctx, "p1", g); err != nil {
		t.Fatalf("resave grid: %v", err)
	}
	got, err = s.PuzzleGrid(ctx, "p1")
	if err != nil {
		t.Fatalf("reload grid: %v", err)
	}
	if !g.Equal(got) {
		t.Error("overwrite should replace the saved grid")
	}
}

func TestSavePuzzleGridNilClears(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	g := grid.New(2, 2)
	g.Set(0, 0, 1, true)
	if err := s.SavePuzzleGrid(ctx, "p1", g); err != nil {
		t.Fatalf("save grid: %v", err)
	}
	if err := s.SavePuzzleGrid(ctx, "p1", nil); err != nil {
		t.Fatalf("clear grid: %v", err)
	}
	if got, err := s.PuzzleGrid(ctx, "p1"); err != nil || got != nil {
		t.Errorf("cleared grid = (%v, %v), want (nil, nil)", got, err)
	}

	// Clearing a grid that was never saved is fine.
	if err := s.SavePuzzleGrid(ctx, "never", nil); err != nil {
		t.Errorf("clearing an absent grid: %v", err)
	}
}

func TestGridsAreKeyedByPuzzle(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	a := grid.New(2, 2)
	a.Set(0, 0, 1, true)
	b := grid.New(2, 2)
	b.Set(1, 1, 2, true)
	if err := s.SavePuzzleGrid(ctx, "a", a); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := s.SavePuzzleGrid(ctx, "b", b); err != nil {
		t.Fatalf("save b: %v", err)
	}

	gotA, err := s.PuzzleGrid(ctx, "a")
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	if !a.Equal(gotA) {
		t.Error("grid for puzzle a was clobbered")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	if saved, err := s.Session(ctx); err != nil || saved != nil {
		t.Fatalf("empty session = (%v, %v), want (nil, nil)", saved, err)
	}

	g := grid.New(2, 2)
	g.Set(0, 1, 1, false)
	if err := s.SaveSession(ctx, 4, "hard", g); err != nil {
		t.Fatalf("save session: %v", err)
	}

	saved, err := s.Session(ctx)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if saved == nil {
		t.Fatal("session should exist")
	}
	if saved.PuzzleIndex != 4 || saved.Difficulty != "hard" {
		t.Errorf("session = %+v", saved)
	}
	if !g.Equal(saved.Grid) {
		t.Error("session grid differs from saved")
	}

	// Only one session row ever exists; saving again replaces it.
	if err := s.SaveSession(ctx, 7, "easy", grid.New(2, 2)); err != nil {
		t.Fatalf("resave session: %v", err)
	}
	saved, err = s.Session(ctx)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if saved.PuzzleIndex != 7 || saved.Difficulty != "easy" {
		t.Errorf("replaced session = %+v", saved)
	}

	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	if saved, err := s.Session(ctx); err != nil || saved != nil {
		t.Errorf("cleared session = (%v, %v), want (nil, nil)", saved, err)
	}
}

func TestCompletions(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	if done, err := s.PuzzleCompleted(ctx, "p1"); err != nil || done {
		t.Fatalf("fresh completion = (%v, %v), want (false, nil)", done, err)
	}

	if err := s.CompletePuzzle(ctx, "p1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done, err := s.PuzzleCompleted(ctx, "p1"); err != nil || !done {
		t.Errorf("completion = (%v, %v), want (true, nil)", done, err)
	}

	// Completing again is idempotent.
	if err := s.CompletePuzzle(ctx, "p1"); err != nil {
		t.Fatalf("re-complete: %v", err)
	}

	if err := s.CompletePuzzle(ctx, "p2"); err != nil {
		t.Fatalf("complete p2: %v", err)
	}
	ids, err := s.CompletedPuzzles(ctx)
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("completions = %v, want 2 entries", ids)
	}
}

// TestLegacyGridPayload loads a stored payload from before pencil marks,
// where cells were bare color ids.
func TestLegacyGridPayload(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grids (puzzle_id, cells) VALUES ('old', '[[1, null], [null, 0]]')`)
	if err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	g, err := s.PuzzleGrid(ctx, "old")
	if err != nil {
		t.Fatalf("load legacy grid: %v", err)
	}
	if got := g.Get(0, 0); got != (grid.Cell{Value: 1, Certain: true}) {
		t.Errorf("cell (0,0) = %+v", got)
	}
	if got := g.Get(0, 1); !got.IsBlank() {
		t.Errorf("cell (0,1) = %+v, want blank", got)
	}
	if got := g.Get(1, 1); got != (grid.Cell{Value: grid.Empty, Certain: true}) {
		t.Errorf("cell (1,1) = %+v", got)
	}
}

func TestInstallIDPersists(t *testing.T) {
	// Two stores over the same file share one install id. A temp file
	// keeps this hermetic.
	path := t.TempDir() + "/progress.db"

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id := s1.InstallID()
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if s2.InstallID() != id {
		t.Errorf("install id changed across opens: %q vs %q", id, s2.InstallID())
	}
}
