// Package storage provides SQLite-backed persistence for puzzle progress:
// per-puzzle grid snapshots, the resumable session, and completion records.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nonogarden/go-nonogram/grid"
	"github.com/nonogarden/go-nonogram/session"
)

// Store handles SQLite database operations for play progress.
type Store struct {
	db *sql.DB

	// installID labels this database instance; handy when merging
	// progress exports from several devices.
	installID string
}

var _ session.Store = (*Store)(nil)

// Open opens (creating if needed) the database at dbPath and migrates the
// schema. Use ":memory:" for an ephemeral store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.ensureInstallID(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install id: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS grids (
		puzzle_id TEXT PRIMARY KEY,
		cells TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS play_session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		puzzle_index INTEGER NOT NULL,
		difficulty TEXT,
		cells TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS completions (
		puzzle_id TEXT PRIMARY KEY,
		completed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) ensureInstallID() error {
	row := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'install_id'`)
	err := row.Scan(&s.installID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	s.installID = uuid.New().String()
	_, err = s.db.Exec(`INSERT INTO meta (key, value) VALUES ('install_id', ?)`, s.installID)
	return err
}

// InstallID returns the stable identifier of this database instance.
func (s *Store) InstallID() string {
	return s.installID
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// PuzzleGrid returns the saved grid for a puzzle, or nil if none exists.
// The cell decoder accepts the legacy scalar-per-cell encoding.
func (s *Store) PuzzleGrid(ctx context.Context, puzzleID string) (*grid.Grid, error) {
	row := s.db.QueryRowContext(ctx, `SELECT cells FROM grids WHERE puzzle_id = ?`, puzzleID)
	var cells string
	if err := row.Scan(&cells); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load grid %s: %w", puzzleID, err)
	}
	return decodeGrid(cells)
}

// SavePuzzleGrid stores a grid snapshot for a puzzle. A nil grid deletes
// the saved snapshot.
func (s *Store) SavePuzzleGrid(ctx context.Context, puzzleID string, g *grid.Grid) error {
	if g == nil {
		_, err := s.db.ExecContext(ctx, `DELETE FROM grids WHERE puzzle_id = ?`, puzzleID)
		if err != nil {
			return fmt.Errorf("clear grid %s: %w", puzzleID, err)
		}
		return nil
	}
	cells, err := g.Encode()
	if err != nil {
		return fmt.Errorf("encode grid %s: %w", puzzleID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO grids (puzzle_id, cells, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(puzzle_id) DO UPDATE SET cells = excluded.cells, updated_at = excluded.updated_at`,
		puzzleID, string(cells), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save grid %s: %w", puzzleID, err)
	}
	return nil
}

// SaveSession stores the resumable session pointer and its grid.
func (s *Store) SaveSession(ctx context.Context, puzzleIndex int, difficulty string, g *grid.Grid) error {
	cells, err := g.Encode()
	if err != nil {
		return fmt.Errorf("encode session grid: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO play_session (id, puzzle_index, difficulty, cells, updated_at) VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET puzzle_index = excluded.puzzle_index,
		 difficulty = excluded.difficulty, cells = excluded.cells, updated_at = excluded.updated_at`,
		puzzleIndex, difficulty, string(cells), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Session returns the saved session, or nil if none exists.
func (s *Store) Session(ctx context.Context) (*session.SavedSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT puzzle_index, difficulty, cells FROM play_session WHERE id = 1`)
	var (
		index      int
		difficulty sql.NullString
		cells      string
	)
	if err := row.Scan(&index, &difficulty, &cells); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	g, err := decodeGrid(cells)
	if err != nil {
		return nil, err
	}
	return &session.SavedSession{
		PuzzleIndex: index,
		Difficulty:  difficulty.String,
		Grid:        g,
	}, nil
}

// ClearSession deletes the saved session.
func (s *Store) ClearSession(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM play_session WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CompletePuzzle marks a puzzle as completed. Completing an already
// completed puzzle keeps the original timestamp.
func (s *Store) CompletePuzzle(ctx context.Context, puzzleID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO completions (puzzle_id, completed_at) VALUES (?, ?)
		 ON CONFLICT(puzzle_id) DO NOTHING`,
		puzzleID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("complete puzzle %s: %w", puzzleID, err)
	}
	return nil
}

// PuzzleCompleted reports whether a puzzle has been completed.
func (s *Store) PuzzleCompleted(ctx context.Context, puzzleID string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM completions WHERE puzzle_id = ?`, puzzleID)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check completion %s: %w", puzzleID, err)
	}
	return true, nil
}

// CompletedPuzzles lists completed puzzle ids, newest first.
func (s *Store) CompletedPuzzles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT puzzle_id FROM completions ORDER BY completed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// decodeGrid rebuilds a grid from a stored row payload, inferring the
// dimensions from the payload itself.
func decodeGrid(cells string) (*grid.Grid, error) {
	g, err := grid.DecodeAuto([]byte(cells))
	if err != nil {
		return nil, fmt.Errorf("decode stored grid: %w", err)
	}
	return g, nil
}
