package puzzle

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/nonogarden/go-nonogram/grid"
)

// MaxDimension caps puzzle width and height. Entries beyond the cap are
// rejected during catalog normalization rather than crashing the load.
const MaxDimension = 100

// ErrEmptyCatalog is returned when no catalog entry survives validation.
var ErrEmptyCatalog = errors.New("catalog contains no valid puzzles")

// Catalog is an ordered collection of validated puzzles.
type Catalog struct {
	puzzles []*Puzzle
	byID    map[string]*Puzzle
}

// wireEntry is the compact catalog format produced by the upstream build
// pipeline: clues as [count, color] pairs with 0-indexed colors, palette as
// hex strings, solution cells 0-indexed with -1 for empty.
type wireEntry struct {
	Title    string     `json:"t"`
	Width    int        `json:"w"`
	Height   int        `json:"h"`
	RowClues [][][2]int `json:"r"`
	ColClues [][][2]int `json:"c"`
	Palette  []string   `json:"p"`
	Solution [][]int    `json:"s"`
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog from JSON. Entries that fail structural
// validation are logged and skipped; one malformed entry never takes down
// the catalog. Parse fails only when the document itself is unreadable or
// nothing valid remains.
func Parse(data []byte) (*Catalog, error) {
	var entries []wireEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	cat := &Catalog{byID: make(map[string]*Puzzle)}
	for i, e := range entries {
		p, err := e.toPuzzle()
		if err != nil {
			log.Printf("catalog: skipping entry %d (%q): %v", i, e.Title, err)
			continue
		}
		if _, dup := cat.byID[p.ID]; dup {
			log.Printf("catalog: skipping entry %d (%q): duplicate of %s", i, e.Title, p.ID)
			continue
		}
		cat.puzzles = append(cat.puzzles, p)
		cat.byID[p.ID] = p
	}
	if len(cat.puzzles) == 0 {
		return nil, ErrEmptyCatalog
	}
	return cat, nil
}

// Len returns the number of puzzles.
func (c *Catalog) Len() int {
	return len(c.puzzles)
}

// At returns the puzzle at the given index, or nil if out of range.
func (c *Catalog) At(index int) *Puzzle {
	if index < 0 || index >= len(c.puzzles) {
		return nil
	}
	return c.puzzles[index]
}

// ByID looks a puzzle up by its stable identifier.
func (c *Catalog) ByID(id string) *Puzzle {
	return c.byID[id]
}

// Puzzles returns the ordered puzzle list.
func (c *Catalog) Puzzles() []*Puzzle {
	out := make([]*Puzzle, len(c.puzzles))
	copy(out, c.puzzles)
	return out
}

var difficultySuffix = regexp.MustCompile(`\(\s*\d+x\d+\s*,\s*(\w+)\s*\)\s*$`)

func (e wireEntry) toPuzzle() (*Puzzle, error) {
	if e.Width <= 0 || e.Height <= 0 {
		return nil, fmt.Errorf("degenerate dimensions %dx%d", e.Width, e.Height)
	}
	if e.Width > MaxDimension || e.Height > MaxDimension {
		return nil, fmt.Errorf("dimensions %dx%d exceed %dx%d cap", e.Width, e.Height, MaxDimension, MaxDimension)
	}
	if len(e.Palette) == 0 {
		return nil, errors.New("empty palette")
	}
	if len(e.RowClues) != e.Height {
		return nil, fmt.Errorf("%d row clue lines for height %d", len(e.RowClues), e.Height)
	}
	if len(e.ColClues) != e.Width {
		return nil, fmt.Errorf("%d column clue lines for width %d", len(e.ColClues), e.Width)
	}

	colorMap := make(map[grid.ColorID]RGB, len(e.Palette))
	for i, hex := range e.Palette {
		rgb, err := parseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		colorMap[grid.ColorID(i+1)] = rgb
	}

	p := &Puzzle{
		Title:    e.Title,
		Width:    e.Width,
		Height:   e.Height,
		ColorMap: colorMap,
	}

	var err error
	if p.RowClues, err = convertClues(e.RowClues, e.Width, len(e.Palette)); err != nil {
		return nil, fmt.Errorf("row clues: %w", err)
	}
	if p.ColClues, err = convertClues(e.ColClues, e.Height, len(e.Palette)); err != nil {
		return nil, fmt.Errorf("column clues: %w", err)
	}
	if allEmpty(p.RowClues) && allEmpty(p.ColClues) {
		return nil, errors.New("all clue lines empty")
	}

	if len(e.Solution) > 0 {
		if len(e.Solution) != e.Height {
			return nil, fmt.Errorf("solution has %d rows for height %d", len(e.Solution), e.Height)
		}
		p.Solution = make([][]grid.ColorID, e.Height)
		for r, row := range e.Solution {
			if len(row) != e.Width {
				return nil, fmt.Errorf("solution row %d has %d cells for width %d", r, len(row), e.Width)
			}
			cells := make([]grid.ColorID, e.Width)
			for c, v := range row {
				switch {
				case v < 0:
					cells[c] = grid.Empty
				case v < len(e.Palette):
					cells[c] = grid.ColorID(v + 1)
				default:
					return nil, fmt.Errorf("solution cell (%d,%d) color %d outside palette", r, c, v)
				}
			}
			p.Solution[r] = cells
		}
	}

	if m := difficultySuffix.FindStringSubmatch(e.Title); m != nil {
		p.Difficulty = Difficulty(strings.ToLower(m[1]))
	}

	p.ID = p.fingerprint()
	return p, nil
}

// convertClues normalizes [count, color] pairs to 1-indexed Clues and
// checks that each line can physically fit: the run lengths plus the
// mandatory gap between adjacent same-color runs must not exceed the line.
func convertClues(lines [][][2]int, lineLen, colors int) ([][]Clue, error) {
	out := make([][]Clue, len(lines))
	for i, line := range lines {
		clues := make([]Clue, 0, len(line))
		need := 0
		for j, pair := range line {
			count, color := pair[0], pair[1]
			if count <= 0 {
				return nil, fmt.Errorf("line %d: run %d has count %d", i, j, count)
			}
			if color < 0 || color >= colors {
				return nil, fmt.Errorf("line %d: run %d color %d outside palette", i, j, color)
			}
			need += count
			if j > 0 && line[j-1][1] == color {
				need++ // same-color neighbors require a separating gap
			}
			clues = append(clues, Clue{Count: count, Color: grid.ColorID(color + 1)})
		}
		if need > lineLen {
			return nil, fmt.Errorf("line %d: runs need %d cells but line is %d", i, need, lineLen)
		}
		out[i] = clues
	}
	return out, nil
}

func allEmpty(lines [][]Clue) bool {
	for _, line := range lines {
		if len(line) > 0 {
			return false
		}
	}
	return true
}

func parseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("malformed hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return RGB{}, fmt.Errorf("malformed hex color %q", s)
	}
	return RGB{R: r, G: g, B: b}, nil
}
