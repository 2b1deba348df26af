// Package puzzle defines immutable nonogram puzzle descriptors and the
// catalog that loads and validates them.
package puzzle

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/nonogarden/go-nonogram/grid"
)

// Clue describes one expected run in a row or column: Count consecutive
// cells of Color.
type Clue struct {
	Count int          `json:"count"`
	Color grid.ColorID `json:"color"`
}

// RGB is a palette color.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Difficulty buckets a puzzle by the solving techniques it demands.
// The buckets come from the upstream build pipeline and ride along as
// catalog metadata.
type Difficulty string

const (
	Trivial     Difficulty = "trivial"
	Easy        Difficulty = "easy"
	Medium      Difficulty = "medium"
	Hard        Difficulty = "hard"
	Challenging Difficulty = "challenging"
	Expert      Difficulty = "expert"
	Master      Difficulty = "master"
)

// Puzzle is an immutable puzzle descriptor. Color ids are 1-based; 0 is
// reserved for empty cells in the solution.
type Puzzle struct {
	ID         string
	Title      string
	Width      int
	Height     int
	RowClues   [][]Clue
	ColClues   [][]Clue
	ColorMap   map[grid.ColorID]RGB
	Solution   [][]grid.ColorID
	Difficulty Difficulty
}

// Colors returns the number of palette entries.
func (p *Puzzle) Colors() int {
	return len(p.ColorMap)
}

// fingerprint derives a stable puzzle identifier from the clues, so a
// puzzle keeps its saved progress even when the catalog is reordered.
func (p *Puzzle) fingerprint() string {
	h := sha256.New()
	buf := make([]byte, 4)
	writeInt := func(v int) {
		binary.BigEndian.PutUint32(buf, uint32(int32(v)))
		h.Write(buf)
	}
	writeInt(p.Width)
	writeInt(p.Height)
	for _, line := range p.RowClues {
		writeInt(len(line))
		for _, c := range line {
			writeInt(c.Count)
			writeInt(int(c.Color))
		}
	}
	for _, line := range p.ColClues {
		writeInt(len(line))
		for _, c := range line {
			writeInt(c.Count)
			writeInt(int(c.Color))
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:8])
}
