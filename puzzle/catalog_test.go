package puzzle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nonogarden/go-nonogram/grid"
)

const validEntry = `{
  "t": "Dot (2x2, trivial)",
  "w": 2, "h": 2,
  "r": [[[1,0]], []],
  "c": [[[1,0]], []],
  "p": ["#102030"],
  "s": [[0,-1], [-1,-1]]
}`

func TestParseValidEntry(t *testing.T) {
	cat, err := Parse([]byte("[" + validEntry + "]"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("len = %d, want 1", cat.Len())
	}

	p := cat.At(0)
	if p.Title != "Dot (2x2, trivial)" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Width != 2 || p.Height != 2 {
		t.Errorf("dimensions = %dx%d", p.Width, p.Height)
	}
	if p.Difficulty != Trivial {
		t.Errorf("difficulty = %q, want trivial", p.Difficulty)
	}
	if p.Colors() != 1 {
		t.Errorf("colors = %d, want 1", p.Colors())
	}

	// Wire colors are 0-indexed; engine colors start at 1.
	if got := p.RowClues[0][0]; got != (Clue{Count: 1, Color: 1}) {
		t.Errorf("row clue = %+v", got)
	}
	if got := p.ColorMap[1]; got != (RGB{R: 0x10, G: 0x20, B: 0x30}) {
		t.Errorf("palette entry = %+v", got)
	}
	if p.Solution[0][0] != 1 || p.Solution[0][1] != grid.Empty {
		t.Errorf("solution row 0 = %v", p.Solution[0])
	}

	if p.ID == "" {
		t.Error("puzzle should carry a stable id")
	}
	if cat.ByID(p.ID) != p {
		t.Error("ByID should find the puzzle")
	}
}

func TestParseSkipsInvalidEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{
			name:  "zero dimensions",
			entry: `{"t":"x","w":0,"h":2,"r":[],"c":[],"p":["#000000"]}`,
		},
		{
			name: "oversized dimensions",
			entry: fmt.Sprintf(`{"t":"x","w":%d,"h":2,"r":[[],[]],"c":[],"p":["#000000"]}`,
				MaxDimension+1),
		},
		{
			name:  "empty palette",
			entry: `{"t":"x","w":2,"h":2,"r":[[],[]],"c":[[],[]],"p":[]}`,
		},
		{
			name:  "clue line count mismatch",
			entry: `{"t":"x","w":2,"h":2,"r":[[[1,0]]],"c":[[],[]],"p":["#000000"]}`,
		},
		{
			name:  "clue color outside palette",
			entry: `{"t":"x","w":2,"h":2,"r":[[[1,3]],[]],"c":[[],[]],"p":["#000000"]}`,
		},
		{
			name:  "zero run count",
			entry: `{"t":"x","w":2,"h":2,"r":[[[0,0]],[]],"c":[[],[]],"p":["#000000"]}`,
		},
		{
			name:  "runs overflow the line",
			entry: `{"t":"x","w":2,"h":2,"r":[[[2,0],[1,0]],[]],"c":[[],[]],"p":["#000000"]}`,
		},
		{
			name:  "all clue lines empty",
			entry: `{"t":"x","w":2,"h":2,"r":[[],[]],"c":[[],[]],"p":["#000000"]}`,
		},
		{
			name:  "malformed palette color",
			entry: `{"t":"x","w":2,"h":2,"r":[[[1,0]],[]],"c":[[],[]],"p":["red"]}`,
		},
		{
			name:  "solution shape mismatch",
			entry: `{"t":"x","w":2,"h":2,"r":[[[1,0]],[]],"c":[[[1,0]],[]],"p":["#000000"],"s":[[0,0]]}`,
		},
		{
			name:  "solution color outside palette",
			entry: `{"t":"x","w":2,"h":2,"r":[[[1,0]],[]],"c":[[[1,0]],[]],"p":["#000000"],"s":[[4,-1],[-1,-1]]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// One bad entry is skipped; the valid companion survives.
			cat, err := Parse([]byte("[" + tt.entry + "," + validEntry + "]"))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if cat.Len() != 1 {
				t.Errorf("len = %d, want 1 (invalid entry should be skipped)", cat.Len())
			}
		})
	}
}

func TestParseEmptyCatalog(t *testing.T) {
	if _, err := Parse([]byte(`[]`)); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("err = %v, want ErrEmptyCatalog", err)
	}
	// All entries invalid is as empty as no entries.
	bad := `[{"t":"x","w":0,"h":0,"r":[],"c":[],"p":[]}]`
	if _, err := Parse([]byte(bad)); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("err = %v, want ErrEmptyCatalog", err)
	}
}

func TestParseMalformedDocument(t *testing.T) {
	if _, err := Parse([]byte(`{"not": "a list"}`)); err == nil {
		t.Error("non-array document should fail")
	}
}

func TestParseSkipsDuplicates(t *testing.T) {
	cat, err := Parse([]byte("[" + validEntry + "," + validEntry + "]"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("len = %d, want 1 (duplicate should be skipped)", cat.Len())
	}
}

func TestSameColorRunsNeedGap(t *testing.T) {
	// Two 1-runs of the same color need 3 cells; in a width-3 line they
	// fit, in a width-2 line they cannot.
	fits := `{"t":"x","w":3,"h":1,"r":[[[1,0],[1,0]]],"c":[[[1,0]],[],[[1,0]]],"p":["#000000"]}`
	if _, err := Parse([]byte("[" + fits + "]")); err != nil {
		t.Errorf("two separated runs in width 3 should parse: %v", err)
	}

	tight := `{"t":"x","w":2,"h":1,"r":[[[1,0],[1,0]]],"c":[[[1,0]],[[1,0]]],"p":["#000000"]}`
	if _, err := Parse([]byte("[" + tight + "]")); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("same-color runs without room for a gap should be rejected, got %v", err)
	}
}

func TestAdjacentDifferentColorsNeedNoGap(t *testing.T) {
	entry := `{"t":"x","w":2,"h":1,"r":[[[1,0],[1,1]]],"c":[[[1,0]],[[1,1]]],"p":["#000000","#ffffff"]}`
	cat, err := Parse([]byte("[" + entry + "]"))
	if err != nil {
		t.Fatalf("adjacent different-color runs should fit exactly: %v", err)
	}
	if got := cat.At(0).RowClues[0]; len(got) != 2 || got[1].Color != 2 {
		t.Errorf("row clues = %+v", got)
	}
}

func TestDifficultySuffix(t *testing.T) {
	tests := []struct {
		title string
		want  Difficulty
	}{
		{"Cat (10x10, easy)", Easy},
		{"Boat (15x20, Challenging)", Challenging},
		{"Spaced ( 5x5 , master )", Master},
		{"No suffix here", ""},
		{"Mid (5x5, hard) continued", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			entry := fmt.Sprintf(
				`{"t":%q,"w":2,"h":2,"r":[[[1,0]],[]],"c":[[[1,0]],[]],"p":["#000000"]}`,
				tt.title)
			cat, err := Parse([]byte("[" + entry + "]"))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := cat.At(0).Difficulty; got != tt.want {
				t.Errorf("difficulty = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFingerprintStability(t *testing.T) {
	cat1, err := Parse([]byte("[" + validEntry + "]"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// Same clues under a different title keep the same id, so saved
	// progress survives catalog edits.
	retitled := `{
	  "t": "Renamed (2x2, easy)",
	  "w": 2, "h": 2,
	  "r": [[[1,0]], []],
	  "c": [[[1,0]], []],
	  "p": ["#102030"],
	  "s": [[0,-1], [-1,-1]]
	}`
	cat2, err := Parse([]byte("[" + retitled + "]"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cat1.At(0).ID != cat2.At(0).ID {
		t.Error("id should depend on clues, not title")
	}
}

func TestHexColor(t *testing.T) {
	c := RGB{R: 0xab, G: 0xcd, B: 0xef}
	if got := c.Hex(); got != "#abcdef" {
		t.Errorf("Hex = %q", got)
	}
}
