package grid

import (
	"encoding/json"
	"fmt"
)

// The wire format for a grid is an ordered list of rows, each an ordered
// list of cells. Two cell encodings are accepted on read:
//
//   - current: {"v": <color id>, "c": <certain>}, with null or -1 for blank
//   - legacy: a bare scalar color id (implicitly certain), null for blank
//
// The legacy form predates pencil marks. Normalization happens once here at
// the boundary so the rest of the engine only ever sees tagged cells.

// MarshalJSON encodes the cell in the current tagged form.
func (c Cell) MarshalJSON() ([]byte, error) {
	type wireCell struct {
		Value   *int `json:"v"`
		Certain bool `json:"c"`
	}
	w := wireCell{Certain: c.Certain}
	if c.Value != Blank {
		v := int(c.Value)
		w.Value = &v
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes either the tagged or the legacy scalar encoding.
func (c *Cell) UnmarshalJSON(data []byte) error {
	// Legacy blank: null.
	if string(data) == "null" {
		*c = BlankCell
		return nil
	}

	// Legacy scalar: bare color id, implicitly certain.
	var scalar int
	if err := json.Unmarshal(data, &scalar); err == nil {
		v := ColorID(scalar)
		if v < Blank {
			v = Blank
		}
		*c = Cell{Value: v, Certain: true}
		return nil
	}

	var w struct {
		Value   *int `json:"v"`
		Certain bool `json:"c"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode cell: %w", err)
	}
	if w.Value == nil {
		// A blank cell is always certain regardless of what the stored
		// flag says.
		*c = BlankCell
		return nil
	}
	v := ColorID(*w.Value)
	if v < Blank {
		v = Blank
	}
	if v == Blank {
		*c = BlankCell
		return nil
	}
	*c = Cell{Value: v, Certain: w.Certain}
	return nil
}

// Encode serializes the grid rows for persistence.
func (g *Grid) Encode() ([]byte, error) {
	return json.Marshal(g.Cells)
}

// DecodeAuto rebuilds a grid from persisted rows, inferring dimensions
// from the payload. Ragged rows are squared off against the widest row.
func DecodeAuto(data []byte) (*Grid, error) {
	var rows [][]Cell
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	height := len(rows)
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	g := New(width, height)
	for r := range rows {
		copy(g.Cells[r], rows[r])
	}
	return g, nil
}

// Decode rebuilds a grid of the given dimensions from persisted rows.
// Rows or cells beyond the requested dimensions are dropped; missing ones
// come back blank, so a grid saved against an older revision of a puzzle
// still loads rather than failing.
func Decode(data []byte, width, height int) (*Grid, error) {
	var rows [][]Cell
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	g := New(width, height)
	for r := 0; r < height && r < len(rows); r++ {
		for c := 0; c < width && c < len(rows[r]); c++ {
			g.Cells[r][c] = rows[r][c]
		}
	}
	return g, nil
}
