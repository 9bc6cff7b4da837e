package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PatchElem is one run-length element: either a skip count or a literal tile.
type PatchElem struct {
	Skip int
	Tile *Tile
}

// Skip returns an element that leaves n cells unchanged.
func Skip(n int) PatchElem { return PatchElem{Skip: n} }

// Literal returns an element that overwrites the next cell with t.
func Literal(t Tile) PatchElem { return PatchElem{Tile: &t} }

// Patch is the map diff sent with every game_update.
type Patch []PatchElem

// Cells is how far the patch moves the write cursor.
func (p Patch) Cells() int {
	n := 0
	for _, e := range p {
		if e.Tile != nil {
			n++
		} else {
			n += e.Skip
		}
	}
	return n
}

// UnmarshalJSON decodes a mixed array of numbers and tile tuples.
func (p *Patch) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}
	out := make(Patch, 0, len(raw))
	for i, r := range raw {
		r = bytes.TrimSpace(r)
		if len(r) > 0 && r[0] == '[' {
			var t Tile
			if err := json.Unmarshal(r, &t); err != nil {
				return fmt.Errorf("patch element %d: %w", i, err)
			}
			out = append(out, Literal(t))
			continue
		}
		var n int
		if err := json.Unmarshal(r, &n); err != nil {
			return fmt.Errorf("patch element %d: %w", i, err)
		}
		out = append(out, Skip(n))
	}
	*p = out
	return nil
}
