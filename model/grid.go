package model

import (
	"errors"
	"fmt"
)

// Position is a cell coordinate. X runs over the map width, Y over its height.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Add(dx, dy int) Position { return Position{X: p.X + dx, Y: p.Y + dy} }

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Distance is the Manhattan distance between two cells.
func Distance(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ErrPatchOverrun is returned when a patch writes past the last cell.
var ErrPatchOverrun = errors.New("patch overruns grid")

// Grid is the agent's best-known view of the map.
// Cells are flattened x-major (index = x*Height + y), the same order the
// server uses when it run-length encodes map diffs.
type Grid struct {
	Width  int
	Height int

	cells    []Tile
	observed []bool
}

// NewGrid returns a grid where every cell is Unknown and nothing has been observed.
func NewGrid(width, height int) *Grid {
	g := &Grid{
		Width:    width,
		Height:   height,
		cells:    make([]Tile, width*height),
		observed: make([]bool, width*height),
	}
	for i := range g.cells {
		g.cells[i] = UnknownTile
	}
	return g
}

// Size is the number of cells.
func (g *Grid) Size() int { return g.Width * g.Height }

func (g *Grid) index(p Position) int { return p.X*g.Height + p.Y }

func (g *Grid) position(i int) Position { return Position{X: i / g.Height, Y: i % g.Height} }

// InRange reports whether p lies on the map.
func (g *Grid) InRange(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// At returns the tile at p. Off-map positions read as Unknown.
func (g *Grid) At(p Position) Tile {
	if !g.InRange(p) {
		return UnknownTile
	}
	return g.cells[g.index(p)]
}

// Set overwrites a single cell and updates the observed mask. Used by tests
// and tooling; live updates go through ApplyPatch.
func (g *Grid) Set(p Position, t Tile) {
	if !g.InRange(p) {
		return
	}
	i := g.index(p)
	g.cells[i] = t.normalize()
	if !IsHidden(g.cells[i]) {
		g.observed[i] = true
	}
}

// Observed reports whether p has ever been seen unobstructed.
func (g *Grid) Observed(p Position) bool {
	if !g.InRange(p) {
		return false
	}
	return g.observed[g.index(p)]
}

// Each calls fn for every cell in x-major order until fn returns false.
func (g *Grid) Each(fn func(p Position, t Tile) bool) {
	for i, t := range g.cells {
		if !fn(g.position(i), t) {
			return
		}
	}
}

// ApplyPatch replays a run-length patch over the current cells. The patch is
// decoded into a copy, so a malformed patch leaves the grid as it was.
func (g *Grid) ApplyPatch(p Patch) error {
	next := make([]Tile, len(g.cells))
	copy(next, g.cells)

	cursor := 0
	for i, e := range p {
		if e.Tile == nil {
			if e.Skip < 0 {
				return fmt.Errorf("patch element %d: negative skip %d", i, e.Skip)
			}
			cursor += e.Skip
			continue
		}
		if cursor >= len(next) {
			return fmt.Errorf("patch element %d at cell %d of %d: %w", i, cursor, len(next), ErrPatchOverrun)
		}
		next[cursor] = e.Tile.normalize()
		cursor++
	}

	g.cells = next
	for i, t := range g.cells {
		if !g.observed[i] && !IsHidden(t) {
			g.observed[i] = true
		}
	}
	return nil
}

// Neighbors4 are the orthogonal step offsets, in the server's order.
var Neighbors4 = [4]Position{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

// Neighbors8 adds the diagonals to Neighbors4.
var Neighbors8 = [8]Position{{-1, 0}, {0, 1}, {1, 0}, {0, -1}, {-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
