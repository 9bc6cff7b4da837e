package model

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
)

func TestGridStartsUnknown(t *testing.T) {
	g := NewGrid(3, 2)
	if g.Size() != 6 {
		t.Fatalf("Size() = %d, want 6", g.Size())
	}
	g.Each(func(p Position, tile Tile) bool {
		if tile != UnknownTile {
			t.Errorf("At%v = %+v, want unknown", p, tile)
		}
		if g.Observed(p) {
			t.Errorf("Observed%v = true on a fresh grid", p)
		}
		return true
	})
}

func TestGridInRange(t *testing.T) {
	g := NewGrid(4, 3)
	tests := []struct {
		p    Position
		want bool
	}{
		{Position{0, 0}, true},
		{Position{3, 2}, true},
		{Position{4, 0}, false},
		{Position{0, 3}, false},
		{Position{-1, 0}, false},
		{Position{0, -1}, false},
	}
	for _, tc := range tests {
		if got := g.InRange(tc.p); got != tc.want {
			t.Errorf("InRange(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
	if got := g.At(Position{9, 9}); got != UnknownTile {
		t.Errorf("At off-map = %+v, want unknown", got)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b Position
		want int
	}{
		{Position{0, 0}, Position{0, 0}, 0},
		{Position{0, 0}, Position{3, 4}, 7},
		{Position{5, 1}, Position{2, 3}, 5},
	}
	for _, tc := range tests {
		if got := Distance(tc.a, tc.b); got != tc.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		kind         Kind
		hidden       bool
		blocks       bool // IsImpassable(t, false)
		blocksIgnore bool // IsImpassable(t, true)
	}{
		{Home, false, false, false},
		{Stronghold, false, true, false},
		{Unknown, true, false, false},
		{Obscured, true, true, true},
		{Open, false, false, false},
		{Impassable, false, true, true},
		{Attrition, false, false, false},
	}
	for _, tc := range tests {
		tile := Tile{Kind: tc.kind, Owner: Neutral}
		if got := IsHidden(tile); got != tc.hidden {
			t.Errorf("IsHidden(%s) = %v, want %v", tc.kind, got, tc.hidden)
		}
		if got := IsImpassable(tile, false); got != tc.blocks {
			t.Errorf("IsImpassable(%s, false) = %v, want %v", tc.kind, got, tc.blocks)
		}
		if got := IsImpassable(tile, true); got != tc.blocksIgnore {
			t.Errorf("IsImpassable(%s, true) = %v, want %v", tc.kind, got, tc.blocksIgnore)
		}
	}
}

func TestApplyPatchMatchesDirectWrites(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		w, h := 1+rng.Intn(6), 1+rng.Intn(6)
		g := NewGrid(w, h)
		want := make([]Tile, g.Size())
		copy(want, g.cells)

		var p Patch
		cursor := 0
		for cursor < g.Size() {
			if rng.Intn(2) == 0 {
				n := rng.Intn(g.Size() - cursor + 1)
				p = append(p, Skip(n))
				cursor += n
				continue
			}
			tile := Tile{Kind: Open, Owner: Color(rng.Intn(3)), Strength: rng.Intn(20)}
			p = append(p, Literal(tile))
			want[cursor] = tile
			cursor++
		}
		if p.Cells() != g.Size() {
			t.Fatalf("round %d: patch covers %d cells, want %d", round, p.Cells(), g.Size())
		}
		if err := g.ApplyPatch(p); err != nil {
			t.Fatalf("round %d: ApplyPatch: %v", round, err)
		}
		for i := range want {
			if g.cells[i] != want[i] {
				t.Fatalf("round %d: cell %d = %+v, want %+v", round, i, g.cells[i], want[i])
			}
		}
	}
}

func TestApplyPatchXMajorLayout(t *testing.T) {
	g := NewGrid(2, 3)
	// Cell index 4 is x=1, y=1 when flattened x-major.
	p := Patch{Skip(4), Literal(Tile{Kind: Open, Owner: 2, Strength: 9}), Skip(1)}
	if err := g.ApplyPatch(p); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	got := g.At(Position{1, 1})
	if got.Owner != 2 || got.Strength != 9 {
		t.Errorf("At(1,1) = %+v, want owner 2 strength 9", got)
	}
}

func TestApplyPatchOverrunLeavesGrid(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(Position{0, 0}, Tile{Kind: Open, Owner: 1, Strength: 3})

	p := Patch{Literal(Tile{Kind: Impassable, Owner: Neutral}), Skip(3), Literal(Tile{Kind: Open, Owner: Neutral})}
	err := g.ApplyPatch(p)
	if !errors.Is(err, ErrPatchOverrun) {
		t.Fatalf("ApplyPatch err = %v, want ErrPatchOverrun", err)
	}
	if got := g.At(Position{0, 0}); got.Kind != Open || got.Strength != 3 {
		t.Errorf("grid changed by failed patch: At(0,0) = %+v", got)
	}
}

func TestApplyPatchNegativeSkip(t *testing.T) {
	g := NewGrid(2, 2)
	if err := g.ApplyPatch(Patch{Skip(-1)}); err == nil {
		t.Error("ApplyPatch with negative skip should fail")
	}
}

func TestObservedMaskMonotone(t *testing.T) {
	g := NewGrid(3, 1)
	seen := Patch{Literal(Tile{Kind: Open, Owner: Neutral}), Literal(Tile{Kind: Impassable, Owner: Neutral}), Skip(1)}
	if err := g.ApplyPatch(seen); err != nil {
		t.Fatal(err)
	}
	fogged := Patch{Literal(UnknownTile), Literal(Tile{Kind: Obscured, Owner: Neutral}), Skip(1)}
	if err := g.ApplyPatch(fogged); err != nil {
		t.Fatal(err)
	}
	for _, p := range []Position{{0, 0}, {1, 0}} {
		if !g.Observed(p) {
			t.Errorf("Observed%v reverted to false after fog", p)
		}
		if !IsHidden(g.At(p)) {
			t.Errorf("At%v = %+v, want hidden after fog patch", p, g.At(p))
		}
	}
	if g.Observed(Position{2, 0}) {
		t.Error("cell never revealed should not be observed")
	}
}

func TestPatchUnmarshal(t *testing.T) {
	var p Patch
	raw := `[2, [4, 1, 12], [2, null, null], 3, [3, 5, 7]]`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(p) != 5 {
		t.Fatalf("len = %d, want 5", len(p))
	}
	if p[0].Tile != nil || p[0].Skip != 2 {
		t.Errorf("p[0] = %+v, want skip 2", p[0])
	}
	if got := *p[1].Tile; got != (Tile{Kind: Open, Owner: 1, Strength: 12}) {
		t.Errorf("p[1] = %+v", got)
	}
	if got := *p[2].Tile; got != UnknownTile {
		t.Errorf("p[2] = %+v, want unknown", got)
	}
	// Hidden kinds never carry owner or strength.
	if got := *p[4].Tile; got.Owned() || got.Strength != 0 {
		t.Errorf("p[4] = %+v, want normalized obscured tile", got)
	}
	if p.Cells() != 2+1+1+3+1 {
		t.Errorf("Cells() = %d, want 8", p.Cells())
	}
}

func TestTileUnmarshalRejectsBadKind(t *testing.T) {
	var tile Tile
	if err := json.Unmarshal([]byte(`[9, null, null]`), &tile); err == nil {
		t.Error("expected error for unknown kind")
	}
	if err := json.Unmarshal([]byte(`[4, 1]`), &tile); err == nil {
		t.Error("expected error for short tuple")
	}
}

func TestTileMarshalRoundTrip(t *testing.T) {
	b, err := json.Marshal(Tile{Kind: Home, Owner: 3, Strength: 40})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `[0,3,40]` {
		t.Errorf("Marshal = %s, want [0,3,40]", b)
	}
	b, _ = json.Marshal(UnknownTile)
	if string(b) != `[2,null,null]` {
		t.Errorf("Marshal unknown = %s, want [2,null,null]", b)
	}
}

func TestLeaderboard(t *testing.T) {
	var lb Leaderboard
	if err := json.Unmarshal([]byte(`[[1, 50, 10], [2, 80, 12], [3, 20, 4]]`), &lb); err != nil {
		t.Fatal(err)
	}
	if got := lb.Army(1); got != 50 {
		t.Errorf("Army(1) = %d, want 50", got)
	}
	if got := lb.Army(9); got != 0 {
		t.Errorf("Army(9) = %d, want 0", got)
	}
	if got := lb.StrongestArmy(1); got != 80 {
		t.Errorf("StrongestArmy(1) = %d, want 80", got)
	}
	if got := lb.StrongestArmy(2); got != 50 {
		t.Errorf("StrongestArmy(2) = %d, want 50", got)
	}
}

func TestOwnedCellsAreObserved(t *testing.T) {
	kinds := []Kind{Home, Stronghold, Unknown, Obscured, Open, Impassable, Attrition}
	g := NewGrid(len(kinds), 2)
	var patch Patch
	for i, k := range kinds {
		g.Set(Position{i, 0}, Tile{Kind: k, Owner: 2, Strength: 5})
		patch = append(patch, Skip(1), Literal(Tile{Kind: k, Owner: 2, Strength: 5}))
	}
	if err := g.ApplyPatch(patch); err != nil {
		t.Fatal(err)
	}
	g.Each(func(p Position, tile Tile) bool {
		if tile.Owned() && !g.Observed(p) {
			t.Errorf("At%v = %+v is owned but never observed", p, tile)
		}
		return true
	})
}
