package model

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a map cell. Values match the server's TileType codes.
type Kind int

const (
	Home       Kind = 0 // a player's general; losing it ends the game for that player
	Stronghold Kind = 1 // city: grows strength for its owner
	Unknown    Kind = 2 // fog, never or not currently seen
	Obscured   Kind = 3 // fogged obstacle: either a stronghold or impassable terrain
	Open       Kind = 4 // plain land
	Impassable Kind = 5 // mountain
	Attrition  Kind = 6 // swamp, drains strength each turn
)

func (k Kind) String() string {
	switch k {
	case Home:
		return "home"
	case Stronghold:
		return "stronghold"
	case Unknown:
		return "unknown"
	case Obscured:
		return "obscured"
	case Open:
		return "open"
	case Impassable:
		return "impassable"
	case Attrition:
		return "attrition"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Color identifies a player. Neutral stands for "no owner" (or not known).
type Color int

const Neutral Color = -1

// Tile is the agent's knowledge of one cell.
type Tile struct {
	Kind     Kind
	Owner    Color
	Strength int
}

// Owned reports whether the tile has an owner.
func (t Tile) Owned() bool { return t.Owner != Neutral }

// UnknownTile is the initial value of every cell.
var UnknownTile = Tile{Kind: Unknown, Owner: Neutral}

// normalize enforces that hidden tiles carry no owner or strength.
func (t Tile) normalize() Tile {
	if IsHidden(t) {
		t.Owner = Neutral
		t.Strength = 0
	}
	return t
}

// UnmarshalJSON decodes the server's [kind, color|null, units|null] tuple.
func (t *Tile) UnmarshalJSON(b []byte) error {
	var raw []*int
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode tile: %w", err)
	}
	if len(raw) != 3 || raw[0] == nil {
		return fmt.Errorf("decode tile: want [kind, owner, strength], got %s", b)
	}
	if *raw[0] < int(Home) || *raw[0] > int(Attrition) {
		return fmt.Errorf("decode tile: unknown kind %d", *raw[0])
	}
	tile := Tile{Kind: Kind(*raw[0]), Owner: Neutral}
	if raw[1] != nil {
		tile.Owner = Color(*raw[1])
	}
	if raw[2] != nil {
		tile.Strength = *raw[2]
	}
	*t = tile.normalize()
	return nil
}

// MarshalJSON writes the tuple form back out, with nulls for absent fields.
func (t Tile) MarshalJSON() ([]byte, error) {
	out := [3]any{int(t.Kind), nil, nil}
	if t.Owned() {
		out[1] = int(t.Owner)
	}
	if !IsHidden(t) {
		out[2] = t.Strength
	}
	return json.Marshal(out)
}

// IsHidden reports whether the tile's real content is unknown to us.
func IsHidden(t Tile) bool {
	return t.Kind == Unknown || t.Kind == Obscured
}

// IsImpassable reports whether an army cannot step onto t. Strongholds
// only block when ignoreStronghold is false.
func IsImpassable(t Tile, ignoreStronghold bool) bool {
	switch t.Kind {
	case Impassable, Obscured:
		return true
	case Stronghold:
		return !ignoreStronghold
	}
	return false
}
