package model

import (
	"encoding/json"
	"fmt"
)

// LeaderboardRow is one player's totals from the latest update.
type LeaderboardRow struct {
	Color Color
	Army  int
	Land  int
}

// UnmarshalJSON decodes the [color, armyTotal, landTotal] tuple.
func (r *LeaderboardRow) UnmarshalJSON(b []byte) error {
	var raw []int
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode leaderboard row: %w", err)
	}
	if len(raw) < 3 {
		return fmt.Errorf("decode leaderboard row: want 3 fields, got %d", len(raw))
	}
	*r = LeaderboardRow{Color: Color(raw[0]), Army: raw[1], Land: raw[2]}
	return nil
}

type Leaderboard []LeaderboardRow

// Row returns the totals for color.
func (l Leaderboard) Row(c Color) (LeaderboardRow, bool) {
	for _, r := range l {
		if r.Color == c {
			return r, true
		}
	}
	return LeaderboardRow{}, false
}

// Army returns the army total for color, 0 when the color is absent.
func (l Leaderboard) Army(c Color) int {
	r, _ := l.Row(c)
	return r.Army
}

// StrongestArmy is the largest army total of any player other than self.
func (l Leaderboard) StrongestArmy(self Color) int {
	best := 0
	for _, r := range l {
		if r.Color != self && r.Army > best {
			best = r.Army
		}
	}
	return best
}
