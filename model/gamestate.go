package model

// EnemyHome is an opponent's home tile we have seen.
type EnemyHome struct {
	Pos   Position `json:"pos"`
	Color Color    `json:"color"`
}

// Engagement is a multi-turn pursuit of one opponent's territory.
type Engagement struct {
	Color Color
	Pos   Position
	Armed bool
}

// GameState is everything the agent knows about the current game. It is
// owned by a single decision loop and never shared between goroutines.
type GameState struct {
	PlayerID string
	Color    Color

	Grid           *Grid
	Home           Position
	HomeKnown      bool
	EnemyHomes     []EnemyHome
	Leaderboard    Leaderboard
	Chase          Engagement
	HomeThreatened bool
	Queue          Queue
	Turn           int
	Over           bool
}

// NewGameState returns a state with no color assigned and no map.
func NewGameState() *GameState {
	return &GameState{Color: Neutral}
}

// Start allocates a fresh map for a new game and forgets the previous one.
func (gs *GameState) Start(width, height int) {
	gs.Grid = NewGrid(width, height)
	gs.HomeKnown = false
	gs.Home = Position{}
	gs.EnemyHomes = nil
	gs.Leaderboard = nil
	gs.Chase = Engagement{}
	gs.HomeThreatened = false
	gs.Queue.Clear()
	gs.Turn = 0
	gs.Over = false
}

// Ready reports whether a decision can be made: a map exists, our color is
// known and our home has been located.
func (gs *GameState) Ready() bool {
	return gs.Grid != nil && gs.Color != Neutral && gs.HomeKnown
}

// Observe applies a map patch and refreshes the homes derived from it.
// Before Start it does nothing.
func (gs *GameState) Observe(p Patch) error {
	if gs.Grid == nil {
		return nil
	}
	if err := gs.Grid.ApplyPatch(p); err != nil {
		return err
	}

	ownFound := false
	gs.Grid.Each(func(pos Position, t Tile) bool {
		if t.Kind != Home || !t.Owned() {
			return true
		}
		if t.Owner == gs.Color {
			if !ownFound {
				gs.Home = pos
				gs.HomeKnown = true
				ownFound = true
			}
			return true
		}
		if !gs.knowsEnemyColor(t.Owner) {
			gs.EnemyHomes = append(gs.EnemyHomes, EnemyHome{Pos: pos, Color: t.Owner})
		}
		return true
	})

	kept := gs.EnemyHomes[:0]
	for _, h := range gs.EnemyHomes {
		t := gs.Grid.At(h.Pos)
		if t.Kind == Unknown || t.Owner != h.Color {
			continue
		}
		kept = append(kept, h)
	}
	gs.EnemyHomes = kept
	return nil
}

func (gs *GameState) knowsEnemyColor(c Color) bool {
	for _, h := range gs.EnemyHomes {
		if h.Color == c {
			return true
		}
	}
	return false
}

// Owns reports whether the cell at p belongs to us.
func (gs *GameState) Owns(p Position) bool {
	return gs.Grid != nil && gs.Grid.InRange(p) && gs.Grid.At(p).Owner == gs.Color
}

// HostileNearHome returns an opponent-owned cell in the 8-neighborhood of
// our home, if any.
func (gs *GameState) HostileNearHome() (Position, bool) {
	if gs.Grid == nil || !gs.HomeKnown {
		return Position{}, false
	}
	for _, d := range Neighbors8 {
		p := gs.Home.Add(d.X, d.Y)
		if !gs.Grid.InRange(p) {
			continue
		}
		t := gs.Grid.At(p)
		if t.Owned() && t.Owner != gs.Color {
			return p, true
		}
	}
	return Position{}, false
}
