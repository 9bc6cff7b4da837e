package rules

import (
	"math/rand"
	"sort"

	"github.com/genniabot/gbot-core/model"
)

// Threat is an opponent-owned cell reachable from our home through
// revealed, passable terrain.
type Threat struct {
	Pos   model.Position
	Color model.Color
	Value int // strength minus distance from home
}

// ScanThreats searches breadth-first from home and returns every opponent
// cell it reaches, best first. Equal values keep discovery order.
func ScanThreats(gs *model.GameState, rng *rand.Rand) []Threat {
	if gs.Grid == nil || !gs.HomeKnown {
		return nil
	}
	g := gs.Grid
	visited := make([]bool, g.Size())
	visited[gs.Home.X*g.Height+gs.Home.Y] = true

	var threats []Threat
	frontier := []model.Position{gs.Home}
	for head := 0; head < len(frontier); head++ {
		a := frontier[head]
		for _, d := range shuffled4(rng) {
			b := a.Add(d.X, d.Y)
			if !g.InRange(b) || visited[b.X*g.Height+b.Y] {
				continue
			}
			t := g.At(b)
			if model.IsHidden(t) || model.IsImpassable(t, false) {
				continue
			}
			visited[b.X*g.Height+b.Y] = true
			frontier = append(frontier, b)
			if t.Owned() && t.Owner != gs.Color {
				threats = append(threats, Threat{
					Pos:   b,
					Color: t.Owner,
					Value: t.Strength - model.Distance(gs.Home, b),
				})
			}
		}
	}

	sort.SliceStable(threats, func(i, j int) bool {
		return threats[i].Value > threats[j].Value
	})
	return threats
}
