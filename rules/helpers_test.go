package rules

import (
	"math/rand"
	"testing"

	"github.com/genniabot/gbot-core/model"
)

const (
	us   model.Color = 1
	them model.Color = 2
)

type attack struct {
	from, to model.Position
	half     bool
}

// recorder is an Emitter that keeps every attack it is asked to send.
type recorder struct {
	attacks []attack
}

func (r *recorder) Attack(from, to model.Position, half bool) error {
	r.attacks = append(r.attacks, attack{from, to, half})
	return nil
}

func tile(kind model.Kind, owner model.Color, strength int) model.Tile {
	return model.Tile{Kind: kind, Owner: owner, Strength: strength}
}

func open(strength int) model.Tile { return tile(model.Open, model.Neutral, strength) }

// newState builds a started game for color `us` and writes the given cells.
// A Home tile owned by us becomes the home position.
func newState(t *testing.T, width, height int, cells map[model.Position]model.Tile) *model.GameState {
	t.Helper()
	gs := model.NewGameState()
	gs.Color = us
	gs.Start(width, height)
	for p, c := range cells {
		gs.Grid.Set(p, c)
		if c.Kind == model.Home && c.Owner == us {
			gs.Home, gs.HomeKnown = p, true
		}
	}
	return gs
}

func testRand() *rand.Rand { return rand.New(rand.NewSource(42)) }

func testEnv(gs *model.GameState, out Emitter) RuleEnv {
	d := DefaultDoctrine()
	return RuleEnv{State: gs, Doctrine: d, Out: out, rng: testRand(), decision: &Decision{}}
}

func newTestEngine(t *testing.T, d Doctrine) *Engine {
	t.Helper()
	e, err := NewEngine(d, testRand())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}
