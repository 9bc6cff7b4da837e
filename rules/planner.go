package rules

import (
	"math/rand"

	"github.com/genniabot/gbot-core/model"
)

// Plan is a route together with its net value: the force gathered along
// the route minus step costs and the strength needed to take hostile cells.
type Plan struct {
	Value int
	Path  []model.Position // in walking order
}

// Target is the last cell of the route.
func (p Plan) Target() model.Position { return p.Path[len(p.Path)-1] }

// Items splits the route into single-step moves.
func (p Plan) Items(purpose model.Purpose, priority int) []model.Item {
	if len(p.Path) < 2 {
		return nil
	}
	items := make([]model.Item, 0, len(p.Path)-1)
	for i := 1; i < len(p.Path); i++ {
		items = append(items, model.Item{
			Purpose:  purpose,
			Priority: priority,
			From:     p.Path[i-1],
			To:       p.Path[i],
			Target:   p.Target(),
		})
	}
	return items
}

// Planner runs the net-value searches over the current map.
type Planner struct {
	State *model.GameState
	Rand  *rand.Rand
	// RetainProbability is the chance that an equally valued frontier
	// replaces the current pick in QuickExpand.
	RetainProbability float64
}

// search holds the labels of one propagation. Cells are indexed x-major,
// like the grid.
type search struct {
	grid    *model.Grid
	value   []int
	parent  []int
	reached []bool
	done    []bool
}

func (s *search) idx(p model.Position) int { return p.X*s.grid.Height + p.Y }

func (s *search) pos(i int) model.Position {
	return model.Position{X: i / s.grid.Height, Y: i % s.grid.Height}
}

// chain walks parent links from cell i back to the seed.
func (s *search) chain(i int) []model.Position {
	var out []model.Position
	for ; i >= 0; i = s.parent[i] {
		out = append(out, s.pos(i))
	}
	return out
}

type frontierNode struct {
	pos  model.Position
	step int
}

// propagate spreads net value outward from seed in breadth-first order.
// Entering a cell costs one, adds its strength if it is ours and subtracts
// it otherwise. Strongholds we do not own cannot be entered. A cell is
// relaxed only while it is not finalized and only by a strictly better
// value; it is finalized when popped. The search ends at the first popped
// cell that is limit hops from the seed.
func (pl Planner) propagate(seed model.Position, limit int) *search {
	g := pl.State.Grid
	n := g.Size()
	s := &search{
		grid:    g,
		value:   make([]int, n),
		parent:  make([]int, n),
		reached: make([]bool, n),
		done:    make([]bool, n),
	}
	for i := range s.parent {
		s.parent[i] = -1
	}

	seedTile := g.At(seed)
	si := s.idx(seed)
	s.reached[si] = true
	if seedTile.Owner == pl.State.Color {
		s.value[si] = seedTile.Strength
	} else {
		s.value[si] = -seedTile.Strength
	}

	frontier := []frontierNode{{pos: seed}}
	for head := 0; head < len(frontier); head++ {
		a := frontier[head]
		ai := s.idx(a.pos)
		if s.done[ai] {
			continue
		}
		s.done[ai] = true
		if a.step >= limit {
			break
		}
		for _, d := range shuffled4(pl.Rand) {
			b := a.pos.Add(d.X, d.Y)
			if !g.InRange(b) {
				continue
			}
			bi := s.idx(b)
			t := g.At(b)
			if model.IsImpassable(t, true) || s.done[bi] {
				continue
			}
			v := s.value[ai] - 1
			if t.Owner == pl.State.Color {
				v += t.Strength
			} else {
				if t.Kind == model.Stronghold {
					continue
				}
				v -= t.Strength
			}
			if s.reached[bi] && s.value[bi] >= v {
				continue
			}
			s.value[bi] = v
			s.parent[bi] = ai
			s.reached[bi] = true
			frontier = append(frontier, frontierNode{pos: b, step: a.step + 1})
		}
	}
	return s
}

// Gather finds the route into dest with the largest positive net value,
// looking at most limit hops away from dest. ok is false when no route is
// worth taking.
func (pl Planner) Gather(dest model.Position, limit int) (Plan, bool) {
	if pl.State.Grid == nil || !pl.State.Grid.InRange(dest) {
		return Plan{}, false
	}
	s := pl.propagate(dest, limit)

	// dest alone is not a route: at least one move must lead into it.
	seed := s.idx(dest)
	best, bestVal := -1, 0
	for i, v := range s.value {
		if i != seed && s.reached[i] && v > bestVal {
			best, bestVal = i, v
		}
	}
	if best < 0 {
		return Plan{}, false
	}
	// Parent links point toward dest, so the chain is already origin first.
	return Plan{Value: bestVal, Path: s.chain(best)}, true
}

// QuickExpand looks for a profitable route from home into a cell that has
// never been observed. Among equally valued frontiers the pick is random.
func (pl Planner) QuickExpand(limit int) (Plan, bool) {
	if pl.State.Grid == nil || !pl.State.HomeKnown {
		return Plan{}, false
	}
	g := pl.State.Grid
	s := pl.propagate(pl.State.Home, limit)

	seed := s.idx(pl.State.Home)
	best, bestVal := -1, 0
	for i, v := range s.value {
		if i == seed || !s.reached[i] || v <= 0 || g.Observed(s.pos(i)) {
			continue
		}
		switch {
		case best < 0 || v > bestVal:
			best, bestVal = i, v
		case v == bestVal && pl.Rand.Float64() < pl.RetainProbability:
			best = i
		}
	}
	if best < 0 {
		return Plan{}, false
	}
	chain := s.chain(best)
	path := make([]model.Position, len(chain))
	for i, p := range chain {
		path[len(chain)-1-i] = p
	}
	return Plan{Value: bestVal, Path: path}, true
}

// Enqueue appends the plan's steps to the action queue.
func (pl Planner) Enqueue(p Plan, purpose model.Purpose, priority int) {
	for _, it := range p.Items(purpose, priority) {
		pl.State.Queue.PushBack(it)
	}
}

// shuffled4 returns the orthogonal offsets in uniformly random order.
func shuffled4(rng *rand.Rand) [4]model.Position {
	d := model.Neighbors4
	rng.Shuffle(len(d), func(i, j int) { d[i], d[j] = d[j], d[i] })
	return d
}
