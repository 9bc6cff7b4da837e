package rules

import (
	"fmt"
	"log/slog"

	"github.com/genniabot/gbot-core/model"
)

// ActionDrainQueue discards queued moves that can no longer be carried out:
// the source cell was lost, or the path's target is already ours.
// It never settles the turn.
func ActionDrainQueue(env RuleEnv) (bool, error) {
	gs := env.State
	for {
		it, ok := gs.Queue.Front()
		if !ok {
			break
		}
		switch {
		case !gs.Owns(it.From):
			slog.Info("dropping queued move: source lost",
				"from", it.From, "purpose", it.Purpose,
				"expected", gs.Color, "owner", gs.Grid.At(it.From).Owner)
		case it.Purpose.Captures() && gs.Owns(it.Target):
			slog.Info("dropping queued move: target already ours",
				"from", it.From, "target", it.Target, "purpose", it.Purpose)
		default:
			return false, nil
		}
		gs.Queue.PopFront()
		if it.Purpose.Engagement() {
			gs.Chase = model.Engagement{}
		}
	}
	return false, nil
}

// ActionExecuteMove sends the front move. Chase steps leave the turn open so
// the rest of the policy can still react this turn.
func ActionExecuteMove(env RuleEnv) (bool, error) {
	gs := env.State
	it, ok := gs.Queue.PopFront()
	if !ok {
		return false, nil
	}
	half := gs.HomeThreatened && it.From == gs.Home
	slog.Debug("attack", "from", it.From, "to", it.To, "half", half, "purpose", it.Purpose, "priority", it.Priority)
	if err := env.Out.Attack(it.From, it.To, half); err != nil {
		return false, fmt.Errorf("emit attack: %w", err)
	}
	env.decision.Move = &it
	env.decision.Half = half
	return it.Purpose != model.Chase, nil
}

// ActionHuntHomes throws everything at known enemy homes. A home belonging
// to the player we are already fighting is tried first.
func ActionHuntHomes(env RuleEnv) (bool, error) {
	gs := env.State
	pl := env.planner()
	limit := env.Doctrine.HuntHopsFactor * (gs.Grid.Width + gs.Grid.Height)

	gs.Queue.Clear()
	for _, h := range gs.EnemyHomes {
		if gs.Chase.Armed && h.Color == gs.Chase.Color {
			if plan, ok := pl.Gather(h.Pos, limit); ok {
				pl.Enqueue(plan, model.HuntHome, env.Doctrine.EngagedHuntPriority)
				slog.Info("hunting engaged home", "home", h.Pos, "color", h.Color, "value", plan.Value)
				return true, nil
			}
		}
		if plan, ok := pl.Gather(h.Pos, limit); ok {
			pl.Enqueue(plan, model.HuntHome, env.Doctrine.HuntPriority)
			slog.Info("hunting home", "home", h.Pos, "color", h.Color, "value", plan.Value)
			return true, nil
		}
	}
	expand(env)
	return true, nil
}

// ActionDefendHome pulls force onto the intruder next to home and onto home itself.
func ActionDefendHome(env RuleEnv) (bool, error) {
	gs := env.State
	intruder, ok := gs.HostileNearHome()
	if !ok {
		return false, nil
	}
	slog.Info("home in danger", "intruder", intruder, "owner", gs.Grid.At(intruder).Owner)
	pl := env.planner()
	for _, dest := range []model.Position{intruder, gs.Home} {
		if plan, ok := pl.Gather(dest, env.Doctrine.DefendHops); ok {
			pl.Enqueue(plan, model.Defend, env.Doctrine.DefendPriority)
		}
	}
	return true, nil
}

// ActionContinueChase pushes the chase one cell deeper into the chased
// player's territory, preferring cells we have never seen.
func ActionContinueChase(env RuleEnv) (bool, error) {
	gs := env.State
	g := gs.Grid
	from := gs.Chase.Pos

	// Owned cells are never hidden, so they are always observed and this
	// pass cannot match; every step comes from the passable pass.
	unseen := func(p model.Position, t model.Tile) bool {
		return !model.IsImpassable(t, false) && !g.Observed(p)
	}
	passable := func(_ model.Position, t model.Tile) bool {
		return !model.IsImpassable(t, true)
	}
	for _, allowed := range []func(model.Position, model.Tile) bool{unseen, passable} {
		for _, d := range shuffled4(env.rng) {
			to := from.Add(d.X, d.Y)
			if !g.InRange(to) {
				continue
			}
			t := g.At(to)
			if !allowed(to, t) || t.Owner != gs.Chase.Color {
				continue
			}
			gs.Queue.PushBack(model.Item{
				Purpose:  model.Chase,
				Priority: env.Doctrine.ChasePriority,
				From:     from,
				To:       to,
				Target:   to,
			})
			gs.Chase.Pos = to
			slog.Debug("chase step", "from", from, "to", to, "color", gs.Chase.Color)
			return true, nil
		}
	}
	slog.Debug("chase lost", "at", from, "color", gs.Chase.Color)
	gs.Chase = model.Engagement{}
	return false, nil
}

// ActionReactToThreat engages the most dangerous reachable opponent cell,
// unless its owner is clearly stronger and the coin says to grow instead.
func ActionReactToThreat(env RuleEnv) (bool, error) {
	gs := env.State
	threats := ScanThreats(gs, env.rng)
	if len(threats) == 0 {
		return false, nil
	}
	threat := threats[0]
	slog.Debug("threat", "pos", threat.Pos, "color", threat.Color, "value", threat.Value)

	mine := float64(gs.Leaderboard.Army(gs.Color))
	theirs := float64(gs.Leaderboard.Army(threat.Color))
	if theirs > mine*env.Doctrine.ThreatMargin && env.rng.Float64() < env.Doctrine.DeferProbability {
		slog.Debug("threat owner stronger, expanding instead", "mine", mine, "theirs", theirs)
		expand(env)
		return true, nil
	}

	pl := env.planner()
	plan, ok := pl.Gather(threat.Pos, env.Doctrine.ThreatHops)
	gs.Chase = model.Engagement{Color: threat.Color, Pos: threat.Pos, Armed: true}
	if !ok {
		return false, nil
	}
	pl.Enqueue(plan, model.ChaseGather, threat.Value)
	return true, nil
}

// ActionExpand grows territory. Always settles the turn.
func ActionExpand(env RuleEnv) (bool, error) {
	expand(env)
	return true, nil
}

// expand runs the periodic frontier exploration or the land grab, and falls
// back to taking a neutral stronghold. It reports whether anything was queued.
func expand(env RuleEnv) bool {
	gs := env.State
	d := env.Doctrine
	pl := env.planner()

	next := gs.Turn + 1
	queued := false
	switch {
	case next%d.ExpandCadence == 0:
		if plan, ok := pl.QuickExpand(gs.Grid.Width + gs.Grid.Height); ok {
			pl.Enqueue(plan, model.ExpandTerritory, d.QuickExpandPriority)
			queued = true
		}
	case next > d.ExpandGraceTurns:
		queued = grabLand(env, pl)
	}
	if !queued {
		queued = conquerStronghold(env, pl)
	}
	return queued
}

// grabLand tries a one-hop capture of every open cell we do not own, in
// random order, then a longer gather toward the first of them.
func grabLand(env RuleEnv, pl Planner) bool {
	gs := env.State
	var tiles []model.Position
	gs.Grid.Each(func(p model.Position, t model.Tile) bool {
		if t.Kind == model.Open && t.Owner != gs.Color {
			tiles = append(tiles, p)
		}
		return true
	})
	if len(tiles) == 0 {
		return false
	}
	env.rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })

	ok := false
	for _, p := range tiles {
		if plan, found := pl.Gather(p, 1); found {
			pl.Enqueue(plan, model.ExpandTerritory, env.Doctrine.ExpandPriority)
			ok = true
		}
	}
	if ok {
		return true
	}
	if plan, found := pl.Gather(tiles[0], env.Doctrine.ExpandHops); found {
		pl.Enqueue(plan, model.ExpandTerritory, env.Doctrine.ExpandPriority)
		return true
	}
	return false
}

// conquerStronghold gathers toward the neutral stronghold that is cheapest
// to take, counting its strength plus its distance from home.
func conquerStronghold(env RuleEnv, pl Planner) bool {
	gs := env.State
	var best model.Position
	bestCost := -1
	gs.Grid.Each(func(p model.Position, t model.Tile) bool {
		if t.Kind != model.Stronghold || t.Owned() {
			return true
		}
		cost := t.Strength + model.Distance(p, gs.Home)
		if bestCost < 0 || cost < bestCost {
			best, bestCost = p, cost
		}
		return true
	})
	if bestCost < 0 {
		return false
	}
	plan, ok := pl.Gather(best, env.Doctrine.StrongholdHops)
	if !ok {
		return false
	}
	pl.Enqueue(plan, model.ExpandStronghold, env.Doctrine.StrongholdPriority)
	slog.Debug("conquering stronghold", "pos", best, "cost", bestCost, "value", plan.Value)
	return true
}
