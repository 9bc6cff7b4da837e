package rules

import (
	"math/rand"

	"github.com/genniabot/gbot-core/model"
)

// Emitter sends the turn's move to the game server.
type Emitter interface {
	Attack(from, to model.Position, half bool) error
}

// RuleEnv wraps game state and exposes helper methods callable from expr expressions.
type RuleEnv struct {
	State    *model.GameState
	Doctrine Doctrine
	Out      Emitter

	rng      *rand.Rand
	decision *Decision
}

func (e RuleEnv) QueueEmpty() bool { return e.State.Queue.IsEmpty() }

func (e RuleEnv) QueueLen() int { return e.State.Queue.Len() }

func (e RuleEnv) EnemyHomeCount() int { return len(e.State.EnemyHomes) }

func (e RuleEnv) HomeThreatened() bool { return e.State.HomeThreatened }

func (e RuleEnv) ChaseArmed() bool { return e.State.Chase.Armed }

func (e RuleEnv) Turn() int { return e.State.Turn }

func (e RuleEnv) MyArmy() int { return e.State.Leaderboard.Army(e.State.Color) }

func (e RuleEnv) MyLand() int {
	r, _ := e.State.Leaderboard.Row(e.State.Color)
	return r.Land
}

func (e RuleEnv) StrongestArmy() int { return e.State.Leaderboard.StrongestArmy(e.State.Color) }

func (e RuleEnv) planner() Planner {
	return Planner{State: e.State, Rand: e.rng, RetainProbability: e.Doctrine.RetainProbability}
}
