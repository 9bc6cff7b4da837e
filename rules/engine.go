package rules

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/genniabot/gbot-core/model"
)

// Decision records what one cycle did, for logs and the turn log.
type Decision struct {
	Turn  int
	Fired []string    // tiers whose condition held, in evaluation order
	Move  *model.Item // the move sent this turn, if any
	Half  bool
}

// Engine runs the compiled tiers against the game state once per update.
// Tiers fire in priority order; the first one that settles the turn stops
// evaluation. Engine is not safe for concurrent use: one decision cycle
// must finish before the next update is processed.
type Engine struct {
	rules    []*Rule
	doctrine Doctrine
	rng      *rand.Rand

	lastDiagTurn int
}

// NewEngine compiles the doctrine's tiers into expr bytecode.
func NewEngine(d Doctrine, rng *rand.Rand) (*Engine, error) {
	d.Validate()
	compiled, err := compileRules(CompileDoctrine(d))
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled, doctrine: d, rng: rng}, nil
}

// Doctrine returns the tuning the engine was built with.
func (e *Engine) Doctrine() Doctrine { return e.doctrine }

// Evaluate makes this turn's decision. Missing preconditions (no map, no
// color, home not found yet) make it a no-op.
func (e *Engine) Evaluate(gs *model.GameState, out Emitter) (Decision, error) {
	dec := Decision{Turn: gs.Turn}
	if !gs.Ready() {
		slog.Debug("decision skipped, state not ready", "turn", gs.Turn)
		return dec, nil
	}

	_, gs.HomeThreatened = gs.HostileNearHome()

	env := RuleEnv{State: gs, Doctrine: e.doctrine, Out: out, rng: e.rng, decision: &dec}
	for _, r := range e.rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}
		if match, ok := result.(bool); !ok || !match {
			continue
		}

		dec.Fired = append(dec.Fired, r.Name)
		handled, err := r.Action(env)
		if err != nil {
			return dec, fmt.Errorf("rule %s: %w", r.Name, err)
		}
		if handled {
			break
		}
	}

	e.logDiagnostics(gs, dec)
	return dec, nil
}

// logDiagnostics prints a summary every 25 turns to help debug "why is the bot idle?".
// A turn counter that went backwards means a new game started.
func (e *Engine) logDiagnostics(gs *model.GameState, dec Decision) bool {
	if gs.Turn < e.lastDiagTurn {
		e.lastDiagTurn = 0
	}
	if gs.Turn-e.lastDiagTurn < 25 {
		return false
	}
	e.lastDiagTurn = gs.Turn

	row, _ := gs.Leaderboard.Row(gs.Color)
	slog.Info("turn diagnostics",
		"turn", gs.Turn,
		"army", row.Army,
		"land", row.Land,
		"queued", gs.Queue.Len(),
		"enemyHomes", len(gs.EnemyHomes),
		"chase", gs.Chase.Armed,
		"fired", dec.Fired,
	)
	return true
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
