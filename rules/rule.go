package rules

import (
	"github.com/expr-lang/expr/vm"
)

// ActionFunc carries out a tier once its condition holds. It reports whether
// the turn's decision is settled; an unsettled turn moves on to the next tier.
type ActionFunc func(env RuleEnv) (handled bool, err error)

// Rule is one tier of the turn controller: a condition → action pair.
// The engine evaluates rules by priority and stops at the first handled one.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	ConditionSrc string      // expr source (preserved for logging)
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}
