package rules

import "fmt"

// CompileDoctrine generates the turn controller's tiers from a doctrine.
// Thresholds are interpolated into the conditions with fmt.Sprintf, so the
// compiler never generates invalid expr.
func CompileDoctrine(d Doctrine) []*Rule {
	d.Validate()

	return []*Rule{
		{
			Name:         "drain-stale-queue",
			Priority:     1000,
			ConditionSrc: `!QueueEmpty()`,
			Action:       ActionDrainQueue,
		},
		{
			Name:         "execute-queued-move",
			Priority:     900,
			ConditionSrc: `!QueueEmpty()`,
			Action:       ActionExecuteMove,
		},
		{
			Name:         "hunt-enemy-homes",
			Priority:     800,
			ConditionSrc: `EnemyHomeCount() > 0`,
			Action:       ActionHuntHomes,
		},
		{
			Name:         "defend-home",
			Priority:     700,
			ConditionSrc: `HomeThreatened()`,
			Action:       ActionDefendHome,
		},
		{
			Name:         "continue-chase",
			Priority:     600,
			ConditionSrc: `ChaseArmed()`,
			Action:       ActionContinueChase,
		},
		{
			Name:         "react-to-threat",
			Priority:     500,
			ConditionSrc: `true`,
			Action:       ActionReactToThreat,
		},
		{
			Name:         "rebalance",
			Priority:     400,
			ConditionSrc: fmt.Sprintf(`StrongestArmy() > MyArmy() * %.2f`, d.RebalanceMargin),
			Action:       ActionExpand,
		},
		{
			Name:         "expand-territory",
			Priority:     100,
			ConditionSrc: `true`,
			Action:       ActionExpand,
		},
	}
}
