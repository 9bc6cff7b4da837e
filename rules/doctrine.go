package rules

// Doctrine holds the tuning knobs of the turn controller. The defaults are
// the values the bot has always played with; a YAML config may override them.
type Doctrine struct {
	// ThreatMargin: a threat's owner is avoided when its army exceeds ours by this factor.
	ThreatMargin float64 `yaml:"threat_margin"`
	// DeferProbability is the chance of expanding instead of engaging a stronger threat owner.
	DeferProbability float64 `yaml:"defer_probability"`
	// RebalanceMargin: expand when the strongest opponent exceeds our army by this factor.
	RebalanceMargin float64 `yaml:"rebalance_margin"`
	// RetainProbability is the chance an equally good frontier replaces the current pick.
	RetainProbability float64 `yaml:"retain_probability"`

	ExpandCadence    int `yaml:"expand_cadence"`     // every Nth turn explores the frontier
	ExpandGraceTurns int `yaml:"expand_grace_turns"` // no land grabbing before this turn
	DefendHops       int `yaml:"defend_hops"`
	ThreatHops       int `yaml:"threat_hops"`
	ExpandHops       int `yaml:"expand_hops"`
	StrongholdHops   int `yaml:"stronghold_hops"`
	HuntHopsFactor   int `yaml:"hunt_hops_factor"` // hunting limit is this × (width + height)

	DefendPriority      int `yaml:"defend_priority"`
	ChasePriority       int `yaml:"chase_priority"`
	EngagedHuntPriority int `yaml:"engaged_hunt_priority"`
	HuntPriority        int `yaml:"hunt_priority"`
	ExpandPriority      int `yaml:"expand_priority"`
	QuickExpandPriority int `yaml:"quick_expand_priority"`
	StrongholdPriority  int `yaml:"stronghold_priority"`
}

// DefaultDoctrine returns the stock tuning.
func DefaultDoctrine() Doctrine {
	return Doctrine{
		ThreatMargin:      1.1,
		DeferProbability:  0.5,
		RebalanceMargin:   1.5,
		RetainProbability: 0.7,

		ExpandCadence:    17,
		ExpandGraceTurns: 17,
		DefendHops:       10,
		ThreatHops:       25,
		ExpandHops:       10,
		StrongholdHops:   34,
		HuntHopsFactor:   2,

		DefendPriority:      999,
		ChasePriority:       999,
		EngagedHuntPriority: 5,
		HuntPriority:        100,
		ExpandPriority:      10,
		QuickExpandPriority: 50,
		StrongholdPriority:  1,
	}
}

// Validate clamps every knob into a range the controller can work with.
// Zero values (fields missing from a partial YAML block) fall back to defaults.
func (d *Doctrine) Validate() {
	def := DefaultDoctrine()
	d.ThreatMargin = clamp(orDefault(d.ThreatMargin, def.ThreatMargin), 1, 10)
	d.RebalanceMargin = clamp(orDefault(d.RebalanceMargin, def.RebalanceMargin), 1, 10)
	d.DeferProbability = clamp(d.DeferProbability, 0, 1)
	d.RetainProbability = clamp(d.RetainProbability, 0, 1)

	d.ExpandCadence = clampInt(orDefaultInt(d.ExpandCadence, def.ExpandCadence), 1, 1000)
	d.ExpandGraceTurns = clampInt(d.ExpandGraceTurns, 0, 1000)
	d.DefendHops = clampInt(orDefaultInt(d.DefendHops, def.DefendHops), 1, 200)
	d.ThreatHops = clampInt(orDefaultInt(d.ThreatHops, def.ThreatHops), 1, 200)
	d.ExpandHops = clampInt(orDefaultInt(d.ExpandHops, def.ExpandHops), 1, 200)
	d.StrongholdHops = clampInt(orDefaultInt(d.StrongholdHops, def.StrongholdHops), 1, 200)
	d.HuntHopsFactor = clampInt(orDefaultInt(d.HuntHopsFactor, def.HuntHopsFactor), 1, 10)
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
