package agent

import (
	"fmt"

	"github.com/genniabot/gbot-core/model"
)

// EventKind identifies a notable change between two decision cycles.
type EventKind string

const (
	EventFirstContact        EventKind = "first_contact"
	EventEnemyHomeDiscovered EventKind = "enemy_home_discovered"
	EventEnemyHomeGone       EventKind = "enemy_home_gone"
	EventHomeThreatened      EventKind = "home_threatened"
	EventLandLost            EventKind = "land_lost"
)

// Event is a significant game event detected by diffing consecutive
// cycles. Events are only logged; they never steer the decision engine.
type Event struct {
	Kind   EventKind
	Turn   int
	Detail string
}

// landLossThreshold is the smallest drop in owned cells worth reporting.
const landLossThreshold = 5

// stateSnapshot captures the diffable fields of one cycle.
type stateSnapshot struct {
	enemyHomes map[model.Color]model.Position
	threatened bool
	contact    bool // any opponent cell visible
	land       int  // owned cells on our map
}

func takeSnapshot(gs *model.GameState) stateSnapshot {
	snap := stateSnapshot{
		enemyHomes: make(map[model.Color]model.Position, len(gs.EnemyHomes)),
		threatened: gs.HomeThreatened,
	}
	for _, h := range gs.EnemyHomes {
		snap.enemyHomes[h.Color] = h.Pos
	}
	if gs.Grid == nil {
		return snap
	}
	gs.Grid.Each(func(_ model.Position, t model.Tile) bool {
		switch {
		case t.Owner == gs.Color:
			snap.land++
		case t.Owned():
			snap.contact = true
		}
		return true
	})
	return snap
}

// detectEvents compares the current state against the previous snapshot.
// Returns nil if prev is nil (first cycle of a game).
func detectEvents(gs *model.GameState, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}

	var events []Event
	cur := takeSnapshot(gs)

	if cur.contact && !prev.contact {
		events = append(events, Event{
			Kind:   EventFirstContact,
			Turn:   gs.Turn,
			Detail: "opponent territory in sight",
		})
	}

	for color, pos := range cur.enemyHomes {
		if _, known := prev.enemyHomes[color]; !known {
			events = append(events, Event{
				Kind:   EventEnemyHomeDiscovered,
				Turn:   gs.Turn,
				Detail: fmt.Sprintf("home of color %d at %s", color, pos),
			})
		}
	}
	for color, pos := range prev.enemyHomes {
		if _, still := cur.enemyHomes[color]; !still {
			events = append(events, Event{
				Kind:   EventEnemyHomeGone,
				Turn:   gs.Turn,
				Detail: fmt.Sprintf("home of color %d at %s no longer confirmed", color, pos),
			})
		}
	}

	if cur.threatened && !prev.threatened {
		events = append(events, Event{
			Kind:   EventHomeThreatened,
			Turn:   gs.Turn,
			Detail: fmt.Sprintf("hostile cell next to home %s", gs.Home),
		})
	}

	// Either a fixed count or a quarter of our land, whichever is smaller.
	if lost := prev.land - cur.land; lost >= landLossThreshold || (lost > 0 && lost*4 >= prev.land) {
		events = append(events, Event{
			Kind:   EventLandLost,
			Turn:   gs.Turn,
			Detail: fmt.Sprintf("%d → %d cells", prev.land, cur.land),
		})
	}

	return events
}
