package model

import "fmt"

// Purpose tags why a move was planned.
type Purpose int

const (
	Defend Purpose = iota
	Chase
	ChaseGather
	HuntHome
	ExpandStronghold
	ExpandTerritory
)

func (p Purpose) String() string {
	switch p {
	case Defend:
		return "defend"
	case Chase:
		return "chase"
	case ChaseGather:
		return "chase-gather"
	case HuntHome:
		return "hunt-home"
	case ExpandStronghold:
		return "expand-stronghold"
	case ExpandTerritory:
		return "expand-territory"
	}
	return fmt.Sprintf("purpose(%d)", int(p))
}

// Captures reports whether a move with this purpose exists to take its
// target cell, so the move is moot once the target is ours.
func (p Purpose) Captures() bool {
	return p != Defend
}

// Engagement reports whether the purpose belongs to an active chase.
func (p Purpose) Engagement() bool {
	return p == Chase || p == ChaseGather
}

// Item is a single-step move that is part of a longer planned path.
// Target is the final cell of that path.
type Item struct {
	Purpose  Purpose  `json:"purpose"`
	Priority int      `json:"priority"`
	From     Position `json:"from"`
	To       Position `json:"to"`
	Target   Position `json:"target"`
}

// Queue holds planned moves, consumed strictly first-in first-out.
// Priority is carried for logging only.
type Queue struct {
	items []Item
}

// PushBack appends unconditionally. Evicting lower-priority tail entries on
// push is deliberately not done; plans stay in arrival order.
func (q *Queue) PushBack(it Item) {
	q.items = append(q.items, it)
}

// PopFront removes and returns the oldest item.
func (q *Queue) PopFront() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	it := q.items[0]
	q.items = q.items[1:]
	return it, true
}

// Front returns the oldest item without removing it.
func (q *Queue) Front() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

func (q *Queue) IsEmpty() bool { return len(q.items) == 0 }

func (q *Queue) Len() int { return len(q.items) }

func (q *Queue) Clear() { q.items = nil }

// Items returns a copy of the queued moves, front first.
func (q *Queue) Items() []Item {
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}
