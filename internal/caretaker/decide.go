package caretaker

import (
	"fmt"
)

// Actions the caretaker can take.
const (
	ActionNone     = "none"
	ActionRestock  = "restock"
	ActionRecruit  = "recruit"
	ActionSnapshot = "snapshot"
)

// Decision is the caretaker's chosen action for one cycle.
type Decision struct {
	Action       string        `json:"action"`
	Rationale    string        `json:"rationale"`
	Intervention *Intervention `json:"intervention"`
}

// Intervention is the payload for POST /api/v1/intervention.
type Intervention struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// Policy bounds how often the caretaker is allowed to step in.
type Policy struct {
	RestockCooldown int // cycles between non-critical restocks
	SnapshotEvery   int // cycles between snapshots on a healthy station
	MaxRecruits     int
}

// DefaultPolicy returns the standard caretaker limits.
func DefaultPolicy() Policy {
	return Policy{RestockCooldown: 3, SnapshotEvery: 10, MaxRecruits: 3}
}

// Decide picks at most one action from the triage result. A station with no
// living crew gets fresh recruits; a critical or warning shortage gets a
// restock; otherwise the caretaker periodically asks for a snapshot.
func Decide(p Policy, h *StationHealth, mem *CycleMemory) *Decision {
	switch h.CrisisLevel {
	case Critical:
		if h.Alive == 0 {
			n := p.MaxRecruits
			return &Decision{
				Action:       ActionRecruit,
				Rationale:    fmt.Sprintf("no living crew (%d ghosts), recruiting %d", h.Ghosts, n),
				Intervention: &Intervention{Type: ActionRecruit, Count: n},
			}
		}
		return &Decision{
			Action:       ActionRestock,
			Rationale:    fmt.Sprintf("supplies exhausted: food %d, drink %d, %d crew in need", h.FoodTotal, h.DrinkTotal, h.Needy),
			Intervention: &Intervention{Type: ActionRestock},
		}

	case Warning:
		if since := mem.CyclesSince(ActionRestock); since >= 0 && since < p.RestockCooldown {
			return &Decision{
				Action:    ActionNone,
				Rationale: fmt.Sprintf("supplies low but restocked %d cycles ago", since),
			}
		}
		return &Decision{
			Action:       ActionRestock,
			Rationale:    fmt.Sprintf("supplies below crew size: food %d, drink %d, alive %d", h.FoodTotal, h.DrinkTotal, h.Alive),
			Intervention: &Intervention{Type: ActionRestock},
		}
	}

	if since := mem.CyclesSince(ActionSnapshot); since < 0 || since >= p.SnapshotEvery {
		return &Decision{Action: ActionSnapshot, Rationale: "periodic snapshot"}
	}
	return &Decision{Action: ActionNone, Rationale: "station is " + h.CrisisLevel}
}
