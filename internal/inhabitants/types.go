// Package inhabitants provides the crew data model, needs, and the goal-stack
// behavior engine that moves crew around the station.
package inhabitants

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/items"
)

// Type is an inhabitant's role aboard the station. Ghost is terminal and
// only reached through death.
type Type uint8

const (
	Pilot Type = iota
	Engineer
	Scientist
	Medic
	Soldier
	Miner
	Cook
	Ghost
)

// LivingTypes is the number of roles a new crew member can be spawned with.
const LivingTypes = int(Ghost)

var typeNames = [...]string{"Pilot", "Engineer", "Scientist", "Medic", "Soldier", "Miner", "Cook", "Ghost"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	if int(t) >= len(typeNames) {
		return nil, fmt.Errorf("unknown inhabitant type %d", t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *Type) UnmarshalText(b []byte) error {
	for i, n := range typeNames {
		if n == string(b) {
			*t = Type(i)
			return nil
		}
	}
	return fmt.Errorf("unknown inhabitant type %q", b)
}

// BehaviorKind enumerates the goals an inhabitant can pursue.
type BehaviorKind uint8

const (
	BehaviorWander BehaviorKind = iota // Walk to a random floor tile
	BehaviorSearch                     // Walk to the nearest tile holding Targets
	BehaviorEat                        // Consume food within reach
	BehaviorDrink                      // Consume a drink within reach
	BehaviorWork                       // Reserved
)

var behaviorNames = [...]string{"Wander", "Search", "Eat", "Drink", "Work"}

func (k BehaviorKind) String() string {
	if int(k) < len(behaviorNames) {
		return behaviorNames[k]
	}
	return "Unknown"
}

// Behavior is one entry on the goal stack. Targets is only set for Search.
type Behavior struct {
	Kind    BehaviorKind `json:"kind"`
	Targets []items.Kind `json:"targets,omitempty"`
}

func (b Behavior) String() string {
	if b.Kind == BehaviorSearch {
		return fmt.Sprintf("Search%v", b.Targets)
	}
	return b.Kind.String()
}

// Inhabitant is one crew member. The last entry of Behaviors is the goal
// currently executing.
type Inhabitant struct {
	ID uuid.UUID `json:"id"`

	// Movement
	Pos         grid.Point      `json:"pos"`
	Dest        *grid.Point     `json:"dest,omitempty"`
	Path        []grid.Position `json:"path,omitempty"`
	Waypoint    int             `json:"waypoint"`
	MoveElapsed time.Duration   `json:"move_elapsed"`
	LegStart    grid.Point      `json:"leg_start"`

	Behaviors []Behavior `json:"behaviors"`

	Kind   Type          `json:"kind"`
	Health uint8         `json:"health"` // 0–100
	Hunger uint8         `json:"hunger"` // 0–100
	Thirst uint8         `json:"thirst"` // 0–100
	Age    time.Duration `json:"age"`

	Items []items.Item `json:"items"`

	// Time spent searching with nothing to find.
	Stalled time.Duration `json:"stalled"`

	// Needs whose last search was given up.
	FoodAbandoned  Abandoned `json:"food_abandoned"`
	DrinkAbandoned Abandoned `json:"drink_abandoned"`
}

// Abandoned holds a need back from the decision rule after its search failed.
// It lapses when Remaining runs out or when the station holds more matching
// items than Supply, the count seen at give-up.
type Abandoned struct {
	Remaining time.Duration `json:"remaining"`
	Supply    int           `json:"supply"`
}

// Active reports whether the need is still being skipped.
func (a Abandoned) Active() bool { return a.Remaining > 0 }

// New creates a healthy inhabitant. Living crew start with an energy bar and
// a bottle of water; ghosts carry nothing.
func New(ids items.IDSource, pos grid.Point, kind Type) *Inhabitant {
	h := &Inhabitant{
		ID:        ids.NewID(),
		Pos:       pos,
		LegStart:  pos,
		Kind:      kind,
		Health:    MaxStat,
		Behaviors: make([]Behavior, 0, 7),
		Items:     []items.Item{},
	}
	if kind != Ghost {
		h.Items = append(h.Items,
			items.New(ids.NewID(), grid.Pos(0, 0), items.KindEnergyBar),
			items.New(ids.NewID(), grid.Pos(1, 0), items.KindWater),
		)
	}
	return h
}

// Label is a short display name.
func (h *Inhabitant) Label() string {
	return fmt.Sprintf("%s-%s", h.Kind, h.ID.String()[:8])
}

// Current returns the executing behavior.
func (h *Inhabitant) Current() (Behavior, bool) {
	if len(h.Behaviors) == 0 {
		return Behavior{}, false
	}
	return h.Behaviors[len(h.Behaviors)-1], true
}

// Alive reports whether the inhabitant has not become a ghost.
func (h *Inhabitant) Alive() bool { return h.Kind != Ghost }

func (h *Inhabitant) push(b Behavior) {
	h.Behaviors = append(h.Behaviors, b)
}

func (h *Inhabitant) pop() {
	if n := len(h.Behaviors); n > 0 {
		h.Behaviors = h.Behaviors[:n-1]
	}
}

func (h *Inhabitant) String() string {
	cur := "none"
	if b, ok := h.Current(); ok {
		cur = b.String()
	}
	return fmt.Sprintf("[%s (%s, %ds), Behavior: %s, Health: %d, Hunger: %d, Thirst: %d]",
		h.ID, h.Kind, int(h.Age.Seconds()), cur, h.Health, h.Hunger, h.Thirst)
}

// Clone returns a copy that shares no mutable state with h.
func (h *Inhabitant) Clone() Inhabitant {
	c := *h
	if h.Dest != nil {
		d := *h.Dest
		c.Dest = &d
	}
	c.Path = append([]grid.Position(nil), h.Path...)
	c.Behaviors = make([]Behavior, len(h.Behaviors))
	for i, b := range h.Behaviors {
		b.Targets = append([]items.Kind(nil), b.Targets...)
		c.Behaviors[i] = b
	}
	c.Items = items.Clone(h.Items)
	return c
}
