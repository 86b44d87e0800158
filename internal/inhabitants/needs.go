package inhabitants

import "github.com/talgya/habitat/internal/items"

// MaxStat is the ceiling for health, hunger, and thirst.
const MaxStat = 100

// NeedThreshold is the ratio at which hunger or thirst takes priority.
const NeedThreshold = 0.5

// Vitals is the stat snapshot the decision rule reads.
type Vitals struct {
	Kind   Type
	Hunger uint8
	Thirst uint8

	// Set while a recent search for that need was abandoned.
	SkipFood  bool
	SkipDrink bool
}

// Vitals returns the inhabitant's current stat snapshot.
func (h *Inhabitant) Vitals() Vitals {
	return Vitals{
		Kind:      h.Kind,
		Hunger:    h.Hunger,
		Thirst:    h.Thirst,
		SkipFood:  h.FoodAbandoned.Active(),
		SkipDrink: h.DrinkAbandoned.Active(),
	}
}

// WantsFood is hunger scaled to 0.0–1.0. Ghosts never want anything.
func (v Vitals) WantsFood() float64 {
	if v.Kind == Ghost {
		return 0
	}
	return float64(v.Hunger) / MaxStat
}

// WantsDrink is thirst scaled to 0.0–1.0.
func (v Vitals) WantsDrink() float64 {
	if v.Kind == Ghost {
		return 0
	}
	return float64(v.Thirst) / MaxStat
}

// AddHunger raises hunger, saturating at MaxStat.
func (h *Inhabitant) AddHunger(n uint8) {
	if h.Kind == Ghost {
		return
	}
	h.Hunger = addClamped(h.Hunger, n)
}

// AddThirst raises thirst, saturating at MaxStat.
func (h *Inhabitant) AddThirst(n uint8) {
	if h.Kind == Ghost {
		return
	}
	h.Thirst = addClamped(h.Thirst, n)
}

// Eat lowers hunger by the item's energy, floored at 0.
func (h *Inhabitant) Eat(it items.Item) {
	h.Hunger = subFloor(h.Hunger, it.Energy())
}

// Drink lowers thirst by the item's hydration, floored at 0.
func (h *Inhabitant) Drink(it items.Item) {
	h.Thirst = subFloor(h.Thirst, it.Hydration())
}

// TakeDamage lowers health and kills the inhabitant at 0. Ghosts are immune,
// so a ghost can never die twice.
func (h *Inhabitant) TakeDamage(n uint8) {
	if h.Kind == Ghost {
		return
	}
	h.Health = subFloor(h.Health, n)
	if h.Health == 0 {
		h.Die()
	}
}

// Die turns the inhabitant into a ghost and drops every goal in progress.
func (h *Inhabitant) Die() {
	h.Kind = Ghost
	h.Health = 0
	h.Hunger = 0
	h.Thirst = 0
	h.Behaviors = h.Behaviors[:0]
	h.clearMovement()
	h.Stalled = 0
	h.FoodAbandoned = Abandoned{}
	h.DrinkAbandoned = Abandoned{}
}

// sufferNeeds deals one point of damage for each saturated need.
func (h *Inhabitant) sufferNeeds() {
	if h.Hunger >= MaxStat {
		h.TakeDamage(1)
	}
	if h.Thirst >= MaxStat {
		h.TakeDamage(1)
	}
}

func addClamped(v, n uint8) uint8 {
	if int(v)+int(n) >= MaxStat {
		return MaxStat
	}
	return v + n
}

func subFloor(v, n uint8) uint8 {
	if n >= v {
		return 0
	}
	return v - n
}
