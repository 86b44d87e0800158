package caretaker

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/habitat/internal/inhabitants"
)

// Crisis levels, most severe first.
const (
	Critical = "CRITICAL"
	Warning  = "WARNING"
	Watch    = "WATCH"
	Healthy  = "HEALTHY"
)

// needLevel is the hunger or thirst at which an inhabitant starts looking
// for supplies.
const needLevel = int(inhabitants.NeedThreshold * inhabitants.MaxStat)

// StationHealth holds diagnostic signals computed from a StationSnapshot.
type StationHealth struct {
	Alive   int
	Ghosts  int
	Hungry  int // living crew at or above the need level for food
	Thirsty int
	Needy   int // living crew wanting food, drink, or both
	Dying   int // living crew below a quarter health

	FoodTotal  int // on station plus carried
	DrinkTotal int

	CrisisLevel string
}

// Triage computes a StationHealth from the snapshot's data.
func Triage(snap *StationSnapshot) *StationHealth {
	h := &StationHealth{
		Alive:      snap.Stats.Alive,
		Ghosts:     snap.Stats.Ghosts,
		FoodTotal:  snap.Stats.FoodOnStation + snap.Stats.FoodCarried,
		DrinkTotal: snap.Stats.DrinkOnStation + snap.Stats.DrinkCarried,
	}

	needy := mapset.New[string]()
	for _, c := range snap.Crew {
		if c.Kind == inhabitants.Ghost.String() {
			continue
		}
		if c.Hunger >= needLevel {
			h.Hungry++
			needy.Put(c.ID)
		}
		if c.Thirst >= needLevel {
			h.Thirsty++
			needy.Put(c.ID)
		}
		if c.Health < inhabitants.MaxStat/4 {
			h.Dying++
		}
	}
	h.Needy = needy.Size()

	h.CrisisLevel = Healthy
	switch {
	case h.Alive == 0:
		if h.Ghosts > 0 {
			h.CrisisLevel = Critical
		}
	case h.FoodTotal == 0 && h.Hungry > 0, h.DrinkTotal == 0 && h.Thirsty > 0:
		h.CrisisLevel = Critical
	case h.FoodTotal < h.Alive, h.DrinkTotal < h.Alive:
		h.CrisisLevel = Warning
	case h.Dying > 0 || h.Needy*2 > h.Alive:
		h.CrisisLevel = Watch
	}

	return h
}
