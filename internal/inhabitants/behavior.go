// Goal-stack behavior. Every tick the top goal runs once; an empty stack is
// refilled by the decision rule.
package inhabitants

import (
	"fmt"
	"time"

	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/items"
	"github.com/talgya/habitat/internal/station"
)

// SearchPatience is how long a search with no candidates waits before it and
// the goal beneath it are abandoned.
const SearchPatience = 30 * time.Second

// AbandonCooldown is how long the decision rule skips a need after giving up
// on it, unless new supply turns up first.
const AbandonCooldown = 60 * time.Second

// Rand is the random source behavior draws from.
type Rand interface {
	IntN(n int) int
}

// NextBehavior is the idle decision rule: food first, then drink, otherwise
// wander. A need whose search was just abandoned is passed over.
func NextBehavior(v Vitals) Behavior {
	switch {
	case v.WantsFood() >= NeedThreshold && !v.SkipFood:
		return Behavior{Kind: BehaviorEat}
	case v.WantsDrink() >= NeedThreshold && !v.SkipDrink:
		return Behavior{Kind: BehaviorDrink}
	}
	return Behavior{Kind: BehaviorWander}
}

// Advance runs one tick of dt for the inhabitant and returns human-readable
// details of anything notable that happened, for the event log.
func (h *Inhabitant) Advance(dt time.Duration, st *station.Station, rng Rand) []string {
	var details []string
	note := func(format string, args ...any) {
		details = append(details, fmt.Sprintf(format, args...))
	}

	h.Age += dt
	h.FoodAbandoned.lapse(dt, st, items.FoodKinds())
	h.DrinkAbandoned.lapse(dt, st, items.DrinkKinds())
	tile := st.TileAtWorldPoint(h.Pos)

	cur, ok := h.Current()
	if !ok {
		h.push(NextBehavior(h.Vitals()))
		cur, _ = h.Current()
		if cur.Kind != BehaviorWander {
			note("%s wants to %s", h.Label(), cur.Kind)
		}
	} else {
		switch cur.Kind {
		case BehaviorWander:
			h.wander(dt, st, rng)
		case BehaviorEat:
			h.consume(tile, items.FoodKinds(), h.Eat, "eats", "food", note)
		case BehaviorDrink:
			h.consume(tile, items.DrinkKinds(), h.Drink, "drinks", "drink", note)
		case BehaviorSearch:
			h.search(dt, st, tile, cur.Targets, note)
		case BehaviorWork:
		}
	}

	wasAlive, label := h.Alive(), h.Label()
	h.sufferNeeds()
	if wasAlive && !h.Alive() {
		note("%s has died", label)
	}
	return details
}

func (h *Inhabitant) wander(dt time.Duration, st *station.Station, rng Rand) {
	if h.Moving() {
		h.keepMoving(dt, st)
		return
	}
	tile := st.RandomTile(station.FloorKind, rng)
	if tile != nil && h.CanMoveTo(tile) {
		h.SetDestination(st, st.WorldPosition(tile.Pos))
	}
}

// consume takes a matching item from the inventory, then from the tile
// underfoot, and pops the goal. With nothing in reach it pushes a search.
func (h *Inhabitant) consume(tile *station.Tile, kinds []items.Kind, apply func(items.Item), verb, what string, note func(string, ...any)) {
	if it, ok := items.Take(&h.Items, kinds); ok {
		apply(it)
		h.pop()
		note("%s %s %s from inventory", h.Label(), verb, it.Kind)
		return
	}
	if tile != nil {
		if it, ok := tile.TakeItem(kinds); ok {
			apply(it)
			h.pop()
			note("%s %s %s at %s", h.Label(), verb, it.Kind, tile.Pos)
			return
		}
	}
	h.push(Behavior{Kind: BehaviorSearch, Targets: kinds})
	note("%s searches for %s", h.Label(), what)
}

// search heads for the reachable tile holding a target with the fewest
// waypoints. Finding nothing leaves the goal in place until SearchPatience
// runs out.
func (h *Inhabitant) search(dt time.Duration, st *station.Station, tile *station.Tile, kinds []items.Kind, note func(string, ...any)) {
	if h.Moving() {
		h.keepMoving(dt, st)
		return
	}
	if tile != nil && tile.HasItem(kinds) {
		h.Stalled = 0
		h.pop()
		return
	}

	var best []grid.Position
	if tile != nil {
		for _, pos := range st.FindItems(kinds) {
			path := st.Path(tile.Pos, pos)
			if len(path) == 0 {
				continue
			}
			if best == nil || len(path) < len(best) {
				best = path
			}
		}
	}
	if best != nil && h.SetDestination(st, st.WorldPosition(best[len(best)-1])) {
		return
	}

	h.Stalled += dt
	if h.Stalled >= SearchPatience {
		h.Stalled = 0
		h.pop()
		h.pop()
		what := h.abandon(st, kinds)
		note("%s gives up searching for %s", h.Label(), what)
	}
}

// abandon holds the searched-for need back from the decision rule and names it.
func (h *Inhabitant) abandon(st *station.Station, kinds []items.Kind) string {
	a := Abandoned{Remaining: AbandonCooldown, Supply: st.CountItems(kinds)}
	if len(kinds) > 0 && kinds[0].Category() == items.CategoryDrink {
		h.DrinkAbandoned = a
		return "drink"
	}
	h.FoodAbandoned = a
	return "food"
}

// lapse counts the cooldown down, ending it early once more supply appears.
func (a *Abandoned) lapse(dt time.Duration, st *station.Station, kinds []items.Kind) {
	if !a.Active() {
		return
	}
	a.Remaining -= dt
	if a.Remaining <= 0 || st.CountItems(kinds) > a.Supply {
		*a = Abandoned{}
	}
}
