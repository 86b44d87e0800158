package inhabitants

import (
	"time"

	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/station"
)

// LegDuration is the simulated time it takes to cross one tile.
const LegDuration = 2 * time.Second

// CanMoveTo reports whether the inhabitant may stand on tile. Ghosts go
// anywhere; everyone else needs a tile that is not a wall.
func (h *Inhabitant) CanMoveTo(tile *station.Tile) bool {
	if h.Kind == Ghost {
		return true
	}
	return tile != nil && tile.Passable()
}

// SetDestination paths from the current tile to the one under dest. It
// reports false and leaves movement untouched when there is no route.
func (h *Inhabitant) SetDestination(st *station.Station, dest grid.Point) bool {
	from, to := st.GridPosition(h.Pos), st.GridPosition(dest)
	if from == to {
		return false
	}
	path := st.Path(from, to)
	if len(path) == 0 {
		return false
	}
	h.Path = path
	h.Waypoint = 0
	h.MoveElapsed = 0
	h.LegStart = h.Pos
	h.Dest = &dest
	h.Stalled = 0
	return true
}

// Moving reports whether a destination is set.
func (h *Inhabitant) Moving() bool { return h.Dest != nil }

func (h *Inhabitant) clearMovement() {
	h.Dest = nil
	h.Path = nil
	h.Waypoint = 0
	h.MoveElapsed = 0
	h.LegStart = h.Pos
}

// keepMoving eases along the current leg. Each waypoint reached costs one
// hunger and one thirst; reaching the last one clears the destination and
// pops the executing goal. It reports whether the destination was reached.
func (h *Inhabitant) keepMoving(dt time.Duration, st *station.Station) bool {
	if h.Dest == nil {
		return false
	}
	if h.Waypoint >= len(h.Path) {
		h.clearMovement()
		return false
	}

	next := st.WorldPosition(h.Path[h.Waypoint])
	h.MoveElapsed += dt
	progress := float64(h.MoveElapsed) / float64(LegDuration)
	h.Pos = h.LegStart.Lerp(next, grid.EaseInOut(progress))
	if progress < 1 {
		return false
	}

	h.Pos = next
	h.LegStart = next
	h.Waypoint++
	h.MoveElapsed = 0
	h.AddHunger(1)
	h.AddThirst(1)

	if h.Waypoint < len(h.Path) {
		return false
	}
	h.clearMovement()
	h.pop()
	return true
}
