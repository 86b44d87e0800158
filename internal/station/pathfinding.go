package station

import (
	"github.com/zyedidia/generic/heap"

	"github.com/talgya/habitat/internal/grid"
)

// costScale keeps step costs integral so frontier ordering never compares floats.
const costScale = 1000

type movement struct {
	priority int
	pos      grid.Position
}

func movementLess(a, b movement) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.pos.Less(b.pos)
}

// Path returns the waypoints from start to target, excluding start and
// including target. It is empty when target cannot be reached, is a wall or
// missing, or equals start.
func (s *Station) Path(start, target grid.Position) []grid.Position {
	if start == target {
		return nil
	}
	if t := s.tiles[target]; t == nil || !t.Passable() {
		return nil
	}
	cameFrom, found := s.search(start, target)
	if !found {
		return nil
	}

	var path []grid.Position
	for cur := target; cur != start; {
		if len(path) > len(cameFrom) {
			return nil
		}
		path = append(path, cur)
		cur = cameFrom[cur]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// search runs A* from start and reports whether target was popped. Walls
// are never expanded; the frontier running dry means no route exists.
func (s *Station) search(start, target grid.Position) (map[grid.Position]grid.Position, bool) {
	frontier := heap.New(movementLess)
	frontier.Push(movement{pos: start})

	cameFrom := map[grid.Position]grid.Position{start: start}
	costSoFar := map[grid.Position]int{start: 0}

	for {
		current, ok := frontier.Pop()
		if !ok {
			return cameFrom, false
		}
		if current.pos == target {
			return cameFrom, true
		}
		for _, next := range s.Neighbors(current.pos) {
			if !next.Passable() {
				continue
			}
			cost := costSoFar[current.pos] + current.pos.Distance(next.Pos)*costScale
			if prev, seen := costSoFar[next.Pos]; seen && cost >= prev {
				continue
			}
			costSoFar[next.Pos] = cost
			cameFrom[next.Pos] = current.pos
			frontier.Push(movement{
				priority: cost + next.Pos.Distance(target),
				pos:      next.Pos,
			})
		}
	}
}
