// Package station holds the habitat map: a sparse grid of tiles, the
// cellular-automaton generator that builds it, and A* navigation across it.
package station

import (
	"math"
	"sort"

	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/items"
)

// TileSize is the edge length of one tile in world units.
const TileSize = 30.0

// IntN is the slice of a random source the map needs.
type IntN interface {
	IntN(n int) int
}

// Station owns every tile. Keys always equal the stored tile's Pos.
type Station struct {
	Origin grid.Point
	tiles  map[grid.Position]*Tile
}

// New creates an empty station anchored at origin.
func New(origin grid.Point) *Station {
	return &Station{Origin: origin, tiles: make(map[grid.Position]*Tile)}
}

// FromTiles rebuilds a station from plain tile data.
func FromTiles(origin grid.Point, tiles []Tile) *Station {
	s := New(origin)
	for i := range tiles {
		t := tiles[i]
		t.Items = items.Clone(t.Items)
		s.AddTile(&t)
	}
	return s
}

// AddTile inserts or replaces the tile at t.Pos.
func (s *Station) AddTile(t *Tile) {
	s.tiles[t.Pos] = t
}

// RemoveTile deletes the tile at pos, if any.
func (s *Station) RemoveTile(pos grid.Position) {
	delete(s.tiles, pos)
}

// HasTile reports whether pos is part of the station.
func (s *Station) HasTile(pos grid.Position) bool {
	_, ok := s.tiles[pos]
	return ok
}

// TileAt returns the tile at pos or nil.
func (s *Station) TileAt(pos grid.Position) *Tile {
	return s.tiles[pos]
}

// TileCount returns the number of tiles.
func (s *Station) TileCount() int {
	return len(s.tiles)
}

// Positions returns every tile position in grid order.
func (s *Station) Positions() []grid.Position {
	out := make([]grid.Position, 0, len(s.tiles))
	for p := range s.tiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Tiles returns copies of every tile in grid order.
func (s *Station) Tiles() []Tile {
	out := make([]Tile, 0, len(s.tiles))
	for _, p := range s.Positions() {
		t := *s.tiles[p]
		t.Items = items.Clone(t.Items)
		out = append(out, t)
	}
	return out
}

// CountType returns how many tiles have the given type.
func (s *Station) CountType(tt TileType) int {
	n := 0
	for _, t := range s.tiles {
		if t.Kind.Type == tt {
			n++
		}
	}
	return n
}

// RandomTile picks a uniformly random tile of the given kind, or nil when
// none exists. Candidates are ordered before drawing so a seeded source
// always picks the same tile.
func (s *Station) RandomTile(kind TileKind, rng IntN) *Tile {
	var options []*Tile
	for _, p := range s.Positions() {
		if t := s.tiles[p]; t.Kind == kind {
			options = append(options, t)
		}
	}
	if len(options) == 0 {
		return nil
	}
	return options[rng.IntN(len(options))]
}

// WorldPosition returns the world-space centre of a grid cell.
func (s *Station) WorldPosition(pos grid.Position) grid.Point {
	return grid.Point{
		X: s.Origin.X + float64(pos.X)*TileSize,
		Y: s.Origin.Y + float64(pos.Y)*TileSize,
	}
}

// GridPosition returns the cell containing a world point. Cells are centred
// on their world position, so each spans half a tile either side.
func (s *Station) GridPosition(pt grid.Point) grid.Position {
	return grid.Position{
		X: int32(math.Ceil((pt.X-s.Origin.X)/TileSize - 0.5)),
		Y: int32(math.Ceil((pt.Y-s.Origin.Y)/TileSize - 0.5)),
	}
}

// TileAtWorldPoint returns the tile under a world point, or nil.
func (s *Station) TileAtWorldPoint(pt grid.Point) *Tile {
	return s.TileAt(s.GridPosition(pt))
}

// FindItems returns, in grid order, every position whose tile holds one of kinds.
func (s *Station) FindItems(kinds []items.Kind) []grid.Position {
	var out []grid.Position
	for _, p := range s.Positions() {
		if s.tiles[p].HasItem(kinds) {
			out = append(out, p)
		}
	}
	return out
}

// CountItems totals the items of the given kinds across every tile.
func (s *Station) CountItems(kinds []items.Kind) int {
	n := 0
	for _, t := range s.tiles {
		n += items.Count(t.Items, kinds)
	}
	return n
}

// Neighbors returns the orthogonal tiles around pos. The order is east,
// west, north, south, reversed on cells where x+y is even so equal-cost
// paths stay straight instead of zig-zagging.
func (s *Station) Neighbors(pos grid.Position) []*Tile {
	dirs := [4]grid.Position{
		pos.Add(1, 0),
		pos.Add(-1, 0),
		pos.Add(0, -1),
		pos.Add(0, 1),
	}
	if (pos.X+pos.Y)&1 == 0 {
		dirs[0], dirs[1], dirs[2], dirs[3] = dirs[3], dirs[2], dirs[1], dirs[0]
	}
	out := make([]*Tile, 0, 4)
	for _, d := range dirs {
		if t := s.tiles[d]; t != nil {
			out = append(out, t)
		}
	}
	return out
}
