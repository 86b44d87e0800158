// Station generation: random floor seeding, cellular-automaton smoothing,
// a wall perimeter, then furnishing.
package station

import (
	"math"

	"github.com/google/uuid"
	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/items"
)

// Rand is the random source generation draws from.
type Rand interface {
	IntN(n int) int
	Int64() int64
	Float64() float64
	NewID() uuid.UUID
}

// GenConfig holds station generation parameters.
type GenConfig struct {
	Width           int        // Cells across the seeding rectangle
	Height          int        // Cells down the seeding rectangle
	FloorChance     float64    // Probability a cell starts as floor (0.0–1.0)
	SmoothingPasses int        // Cellular-automaton iterations
	NoiseScale      float64    // Simplex frequency biasing the floor chance (0 = uniform)
	Origin          grid.Point // World position of cell (0, 0)
}

// DefaultGenConfig returns the standard habitat size.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:           21,
		Height:          13,
		FloorChance:     0.70,
		SmoothingPasses: 2,
	}
}

// SmallTestConfig returns a tiny station for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:           8,
		Height:          6,
		FloorChance:     0.70,
		SmoothingPasses: 2,
	}
}

// Generate builds a complete station. The result depends only on cfg and the
// state of rng; a pathological FloorChance may leave no floor at all.
func Generate(cfg GenConfig, rng Rand) *Station {
	floors := seedFloors(cfg, rng)
	for i := 0; i < cfg.SmoothingPasses; i++ {
		floors = smooth(cfg, floors)
	}

	s := New(cfg.Origin)
	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			p := grid.Pos(int32(x), int32(y))
			if floors.Has(p) {
				s.AddTile(NewTile(p, FloorKind))
			}
		}
	}
	s.enclose()
	s.furnish(rng)
	return s
}

func seedFloors(cfg GenConfig, rng Rand) mapset.Set[grid.Position] {
	var noise opensimplex.Noise
	if cfg.NoiseScale > 0 {
		noise = opensimplex.NewNormalized(rng.Int64())
	}

	floors := mapset.New[grid.Position]()
	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			chance := cfg.FloorChance
			if noise != nil {
				n := octaveNoise(noise, float64(x), float64(y), 2, cfg.NoiseScale, 0.5)
				chance = math.Max(0, math.Min(1, chance+(n-0.5)))
			}
			if rng.Float64() < chance {
				floors.Put(grid.Pos(int32(x), int32(y)))
			}
		}
	}
	return floors
}

// smooth runs one automaton pass. Counts come from prev only; results go
// into a fresh set so a pass never sees its own writes.
func smooth(cfg GenConfig, prev mapset.Set[grid.Position]) mapset.Set[grid.Position] {
	next := mapset.New[grid.Position]()
	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			p := grid.Pos(int32(x), int32(y))
			n := 0
			for _, o := range grid.Offsets8 {
				if prev.Has(p.Add(o.X, o.Y)) {
					n++
				}
			}
			switch {
			case prev.Has(p) && n >= 2:
				next.Put(p)
			case !prev.Has(p) && n == 3:
				next.Put(p)
			}
		}
	}
	return next
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// enclose surrounds every floor with walls on all eight sides, then
// classifies each new wall for rendering.
func (s *Station) enclose() {
	walls := mapset.New[grid.Position]()
	var order []grid.Position
	for _, p := range s.Positions() {
		if s.tiles[p].Kind.Type != Floor {
			continue
		}
		for _, o := range grid.Offsets8 {
			n := p.Add(o.X, o.Y)
			if !s.HasTile(n) && !walls.Has(n) {
				walls.Put(n)
				order = append(order, n)
			}
		}
	}
	for _, p := range order {
		s.AddTile(NewTile(p, WallKind))
	}
	for _, p := range order {
		s.tiles[p].Kind.Dir = s.classifyWall(p)
	}
}

// classifyWall picks a rendering direction from the floors around a wall.
func (s *Station) classifyWall(p grid.Position) WallDirection {
	floor := func(dx, dy int32) bool {
		t := s.tiles[p.Add(dx, dy)]
		return t != nil && t.Kind.Type == Floor
	}
	n, south, e, w := floor(0, -1), floor(0, 1), floor(1, 0), floor(-1, 0)

	switch sides := count(n, south, e, w); {
	case sides >= 3:
		return WallInteriorCross
	case sides == 2:
		switch {
		case n && south:
			return WallInteriorHorizontal
		case e && w:
			return WallInteriorVertical
		case south && e:
			return WallInteriorCornerTopLeft
		case south && w:
			return WallInteriorCornerTopRight
		case n && e:
			return WallInteriorCornerBottomLeft
		default:
			return WallInteriorCornerBottomRight
		}
	case south:
		return WallExteriorTop
	case n:
		return WallExteriorBottom
	case e:
		return WallExteriorLeft
	case w:
		return WallExteriorRight
	}

	switch {
	case floor(1, 1):
		return WallExteriorCornerTopLeft
	case floor(-1, 1):
		return WallExteriorCornerTopRight
	case floor(1, -1):
		return WallExteriorCornerBottomLeft
	case floor(-1, -1):
		return WallExteriorCornerBottomRight
	}
	return WallFull
}

func count(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// furnish stocks a fridge on the first floor tile in grid order.
func (s *Station) furnish(ids items.IDSource) {
	for _, p := range s.Positions() {
		t := s.tiles[p]
		if t.Kind.Type == Floor {
			t.AddItem(items.NewStocked(ids, p, items.KindFridge))
			return
		}
	}
}
