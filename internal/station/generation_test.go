package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/habitat/internal/entropy"
	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/items"
)

func TestGeneratedFloorsAreEnclosed(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		s := Generate(DefaultGenConfig(), entropy.New(seed))
		for _, p := range s.Positions() {
			if s.TileAt(p).Kind.Type != Floor {
				continue
			}
			for _, o := range grid.Offsets8 {
				assert.True(t, s.HasTile(p.Add(o.X, o.Y)), "seed %d: open edge next to %s", seed, p)
			}
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(DefaultGenConfig(), entropy.New(99))
	b := Generate(DefaultGenConfig(), entropy.New(99))
	assert.Equal(t, a.Tiles(), b.Tiles())

	c := Generate(DefaultGenConfig(), entropy.New(100))
	assert.NotEqual(t, a.Tiles(), c.Tiles())
}

func TestGenerateWithNoise(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.NoiseScale = 0.15
	a := Generate(cfg, entropy.New(5))
	b := Generate(cfg, entropy.New(5))
	assert.Equal(t, a.Tiles(), b.Tiles())
	assert.Positive(t, a.CountType(Floor))
}

func TestGenerateFurnishesFirstFloor(t *testing.T) {
	s := Generate(DefaultGenConfig(), entropy.New(3))
	require.Positive(t, s.CountType(Floor))

	var first *Tile
	for _, p := range s.Positions() {
		if tile := s.TileAt(p); tile.Kind.Type == Floor {
			first = tile
			break
		}
	}
	require.NotNil(t, first)
	require.Len(t, first.Items, 1)
	fridge := first.Items[0]
	assert.Equal(t, items.KindFridge, fridge.Kind)
	assert.Len(t, fridge.Items, items.ContainerCapacity)
	assert.Equal(t, 1, len(s.FindItems([]items.Kind{items.KindFridge})))
}

func TestGenerateWithNoFloor(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.FloorChance = 0
	s := Generate(cfg, entropy.New(11))

	assert.Zero(t, s.TileCount())
	assert.Nil(t, s.RandomTile(FloorKind, entropy.New(1)))
	assert.Empty(t, s.FindItems(items.FoodKinds()))
}

func TestSmoothingRules(t *testing.T) {
	cfg := GenConfig{Width: 5, Height: 5}

	lonely := smoothOnce(cfg, grid.Pos(2, 2))
	assert.Equal(t, 0, lonely.Size(), "a floor with no neighbours erodes")

	// Three floors around an empty corner cell fill it.
	filled := smoothOnce(cfg, grid.Pos(1, 1), grid.Pos(2, 1), grid.Pos(1, 2))
	assert.True(t, filled.Has(grid.Pos(2, 2)))
	assert.True(t, filled.Has(grid.Pos(1, 1)))
}

func TestWallClassification(t *testing.T) {
	s := New(grid.Pt(0, 0))
	for _, p := range []grid.Position{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 2}} {
		s.AddTile(NewTile(p, FloorKind))
	}
	s.enclose()

	require.Equal(t, 16, s.TileCount())
	want := map[grid.Position]WallDirection{
		{X: 0, Y: 0}: WallExteriorCornerTopLeft,
		{X: 3, Y: 0}: WallExteriorCornerTopRight,
		{X: 0, Y: 3}: WallExteriorCornerBottomLeft,
		{X: 3, Y: 3}: WallExteriorCornerBottomRight,
		{X: 1, Y: 0}: WallExteriorTop,
		{X: 2, Y: 3}: WallExteriorBottom,
		{X: 0, Y: 1}: WallExteriorLeft,
		{X: 3, Y: 2}: WallExteriorRight,
	}
	for p, dir := range want {
		tile := s.TileAt(p)
		require.NotNil(t, tile, p.String())
		assert.Equal(t, Wall, tile.Kind.Type)
		assert.Equal(t, dir, tile.Kind.Dir, p.String())
	}
}

func TestInteriorWallClassification(t *testing.T) {
	// Two floors with a gap between them: the gap becomes an interior wall.
	s := New(grid.Pt(0, 0))
	s.AddTile(NewTile(grid.Pos(1, 1), FloorKind))
	s.AddTile(NewTile(grid.Pos(3, 1), FloorKind))
	s.enclose()
	assert.Equal(t, WallInteriorVertical, s.TileAt(grid.Pos(2, 1)).Kind.Dir)
}

func smoothOnce(cfg GenConfig, floors ...grid.Position) mapset.Set[grid.Position] {
	prev := mapset.New[grid.Position]()
	for _, p := range floors {
		prev.Put(p)
	}
	return smooth(cfg, prev)
}
