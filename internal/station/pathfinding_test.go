package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/habitat/internal/entropy"
	"github.com/talgya/habitat/internal/grid"
)

func TestPathInWalledRoom(t *testing.T) {
	s := walledRoom(4)

	path := s.Path(grid.Pos(1, 1), grid.Pos(2, 2))
	require.Len(t, path, 2)
	assert.Equal(t, grid.Pos(2, 2), path[1])

	s.AddTile(NewTile(grid.Pos(2, 2), WallKind))
	assert.Empty(t, s.Path(grid.Pos(1, 1), grid.Pos(2, 2)))
}

func TestPathLengthMatchesManhattanInOpenRoom(t *testing.T) {
	s := openRoom(12, 9)
	cases := [][2]grid.Position{
		{{X: 0, Y: 0}, {X: 11, Y: 8}},
		{{X: 5, Y: 5}, {X: 5, Y: 0}},
		{{X: 3, Y: 7}, {X: 10, Y: 2}},
		{{X: 11, Y: 0}, {X: 0, Y: 8}},
	}
	for _, c := range cases {
		path := s.Path(c[0], c[1])
		assert.Len(t, path, c[0].Distance(c[1]), "%s -> %s", c[0], c[1])
		assertContiguous(t, c[0], path)
	}
}

func TestPathExcludesStartIncludesTarget(t *testing.T) {
	s := openRoom(5, 5)
	path := s.Path(grid.Pos(0, 0), grid.Pos(0, 3))
	require.NotEmpty(t, path)
	assert.NotContains(t, path, grid.Pos(0, 0))
	assert.Equal(t, grid.Pos(0, 3), path[len(path)-1])

	assert.Empty(t, s.Path(grid.Pos(2, 2), grid.Pos(2, 2)))
}

func TestPathToEnclosedTargetIsEmpty(t *testing.T) {
	s := openRoom(7, 7)
	target := grid.Pos(3, 3)
	for _, d := range []grid.Position{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
		s.AddTile(NewTile(target.Add(d.X, d.Y), WallKind))
	}
	for _, start := range []grid.Position{{X: 0, Y: 0}, {X: 6, Y: 6}, {X: 3, Y: 0}} {
		assert.Empty(t, s.Path(start, target), "from %s", start)
	}
}

func TestPathToMissingOrWallTarget(t *testing.T) {
	s := walledRoom(5)
	assert.Empty(t, s.Path(grid.Pos(1, 1), grid.Pos(40, 40)))
	assert.Empty(t, s.Path(grid.Pos(1, 1), grid.Pos(0, 0)))
}

func TestPathThroughDoor(t *testing.T) {
	// Two rooms joined by a single door in the dividing wall.
	s := openRoom(7, 3)
	for y := int32(0); y < 3; y++ {
		s.AddTile(NewTile(grid.Pos(3, y), WallKind))
	}
	assert.Empty(t, s.Path(grid.Pos(0, 1), grid.Pos(6, 1)))

	s.AddTile(NewTile(grid.Pos(3, 1), DoorKind))
	path := s.Path(grid.Pos(0, 1), grid.Pos(6, 1))
	assert.Len(t, path, 6)
	assert.Contains(t, path, grid.Pos(3, 1))
}

func TestGeneratedPathsAvoidWalls(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		rng := entropy.New(seed)
		s := Generate(DefaultGenConfig(), rng)
		for i := 0; i < 10; i++ {
			a := s.RandomTile(FloorKind, rng)
			b := s.RandomTile(FloorKind, rng)
			if a == nil || b == nil {
				break
			}
			path := s.Path(a.Pos, b.Pos)
			if len(path) > 0 {
				assertContiguous(t, a.Pos, path)
				assert.GreaterOrEqual(t, len(path), a.Pos.Distance(b.Pos))
			}
			for _, p := range path {
				assert.NotEqual(t, Wall, s.TileAt(p).Kind.Type, "seed %d: wall at %s", seed, p)
			}
		}
	}
}

func TestPathIsStable(t *testing.T) {
	s := openRoom(10, 10)
	first := s.Path(grid.Pos(0, 0), grid.Pos(7, 6))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Path(grid.Pos(0, 0), grid.Pos(7, 6)))
	}
}

func assertContiguous(t *testing.T, start grid.Position, path []grid.Position) {
	t.Helper()
	prev := start
	for _, p := range path {
		assert.Equal(t, 1, prev.Distance(p), "%s -> %s is not a single step", prev, p)
		prev = p
	}
}
