// Package grid provides integer tile coordinates and continuous world points.
// Tiles are addressed by Position; inhabitants move through world space as Points.
package grid

import (
	"fmt"
	"math"
)

// Position addresses a single tile on the station grid.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Pos is a convenience constructor for Position.
func Pos(x, y int32) Position { return Position{X: x, Y: y} }

// Add returns the position offset by (dx, dy).
func (p Position) Add(dx, dy int32) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Distance returns the Manhattan distance between two positions.
func (p Position) Distance(o Position) int {
	return abs(int(p.X-o.X)) + abs(int(p.Y-o.Y))
}

// Compare orders positions by X, then Y. The order carries no spatial
// meaning; it exists so ties resolve the same way on every run.
func (p Position) Compare(o Position) int {
	switch {
	case p.X < o.X:
		return -1
	case p.X > o.X:
		return 1
	case p.Y < o.Y:
		return -1
	case p.Y > o.Y:
		return 1
	}
	return 0
}

// Less reports whether p sorts before o.
func (p Position) Less(o Position) bool { return p.Compare(o) < 0 }

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Offsets8 are the eight surrounding cells, orthogonal and diagonal.
var Offsets8 = [8]Position{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// Point is a continuous world-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a convenience constructor for Point.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Lerp interpolates linearly from p to q; t is clamped to [0, 1].
func (p Point) Lerp(q Point, t float64) Point {
	t = math.Max(0, math.Min(1, t))
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y)
}

// EaseInOut maps linear progress t in [0, 1] onto a cubic ease-in/ease-out curve.
func EaseInOut(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
