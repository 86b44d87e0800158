package station

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/items"
)

// TileType is the structural class of a tile.
type TileType uint8

const (
	Floor TileType = iota
	Wall
	Door
)

func (t TileType) String() string {
	switch t {
	case Floor:
		return "floor"
	case Wall:
		return "wall"
	case Door:
		return "door"
	}
	return "unknown"
}

// WallDirection describes how a wall or door is drawn. Only Full matters to
// anything but a renderer; every wall blocks regardless of direction.
// Corner names read as a square room: top-left is the room's top-left corner.
type WallDirection uint8

const (
	WallFull WallDirection = iota
	WallInteriorVertical
	WallInteriorHorizontal
	WallInteriorCross
	WallInteriorCornerTopLeft
	WallInteriorCornerTopRight
	WallInteriorCornerBottomLeft
	WallInteriorCornerBottomRight
	WallExteriorTop
	WallExteriorBottom
	WallExteriorLeft
	WallExteriorRight
	WallExteriorCornerTopLeft
	WallExteriorCornerTopRight
	WallExteriorCornerBottomLeft
	WallExteriorCornerBottomRight
)

var wallDirectionNames = [...]string{
	"Full",
	"InteriorVertical", "InteriorHorizontal", "InteriorCross",
	"InteriorCornerTopLeft", "InteriorCornerTopRight",
	"InteriorCornerBottomLeft", "InteriorCornerBottomRight",
	"ExteriorTop", "ExteriorBottom", "ExteriorLeft", "ExteriorRight",
	"ExteriorCornerTopLeft", "ExteriorCornerTopRight",
	"ExteriorCornerBottomLeft", "ExteriorCornerBottomRight",
}

func (d WallDirection) String() string {
	if int(d) < len(wallDirectionNames) {
		return wallDirectionNames[d]
	}
	return "Unknown"
}

// TileKind pairs a tile type with its wall direction. Dir is ignored for floors.
type TileKind struct {
	Type TileType      `json:"type"`
	Dir  WallDirection `json:"dir,omitempty"`
}

// Kind constructors.
var (
	FloorKind = TileKind{Type: Floor}
	WallKind  = TileKind{Type: Wall, Dir: WallFull}
	DoorKind  = TileKind{Type: Door, Dir: WallFull}
)

func (k TileKind) String() string {
	if k.Type == Floor {
		return k.Type.String()
	}
	return fmt.Sprintf("%s(%s)", k.Type, k.Dir)
}

// Tile is one cell of the station and whatever has been left on it.
type Tile struct {
	Pos   grid.Position `json:"pos"`
	Kind  TileKind      `json:"kind"`
	Items []items.Item  `json:"items,omitempty"`
}

// NewTile creates an empty tile.
func NewTile(pos grid.Position, kind TileKind) *Tile {
	return &Tile{Pos: pos, Kind: kind}
}

// Equal reports whether two tiles occupy the same cell.
func (t *Tile) Equal(o *Tile) bool {
	return t.Pos == o.Pos
}

// Passable reports whether non-ghost inhabitants may enter the tile.
func (t *Tile) Passable() bool {
	return t.Kind.Type != Wall
}

// AddItem places an item on the tile.
func (t *Tile) AddItem(it items.Item) {
	it.Pos = t.Pos
	t.Items = append(t.Items, it)
}

// RemoveItem removes the top-level item with the given id.
func (t *Tile) RemoveItem(id uuid.UUID) bool {
	return items.Remove(&t.Items, id)
}

// HasItem reports whether the tile holds any of kinds, including inside containers.
func (t *Tile) HasItem(kinds []items.Kind) bool {
	return items.Has(t.Items, kinds)
}

// TakeItem removes and returns the first item matching kinds.
func (t *Tile) TakeItem(kinds []items.Kind) (items.Item, bool) {
	return items.Take(&t.Items, kinds)
}
