package items

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/habitat/internal/grid"
)

// ContainerCapacity is the fixed number of children a container holds.
const ContainerCapacity = 10

// ErrCapacityExceeded is returned when inserting into a full container.
var ErrCapacityExceeded = errors.New("container is at capacity")

// IDSource hands out item identities. The simulation's seeded random source
// satisfies it so identities are reproducible.
type IDSource interface {
	NewID() uuid.UUID
}

// Item is a single object on a tile or in an inventory. Containers hold
// children up to Capacity; everything else has Capacity 0.
type Item struct {
	ID       uuid.UUID     `json:"id"`
	Kind     Kind          `json:"kind"`
	Pos      grid.Position `json:"pos"`
	Items    []Item        `json:"items,omitempty"`
	Capacity int           `json:"capacity"`
}

// New creates an empty item of the given kind.
func New(id uuid.UUID, pos grid.Position, kind Kind) Item {
	it := Item{ID: id, Kind: kind, Pos: pos}
	if kind.Category() == CategoryContainer {
		it.Capacity = ContainerCapacity
		it.Items = make([]Item, 0, ContainerCapacity)
	}
	return it
}

// NewStocked creates an item and, for fridges, fills it to capacity with
// alternating energy bars and water.
func NewStocked(ids IDSource, pos grid.Position, kind Kind) Item {
	it := New(ids.NewID(), pos, kind)
	if kind != KindFridge {
		return it
	}
	for i := 0; i < it.Capacity; i++ {
		child := KindEnergyBar
		if i%2 == 1 {
			child = KindWater
		}
		// Cannot fail: the loop stops at capacity.
		_ = it.Add(New(ids.NewID(), pos, child))
	}
	return it
}

// IsContainer reports whether the item can hold children.
func (it Item) IsContainer() bool { return it.Capacity > 0 }

// Add inserts a child, rejecting it when the item is full.
func (it *Item) Add(child Item) error {
	if len(it.Items) >= it.Capacity {
		return fmt.Errorf("add %s to %s: %w", child.Kind, it.Kind, ErrCapacityExceeded)
	}
	it.Items = append(it.Items, child)
	return nil
}

// Remove deletes the direct child with the given id.
func (it *Item) Remove(id uuid.UUID) bool {
	return Remove(&it.Items, id)
}

// Energy is how much hunger the item relieves.
func (it Item) Energy() uint8 {
	switch it.Kind {
	case KindEnergyBar:
		return 10
	case KindMealReadyToEat:
		return 50
	case KindCoffee:
		return 3
	}
	return 0
}

// Hydration is how much thirst the item relieves.
func (it Item) Hydration() uint8 {
	switch it.Kind {
	case KindWater:
		return 10
	case KindCoffee:
		return 8
	}
	return 0
}

// Name returns a short human-readable description.
func (it Item) Name() string {
	switch it.Kind {
	case KindEnergyBar:
		return fmt.Sprintf("Your basic energy bar. Restores %d hunger", it.Energy())
	case KindMealReadyToEat:
		return fmt.Sprintf("An entire MRE. Restores %d hunger", it.Energy())
	case KindWater:
		return fmt.Sprintf("A bottle of water. Restores %d thirst", it.Hydration())
	case KindCoffee:
		return fmt.Sprintf("A cup of coffee. Restores %d thirst and %d hunger", it.Hydration(), it.Energy())
	case KindFridge:
		return fmt.Sprintf("Keeps food and drink cold. Has %d items", len(it.Items))
	case KindLocker:
		return fmt.Sprintf("Storage container. Has %d items", len(it.Items))
	}
	return "Unknown item"
}

func (it Item) String() string {
	return fmt.Sprintf("[%s (%s)] %s", it.ID, it.Kind, it.Name())
}
