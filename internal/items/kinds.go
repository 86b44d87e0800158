// Package items models the consumables and containers placed around the station.
// Kinds form a closed set partitioned into food, drink and containers.
package items

import "fmt"

// Kind enumerates every concrete item type.
type Kind uint8

const (
	KindEnergyBar      Kind = iota // Food
	KindMealReadyToEat             // Food
	KindWater                      // Drink
	KindCoffee                     // Drink
	KindFridge                     // Container
	KindLocker                     // Container
)

// Category groups kinds by how inhabitants use them.
type Category uint8

const (
	CategoryFood Category = iota
	CategoryDrink
	CategoryContainer
)

// Category returns the group a kind belongs to.
func (k Kind) Category() Category {
	switch k {
	case KindEnergyBar, KindMealReadyToEat:
		return CategoryFood
	case KindWater, KindCoffee:
		return CategoryDrink
	default:
		return CategoryContainer
	}
}

func (k Kind) String() string {
	switch k {
	case KindEnergyBar:
		return "EnergyBar"
	case KindMealReadyToEat:
		return "MealReadyToEat"
	case KindWater:
		return "Water"
	case KindCoffee:
		return "Coffee"
	case KindFridge:
		return "Fridge"
	case KindLocker:
		return "Locker"
	default:
		return "Unknown"
	}
}

// MarshalText encodes a kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if k > KindLocker {
		return nil, fmt.Errorf("unknown item kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for c := KindEnergyBar; c <= KindLocker; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown item kind %q", b)
}

func (c Category) String() string {
	switch c {
	case CategoryFood:
		return "Food"
	case CategoryDrink:
		return "Drink"
	default:
		return "Container"
	}
}

// FoodKinds returns every food kind.
func FoodKinds() []Kind { return []Kind{KindEnergyBar, KindMealReadyToEat} }

// DrinkKinds returns every drink kind.
func DrinkKinds() []Kind { return []Kind{KindWater, KindCoffee} }

// ContainerKinds returns every container kind.
func ContainerKinds() []Kind { return []Kind{KindFridge, KindLocker} }

// ContainsKind reports whether k is one of kinds.
func ContainsKind(kinds []Kind, k Kind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}
