package items

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/habitat/internal/grid"
)

type seqIDs struct{ n byte }

func (s *seqIDs) NewID() uuid.UUID {
	s.n++
	var id uuid.UUID
	id[15] = s.n
	return id
}

func TestContainerRejectsOverCapacity(t *testing.T) {
	ids := &seqIDs{}
	locker := New(ids.NewID(), grid.Pos(0, 0), KindLocker)
	require.Equal(t, ContainerCapacity, locker.Capacity)

	for i := 0; i < ContainerCapacity; i++ {
		require.NoError(t, locker.Add(New(ids.NewID(), grid.Pos(0, 0), KindWater)))
	}
	err := locker.Add(New(ids.NewID(), grid.Pos(0, 0), KindCoffee))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Len(t, locker.Items, ContainerCapacity)
}

func TestNonContainerHoldsNothing(t *testing.T) {
	bar := New(uuid.New(), grid.Pos(0, 0), KindEnergyBar)
	assert.Zero(t, bar.Capacity)
	assert.False(t, bar.IsContainer())
	assert.ErrorIs(t, bar.Add(New(uuid.New(), grid.Pos(0, 0), KindWater)), ErrCapacityExceeded)
}

func TestStockedFridgeAlternates(t *testing.T) {
	fridge := NewStocked(&seqIDs{}, grid.Pos(2, 3), KindFridge)
	require.Len(t, fridge.Items, ContainerCapacity)
	for i, it := range fridge.Items {
		if i%2 == 0 {
			assert.Equal(t, KindEnergyBar, it.Kind)
		} else {
			assert.Equal(t, KindWater, it.Kind)
		}
	}
	assert.Equal(t, 5, Count([]Item{fridge}, FoodKinds()))
	assert.Equal(t, 5, Count([]Item{fridge}, DrinkKinds()))

	locker := NewStocked(&seqIDs{}, grid.Pos(0, 0), KindLocker)
	assert.Empty(t, locker.Items)
}

func TestNutrition(t *testing.T) {
	cases := []struct {
		kind      Kind
		energy    uint8
		hydration uint8
		category  Category
	}{
		{KindEnergyBar, 10, 0, CategoryFood},
		{KindMealReadyToEat, 50, 0, CategoryFood},
		{KindWater, 0, 10, CategoryDrink},
		{KindCoffee, 3, 8, CategoryDrink},
		{KindFridge, 0, 0, CategoryContainer},
		{KindLocker, 0, 0, CategoryContainer},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			it := New(uuid.Nil, grid.Pos(0, 0), tc.kind)
			assert.Equal(t, tc.energy, it.Energy())
			assert.Equal(t, tc.hydration, it.Hydration())
			assert.Equal(t, tc.category, tc.kind.Category())
			assert.NotEqual(t, "Unknown item", it.Name())
		})
	}
}

func TestTakePrefersDirectItems(t *testing.T) {
	ids := &seqIDs{}
	fridge := NewStocked(ids, grid.Pos(0, 0), KindFridge)
	loose := New(ids.NewID(), grid.Pos(0, 0), KindEnergyBar)
	list := []Item{fridge, loose}

	got, ok := Take(&list, FoodKinds())
	require.True(t, ok)
	assert.Equal(t, loose.ID, got.ID)
	assert.Len(t, list, 1)

	got, ok = Take(&list, FoodKinds())
	require.True(t, ok)
	assert.Equal(t, KindEnergyBar, got.Kind)
	assert.Len(t, list[0].Items, ContainerCapacity-1, "taken from inside the fridge")
}

func TestTakeMissing(t *testing.T) {
	list := []Item{New(uuid.New(), grid.Pos(0, 0), KindWater)}
	_, ok := Take(&list, FoodKinds())
	assert.False(t, ok)
	assert.Len(t, list, 1)
	assert.False(t, Has(list, FoodKinds()))
	assert.True(t, Has(list, DrinkKinds()))
}

func TestRemoveByID(t *testing.T) {
	ids := &seqIDs{}
	fridge := NewStocked(ids, grid.Pos(0, 0), KindFridge)
	first := fridge.Items[0].ID

	assert.True(t, fridge.Remove(first))
	assert.False(t, fridge.Remove(first))
	assert.Len(t, fridge.Items, ContainerCapacity-1)
}

func TestKindJSONUsesNames(t *testing.T) {
	b, err := json.Marshal([]Kind{KindWater, KindLocker})
	require.NoError(t, err)
	assert.Equal(t, `["Water","Locker"]`, string(b))

	var got []Kind
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, []Kind{KindWater, KindLocker}, got)
	assert.Error(t, json.Unmarshal([]byte(`["Toaster"]`), &got))

	_, err = json.Marshal(Kind(42))
	assert.Error(t, err)
}
