package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/habitat/internal/items"
	"github.com/talgya/habitat/internal/station"
)

// RestockStation places a freshly stocked fridge on a random floor tile.
func (s *Simulation) RestockStation() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tile := s.Station.RandomTile(station.FloorKind, s.rng)
	if tile == nil {
		return "", ErrNoSpawnPoint
	}
	fridge := items.NewStocked(s.rng, tile.Pos, items.KindFridge)
	tile.AddItem(fridge)

	desc := fmt.Sprintf("A supply fridge is delivered to %s", tile.Pos)
	s.emit(Event{
		Tick:        s.LastTick,
		Description: desc,
		Category:    "caretaker",
		Meta: map[string]any{
			"item_id": fridge.ID.String(),
			"x":       tile.Pos.X,
			"y":       tile.Pos.Y,
		},
	})
	s.updateStats()

	slog.Info("restock intervention", "pos", tile.Pos, "items", len(fridge.Items))
	return desc, nil
}

// RecruitCrew brings count new crew aboard.
func (s *Simulation) RecruitCrew(count int) (string, error) {
	if count < 1 || count > 10 {
		return "", fmt.Errorf("recruit count %d out of range 1-10", count)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.populate(count); err != nil {
		return "", fmt.Errorf("recruit crew: %w", err)
	}

	desc := fmt.Sprintf("%d new crew members arrive by shuttle", count)
	s.emit(Event{
		Tick:        s.LastTick,
		Description: desc,
		Category:    "caretaker",
		Meta:        map[string]any{"count": count},
	})
	slog.Info("recruit intervention", "count", count)
	return desc, nil
}
