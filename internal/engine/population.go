// Crew population: spawning new inhabitants onto the station.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/habitat/internal/inhabitants"
)

// ErrNoSpawnPoint is returned when the station has no floor to place crew on.
var ErrNoSpawnPoint = inhabitants.ErrNoSpawnPoint

// Populate adds count crew members together on one random floor tile.
func (s *Simulation) Populate(count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.populate(count)
}

func (s *Simulation) populate(count int) error {
	if count <= 0 {
		return nil
	}
	crew, err := inhabitants.SpawnCrew(s.Station, count, s.rng)
	if err != nil {
		return err
	}
	s.Inhabitants = append(s.Inhabitants, crew...)

	for _, h := range crew {
		s.emit(Event{
			Tick:        s.LastTick,
			Description: fmt.Sprintf("%s boards the station", h.Label()),
			Category:    "population",
			Meta:        map[string]any{"inhabitant_id": h.ID.String(), "kind": h.Kind.String()},
		})
	}
	s.updateStats()
	slog.Info("crew spawned", "count", count, "at", s.Station.GridPosition(crew[0].Pos), "total", len(s.Inhabitants))
	return nil
}
