package engine

import (
	"fmt"

	"github.com/talgya/habitat/internal/entropy"
	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/inhabitants"
	"github.com/talgya/habitat/internal/station"
)

// Snapshot is the complete simulation state as plain data. Restoring it
// reproduces the same future, random draws included.
type Snapshot struct {
	Tick        uint64                   `json:"tick"`
	Seed        int64                    `json:"seed"`
	RNG         []byte                   `json:"rng"`
	Origin      grid.Point               `json:"origin"`
	Tiles       []station.Tile           `json:"tiles"`
	Inhabitants []inhabitants.Inhabitant `json:"inhabitants"`
	Events      []Event                  `json:"events"`
}

// Snapshot captures the current state.
func (s *Simulation) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.rng.MarshalBinary()
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode rng state: %w", err)
	}
	crew := make([]inhabitants.Inhabitant, 0, len(s.Inhabitants))
	for _, h := range s.Inhabitants {
		crew = append(crew, h.Clone())
	}
	return Snapshot{
		Tick:        s.LastTick,
		Seed:        s.rng.Seed(),
		RNG:         state,
		Origin:      s.Station.Origin,
		Tiles:       s.Station.Tiles(),
		Inhabitants: crew,
		Events:      append([]Event(nil), s.Events...),
	}, nil
}

// Restore rebuilds a simulation from a snapshot.
func Restore(snap Snapshot) (*Simulation, error) {
	rng, err := entropy.Restore(snap.Seed, snap.RNG)
	if err != nil {
		return nil, fmt.Errorf("restore rng: %w", err)
	}
	sim := newSimulation(station.FromTiles(snap.Origin, snap.Tiles), rng)
	sim.LastTick = snap.Tick
	for i := range snap.Inhabitants {
		h := snap.Inhabitants[i].Clone()
		sim.Inhabitants = append(sim.Inhabitants, &h)
	}
	sim.Events = append([]Event(nil), snap.Events...)
	sim.updateStats()
	return sim, nil
}
