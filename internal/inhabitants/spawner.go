// Crew spawning: places new inhabitants on a shared random floor tile.
package inhabitants

import (
	"errors"

	"github.com/google/uuid"

	"github.com/talgya/habitat/internal/station"
)

// ErrNoSpawnPoint is returned when the station has no floor to stand on.
var ErrNoSpawnPoint = errors.New("station has no floor tile to spawn on")

// SpawnRand is the random source spawning draws from.
type SpawnRand interface {
	IntN(n int) int
	NewID() uuid.UUID
}

// SpawnCrew creates count living inhabitants of random roles, all standing on
// the same randomly chosen floor tile.
func SpawnCrew(st *station.Station, count int, rng SpawnRand) ([]*Inhabitant, error) {
	tile := st.RandomTile(station.FloorKind, rng)
	if tile == nil {
		return nil, ErrNoSpawnPoint
	}
	pos := st.WorldPosition(tile.Pos)

	crew := make([]*Inhabitant, 0, count)
	for i := 0; i < count; i++ {
		kind := Type(rng.IntN(LivingTypes))
		crew = append(crew, New(rng, pos, kind))
	}
	return crew, nil
}
