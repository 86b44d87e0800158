// Package entropy provides the simulation's explicit random source.
// A Source is seeded once, threaded through every call that needs randomness,
// and can be serialized so a restored habitat replays the same future.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand/v2"

	"github.com/google/uuid"
)

// Source is a seeded, serializable random number generator.
// It is not safe for concurrent use; the simulation is single-threaded.
type Source struct {
	seed int64
	src  *mathrand.ChaCha8
	rng  *mathrand.Rand
}

// New creates a Source from seed. A zero seed draws a fresh one from crypto/rand.
func New(seed int64) *Source {
	if seed == 0 {
		seed = RandomSeed()
	}
	src := mathrand.NewChaCha8(seedBytes(seed))
	return &Source{seed: seed, src: src, rng: mathrand.New(src)}
}

// Restore rebuilds a Source from a seed and state produced by MarshalBinary.
func Restore(seed int64, state []byte) (*Source, error) {
	s := New(seed)
	if err := s.src.UnmarshalBinary(state); err != nil {
		return nil, fmt.Errorf("restore rng state: %w", err)
	}
	return s, nil
}

func seedBytes(seed int64) [32]byte {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:8], uint64(seed))
	return b
}

// Seed returns the seed this source was created with.
func (s *Source) Seed() int64 { return s.seed }

// Float64 returns a float in [0, 1).
func (s *Source) Float64() float64 { return s.rng.Float64() }

// IntN returns an int in [0, n). n must be positive.
func (s *Source) IntN(n int) int { return s.rng.IntN(n) }

// Int64 returns a non-negative int64.
func (s *Source) Int64() int64 { return s.rng.Int64() }

// Read fills p with random bytes drawn from the seeded stream.
func (s *Source) Read(p []byte) (int, error) { return s.src.Read(p) }

// NewID draws a version 4 UUID from the seeded stream, so identities are
// reproducible for a given seed.
func (s *Source) NewID() uuid.UUID {
	id, err := uuid.NewRandomFromReader(s)
	if err != nil {
		// ChaCha8.Read never fails.
		panic(err)
	}
	return id
}

// MarshalBinary captures the generator state.
func (s *Source) MarshalBinary() ([]byte, error) {
	return s.src.MarshalBinary()
}

// RandomSeed returns a non-zero seed from crypto/rand.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
