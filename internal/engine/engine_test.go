package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/habitat/internal/station"
)

func testConfig(seed int64) Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	return cfg
}

func newTestSim(t *testing.T, seed int64) *Simulation {
	t.Helper()
	sim, err := NewSimulation(testConfig(seed))
	require.NoError(t, err)
	return sim
}

func run(sim *Simulation, from, ticks uint64) {
	for tick := from + 1; tick <= from+ticks; tick++ {
		sim.TickUpdate(tick)
		if tick%TicksPerSecond == 0 {
			sim.TickSecond(tick)
		}
	}
}

func TestStepCallbacks(t *testing.T) {
	e := NewEngine()
	var ticks, seconds, minutes int
	e.OnTick = func(uint64) { ticks++ }
	e.OnSecond = func(uint64) { seconds++ }
	e.OnMinute = func(uint64) { minutes++ }

	for i := 0; i < TicksPerMinute; i++ {
		e.Step()
	}
	assert.Equal(t, TicksPerMinute, ticks)
	assert.Equal(t, 60, seconds)
	assert.Equal(t, 1, minutes)
	assert.EqualValues(t, TicksPerMinute, e.Tick())
}

func TestRunAndStop(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	var ticks atomic.Int64
	e.OnTick = func(uint64) { ticks.Add(1) }

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	assert.Eventually(t, func() bool { return ticks.Load() >= 5 }, 2*time.Second, time.Millisecond)
	assert.True(t, e.Running())
	e.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestSpeed(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, 1.0, e.Speed())
	e.SetSpeed(4)
	assert.Equal(t, 4.0, e.Speed())
}

func TestSimTime(t *testing.T) {
	assert.Equal(t, "Day 1, 00:00:00", SimTime(0))
	assert.Equal(t, "Day 1, 00:01:01", SimTime(61*TicksPerSecond))
	assert.Equal(t, "Day 2, 01:00:00", SimTime(25*60*TicksPerMinute))
}

func TestNewSimulationPopulates(t *testing.T) {
	sim := newTestSim(t, 42)
	crew := sim.Crew()
	require.Len(t, crew, 3)
	for _, h := range crew {
		assert.Equal(t, crew[0].Pos, h.Pos, "crew start together")
		tile := sim.Station.TileAtWorldPoint(h.Pos)
		require.NotNil(t, tile)
		assert.Equal(t, station.Floor, tile.Kind.Type)
	}

	stats := sim.CurrentStats()
	assert.Equal(t, 3, stats.Alive)
	assert.Equal(t, 5, stats.FoodOnStation)
	assert.Equal(t, 3, stats.FoodCarried)
	assert.Len(t, sim.RecentEvents(0), 3)
}

func TestNewSimulationWithoutFloor(t *testing.T) {
	cfg := testConfig(1)
	cfg.Gen.FloorChance = 0
	_, err := NewSimulation(cfg)
	assert.ErrorIs(t, err, ErrNoSpawnPoint)
}

func TestSameSeedSameFuture(t *testing.T) {
	a := newTestSim(t, 7)
	b := newTestSim(t, 7)
	run(a, 0, 3000)
	run(b, 0, 3000)

	sa, err := a.Snapshot()
	require.NoError(t, err)
	sb, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
}

func TestRestoreReproducesFuture(t *testing.T) {
	original := newTestSim(t, 11)
	run(original, 0, 1500)

	snap, err := original.Snapshot()
	require.NoError(t, err)
	restored, err := Restore(snap)
	require.NoError(t, err)
	assert.Equal(t, original.CurrentStats(), restored.CurrentStats())

	run(original, 1500, 4000)
	run(restored, 1500, 4000)

	want, err := original.Snapshot()
	require.NoError(t, err)
	got, err := restored.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.EqualValues(t, 5500, got.Tick)
}

func TestRestoreRejectsBadRNG(t *testing.T) {
	snap, err := newTestSim(t, 3).Snapshot()
	require.NoError(t, err)
	snap.RNG = []byte("nope")
	_, err = Restore(snap)
	assert.Error(t, err)
}

func TestRestockStation(t *testing.T) {
	sim := newTestSim(t, 5)
	before := sim.CurrentStats()

	desc, err := sim.RestockStation()
	require.NoError(t, err)
	assert.Contains(t, desc, "supply fridge")

	after := sim.CurrentStats()
	assert.Equal(t, before.FoodOnStation+5, after.FoodOnStation)
	assert.Equal(t, before.DrinkOnStation+5, after.DrinkOnStation)
	events := sim.RecentEvents(1)
	require.Len(t, events, 1)
	assert.Equal(t, "caretaker", events[0].Category)
}

func TestRecruitCrew(t *testing.T) {
	sim := newTestSim(t, 6)
	_, err := sim.RecruitCrew(0)
	assert.Error(t, err)

	_, err = sim.RecruitCrew(2)
	require.NoError(t, err)
	assert.Len(t, sim.Crew(), 5)
}

func TestSubscribeReceivesEvents(t *testing.T) {
	sim := newTestSim(t, 8)
	id, ch := sim.Subscribe()

	sim.EmitEvent(Event{Tick: 1, Description: "hello", Category: "test"})
	select {
	case e := <-ch:
		assert.Equal(t, "hello", e.Description)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	sim.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
	sim.EmitEvent(Event{Tick: 2, Description: "after", Category: "test"})
}

func TestEventsAreTrimmed(t *testing.T) {
	sim := newTestSim(t, 9)
	for i := 0; i < maxEvents+50; i++ {
		sim.EmitEvent(Event{Category: "test"})
	}
	sim.TickMinute(TicksPerMinute)
	assert.Len(t, sim.RecentEvents(0), maxEvents)
}

func TestCurrentFrame(t *testing.T) {
	sim := newTestSim(t, 10)
	run(sim, 0, 200)
	f := sim.CurrentFrame()
	assert.EqualValues(t, 200, f.Tick)
	require.Len(t, f.Inhabitants, 3)
	assert.NotEmpty(t, f.Inhabitants[0].Behavior)
}
