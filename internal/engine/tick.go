// Package engine provides the fixed-timestep simulation loop.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// TickSchedule defines when each layer runs relative to the tick counter.
const (
	TicksPerSecond = 60   // Fixed update cadence
	TicksPerMinute = 3600 // 60 seconds × 60
)

// TickDuration is the simulated time one tick advances, regardless of how
// long the tick took on the wall clock.
const TickDuration = time.Second / TicksPerSecond

// Engine drives the simulation forward.
type Engine struct {
	Interval time.Duration // Base tick interval (default 1/60 s)

	tick    atomic.Uint64 // Current tick counter (monotonic, never resets)
	speed   atomic.Uint64 // float64 bits. 1.0 = real-time, 0 = paused
	running atomic.Bool

	// Callbacks for each tick layer, populated during setup.
	OnTick   func(tick uint64) // Every tick
	OnSecond func(tick uint64) // Every 60 ticks
	OnMinute func(tick uint64) // Every 3600 ticks
}

// NewEngine creates an engine running at real-time speed.
func NewEngine() *Engine {
	e := &Engine{Interval: TickDuration}
	e.SetSpeed(1.0)
	return e
}

// Tick returns the last tick stepped.
func (e *Engine) Tick() uint64 { return e.tick.Load() }

// SetTick resumes counting from a restored tick.
func (e *Engine) SetTick(t uint64) { e.tick.Store(t) }

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 { return math.Float64frombits(e.speed.Load()) }

// SetSpeed changes the speed multiplier; 0 pauses.
func (e *Engine) SetSpeed(v float64) { e.speed.Store(math.Float64bits(v)) }

// Running reports whether Run is looping.
func (e *Engine) Running() bool { return e.running.Load() }

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("simulation engine started", "tick", e.Tick(), "speed", e.Speed())

	for e.running.Load() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused: sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick())
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Step advances the simulation by one tick.
func (e *Engine) Step() {
	t := e.tick.Add(1)

	if e.OnTick != nil {
		e.OnTick(t)
	}

	// Every simulated second: stats refresh.
	if t%TicksPerSecond == 0 && e.OnSecond != nil {
		e.OnSecond(t)
	}

	// Every simulated minute: status report, event trimming.
	if t%TicksPerMinute == 0 && e.OnMinute != nil {
		e.OnMinute(t)
	}
}

// SimTime returns a human-readable simulation clock from a tick number.
func SimTime(tick uint64) string {
	totalSeconds := tick / TicksPerSecond
	seconds := totalSeconds % 60
	minutes := (totalSeconds / 60) % 60
	totalHours := totalSeconds / 3600
	hours := totalHours % 24
	days := totalHours/24 + 1

	return fmt.Sprintf("Day %d, %02d:%02d:%02d", days, hours, minutes, seconds)
}
