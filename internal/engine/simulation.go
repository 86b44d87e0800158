// Simulation ties the station and its crew together and runs them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/habitat/internal/entropy"
	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/inhabitants"
	"github.com/talgya/habitat/internal/items"
	"github.com/talgya/habitat/internal/station"
)

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// Config holds everything needed to build a fresh simulation.
type Config struct {
	Seed     int64 // 0 = random
	Gen      station.GenConfig
	CrewSize int
}

// DefaultConfig returns the standard habitat: a 21x13 station with three crew.
func DefaultConfig() Config {
	return Config{Gen: station.DefaultGenConfig(), CrewSize: 3}
}

// Simulation holds the complete station state. Every exported method takes
// the lock, so the API can read between ticks.
type Simulation struct {
	mu sync.RWMutex

	Station     *station.Station
	Inhabitants []*inhabitants.Inhabitant
	Events      []Event // Recent events, trimmed to maxEvents
	LastTick    uint64  // Most recent tick processed
	Stats       SimStats

	rng *entropy.Source

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// Event is a notable occurrence on the station.
type Event struct {
	Tick        uint64         `json:"tick"`
	Description string         `json:"description"`
	Category    string         `json:"category"` // "inhabitant", "death", "population", "caretaker"
	Meta        map[string]any `json:"meta,omitempty"`
}

// SimStats tracks aggregate station statistics.
type SimStats struct {
	Alive     int     `json:"alive"`
	Ghosts    int     `json:"ghosts"`
	AvgHealth float64 `json:"avg_health"`
	AvgHunger float64 `json:"avg_hunger"`
	AvgThirst float64 `json:"avg_thirst"`

	FoodOnStation  int `json:"food_on_station"`
	DrinkOnStation int `json:"drink_on_station"`
	FoodCarried    int `json:"food_carried"`
	DrinkCarried   int `json:"drink_carried"`

	Tiles  int `json:"tiles"`
	Floors int `json:"floors"`
}

// NewSimulation generates a station from cfg and populates it.
func NewSimulation(cfg Config) (*Simulation, error) {
	rng := entropy.New(cfg.Seed)
	st := station.Generate(cfg.Gen, rng)
	sim := newSimulation(st, rng)

	if err := sim.Populate(cfg.CrewSize); err != nil {
		return nil, fmt.Errorf("populate station (seed %d): %w", rng.Seed(), err)
	}
	slog.Info("station generated",
		"seed", rng.Seed(),
		"tiles", humanize.Comma(int64(st.TileCount())),
		"floors", st.CountType(station.Floor),
		"crew", cfg.CrewSize,
	)
	return sim, nil
}

func newSimulation(st *station.Station, rng *entropy.Source) *Simulation {
	s := &Simulation{
		Station: st,
		rng:     rng,
		subs:    make(map[int]chan Event),
	}
	s.updateStats()
	return s
}

// Seed returns the seed the random source was created with.
func (s *Simulation) Seed() int64 { return s.rng.Seed() }

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastTick
}

// TickUpdate runs every tick: each inhabitant advances once, in slice order.
func (s *Simulation) TickUpdate(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick = tick
	for _, h := range s.Inhabitants {
		wasAlive := h.Alive()
		for _, desc := range h.Advance(TickDuration, s.Station, s.rng) {
			s.emit(Event{Tick: tick, Description: desc, Category: "inhabitant"})
		}
		if wasAlive && !h.Alive() {
			s.emit(Event{
				Tick:        tick,
				Description: fmt.Sprintf("%s is now a ghost", h.Label()),
				Category:    "death",
				Meta:        map[string]any{"inhabitant_id": h.ID.String()},
			})
			slog.Info("inhabitant died", "id", h.ID, "tick", tick, "time", SimTime(tick))
		}
	}
}

// TickSecond runs every simulated second: statistics.
func (s *Simulation) TickSecond(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateStats()
}

// TickMinute runs every simulated minute: status report, event trimming.
func (s *Simulation) TickMinute(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	eventCounts := make(map[string]int)
	for _, e := range s.Events {
		eventCounts[e.Category]++
	}

	slog.Info("station report",
		"tick", humanize.Comma(int64(tick)),
		"time", SimTime(tick),
		"alive", s.Stats.Alive,
		"ghosts", s.Stats.Ghosts,
		"avg_hunger", fmt.Sprintf("%.1f", s.Stats.AvgHunger),
		"avg_thirst", fmt.Sprintf("%.1f", s.Stats.AvgThirst),
		"food", s.Stats.FoodOnStation+s.Stats.FoodCarried,
		"drink", s.Stats.DrinkOnStation+s.Stats.DrinkCarried,
		"events_inhabitant", eventCounts["inhabitant"],
		"events_death", eventCounts["death"],
	)

	// Trim old events to prevent unbounded growth.
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

// EmitEvent records an event and fans it out to subscribers.
func (s *Simulation) EmitEvent(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit(e)
}

// emit requires s.mu held for writing.
func (s *Simulation) emit(e Event) {
	s.Events = append(s.Events, e)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
			// Slow subscriber; drop rather than stall the tick.
		}
	}
}

// Subscribe returns a channel receiving every future event.
func (s *Simulation) Subscribe() (int, <-chan Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 64)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe stops delivery to a subscriber and closes its channel.
func (s *Simulation) Unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// RecentEvents returns up to n of the newest events, oldest first.
func (s *Simulation) RecentEvents(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if n > 0 && len(s.Events) > n {
		start = len(s.Events) - n
	}
	return append([]Event(nil), s.Events[start:]...)
}

// CurrentStats returns the most recent statistics.
func (s *Simulation) CurrentStats() SimStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// Crew returns copies of every inhabitant.
func (s *Simulation) Crew() []inhabitants.Inhabitant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]inhabitants.Inhabitant, 0, len(s.Inhabitants))
	for _, h := range s.Inhabitants {
		out = append(out, h.Clone())
	}
	return out
}

// Inhabitant returns a copy of the inhabitant with the given id.
func (s *Simulation) Inhabitant(id uuid.UUID) (inhabitants.Inhabitant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.Inhabitants {
		if h.ID == id {
			return h.Clone(), true
		}
	}
	return inhabitants.Inhabitant{}, false
}

// StationView is the read-only layout served to observers.
type StationView struct {
	Origin   grid.Point     `json:"origin"`
	TileSize float64        `json:"tile_size"`
	Tiles    []station.Tile `json:"tiles"`
}

// StationLayout returns a copy of every tile.
func (s *Simulation) StationLayout() StationView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StationView{Origin: s.Station.Origin, TileSize: station.TileSize, Tiles: s.Station.Tiles()}
}

// PathBetween runs the pathfinder between two cells.
func (s *Simulation) PathBetween(from, to grid.Position) []grid.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Station.Path(from, to)
}

// Frame is one renderer update: where everyone is right now.
type Frame struct {
	Tick        uint64        `json:"tick"`
	Inhabitants []FrameEntity `json:"inhabitants"`
}

// FrameEntity is the per-inhabitant part of a Frame.
type FrameEntity struct {
	ID       uuid.UUID        `json:"id"`
	Kind     inhabitants.Type `json:"kind"`
	Pos      grid.Point       `json:"pos"`
	Dest     *grid.Point      `json:"dest,omitempty"`
	Behavior string           `json:"behavior"`
	Health   uint8            `json:"health"`
}

// CurrentFrame captures positions for a renderer.
func (s *Simulation) CurrentFrame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := Frame{Tick: s.LastTick, Inhabitants: make([]FrameEntity, 0, len(s.Inhabitants))}
	for _, h := range s.Inhabitants {
		behavior := "Idle"
		if b, ok := h.Current(); ok {
			behavior = b.String()
		}
		var dest *grid.Point
		if h.Dest != nil {
			d := *h.Dest
			dest = &d
		}
		f.Inhabitants = append(f.Inhabitants, FrameEntity{
			ID: h.ID, Kind: h.Kind, Pos: h.Pos, Dest: dest, Behavior: behavior, Health: h.Health,
		})
	}
	return f
}

// updateStats requires s.mu held.
func (s *Simulation) updateStats() {
	var st SimStats
	var health, hunger, thirst float64
	for _, h := range s.Inhabitants {
		if !h.Alive() {
			st.Ghosts++
			continue
		}
		st.Alive++
		health += float64(h.Health)
		hunger += float64(h.Hunger)
		thirst += float64(h.Thirst)
		st.FoodCarried += items.Count(h.Items, items.FoodKinds())
		st.DrinkCarried += items.Count(h.Items, items.DrinkKinds())
	}
	if st.Alive > 0 {
		n := float64(st.Alive)
		st.AvgHealth = health / n
		st.AvgHunger = hunger / n
		st.AvgThirst = thirst / n
	}
	st.FoodOnStation = s.Station.CountItems(items.FoodKinds())
	st.DrinkOnStation = s.Station.CountItems(items.DrinkKinds())
	st.Tiles = s.Station.TileCount()
	st.Floors = s.Station.CountType(station.Floor)
	s.Stats = st
}
