package caretaker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crew(kind string, health, hunger, thirst int) CrewInfo {
	return CrewInfo{ID: kind + "-" + string(rune('a'+hunger%26)), Kind: kind, Health: health, Hunger: hunger, Thirst: thirst}
}

func TestTriage(t *testing.T) {
	tests := []struct {
		name string
		snap StationSnapshot
		want string
	}{
		{
			name: "fed crew",
			snap: StationSnapshot{
				Stats: StationStats{Alive: 2, FoodOnStation: 5, DrinkOnStation: 5},
				Crew:  []CrewInfo{crew("Pilot", 100, 10, 10), crew("Cook", 100, 20, 20)},
			},
			want: Healthy,
		},
		{
			name: "hungry with no food",
			snap: StationSnapshot{
				Stats: StationStats{Alive: 1, DrinkOnStation: 5},
				Crew:  []CrewInfo{crew("Pilot", 100, 60, 10)},
			},
			want: Critical,
		},
		{
			name: "no food but nobody hungry yet",
			snap: StationSnapshot{
				Stats: StationStats{Alive: 1, DrinkCarried: 1},
				Crew:  []CrewInfo{crew("Pilot", 100, 10, 10)},
			},
			want: Warning,
		},
		{
			name: "only ghosts",
			snap: StationSnapshot{
				Stats: StationStats{Ghosts: 2},
				Crew:  []CrewInfo{crew("Ghost", 0, 0, 0), crew("Ghost", 0, 1, 0)},
			},
			want: Critical,
		},
		{
			name: "empty station",
			snap: StationSnapshot{},
			want: Healthy,
		},
		{
			name: "dying crew with supplies",
			snap: StationSnapshot{
				Stats: StationStats{Alive: 1, FoodOnStation: 3, DrinkOnStation: 3},
				Crew:  []CrewInfo{crew("Pilot", 10, 10, 10)},
			},
			want: Watch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Triage(&tt.snap).CrisisLevel)
		})
	}
}

func TestTriageCountsNeedyOnce(t *testing.T) {
	snap := &StationSnapshot{
		Stats: StationStats{Alive: 2, FoodOnStation: 4, DrinkOnStation: 4},
		Crew: []CrewInfo{
			{ID: "a", Kind: "Pilot", Health: 100, Hunger: 80, Thirst: 80},
			{ID: "b", Kind: "Cook", Health: 100, Hunger: 0, Thirst: 70},
			{ID: "c", Kind: "Ghost", Hunger: 90, Thirst: 90},
		},
	}
	h := Triage(snap)
	assert.Equal(t, 1, h.Hungry)
	assert.Equal(t, 2, h.Thirsty)
	assert.Equal(t, 2, h.Needy)
}

func TestDecide(t *testing.T) {
	p := DefaultPolicy()

	d := Decide(p, &StationHealth{CrisisLevel: Critical, Alive: 2}, &CycleMemory{})
	assert.Equal(t, ActionRestock, d.Action)
	require.NotNil(t, d.Intervention)
	assert.Equal(t, "restock", d.Intervention.Type)

	d = Decide(p, &StationHealth{CrisisLevel: Critical, Ghosts: 3}, &CycleMemory{})
	assert.Equal(t, ActionRecruit, d.Action)
	assert.Equal(t, p.MaxRecruits, d.Intervention.Count)

	// A warning respects the restock cooldown.
	mem := &CycleMemory{}
	mem.Record(CycleRecord{Action: ActionRestock})
	d = Decide(p, &StationHealth{CrisisLevel: Warning, Alive: 2}, mem)
	assert.Equal(t, ActionNone, d.Action)
	for i := 0; i < p.RestockCooldown; i++ {
		mem.Record(CycleRecord{Action: ActionNone})
	}
	d = Decide(p, &StationHealth{CrisisLevel: Warning, Alive: 2}, mem)
	assert.Equal(t, ActionRestock, d.Action)

	// A critical shortage ignores the cooldown.
	mem.Record(CycleRecord{Action: ActionRestock})
	d = Decide(p, &StationHealth{CrisisLevel: Critical, Alive: 2}, mem)
	assert.Equal(t, ActionRestock, d.Action)

	// Healthy stations get periodic snapshots.
	d = Decide(p, &StationHealth{CrisisLevel: Healthy, Alive: 2}, &CycleMemory{})
	assert.Equal(t, ActionSnapshot, d.Action)
	mem = &CycleMemory{}
	mem.Record(CycleRecord{Action: ActionSnapshot})
	d = Decide(p, &StationHealth{CrisisLevel: Healthy, Alive: 2}, mem)
	assert.Equal(t, ActionNone, d.Action)
}

func TestMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	mem := LoadMemory(path)
	assert.Empty(t, mem.Records)
	assert.Equal(t, -1, mem.CyclesSince(ActionRestock))

	for i := 0; i < maxRecords+5; i++ {
		mem.Record(CycleRecord{Tick: uint64(i), Action: ActionNone})
	}
	mem.Record(CycleRecord{Tick: 100, Action: ActionRestock, Failed: true})
	assert.Len(t, mem.Records, maxRecords)
	assert.Equal(t, -1, mem.CyclesSince(ActionRestock))
	assert.Equal(t, 1, mem.CyclesSince(ActionNone))

	mem.Save(path)
	loaded := LoadMemory(path)
	assert.Equal(t, mem.Records, loaded.Records)
}

// fakeStation serves the read endpoints from fixed data and records POSTs.
type fakeStation struct {
	mu    sync.Mutex
	stats StationStats
	crew  []CrewInfo
	posts []string
	auth  []string
}

func (f *fakeStation) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, StationStatus{Name: "Habitat", Tick: 3600, Alive: f.stats.Alive, Ghosts: f.stats.Ghosts})
	})
	mux.HandleFunc("/api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.stats)
	})
	mux.HandleFunc("/api/v1/inhabitants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.crew)
	})
	mux.HandleFunc("/api/v1/intervention", func(w http.ResponseWriter, r *http.Request) {
		var in Intervention
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		f.posts = append(f.posts, in.Type)
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		f.mu.Unlock()
		writeJSON(w, InterventionResult{Success: true, Details: "ok"})
	})
	mux.HandleFunc("/api/v1/snapshot", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.posts = append(f.posts, "snapshot")
		f.mu.Unlock()
		http.Error(w, "database not available", http.StatusServiceUnavailable)
	})
	return mux
}

func TestRunCycleRestocks(t *testing.T) {
	fake := &fakeStation{
		stats: StationStats{Alive: 1, DrinkOnStation: 2},
		crew:  []CrewInfo{{ID: "a", Kind: "Engineer", Health: 80, Hunger: 75, Thirst: 10}},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "memory.json")
	c := New(srv.URL, "secret", path)
	rec, err := c.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ActionRestock, rec.Action)
	assert.Equal(t, Critical, rec.CrisisLevel)
	assert.EqualValues(t, 3600, rec.Tick)
	assert.Equal(t, []string{"restock"}, fake.posts)
	assert.Equal(t, []string{"Bearer secret"}, fake.auth)

	// The record survives a restart.
	assert.Equal(t, 0, LoadMemory(path).CyclesSince(ActionRestock))
}

func TestRunCycleFailedSnapshot(t *testing.T) {
	fake := &fakeStation{
		stats: StationStats{Alive: 1, FoodOnStation: 5, DrinkOnStation: 5},
		crew:  []CrewInfo{{ID: "a", Kind: "Pilot", Health: 100}},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := New(srv.URL, "secret", "")
	rec, err := c.RunCycle(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, ActionSnapshot, rec.Action)
	assert.True(t, rec.Failed)

	// A failed snapshot does not count toward the interval.
	assert.Equal(t, -1, c.Memory.CyclesSince(ActionSnapshot))
}

func TestRunCycleObserveError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := New(srv.URL, "secret", "")
	_, err := c.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch status")
	assert.Empty(t, c.Memory.Records)
}
