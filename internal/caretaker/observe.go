// Package caretaker implements the autonomous station steward.
// It observes station state via the API, triages crew welfare,
// and acts via the admin intervention endpoint.
package caretaker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StationSnapshot holds all data collected during an observation cycle.
type StationSnapshot struct {
	Status StationStatus `json:"status"`
	Stats  StationStats  `json:"stats"`
	Crew   []CrewInfo    `json:"crew"`
}

// StationStatus mirrors GET /api/v1/status.
type StationStatus struct {
	Name    string  `json:"name"`
	Seed    int64   `json:"seed"`
	Tick    uint64  `json:"tick"`
	SimTime string  `json:"sim_time"`
	Speed   float64 `json:"speed"`
	Running bool    `json:"running"`
	Alive   int     `json:"alive"`
	Ghosts  int     `json:"ghosts"`
	Tiles   int     `json:"tiles"`
	Floors  int     `json:"floors"`
}

// StationStats mirrors GET /api/v1/stats.
type StationStats struct {
	Alive     int     `json:"alive"`
	Ghosts    int     `json:"ghosts"`
	AvgHealth float64 `json:"avg_health"`
	AvgHunger float64 `json:"avg_hunger"`
	AvgThirst float64 `json:"avg_thirst"`

	FoodOnStation  int `json:"food_on_station"`
	DrinkOnStation int `json:"drink_on_station"`
	FoodCarried    int `json:"food_carried"`
	DrinkCarried   int `json:"drink_carried"`
}

// CrewInfo mirrors items from GET /api/v1/inhabitants.
type CrewInfo struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Health   int    `json:"health"`
	Hunger   int    `json:"hunger"`
	Thirst   int    `json:"thirst"`
	Behavior string `json:"behavior"`
}

// Observer fetches station state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Observe fetches status, stats, and the crew list. The three reads are not
// atomic; a tick may land between them.
func (o *Observer) Observe(ctx context.Context) (*StationSnapshot, error) {
	snap := &StationSnapshot{}
	reads := []struct {
		name, path string
		target     any
	}{
		{"status", "/api/v1/status", &snap.Status},
		{"stats", "/api/v1/stats", &snap.Stats},
		{"inhabitants", "/api/v1/inhabitants", &snap.Crew},
	}
	for _, r := range reads {
		if err := o.get(ctx, r.path, r.target); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", r.name, err)
		}
	}
	return snap, nil
}

func (o *Observer) get(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
