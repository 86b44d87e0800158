package caretaker

import (
	"encoding/json"
	"log/slog"
	"os"
)

const maxRecords = 20

// CycleRecord captures what happened in a single caretaker cycle.
type CycleRecord struct {
	Tick        uint64 `json:"tick"`
	Action      string `json:"action"`
	CrisisLevel string `json:"crisis_level"`
	Alive       int    `json:"alive"`
	FoodTotal   int    `json:"food_total"`
	DrinkTotal  int    `json:"drink_total"`
	Rationale   string `json:"rationale,omitempty"`
	Failed      bool   `json:"failed,omitempty"`
}

// CycleMemory keeps the most recent caretaker cycles, oldest first.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`
}

// LoadMemory reads the memory file from disk. Returns empty memory if the
// file is missing or unreadable.
func LoadMemory(path string) *CycleMemory {
	data, err := os.ReadFile(path)
	if err != nil {
		return &CycleMemory{}
	}
	var mem CycleMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("caretaker memory corrupted, starting fresh", "path", path, "error", err)
		return &CycleMemory{}
	}
	return &mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save(path string) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal caretaker memory", "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Error("failed to write caretaker memory", "path", path, "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// CyclesSince returns how many cycles ago action last succeeded, 0 meaning
// the most recent cycle, or -1 if it is not in memory.
func (m *CycleMemory) CyclesSince(action string) int {
	for i := len(m.Records) - 1; i >= 0; i-- {
		if r := m.Records[i]; r.Action == action && !r.Failed {
			return len(m.Records) - 1 - i
		}
	}
	return -1
}
