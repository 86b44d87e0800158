package caretaker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// InterventionResult is the response from POST /api/v1/intervention.
type InterventionResult struct {
	Success bool   `json:"success"`
	Details string `json:"details"`
}

// APIError is a non-200 answer from an admin endpoint.
type APIError struct {
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("POST %s failed (%d): %s", e.Path, e.Status, strings.TrimSpace(e.Body))
}

// Actor sends admin requests to the station.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AdminKey:   adminKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Act posts an intervention.
func (a *Actor) Act(ctx context.Context, in *Intervention) (*InterventionResult, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal intervention: %w", err)
	}
	result := &InterventionResult{}
	if err := a.post(ctx, "/api/v1/intervention", payload, result); err != nil {
		return nil, err
	}
	if !result.Success {
		return result, fmt.Errorf("intervention %q rejected: %s", in.Type, result.Details)
	}
	return result, nil
}

// Snapshot asks the station to persist its state and returns the saved tick.
func (a *Actor) Snapshot(ctx context.Context) (uint64, error) {
	var ack struct {
		Tick uint64 `json:"tick"`
	}
	err := a.post(ctx, "/api/v1/snapshot", nil, &ack)
	return ack.Tick, err
}

func (a *Actor) post(ctx context.Context, path string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	// Admin responses are small; cap what we buffer from a misbehaving server.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Path: path, Status: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
