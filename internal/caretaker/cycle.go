package caretaker

import (
	"context"
	"fmt"
	"log/slog"
)

// Caretaker ties one observe → triage → decide → act cycle together.
type Caretaker struct {
	Observer   *Observer
	Actor      *Actor
	Policy     Policy
	Memory     *CycleMemory
	MemoryPath string // Empty = memory is not persisted
}

// New creates a Caretaker against the given API with the default policy.
func New(apiURL, adminKey, memoryPath string) *Caretaker {
	mem := &CycleMemory{}
	if memoryPath != "" {
		mem = LoadMemory(memoryPath)
	}
	return &Caretaker{
		Observer:   NewObserver(apiURL),
		Actor:      NewActor(apiURL, adminKey),
		Policy:     DefaultPolicy(),
		Memory:     mem,
		MemoryPath: memoryPath,
	}
}

// RunCycle executes one cycle and records it. An observation failure records
// nothing; a failed action is recorded as failed so the cooldowns ignore it.
func (c *Caretaker) RunCycle(ctx context.Context) (CycleRecord, error) {
	snap, err := c.Observer.Observe(ctx)
	if err != nil {
		return CycleRecord{}, fmt.Errorf("observe: %w", err)
	}

	health := Triage(snap)
	slog.Info("observation complete",
		"tick", snap.Status.Tick,
		"alive", health.Alive,
		"ghosts", health.Ghosts,
		"food", health.FoodTotal,
		"drink", health.DrinkTotal,
		"needy", health.Needy,
		"crisis", health.CrisisLevel,
	)

	decision := Decide(c.Policy, health, c.Memory)
	slog.Info("decision made", "action", decision.Action, "rationale", decision.Rationale)

	rec := CycleRecord{
		Tick:        snap.Status.Tick,
		Action:      decision.Action,
		CrisisLevel: health.CrisisLevel,
		Alive:       health.Alive,
		FoodTotal:   health.FoodTotal,
		DrinkTotal:  health.DrinkTotal,
		Rationale:   decision.Rationale,
	}

	err = c.act(ctx, decision)
	if err != nil {
		rec.Failed = true
	}
	c.Memory.Record(rec)
	if c.MemoryPath != "" {
		c.Memory.Save(c.MemoryPath)
	}
	return rec, err
}

func (c *Caretaker) act(ctx context.Context, d *Decision) error {
	switch d.Action {
	case ActionNone:
		return nil
	case ActionSnapshot:
		tick, err := c.Actor.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		slog.Info("snapshot saved", "tick", tick)
		return nil
	}

	if d.Intervention == nil {
		return fmt.Errorf("action %q has no intervention payload", d.Action)
	}
	result, err := c.Actor.Act(ctx, d.Intervention)
	if err != nil {
		return fmt.Errorf("%s: %w", d.Action, err)
	}
	slog.Info("intervention executed", "type", d.Intervention.Type, "success", result.Success, "details", result.Details)
	return nil
}
