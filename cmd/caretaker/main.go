// Command caretaker runs the autonomous station steward.
// It observes station state, restocks supplies when the crew is running out,
// and periodically asks the station to save itself.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/habitat/internal/caretaker"
	"github.com/talgya/habitat/internal/logging"
)

func main() {
	logging.Setup()

	apiURL := envOrDefault("STATIONSIM_API_URL", "http://localhost:8080")
	adminKey := os.Getenv("STATIONSIM_ADMIN_KEY")
	interval := time.Duration(envIntOrDefault("CARETAKER_INTERVAL", 60)) * time.Second
	memoryPath := envOrDefault("CARETAKER_MEMORY", "caretaker_memory.json")

	if adminKey == "" {
		slog.Error("STATIONSIM_ADMIN_KEY is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Habitat caretaker starting", "api_url", apiURL, "interval", interval)
	keeper := caretaker.New(apiURL, adminKey, memoryPath)

	if err := waitForAPI(ctx, apiURL, 5*time.Minute); err != nil {
		slog.Error("stationsim API unavailable", "error", err)
		os.Exit(1)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		runCycle(ctx, keeper)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			slog.Info("shutting down")
			fmt.Println("Caretaker stopped.")
			return
		}
	}
}

func runCycle(ctx context.Context, keeper *caretaker.Caretaker) {
	rec, err := keeper.RunCycle(ctx)
	if err != nil {
		slog.Error("caretaker cycle failed", "action", rec.Action, "error", err)
		return
	}
	slog.Info("caretaker cycle complete", "action", rec.Action, "crisis", rec.CrisisLevel)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// answers 200, the timeout passes, or ctx is cancelled.
func waitForAPI(ctx context.Context, apiURL string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := 2 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/status", nil)
		if err != nil {
			return err
		}
		if resp, err := http.DefaultClient.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("stationsim API is ready")
				return nil
			}
		}

		slog.Info("stationsim not ready, retrying", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("not ready after %s", timeout)
			}
			return ctx.Err()
		}
		backoff = min(backoff*2, 30*time.Second)
	}
}
