// Command stationsim runs the habitat station simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/habitat/internal/api"
	"github.com/talgya/habitat/internal/engine"
	"github.com/talgya/habitat/internal/logging"
	"github.com/talgya/habitat/internal/persistence"
	"github.com/talgya/habitat/internal/station"
)

func main() {
	var (
		seed     = flag.Int64("seed", envInt64OrDefault("STATIONSIM_SEED", 0), "station seed (0 = random)")
		dbDriver = flag.String("db-driver", envOrDefault("STATIONSIM_DB_DRIVER", persistence.DriverSQLite), "snapshot database driver (sqlite or postgres)")
		dsn      = flag.String("db", envOrDefault("STATIONSIM_DB", "data/habitat.db"), "sqlite path or postgres connection string; empty disables persistence")
		port     = flag.Int("port", int(envInt64OrDefault("STATIONSIM_PORT", 8080)), "HTTP API port")
		crew     = flag.Int("crew", 3, "crew size for a fresh station")
		small    = flag.Bool("small", false, "generate the small test station")
		noise    = flag.Float64("noise", 0, "opensimplex noise scale for floor seeding (0 = uniform)")
		speed    = flag.Float64("speed", 1, "speed multiplier (0 = paused)")
		fresh    = flag.Bool("fresh", false, "ignore any saved snapshot")
	)
	flag.Parse()

	logging.Setup()
	slog.Info("Habitat station simulation")

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if *dsn != "" {
		if *dbDriver == persistence.DriverSQLite {
			if err := os.MkdirAll(filepath.Dir(*dsn), 0755); err != nil {
				slog.Error("failed to create data directory", "error", err)
				os.Exit(1)
			}
		}
		var err error
		db, err = persistence.Open(*dbDriver, *dsn)
		if err != nil {
			slog.Error("failed to open database", "driver", *dbDriver, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "driver", *dbDriver)
	} else {
		slog.Warn("no database configured, state will not be saved")
	}

	// ── Load or Generate Station ──────────────────────────────────────
	sim, err := loadOrGenerate(db, *fresh, buildConfig(*seed, *crew, *small, *noise))
	if err != nil {
		slog.Error("failed to prepare station", "error", err)
		os.Exit(1)
	}

	startTick := sim.CurrentTick()
	stats := sim.CurrentStats()
	slog.Info("station ready",
		"seed", sim.Seed(),
		"tiles", humanize.Comma(int64(stats.Tiles)),
		"floors", humanize.Comma(int64(stats.Floors)),
		"alive", stats.Alive,
		"ghosts", stats.Ghosts,
	)

	// Save on fresh generation only (loaded stations are already saved).
	if db != nil && startTick == 0 {
		if err := db.SaveState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.SetTick(startTick)
	eng.SetSpeed(*speed)

	eng.OnTick = sim.TickUpdate
	eng.OnSecond = sim.TickSecond
	started := time.Now()
	eng.OnMinute = func(tick uint64) {
		sim.TickMinute(tick)
		if db == nil {
			return
		}
		// Auto-save every sim-minute.
		if err := db.SaveState(sim); err != nil {
			slog.Error("auto-save failed", "error", err)
		}
		slog.Debug("auto-save", "tick", humanize.Comma(int64(tick)), "uptime", humanize.RelTime(started, time.Now(), "", ""))
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("STATIONSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("STATIONSIM_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Port:     *port,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nHabitat is alive: %d crew aboard a station of %s tiles.\n", stats.Alive, humanize.Comma(int64(stats.Tiles)))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", *port)
	if startTick > 0 {
		fmt.Printf("Resuming from tick %s (%s)\n", humanize.Comma(int64(startTick)), engine.SimTime(startTick))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	if db == nil {
		fmt.Println("Simulation stopped.")
		return
	}

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Simulation stopped. Station state saved.")
}

func buildConfig(seed int64, crew int, small bool, noise float64) engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Seed = seed
	cfg.CrewSize = crew
	if small {
		cfg.Gen = station.SmallTestConfig()
	}
	cfg.Gen.NoiseScale = noise
	return cfg
}

// loadOrGenerate restores the saved station when there is one and generates
// a new one otherwise.
func loadOrGenerate(db *persistence.DB, fresh bool, cfg engine.Config) (*engine.Simulation, error) {
	if db != nil && !fresh {
		ok, err := db.HasSnapshot()
		if err != nil {
			return nil, fmt.Errorf("check snapshot: %w", err)
		}
		if ok {
			slog.Info("found saved station state, loading...")
			snap, err := db.LoadSnapshot()
			if err != nil {
				return nil, fmt.Errorf("load snapshot: %w", err)
			}
			sim, err := engine.Restore(snap)
			if err != nil {
				return nil, fmt.Errorf("restore snapshot: %w", err)
			}
			slog.Info("station state restored",
				"tick", humanize.Comma(int64(snap.Tick)),
				"sim_time", engine.SimTime(snap.Tick),
				"inhabitants", len(snap.Inhabitants),
			)
			return sim, nil
		}
	}

	slog.Info("no saved state found, generating new station...")
	return engine.NewSimulation(cfg)
}

func envOrDefault(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func envInt64OrDefault(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}
