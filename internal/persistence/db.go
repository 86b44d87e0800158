// Package persistence provides SQL storage for station snapshots.
// SQLite is the default; PostgreSQL is available for shared deployments.
package persistence

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite"

	"github.com/talgya/habitat/internal/engine"
	"github.com/talgya/habitat/internal/grid"
	"github.com/talgya/habitat/internal/inhabitants"
	"github.com/talgya/habitat/internal/items"
	"github.com/talgya/habitat/internal/station"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNoSnapshot is returned when loading from a database that was never saved to.
var ErrNoSnapshot = errors.New("no snapshot saved")

// DB wraps a SQL connection for station state persistence.
type DB struct {
	conn   *sqlx.DB
	driver string
}

// Open opens or creates a database. For sqlite, dsn is a file path; for
// postgres it is a connection string.
func Open(driver, dsn string) (*DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)
	switch driver {
	case DriverSQLite:
		conn, err = sqlx.Open("sqlite", dsn+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
		if err == nil {
			// One writer at a time; avoids SQLITE_BUSY between pooled connections.
			conn.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		conn, err = sqlx.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db := &DB{conn: conn, driver: driver}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.driver == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tiles (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			type INTEGER NOT NULL,
			dir INTEGER NOT NULL,
			items_json TEXT NOT NULL,
			PRIMARY KEY (x, y)
		)`,
		`CREATE TABLE IF NOT EXISTS inhabitants (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			kind INTEGER NOT NULL,
			health INTEGER NOT NULL,
			hunger INTEGER NOT NULL,
			thirst INTEGER NOT NULL,
			pos_x DOUBLE PRECISION NOT NULL,
			pos_y DOUBLE PRECISION NOT NULL,
			state_json TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id ` + serial + `,
			tick BIGINT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			meta_json TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS station_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick)`,
		`CREATE INDEX IF NOT EXISTS idx_inhabitants_kind ON inhabitants(kind)`,
	}
	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot writes the whole snapshot in one transaction (full replace).
func (db *DB) SaveSnapshot(snap engine.Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := db.saveTiles(tx, snap.Tiles); err != nil {
		return fmt.Errorf("save tiles: %w", err)
	}
	if err := db.saveInhabitants(tx, snap.Inhabitants); err != nil {
		return fmt.Errorf("save inhabitants: %w", err)
	}
	if err := db.saveEvents(tx, snap.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	meta := map[string]string{
		"tick":     strconv.FormatUint(snap.Tick, 10),
		"seed":     strconv.FormatInt(snap.Seed, 10),
		"rng":      base64.StdEncoding.EncodeToString(snap.RNG),
		"origin_x": strconv.FormatFloat(snap.Origin.X, 'g', -1, 64),
		"origin_y": strconv.FormatFloat(snap.Origin.Y, 'g', -1, 64),
		"saved_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if err := db.saveMeta(tx, k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	return tx.Commit()
}

func (db *DB) saveTiles(tx *sqlx.Tx, tiles []station.Tile) error {
	if _, err := tx.Exec("DELETE FROM tiles"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(tx.Rebind(`INSERT INTO tiles (x, y, type, dir, items_json) VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tiles {
		itemsJSON, err := json.Marshal(t.Items)
		if err != nil {
			return fmt.Errorf("encode items at %s: %w", t.Pos, err)
		}
		if _, err := stmt.Exec(int64(t.Pos.X), int64(t.Pos.Y), int64(t.Kind.Type), int64(t.Kind.Dir), string(itemsJSON)); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) saveInhabitants(tx *sqlx.Tx, crew []inhabitants.Inhabitant) error {
	if _, err := tx.Exec("DELETE FROM inhabitants"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(tx.Rebind(`INSERT INTO inhabitants
		(seq, id, kind, health, hunger, thirst, pos_x, pos_y, state_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, h := range crew {
		state, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("encode inhabitant %s: %w", h.ID, err)
		}
		if _, err := stmt.Exec(int64(i), h.ID.String(), int64(h.Kind), int64(h.Health), int64(h.Hunger), int64(h.Thirst), h.Pos.X, h.Pos.Y, string(state)); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) saveEvents(tx *sqlx.Tx, events []engine.Event) error {
	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(tx.Rebind(`INSERT INTO events (tick, description, category, meta_json) VALUES (?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		var meta sql.NullString
		if len(e.Meta) > 0 {
			b, err := json.Marshal(e.Meta)
			if err != nil {
				return fmt.Errorf("encode event meta: %w", err)
			}
			meta = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.Exec(int64(e.Tick), e.Description, e.Category, meta); err != nil {
			return err
		}
	}
	return nil
}

// SaveMeta stores a key-value pair in station metadata.
func (db *DB) SaveMeta(key, value string) error {
	return db.saveMeta(db.conn, key, value)
}

func (db *DB) saveMeta(ex sqlx.Execer, key, value string) error {
	_, err := ex.Exec(db.conn.Rebind(
		"INSERT INTO station_meta (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value"),
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, db.conn.Rebind("SELECT value FROM station_meta WHERE key = ?"), key)
	return value, err
}

// HasSnapshot reports whether a snapshot has been saved.
func (db *DB) HasSnapshot() (bool, error) {
	_, err := db.GetMeta("tick")
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

type tileRow struct {
	X         int64  `db:"x"`
	Y         int64  `db:"y"`
	Type      int64  `db:"type"`
	Dir       int64  `db:"dir"`
	ItemsJSON string `db:"items_json"`
}

type eventRow struct {
	Tick        int64          `db:"tick"`
	Description string         `db:"description"`
	Category    string         `db:"category"`
	MetaJSON    sql.NullString `db:"meta_json"`
}

// LoadSnapshot reads back the most recently saved snapshot.
func (db *DB) LoadSnapshot() (engine.Snapshot, error) {
	var snap engine.Snapshot

	meta, err := db.loadMeta()
	if err != nil {
		return snap, err
	}
	if snap.Tick, err = strconv.ParseUint(meta["tick"], 10, 64); err != nil {
		return snap, fmt.Errorf("parse tick: %w", err)
	}
	if snap.Seed, err = strconv.ParseInt(meta["seed"], 10, 64); err != nil {
		return snap, fmt.Errorf("parse seed: %w", err)
	}
	if snap.RNG, err = base64.StdEncoding.DecodeString(meta["rng"]); err != nil {
		return snap, fmt.Errorf("decode rng: %w", err)
	}
	ox, errX := strconv.ParseFloat(meta["origin_x"], 64)
	oy, errY := strconv.ParseFloat(meta["origin_y"], 64)
	if err := errors.Join(errX, errY); err != nil {
		return snap, fmt.Errorf("parse origin: %w", err)
	}
	snap.Origin = grid.Pt(ox, oy)

	var tiles []tileRow
	if err := db.conn.Select(&tiles, "SELECT x, y, type, dir, items_json FROM tiles ORDER BY x, y"); err != nil {
		return snap, fmt.Errorf("load tiles: %w", err)
	}
	snap.Tiles = make([]station.Tile, 0, len(tiles))
	for _, r := range tiles {
		t := station.Tile{
			Pos:  grid.Pos(int32(r.X), int32(r.Y)),
			Kind: station.TileKind{Type: station.TileType(r.Type), Dir: station.WallDirection(r.Dir)},
		}
		if err := json.Unmarshal([]byte(r.ItemsJSON), &t.Items); err != nil {
			return snap, fmt.Errorf("decode items at %s: %w", t.Pos, err)
		}
		t.Items = items.Clone(t.Items)
		snap.Tiles = append(snap.Tiles, t)
	}

	var states []string
	if err := db.conn.Select(&states, "SELECT state_json FROM inhabitants ORDER BY seq"); err != nil {
		return snap, fmt.Errorf("load inhabitants: %w", err)
	}
	snap.Inhabitants = make([]inhabitants.Inhabitant, 0, len(states))
	for _, s := range states {
		var h inhabitants.Inhabitant
		if err := json.Unmarshal([]byte(s), &h); err != nil {
			return snap, fmt.Errorf("decode inhabitant: %w", err)
		}
		snap.Inhabitants = append(snap.Inhabitants, h)
	}

	var rows []eventRow
	if err := db.conn.Select(&rows, "SELECT tick, description, category, meta_json FROM events ORDER BY id"); err != nil {
		return snap, fmt.Errorf("load events: %w", err)
	}
	snap.Events, err = decodeEvents(rows)
	return snap, err
}

func (db *DB) loadMeta() (map[string]string, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.Select(&rows, "SELECT key, value FROM station_meta"); err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	meta := make(map[string]string, len(rows))
	for _, r := range rows {
		meta[r.Key] = r.Value
	}
	if _, ok := meta["tick"]; !ok {
		return nil, ErrNoSnapshot
	}
	return meta, nil
}

// SaveState snapshots a running simulation and writes it.
func (db *DB) SaveState(sim *engine.Simulation) error {
	snap, err := sim.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	slog.Info("saving station state", "tick", snap.Tick, "tiles", len(snap.Tiles), "inhabitants", len(snap.Inhabitants))

	if err := db.SaveSnapshot(snap); err != nil {
		return err
	}

	slog.Info("station state saved")
	return nil
}

// RecentEvents returns the most recent N saved events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		db.conn.Rebind("SELECT tick, description, category, meta_json FROM events ORDER BY id DESC LIMIT ?"),
		int64(limit),
	)
	if err != nil {
		return nil, err
	}
	return decodeEvents(rows)
}

func decodeEvents(rows []eventRow) ([]engine.Event, error) {
	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		e := engine.Event{Tick: uint64(r.Tick), Description: r.Description, Category: r.Category}
		if r.MetaJSON.Valid {
			if err := json.Unmarshal([]byte(r.MetaJSON.String), &e.Meta); err != nil {
				return nil, fmt.Errorf("decode event meta: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, nil
}
