// Package persistence provides SQLite-based session storage: the learner's
// state, the household clock, and the recent event feed survive restarts.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/dispatch"
	"github.com/talgya/simbot/internal/engine"
)

// Meta keys.
const (
	keyLearnerState = "learner_state"
	keySimMinutes   = "sim_minutes"
	keyFloorPlan    = "floor_plan"
	keyRoster       = "roster"
	keySavedAt      = "saved_at"
)

// DB wraps a SQLite connection for session persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
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
	schema := `
	CREATE TABLE IF NOT EXISTS session_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sim_minutes REAL NOT NULL,
		at TIMESTAMP NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_sim_minutes ON events(sim_minutes);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveMeta stores a key-value pair in session metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO session_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. Missing keys return sql.ErrNoRows.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM session_meta WHERE key = ?", key)
	return value, err
}

// SaveLearnerState serializes the learner's full state as a JSON blob.
func (db *DB) SaveLearnerState(s dispatch.State) error {
	blob, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal learner state: %w", err)
	}
	return db.SaveMeta(keyLearnerState, string(blob))
}

// LoadLearnerState restores the learner's state. A missing row or a corrupt
// blob both fall back to empty state, the latter with a warning.
func (db *DB) LoadLearnerState() (dispatch.State, bool) {
	blob, err := db.GetMeta(keyLearnerState)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("learner state unreadable, starting fresh", "error", err)
		}
		return dispatch.EmptyState(), false
	}

	var s dispatch.State
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		slog.Warn("learner state corrupt, starting fresh", "error", err)
		return dispatch.EmptyState(), false
	}
	s.Normalize()
	return s, true
}

// LoadClock restores the saved sim-minute timestamp.
func (db *DB) LoadClock() (float64, bool) {
	raw, err := db.GetMeta(keySimMinutes)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		slog.Warn("saved clock corrupt, starting fresh", "value", raw)
		return 0, false
	}
	return v, true
}

// SaveRoster serializes the robots' persistable meters.
func (db *DB) SaveRoster(snaps []agents.Snapshot) error {
	blob, err := json.Marshal(snaps)
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}
	return db.SaveMeta(keyRoster, string(blob))
}

// LoadRoster restores the saved robot meters. Missing or corrupt blobs mean
// the roster starts from spawn defaults.
func (db *DB) LoadRoster() ([]agents.Snapshot, bool) {
	blob, err := db.GetMeta(keyRoster)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("roster state unreadable, starting fresh", "error", err)
		}
		return nil, false
	}
	var snaps []agents.Snapshot
	if err := json.Unmarshal([]byte(blob), &snaps); err != nil {
		slog.Warn("roster state corrupt, starting fresh", "error", err)
		return nil, false
	}
	return snaps, len(snaps) > 0
}

// LoadFloorPlan restores the saved floor plan id.
func (db *DB) LoadFloorPlan() (string, bool) {
	id, err := db.GetMeta(keyFloorPlan)
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

// ReplaceEvents overwrites the stored event feed with the current ring.
func (db *DB) ReplaceEvents(events []engine.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}
	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (sim_minutes, at, category, description) VALUES (?, ?, ?, ?)",
			e.SimMinutes, e.At, e.Category, e.Description,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

type eventRow struct {
	SimMinutes  float64   `db:"sim_minutes"`
	At          time.Time `db:"at"`
	Category    string    `db:"category"`
	Description string    `db:"description"`
}

// RecentEvents returns the most recent N stored events, oldest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		"SELECT sim_minutes, at, category, description FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	events := make([]engine.Event, len(rows))
	for i, r := range rows {
		events[len(rows)-1-i] = engine.Event{
			SimMinutes:  r.SimMinutes,
			At:          r.At,
			Category:    r.Category,
			Description: r.Description,
		}
	}
	return events, nil
}

// SaveSession performs a full snapshot of the restartable state.
func (db *DB) SaveSession(sim *engine.Simulation) error {
	status := sim.Status()

	if err := db.SaveLearnerState(sim.LearnerState()); err != nil {
		return fmt.Errorf("save learner state: %w", err)
	}
	if err := db.SaveMeta(keySimMinutes, strconv.FormatFloat(status.SimMinutes, 'f', -1, 64)); err != nil {
		return fmt.Errorf("save clock: %w", err)
	}
	if err := db.SaveMeta(keyFloorPlan, status.FloorPlan); err != nil {
		return fmt.Errorf("save floor plan: %w", err)
	}
	if err := db.SaveRoster(sim.RosterState()); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	if err := db.SaveMeta(keySavedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save timestamp: %w", err)
	}
	if err := db.ReplaceEvents(sim.Events(0)); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	slog.Debug("session saved", "clock", status.Clock, "plan", status.FloorPlan)
	return nil
}
