// Package journal provides the SQLite-backed run journal: applied events
// with their narration, LLM request/response traces, and world snapshots
// for session resume. Journal writes are best-effort; a failure is
// logged, never propagated into the engine path.
package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hamlet/internal/world"
)

// DB wraps a SQLite connection for run journaling.
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
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		actor_id TEXT NOT NULL DEFAULT '',
		target_ids TEXT NOT NULL DEFAULT '[]',
		payload TEXT NOT NULL DEFAULT '{}',
		narration TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS llm_traces (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		request TEXT NOT NULL,
		response TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		tick INTEGER NOT NULL,
		state TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordEvent appends an applied event and its narration. Implements the
// engine's Journal interface.
func (db *DB) RecordEvent(ev world.Event, narration string) {
	targets, err := json.Marshal(ev.TargetIDs)
	if err != nil {
		targets = []byte("[]")
	}
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		payload = []byte("{}")
	}
	_, err = db.conn.Exec(
		`INSERT INTO events (tick, kind, actor_id, target_ids, payload, narration) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.Tick, string(ev.Kind), ev.ActorID, string(targets), string(payload), narration,
	)
	if err != nil {
		slog.Debug("journal event write failed", "error", err)
	}
}

// TraceLLM appends one request/response pair. Implements llm.Tracer.
func (db *DB) TraceLLM(request, response string) {
	_, err := db.conn.Exec(
		`INSERT INTO llm_traces (created_at, request, response) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), request, response,
	)
	if err != nil {
		slog.Debug("journal llm trace write failed", "error", err)
	}
}

// SaveSnapshot stores the full world state as JSON at the given tick.
func (db *DB) SaveSnapshot(tick int, w *world.World) error {
	state, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal world: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT INTO snapshots (created_at, tick, state) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), tick, string(state),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadLatestSnapshot restores the most recent snapshot, returning the
// world, its tick, and whether one existed.
func (db *DB) LoadLatestSnapshot() (*world.World, int, bool, error) {
	var row struct {
		Tick  int    `db:"tick"`
		State string `db:"state"`
	}
	err := db.conn.Get(&row, `SELECT tick, state FROM snapshots ORDER BY id DESC LIMIT 1`)
	if err != nil {
		return nil, 0, false, nil
	}
	w := world.New()
	if err := json.Unmarshal([]byte(row.State), w); err != nil {
		return nil, 0, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return w, row.Tick, true, nil
}

// RecentNarrations returns the last n non-empty narration lines, oldest
// first.
func (db *DB) RecentNarrations(n int) ([]string, error) {
	var lines []string
	err := db.conn.Select(&lines,
		`SELECT narration FROM (
			SELECT id, narration FROM events WHERE narration != '' ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, n)
	if err != nil {
		return nil, fmt.Errorf("read narrations: %w", err)
	}
	return lines, nil
}
