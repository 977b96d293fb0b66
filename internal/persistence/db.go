// Package persistence provides SQLite-based run history: one row per run
// with its outcome and final ledger, plus the summaries and events it
// produced.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/boomsim/internal/economy"
	"github.com/talgya/boomsim/internal/engine"
)

// DB wraps a SQLite connection for run history.
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
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		script TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		final_tick INTEGER NOT NULL,
		food REAL NOT NULL,
		wood REAL NOT NULL,
		stone REAL NOT NULL,
		metal REAL NOT NULL,
		pop INTEGER NOT NULL,
		max_pop INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		overflows INTEGER NOT NULL,
		upgrades_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS summaries (
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		food REAL NOT NULL,
		wood REAL NOT NULL,
		stone REAL NOT NULL,
		metal REAL NOT NULL,
		pop INTEGER NOT NULL,
		max_pop INTEGER NOT NULL,
		women INTEGER NOT NULL,
		idle INTEGER NOT NULL,
		farming INTEGER NOT NULL,
		chopping INTEGER NOT NULL,
		building INTEGER NOT NULL,
		barracks INTEGER NOT NULL,
		idle_buildings INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_summaries_run ON summaries(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one stored run.
type Run struct {
	ID        string  `db:"id"`
	Script    string  `db:"script"`
	StartedAt int64   `db:"started_at"` // Unix seconds
	Outcome   string  `db:"outcome"`
	FinalTick int     `db:"final_tick"`
	Food      float64 `db:"food"`
	Wood      float64 `db:"wood"`
	Stone     float64 `db:"stone"`
	Metal     float64 `db:"metal"`
	Pop       int     `db:"pop"`
	MaxPop    int     `db:"max_pop"`
	Workers   int     `db:"workers"`
	Overflows int     `db:"overflows"`
	Upgrades  string  `db:"upgrades_json"`
}

// Stock returns the final stockpile.
func (r Run) Stock() economy.Resources {
	return economy.Resources{r.Food, r.Wood, r.Stone, r.Metal}
}

// String formats the run for the history listing.
func (r Run) String() string {
	return fmt.Sprintf("%s  %s  %-9s %s  %s  %d/%dpop  %s",
		r.ID[:8], time.Unix(r.StartedAt, 0).UTC().Format(time.DateTime), r.Outcome,
		engine.SimTime(r.FinalTick), r.Stock(), r.Pop, r.MaxPop, r.Script)
}

// SaveRun stores a finished run under a new ID and returns the ID.
func (db *DB) SaveRun(script string, started time.Time, eng *engine.Engine) (string, error) {
	sim := eng.Sim
	id := uuid.NewString()
	upgrades, err := json.Marshal(sim.Upgrades.List())
	if err != nil {
		return "", fmt.Errorf("encode upgrades: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	stock := sim.Ledger.Stock
	_, err = tx.Exec(`INSERT INTO runs
		(id, script, started_at, outcome, final_tick, food, wood, stone, metal,
		 pop, max_pop, workers, overflows, upgrades_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, script, started.Unix(), eng.Outcome.String(), sim.Time,
		stock[economy.Food], stock[economy.Wood], stock[economy.Stone], stock[economy.Metal],
		sim.Ledger.Pop, sim.Ledger.MaxPop, len(sim.Workers), eng.Overflows, string(upgrades),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO summaries
		(run_id, tick, food, wood, stone, metal, pop, max_pop, women, idle,
		 farming, chopping, building, barracks, idle_buildings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, s := range eng.Summaries {
		_, err := stmt.Exec(
			id, s.Tick,
			s.Stock[economy.Food], s.Stock[economy.Wood], s.Stock[economy.Stone], s.Stock[economy.Metal],
			s.Pop, s.MaxPop, s.Women, s.Idle, s.Farming, s.Chopping, s.Building, s.Barracks, s.IdleBuildings,
		)
		if err != nil {
			return "", fmt.Errorf("insert summary at %d: %w", s.Tick, err)
		}
	}

	for _, e := range sim.Events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, tick, description, category) VALUES (?, ?, ?, ?)",
			id, e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return "", fmt.Errorf("insert event: %w", err)
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('last_run', ?)", id); err != nil {
		return "", fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("run saved", "id", id, "outcome", eng.Outcome.String(),
		"summaries", len(eng.Summaries), "events", len(sim.Events))
	return id, nil
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}

// RecentRuns returns the most recent runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		`SELECT id, script, started_at, outcome, final_tick, food, wood, stone, metal,
			pop, max_pop, workers, overflows, upgrades_json
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	return runs, err
}

// RunEvents returns the events of a run in order.
func (db *DB) RunEvents(runID string) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events WHERE run_id = ? ORDER BY id",
		runID,
	)
	return events, err
}

// SummaryRow is a stored periodic summary.
type SummaryRow struct {
	Tick   int     `db:"tick"`
	Food   float64 `db:"food"`
	Wood   float64 `db:"wood"`
	Stone  float64 `db:"stone"`
	Metal  float64 `db:"metal"`
	Pop    int     `db:"pop"`
	MaxPop int     `db:"max_pop"`
	Idle   int     `db:"idle"`
}

// String formats the row for the run detail listing.
func (r SummaryRow) String() string {
	stock := economy.Resources{r.Food, r.Wood, r.Stone, r.Metal}
	return fmt.Sprintf("%s %s %d/%dpop %didle", engine.SimTime(r.Tick), stock, r.Pop, r.MaxPop, r.Idle)
}

// RunSummaries returns a run's summaries in tick order.
func (db *DB) RunSummaries(runID string) ([]SummaryRow, error) {
	var rows []SummaryRow
	err := db.conn.Select(&rows,
		"SELECT tick, food, wood, stone, metal, pop, max_pop, idle FROM summaries WHERE run_id = ? ORDER BY tick",
		runID,
	)
	return rows, err
}
