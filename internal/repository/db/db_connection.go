package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates the history database and ensures the readings and deliveries tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// one writer: the simulator loop
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA busy_timeout = 5000;",
	"PRAGMA synchronous = NORMAL;",
}

const schemaReadings = `
CREATE TABLE IF NOT EXISTS readings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tick INTEGER NOT NULL,
    sensor_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    key TEXT NOT NULL DEFAULT '',
    value REAL NOT NULL,
    at TEXT NOT NULL
);
`

const schemaReadingsIndex = `
CREATE INDEX IF NOT EXISTS idx_readings_at ON readings (at, sensor_id);
`

const schemaDeliveries = `
CREATE TABLE IF NOT EXISTS deliveries (
    id TEXT PRIMARY KEY,
    tick INTEGER NOT NULL,
    at TEXT NOT NULL,
    sink TEXT NOT NULL,
    status_code INTEGER NOT NULL DEFAULT 0,
    success BOOLEAN NOT NULL,
    error TEXT,
    latency_ms INTEGER NOT NULL DEFAULT 0,
    response TEXT NOT NULL DEFAULT ''
);
`

const schemaDeliveriesIndex = `
CREATE INDEX IF NOT EXISTS idx_deliveries_at ON deliveries (at);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range []string{
		schemaReadings,
		schemaReadingsIndex,
		schemaDeliveries,
		schemaDeliveriesIndex,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
