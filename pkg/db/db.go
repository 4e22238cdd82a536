package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Register driver
)

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens the database and runs migrations.
func Init(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	d := &DB{db}
	// Single connection avoids SQLITE_BUSY on concurrent writes.
	db.SetMaxOpenConns(1)

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return d, nil
}

// PruneRuns removes run records older than the specified duration and
// returns how many were deleted.
func (d *DB) PruneRuns(olderThan time.Duration) (int64, error) {
	// Same layout as SQLite CURRENT_TIMESTAMP.
	deadline := time.Now().Add(-olderThan).UTC().Format("2006-01-02 15:04:05")
	var total int64
	for _, table := range []string{"p2p_runs", "sweep_runs"} {
		res, err := d.Exec("DELETE FROM "+table+" WHERE created_at < ?", deadline)
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS p2p_runs (
			id TEXT PRIMARY KEY,
			name TEXT,
			params TEXT,
			tx_x REAL,
			tx_y REAL,
			rx_x REAL,
			rx_y REAL,
			points INTEGER,
			loss_db REAL,
			rx_dbm REAL,
			s_unit TEXT,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS sweep_runs (
			id TEXT PRIMARY KEY,
			name TEXT,
			params TEXT,
			center_x REAL,
			center_y REAL,
			radius_m REAL,
			data_type TEXT,
			angles INTEGER,
			points INTEGER,
			cells INTEGER,
			nan_cells INTEGER,
			min_db REAL,
			max_db REAL,
			duration_ms INTEGER,
			output_path TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_p2p_runs_created ON p2p_runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sweep_runs_created ON sweep_runs(created_at);`,
	}

	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec error: %w query: %s", err, q)
		}
	}

	return nil
}
