package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"p1812go/pkg/db"
	"p1812go/pkg/p1812"
)

// Store is the full repository interface.
type Store interface {
	RunStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Point to point ---

// SaveP2P inserts or replaces a run. An empty ID is filled with a new UUID.
func (s *SQLiteStore) SaveP2P(ctx context.Context, r *P2PRun) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	params, err := json.Marshal(r.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO p2p_runs (id, name, params, tx_x, tx_y, rx_x, rx_y, points, loss_db, rx_dbm, s_unit, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, string(params), r.Tx[0], r.Tx[1], r.Rx[0], r.Rx[1], r.Points,
		nullFloat(r.LossDB), nullFloat(r.RxDBm), r.SUnit, r.Error, timestamp(r.CreatedAt))
	return err
}

// GetP2P returns the run with id, or nil if it does not exist.
func (s *SQLiteStore) GetP2P(ctx context.Context, id string) (*P2PRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, params, tx_x, tx_y, rx_x, rx_y, points, loss_db, rx_dbm, s_unit, error, created_at
		 FROM p2p_runs WHERE id = ?`, id)

	var r P2PRun
	var params string
	var loss, rx sql.NullFloat64
	err := row.Scan(&r.ID, &r.Name, &params, &r.Tx[0], &r.Tx[1], &r.Rx[0], &r.Rx[1], &r.Points,
		&loss, &rx, &r.SUnit, &r.Error, sqlTime{&r.CreatedAt})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	if err := decodeParams(params, &r.Params); err != nil {
		return nil, err
	}
	r.LossDB = fromNull(loss)
	r.RxDBm = fromNull(rx)
	return &r, nil
}

// --- Sweeps ---

// SaveSweep inserts or replaces a sweep summary. An empty ID is filled with a
// new UUID.
func (s *SQLiteStore) SaveSweep(ctx context.Context, r *SweepRun) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	params, err := json.Marshal(r.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sweep_runs (id, name, params, center_x, center_y, radius_m, data_type, angles, points, cells, nan_cells, min_db, max_db, duration_ms, output_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, string(params), r.Center[0], r.Center[1], r.Radius, r.DataType,
		r.Angles, r.Points, r.Cells, r.NaNCells, nullFloat(r.MinDB), nullFloat(r.MaxDB),
		r.Duration.Milliseconds(), r.OutputPath, timestamp(r.CreatedAt))
	return err
}

// GetSweep returns the sweep with id, or nil if it does not exist.
func (s *SQLiteStore) GetSweep(ctx context.Context, id string) (*SweepRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, params, center_x, center_y, radius_m, data_type, angles, points, cells, nan_cells, min_db, max_db, duration_ms, output_path, created_at
		 FROM sweep_runs WHERE id = ?`, id)

	var r SweepRun
	var params string
	var minDB, maxDB sql.NullFloat64
	var ms int64
	err := row.Scan(&r.ID, &r.Name, &params, &r.Center[0], &r.Center[1], &r.Radius, &r.DataType,
		&r.Angles, &r.Points, &r.Cells, &r.NaNCells, &minDB, &maxDB, &ms, &r.OutputPath, sqlTime{&r.CreatedAt})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := decodeParams(params, &r.Params); err != nil {
		return nil, err
	}
	r.MinDB = fromNull(minDB)
	r.MaxDB = fromNull(maxDB)
	r.Duration = time.Duration(ms) * time.Millisecond
	return &r, nil
}

// --- History ---

// Recent lists runs of both kinds, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ?, name, created_at FROM p2p_runs
		 UNION ALL
		 SELECT id, ?, name, created_at FROM sweep_runs
		 ORDER BY created_at DESC, id
		 LIMIT ?`, KindP2P, KindSweep, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Kind, &r.Name, sqlTime{&r.CreatedAt}); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func decodeParams(raw string, p *p1812.Params) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), p); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

// nullFloat stores NaN and infinities as NULL.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// sqlTime scans SQLite timestamps whether the driver hands back a
// time.Time or the raw text.
type sqlTime struct{ dst *time.Time }

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

func (s sqlTime) Scan(v any) error {
	switch t := v.(type) {
	case nil:
		*s.dst = time.Time{}
		return nil
	case time.Time:
		*s.dst = t
		return nil
	case []byte:
		return s.Scan(string(t))
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				*s.dst = parsed
				return nil
			}
		}
		return fmt.Errorf("unrecognised timestamp %q", t)
	}
	return fmt.Errorf("unsupported timestamp type %T", v)
}

var _ Store = (*SQLiteStore)(nil)
