package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p1812go/pkg/db"
	"p1812go/pkg/p1812"
)

// setupTestStore creates a test database and store for each test.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	s := NewSQLiteStore(d)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestP2P_SaveGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	params := p1812.DefaultParams()
	params.Frequency = 0.145
	run := &P2PRun{
		Name:   "hilltop",
		Params: params,
		Tx:     orb.Point{500100, 4100200},
		Rx:     orb.Point{510000, 4095000},
		Points: 112,
		LossDB: 131.25,
		RxDBm:  -85.2,
		SUnit:  "S7 + 1.8dB",
	}
	require.NoError(t, s.SaveP2P(ctx, run))
	require.NotEmpty(t, run.ID)

	got, err := s.GetP2P(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hilltop", got.Name)
	assert.Equal(t, params, got.Params)
	assert.Equal(t, run.Rx, got.Rx)
	assert.Equal(t, 131.25, got.LossDB)
	assert.Equal(t, "S7 + 1.8dB", got.SUnit)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Second)

	missing, err := s.GetP2P(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestP2P_NaNLossStoredAsNull(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := &P2PRun{Name: "offgrid", Params: p1812.DefaultParams(), LossDB: math.NaN(), RxDBm: math.NaN()}
	require.NoError(t, s.SaveP2P(ctx, run))

	got, err := s.GetP2P(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.LossDB))
	assert.True(t, math.IsNaN(got.RxDBm))
}

func TestSweep_SaveGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := &SweepRun{
		Name:       "coverage",
		Params:     p1812.DefaultParams(),
		Center:     orb.Point{1, 2},
		Radius:     25000,
		DataType:   "loss",
		Angles:     720,
		Points:     250,
		Cells:      177840,
		NaNCells:   12,
		MinDB:      88.5,
		MaxDB:      190.25,
		Duration:   1500 * time.Millisecond,
		OutputPath: "out.rf",
	}
	require.NoError(t, s.SaveSweep(ctx, run))

	got, err := s.GetSweep(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.Cells, got.Cells)
	assert.Equal(t, run.Center, got.Center)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.Equal(t, 190.25, got.MaxDB)
	assert.Equal(t, "out.rf", got.OutputPath)
}

func TestRecent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveP2P(ctx, &P2PRun{ID: "a", Name: "first", CreatedAt: base}))
	require.NoError(t, s.SaveSweep(ctx, &SweepRun{ID: "b", Name: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.SaveP2P(ctx, &P2PRun{ID: "c", Name: "third", CreatedAt: base.Add(2 * time.Minute)}))

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, KindP2P, runs[0].Kind)
	assert.Equal(t, "b", runs[1].ID)
	assert.Equal(t, KindSweep, runs[1].Kind)
	assert.True(t, runs[1].CreatedAt.Equal(base.Add(time.Minute)))
}
