package store

import (
	"context"
	"time"

	"github.com/paulmach/orb"

	"p1812go/pkg/p1812"
)

// Run kinds listed by Recent.
const (
	KindP2P   = "p2p"
	KindSweep = "p2a"
)

// P2PRun is one point-to-point calculation.
type P2PRun struct {
	ID        string
	Name      string
	Params    p1812.Params
	Tx, Rx    orb.Point
	Points    int
	LossDB    float64 // NaN when the path left coverage
	RxDBm     float64
	SUnit     string
	Error     string // validation failure, empty on success
	CreatedAt time.Time
}

// SweepRun summarises one point-to-area sweep.
type SweepRun struct {
	ID         string
	Name       string
	Params     p1812.Params
	Center     orb.Point
	Radius     float64
	DataType   string
	Angles     int
	Points     int
	Cells      int
	NaNCells   int
	MinDB      float64 // NaN when no cell is finite
	MaxDB      float64
	Duration   time.Duration
	OutputPath string
	CreatedAt  time.Time
}

// RunSummary is a row of the combined run history.
type RunSummary struct {
	ID        string
	Kind      string
	Name      string
	CreatedAt time.Time
}

// RunStore persists calculation history.
type RunStore interface {
	SaveP2P(ctx context.Context, run *P2PRun) error
	GetP2P(ctx context.Context, id string) (*P2PRun, error)
	SaveSweep(ctx context.Context, run *SweepRun) error
	GetSweep(ctx context.Context, id string) (*SweepRun, error)
	Recent(ctx context.Context, limit int) ([]RunSummary, error)
}
