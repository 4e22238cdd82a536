// Package sweep evaluates the P.1812 loss over a disc around a transmitter
// by sampling radial terrain profiles on a fixed pool of workers.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"p1812go/pkg/logging"
	"p1812go/pkg/p1812"
	"p1812go/pkg/terrain"
)

// MinCalcLength is the shortest truncated profile the sweep evaluates. Cells
// below it are zero.
const MinCalcLength = 3

// ErrInvalidJob is returned for sweep geometry that cannot produce a result.
var ErrInvalidJob = errors.New("invalid sweep job")

// DataType selects what a sweep writes into each result cell.
type DataType int

const (
	Loss DataType = iota
	TerrainHeight
	ClutterHeight
)

func (d DataType) String() string {
	switch d {
	case Loss:
		return "loss"
	case TerrainHeight:
		return "terrain"
	case ClutterHeight:
		return "clutter"
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// ParseDataType accepts the names printed by DataType.String.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "loss", "":
		return Loss, nil
	case "terrain":
		return TerrainHeight, nil
	case "clutter":
		return ClutterHeight, nil
	}
	return 0, fmt.Errorf("unknown sweep data type %q", s)
}

// Job describes one point-to-area sweep. Coordinates and lengths are in the
// grid's projected metres.
type Job struct {
	Center      orb.Point
	Radius      float64 // m
	Step        float64 // spatial resolution along a radial, m
	AngularStep float64 // degrees
	Threads     int
	Data        DataType
	Params      p1812.Params
}

// Points is the number of samples per radial.
func (j *Job) Points() int {
	return int(math.Ceil(j.Radius / j.Step))
}

// Angles returns the radial bearings in degrees, counter-clockwise from +x.
func (j *Job) Angles() []float64 {
	count := int(math.Ceil(360 / j.AngularStep))
	angles := make([]float64, count)
	for i := range angles {
		angles[i] = 360 * float64(i) / float64(count)
	}
	return angles
}

func (j *Job) validate() error {
	switch {
	case !(j.Radius > 0) || math.IsInf(j.Radius, 0):
		return fmt.Errorf("%w: radius %g", ErrInvalidJob, j.Radius)
	case !(j.Step > 0):
		return fmt.Errorf("%w: spatial resolution %g", ErrInvalidJob, j.Step)
	case !(j.AngularStep > 0 && j.AngularStep <= 360):
		return fmt.Errorf("%w: angular resolution %g", ErrInvalidJob, j.AngularStep)
	case j.Points() < p1812.MinPoints:
		return fmt.Errorf("%w: %d points per radial", ErrInvalidJob, j.Points())
	}
	if j.Data == Loss {
		if err := p1812.ValidateParams(&j.Params); err != nil {
			return err
		}
	}
	return nil
}

// Observer receives per-radial progress. *metrics.Collector implements it.
type Observer interface {
	WorkerStarted()
	WorkerDone()
	RayDone(d time.Duration, cells, nan int)
}

type nopObserver struct{}

func (nopObserver) WorkerStarted()                  {}
func (nopObserver) WorkerDone()                     {}
func (nopObserver) RayDone(time.Duration, int, int) {}

// Runner executes sweeps against one terrain/clutter pair. The grids are
// only read, so a Runner may serve concurrent sweeps.
type Runner struct {
	profiler *terrain.Profiler
	observer Observer
	logger   *slog.Logger
}

// NewRunner creates a runner. observer and logger may be nil.
func NewRunner(profiler *terrain.Profiler, observer Observer, logger *slog.Logger) *Runner {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		profiler: profiler,
		observer: observer,
		logger:   logger.With("component", "sweep"),
	}
}

// assignment is the disjoint set of rows one worker owns.
type assignment struct {
	worker int
	angles []int
	rows   [][]float64
}

// Run evaluates the job and returns the full result matrix once every
// worker has finished. Angle i is handled by worker i mod Threads.
// Cancelling ctx stops workers between radials.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	if err := job.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	n := job.Points()
	res := newResult(job, n)
	threads := max(1, min(job.Threads, len(res.Angles)))

	work := make([]assignment, threads)
	for t := range work {
		work[t].worker = t
	}
	for ai, row := range res.Values {
		a := &work[ai%threads]
		a.angles = append(a.angles, ai)
		a.rows = append(a.rows, row)
	}

	r.logger.Info("Starting sweep",
		"angles", len(res.Angles),
		"points", n,
		"threads", threads,
		"data", job.Data)

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range work {
		g.Go(func() error {
			return r.work(gctx, &job, res, a)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	sum := res.Summary()
	r.logger.Info("Sweep complete",
		"cells", humanize.Comma(int64(sum.Cells)),
		"nan_cells", humanize.Comma(int64(sum.NaNCells)),
		"min_db", sum.Min,
		"max_db", sum.Max,
		"elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// work runs one worker. Profile buffers and the path cache are private to it.
func (r *Runner) work(ctx context.Context, job *Job, res *Result, a assignment) error {
	r.observer.WorkerStarted()
	defer r.observer.WorkerDone()

	n := len(res.Distances)
	h := make([]float64, n)
	var ct []float64
	if r.profiler.HasClutter() {
		ct = make([]float64, n)
	}
	prof := p1812.Profile{D: res.Distances, H: h, Ct: ct}
	params := job.Params
	cache := p1812.NewCache(n)

	invalid := 0
	for k, ai := range a.angles {
		if err := ctx.Err(); err != nil {
			return err
		}
		rayStart := time.Now()
		row := a.rows[k]

		theta := res.Angles[ai] * math.Pi / 180
		end := orb.Point{
			job.Center[0] + job.Radius*math.Cos(theta),
			job.Center[1] + job.Radius*math.Sin(theta),
		}
		r.profiler.Fill(job.Center, end, h, ct)

		for i := 0; i < min(MinCalcLength, n); i++ {
			row[i] = 0
		}
		cache.Reset()

		nan := 0
		for i := n - 1; i >= MinCalcLength; i-- {
			switch job.Data {
			case TerrainHeight:
				row[i] = h[i]
			case ClutterHeight:
				row[i] = math.NaN()
				if ct != nil {
					row[i] = ct[i]
				}
			default:
				out, err := p1812.Calculate(&params, prof.Truncate(i), cache)
				if err != nil {
					invalid++
				}
				row[i] = out.Lb
			}
			if math.IsNaN(row[i]) {
				nan++
			}
		}
		elapsed := time.Since(rayStart)
		r.observer.RayDone(elapsed, n, nan)
		logging.Trace(r.logger, "Ray done",
			"worker", a.worker,
			"angle", res.Angles[ai],
			"nan_cells", nan,
			"elapsed", elapsed)
	}

	r.logger.Debug("Worker finished",
		"worker", a.worker,
		"rays", len(a.angles),
		"invalid_profiles", invalid)
	return nil
}
