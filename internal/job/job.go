// Package job runs one configured propagation job end to end: it loads the
// grids, evaluates a point-to-point link or a point-to-area sweep, and hands
// the result to the output, history and metrics sinks.
package job

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"p1812go/pkg/config"
	"p1812go/pkg/metrics"
	"p1812go/pkg/output"
	"p1812go/pkg/p1812"
	"p1812go/pkg/probe"
	"p1812go/pkg/rf"
	"p1812go/pkg/store"
	"p1812go/pkg/sweep"
	"p1812go/pkg/terrain"
)

// Runner executes the job described by a configuration.
type Runner struct {
	cfg     *config.Config
	store   store.RunStore
	metrics *metrics.Collector
	logger  *slog.Logger
	out     io.Writer
}

// New creates a runner. st and m may be nil to skip run history and metrics.
// Point-to-point reports are printed to out.
func New(cfg *config.Config, st store.RunStore, m *metrics.Collector, logger *slog.Logger, out io.Writer) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{cfg: cfg, store: st, metrics: m, logger: logger, out: out}
}

// Run loads the grids and dispatches on the job kind.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Preflight(ctx); err != nil {
		return fmt.Errorf("preflight failed: %w", err)
	}
	profiler, err := r.loadProfiler()
	if err != nil {
		return err
	}
	if r.cfg.Job.IsPointToPoint() {
		_, err = r.PointToPoint(ctx, profiler)
		return err
	}
	_, err = r.PointToArea(ctx, profiler)
	return err
}

// Preflight checks that the inputs can be read and the outputs written
// before any grid is loaded. An unwritable metrics path only warns.
func (r *Runner) Preflight(ctx context.Context) error {
	probes := []probe.Probe{
		{Name: "terrain", Check: probe.Readable(r.cfg.Data.Terrain), Critical: true},
	}
	if path := r.cfg.Data.Clutter; path != "" {
		probes = append(probes, probe.Probe{Name: "clutter", Check: probe.Readable(path), Critical: true})
	}
	if !r.cfg.Job.IsPointToPoint() {
		if path := r.cfg.Output.RF; path != "" {
			probes = append(probes, probe.Probe{Name: "rf output", Check: probe.WritableDir(path), Critical: true})
		}
		if path := r.cfg.Output.Image; path != "" {
			probes = append(probes, probe.Probe{Name: "image output", Check: probe.WritableDir(path), Critical: true})
		}
		if path := r.cfg.Metrics.Textfile; path != "" && r.metrics != nil {
			probes = append(probes, probe.Probe{Name: "metrics textfile", Check: probe.WritableDir(path)})
		}
	}
	return probe.AnalyzeResults(r.logger, probe.Run(ctx, probes, 5*time.Second))
}

func (r *Runner) openGrid(path string) (*terrain.Grid, error) {
	if r.cfg.Data.Cache {
		return terrain.OpenCached(path, r.logger)
	}
	return terrain.Open(path)
}

func (r *Runner) loadProfiler() (*terrain.Profiler, error) {
	data := r.cfg.Data

	method, err := terrain.ParseMethod(data.TerrainMethod)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	dem, err := r.openGrid(data.Terrain)
	if err != nil {
		return nil, fmt.Errorf("failed to load terrain %s: %w", data.Terrain, err)
	}
	r.logger.Info("Terrain loaded",
		"path", data.Terrain,
		"size", fmt.Sprintf("%dx%d", len(dem.X), len(dem.Y)),
		"missing", dem.Missing(),
		"interpolation", method)

	if data.Clutter == "" {
		return terrain.NewProfiler(dem.Source(method, 1), nil), nil
	}

	cmethod, err := terrain.ParseMethod(data.ClutterMethod)
	if err != nil {
		return nil, fmt.Errorf("clutter: %w", err)
	}
	clutter, err := r.openGrid(data.Clutter)
	if err != nil {
		return nil, fmt.Errorf("failed to load clutter %s: %w", data.Clutter, err)
	}
	r.logger.Info("Clutter loaded",
		"path", data.Clutter,
		"size", fmt.Sprintf("%dx%d", len(clutter.X), len(clutter.Y)),
		"unit_m", data.ClutterUnit.Meters(),
		"interpolation", cmethod)

	return terrain.NewProfiler(dem.Source(method, 1), clutter.Source(cmethod, data.ClutterUnit.Meters())), nil
}

// Report is the outcome of a point-to-point run.
type Report struct {
	Distance float64 // m
	Points   int
	Result   p1812.Result
	RxDBm    float64
	SUnit    rf.SUnit
}

// PointToPoint evaluates the link between tx and rx, prints a report and
// records the run. A validation failure is recorded before it is returned.
func (r *Runner) PointToPoint(ctx context.Context, profiler *terrain.Profiler) (*Report, error) {
	j := r.cfg.Job
	if j.Rx == nil {
		return nil, fmt.Errorf("point-to-point job needs an rx coordinate")
	}
	params, err := r.cfg.Link.Params()
	if err != nil {
		return nil, err
	}
	scale, err := rf.ParseScale(j.SUnitScale)
	if err != nil {
		return nil, err
	}

	tx := orb.Point{j.Tx.X, j.Tx.Y}
	rx := orb.Point{j.Rx.X, j.Rx.Y}
	length := planar.Distance(tx, rx)
	n := terrain.PointCount(length, j.Resolution.Meters())

	rep := &Report{Distance: length, Points: n}
	res, calcErr := p1812.Calculate(&params, profiler.Path(tx, rx, n), nil)
	rep.Result = res
	rep.RxDBm = rf.LinkBudget(j.TxPower, j.TxGain, j.RxGain, res.Lb)
	rep.SUnit = scale.ToSUnit(rep.RxDBm)

	run := &store.P2PRun{
		Name:   j.Name,
		Params: params,
		Tx:     tx,
		Rx:     rx,
		Points: n,
		LossDB: res.Lb,
		RxDBm:  rep.RxDBm,
		SUnit:  rep.SUnit.String(),
	}
	if calcErr != nil {
		run.Error = calcErr.Error()
	}
	r.record(ctx, func(ctx context.Context) error { return r.store.SaveP2P(ctx, run) })

	if calcErr != nil {
		return nil, fmt.Errorf("point-to-point calculation: %w", calcErr)
	}

	r.logger.Info("Point-to-point complete",
		"distance_km", length/1000,
		"points", n,
		"loss_db", res.Lb,
		"path", pathKind(res))

	fmt.Fprintf(r.out, "Path length:     %.3f km (%d points)\n", length/1000, n)
	fmt.Fprintf(r.out, "Path type:       %s\n", pathKind(res))
	fmt.Fprintf(r.out, "Basic loss:      %.2f dB\n", res.Lb)
	fmt.Fprintf(r.out, "Received power:  %.2f dBm\n", rep.RxDBm)
	fmt.Fprintf(r.out, "Signal (%s):    %s\n", scale.Name, rep.SUnit)
	return rep, nil
}

func pathKind(res p1812.Result) string {
	if res.Geometry.LineOfSight {
		return "line-of-sight"
	}
	return "transhorizon"
}

// PointToArea sweeps the disc around tx, writes the configured outputs and
// records a summary of the run.
func (r *Runner) PointToArea(ctx context.Context, profiler *terrain.Profiler) (*sweep.Result, error) {
	j := r.cfg.Job
	dataType, err := sweep.ParseDataType(j.DataType)
	if err != nil {
		return nil, err
	}
	params, err := r.cfg.Link.Params()
	if err != nil {
		return nil, err
	}

	job := sweep.Job{
		Center:      orb.Point{j.Tx.X, j.Tx.Y},
		Radius:      j.Radius.Meters(),
		Step:        j.Resolution.Meters(),
		AngularStep: j.AngularRes,
		Threads:     j.Threads,
		Data:        dataType,
		Params:      params,
	}

	var observer sweep.Observer
	if r.metrics != nil {
		observer = r.metrics
	}
	res, err := sweep.NewRunner(profiler, observer, r.logger).Run(ctx, job)
	if err != nil {
		return nil, err
	}

	if err := r.writeOutputs(res); err != nil {
		return nil, err
	}

	sum := res.Summary()
	run := &store.SweepRun{
		Name:       j.Name,
		Params:     params,
		Center:     job.Center,
		Radius:     job.Radius,
		DataType:   dataType.String(),
		Angles:     sum.Angles,
		Points:     sum.Points,
		Cells:      sum.Cells,
		NaNCells:   sum.NaNCells,
		MinDB:      sum.Min,
		MaxDB:      sum.Max,
		Duration:   res.Elapsed,
		OutputPath: r.cfg.Output.RF,
	}
	r.record(ctx, func(ctx context.Context) error { return r.store.SaveSweep(ctx, run) })

	if path := r.cfg.Metrics.Textfile; path != "" && r.metrics != nil {
		if err := r.metrics.WriteTextfile(path); err != nil {
			r.logger.Warn("Failed to write metrics textfile", "path", path, "error", err)
		}
	}
	return res, nil
}

func (r *Runner) writeOutputs(res *sweep.Result) error {
	o := r.cfg.Output
	if o.RF != "" {
		h := output.Header{
			Center:      res.Center,
			Radius:      res.Radius,
			AngularStep: res.AngularStep,
			Points:      len(res.Distances),
		}
		if err := output.WriteRFFile(o.RF, h, res.Values); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		r.logger.Info("Results written", "path", o.RF)
	}

	if o.Image == "" {
		return nil
	}
	opts, err := r.mapOptions(res.Data)
	if err != nil {
		return err
	}
	if err := output.WritePNGFile(o.Image, res, opts); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	r.logger.Info("Coverage map written", "path", o.Image, "size", opts.Size)
	return nil
}

func (r *Runner) mapOptions(data sweep.DataType) (output.MapOptions, error) {
	o := r.cfg.Output
	cmap, err := output.ParseColormap(o.Colormap)
	if err != nil {
		return output.MapOptions{}, err
	}
	opts := output.MapOptions{Size: o.Size, Min: o.Min, Max: o.Max, Colormap: cmap}

	switch o.Value {
	case "", "loss":
	case "rx_dbm":
		if data != sweep.Loss {
			return output.MapOptions{}, fmt.Errorf("output value rx_dbm needs a loss sweep, got %s", data)
		}
		j := r.cfg.Job
		opts.Value = func(lb float64) float64 {
			if lb == 0 {
				// Cells inside the minimum length carry no loss.
				return math.NaN()
			}
			return rf.LinkBudget(j.TxPower, j.TxGain, j.RxGain, lb)
		}
	default:
		return output.MapOptions{}, fmt.Errorf("unknown output value %q", o.Value)
	}
	return opts, nil
}

// record saves a run to history. History is best effort and never fails a job.
func (r *Runner) record(ctx context.Context, save func(context.Context) error) {
	if r.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := save(ctx); err != nil {
		r.logger.Warn("Failed to record run", "error", err)
	}
}
