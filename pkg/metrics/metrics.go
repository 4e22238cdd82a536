// Package metrics exposes point-to-area sweep progress as Prometheus metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records sweep progress. All methods are no-ops on a nil
// *Collector.
type Collector struct {
	gatherer prometheus.Gatherer

	Rays        prometheus.Counter
	Cells       prometheus.Counter
	NaNCells    prometheus.Counter
	RayDuration prometheus.Histogram
	Workers     prometheus.Gauge
}

// NewCollector registers the sweep metrics against reg. A nil reg uses the
// default registerer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	rays, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "p1812_sweep_rays_total",
		Help: "Radials completed by point-to-area sweeps.",
	}), "p1812_sweep_rays_total")
	if err != nil {
		return nil, err
	}

	cells, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "p1812_sweep_cells_total",
		Help: "Result cells written by point-to-area sweeps.",
	}), "p1812_sweep_cells_total")
	if err != nil {
		return nil, err
	}

	nanCells, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "p1812_sweep_nan_cells_total",
		Help: "Result cells without a value (outside coverage or invalid profile).",
	}), "p1812_sweep_nan_cells_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "p1812_sweep_ray_duration_seconds",
		Help:    "Time spent evaluating one radial.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}), "p1812_sweep_ray_duration_seconds")
	if err != nil {
		return nil, err
	}

	workers, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "p1812_sweep_workers",
		Help: "Sweep workers currently running.",
	}), "p1812_sweep_workers")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:    gatherer,
		Rays:        rays,
		Cells:       cells,
		NaNCells:    nanCells,
		RayDuration: duration,
		Workers:     workers,
	}, nil
}

// Gatherer returns the gatherer backing the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// WorkerStarted increments the running worker gauge.
func (c *Collector) WorkerStarted() {
	if c == nil {
		return
	}
	c.Workers.Inc()
}

// WorkerDone decrements the running worker gauge.
func (c *Collector) WorkerDone() {
	if c == nil {
		return
	}
	c.Workers.Dec()
}

// RayDone records one finished radial with its cell counts.
func (c *Collector) RayDone(d time.Duration, cells, nan int) {
	if c == nil {
		return
	}
	c.Rays.Inc()
	c.Cells.Add(float64(cells))
	c.NaNCells.Add(float64(nan))
	c.RayDuration.Observe(d.Seconds())
}

// WriteTextfile writes the current metrics in the node-exporter textfile
// format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.gatherer)
}

func register[T prometheus.Collector](reg prometheus.Registerer, col T, name string) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return col, nil
}
