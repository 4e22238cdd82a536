package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Textfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.WorkerStarted()
	c.WorkerStarted()
	c.WorkerDone()
	c.RayDone(20*time.Millisecond, 100, 7)
	c.RayDone(30*time.Millisecond, 100, 0)

	path := filepath.Join(t.TempDir(), "p1812.prom")
	require.NoError(t, c.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "p1812_sweep_rays_total 2")
	assert.Contains(t, text, "p1812_sweep_cells_total 200")
	assert.Contains(t, text, "p1812_sweep_nan_cells_total 7")
	assert.Contains(t, text, "p1812_sweep_workers 1")
	assert.Contains(t, text, "p1812_sweep_ray_duration_seconds_count 2")
}

func TestCollector_ReRegisterReturnsExisting(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	require.NoError(t, err)
	b, err := NewCollector(reg)
	require.NoError(t, err)

	a.RayDone(time.Millisecond, 1, 0)
	b.RayDone(time.Millisecond, 1, 0)
	assert.Same(t, a.Rays, b.Rays)
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.WorkerStarted()
		c.RayDone(time.Second, 1, 1)
		c.WorkerDone()
	})
	assert.NoError(t, c.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
	assert.Nil(t, c.Gatherer())
}
