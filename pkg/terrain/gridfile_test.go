package terrain

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGrid(t *testing.T) *Grid {
	t.Helper()
	g := planeGrid(t, 7, 5, 12.5, func(x, y float64) float64 {
		return math.Sin(x/37) * math.Cos(y/11) * 321.123456789
	})
	g.Values[3] = math.NaN()
	g.Values[17] = math.Inf(1)
	return g
}

func assertBitIdentical(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, math.Float64bits(want[i]), math.Float64bits(got[i]), "index %d", i)
	}
}

func writeLE(w io.Writer, v any) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func TestSaveLoad_BitExact(t *testing.T) {
	g := sampleGrid(t)

	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf, 0xfeed))

	got, fp, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xfeed), fp)
	assertBitIdentical(t, g.X, got.X)
	assertBitIdentical(t, g.Y, got.Y)
	assertBitIdentical(t, g.Values, got.Values)
	assert.Equal(t, g.Checksum(), got.Checksum())
}

func TestChecksum_DetectsChange(t *testing.T) {
	g := sampleGrid(t)
	before := g.Checksum()
	g.Values[0] = math.Nextafter(g.Values[0], math.Inf(1))
	assert.NotEqual(t, before, g.Checksum())
}

func TestRaw_RoundTrip(t *testing.T) {
	g := sampleGrid(t)

	var buf bytes.Buffer
	require.NoError(t, g.WriteRaw(&buf))
	got, err := ReadRaw(&buf, Float64Cells)
	require.NoError(t, err)
	assertBitIdentical(t, g.Values, got.Values)
	assertBitIdentical(t, g.X, got.X)
}

func TestRaw_Uint16Clutter(t *testing.T) {
	var buf bytes.Buffer
	// 2 rows, 3 columns.
	for _, v := range []any{
		[2]int32{2, 3},
		[]float64{0, 10},
		[]float64{100, 110, 120},
		[]uint16{0, 250, 1000, 0xFFFF, 1, 12000},
	} {
		require.NoError(t, writeLE(&buf, v))
	}

	g, err := ReadRaw(&buf, Uint16Cells)
	require.NoError(t, err)
	assert.Equal(t, 2.5, g.At(1, 0))
	assert.Equal(t, 120.0, g.At(2, 1))
	assert.True(t, math.IsNaN(g.At(0, 1)))
	assert.Equal(t, 1, g.Missing())
}

func TestRaw_BadHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLE(&buf, [2]int32{-1, 3}))
	_, err := ReadRaw(&buf, Float64Cells)
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestOpenCached(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "terrain.xyz")
	require.NoError(t, os.WriteFile(src, []byte("0 0 1\n10 0 2\n0 10 3\n10 10 4\n"), 0o644))

	g, err := OpenCached(src, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, g.At(1, 1))
	_, err = os.Stat(src + CacheSuffix)
	require.NoError(t, err, "cache file written")

	t.Run("cache reused", func(t *testing.T) {
		again, err := OpenCached(src, nil)
		require.NoError(t, err)
		assert.Equal(t, g.Values, again.Values)
	})

	t.Run("stale cache rebuilt", func(t *testing.T) {
		require.NoError(t, os.WriteFile(src, []byte("0 0 1\n10 0 2\n0 10 3\n10 10 40\n"), 0o644))
		fresh, err := OpenCached(src, nil)
		require.NoError(t, err)
		assert.Equal(t, 40.0, fresh.At(1, 1))
	})

	t.Run("cache path loads directly", func(t *testing.T) {
		direct, err := OpenCached(src+CacheSuffix, nil)
		require.NoError(t, err)
		assert.Equal(t, 40.0, direct.At(1, 1))
	})
}

func TestParseXYZ(t *testing.T) {
	in := `# x y h
0 0 5
20 0 6

0 10 7
10 10 8
`
	g, err := ParseXYZ(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 20}, g.X)
	assert.Equal(t, []float64{0, 10}, g.Y)
	assert.Equal(t, 6.0, g.At(2, 0))
	assert.Equal(t, 8.0, g.At(1, 1))
	assert.True(t, math.IsNaN(g.At(1, 0)), "missing cell")
	assert.Equal(t, 2, g.Missing())

	_, err = ParseXYZ(strings.NewReader("0 0 1\n1 1 2 3\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ParseXYZ(strings.NewReader("\n# nothing\n"))
	assert.ErrorIs(t, err, ErrInvalidGrid)
}
