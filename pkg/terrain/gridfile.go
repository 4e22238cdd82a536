package terrain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/xxh3"
)

const gridFileVersion = 1

// CacheSuffix is appended to a source path to name its decoded grid cache.
const CacheSuffix = ".grid"

// ErrChecksum is returned when a cached grid does not match its checksum.
var ErrChecksum = errors.New("grid checksum mismatch")

type gridFile struct {
	Version     int       `msgpack:"version"`
	X           []float64 `msgpack:"x"`
	Y           []float64 `msgpack:"y"`
	Values      []float64 `msgpack:"values"`
	Fingerprint uint64    `msgpack:"fingerprint"`
	Checksum    uint64    `msgpack:"checksum"`
}

// Checksum hashes the bit patterns of the axes and values.
func (g *Grid) Checksum() uint64 {
	h := xxh3.New()
	var buf [8]byte
	for _, vs := range [][]float64{g.X, g.Y, g.Values} {
		for _, v := range vs {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}

// Save writes the grid as zstd-compressed msgpack. fingerprint identifies
// the source the grid was decoded from and is returned by Load.
func (g *Grid) Save(w io.Writer, fingerprint uint64) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	rec := gridFile{
		Version:     gridFileVersion,
		X:           g.X,
		Y:           g.Y,
		Values:      g.Values,
		Fingerprint: fingerprint,
		Checksum:    g.Checksum(),
	}
	if err := msgpack.NewEncoder(zw).Encode(&rec); err != nil {
		zw.Close()
		return fmt.Errorf("encode grid: %w", err)
	}
	return zw.Close()
}

// Load reads a grid written by Save. Samples are bit-identical to the saved
// grid, NaN cells included.
func Load(r io.Reader) (*Grid, uint64, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, 0, err
	}
	defer zr.Close()

	var rec gridFile
	if err := msgpack.NewDecoder(zr).Decode(&rec); err != nil {
		return nil, 0, fmt.Errorf("decode grid: %w", err)
	}
	if rec.Version != gridFileVersion {
		return nil, 0, fmt.Errorf("grid file version %d, want %d", rec.Version, gridFileVersion)
	}
	g, err := NewGrid(rec.X, rec.Y, rec.Values)
	if err != nil {
		return nil, 0, err
	}
	if g.Checksum() != rec.Checksum {
		return nil, 0, ErrChecksum
	}
	return g, rec.Fingerprint, nil
}

// SaveFile writes the grid to path, replacing it atomically.
func (g *Grid) SaveFile(path string, fingerprint uint64) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := g.Save(tmp, fingerprint); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile reads a grid written by SaveFile.
func LoadFile(path string) (*Grid, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return Load(f)
}

// Fingerprint hashes the contents of the file at path.
func Fingerprint(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Open decodes a grid file by extension: ".grid" caches, ".df"/".cf" raw
// grids (float64 and centimetre uint16 cells respectively), and anything
// else as XYZ text.
func Open(path string) (*Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case CacheSuffix:
		g, _, err := LoadFile(path)
		return g, err
	case ".df":
		return ReadRawFile(path, Float64Cells)
	case ".cf":
		return ReadRawFile(path, Uint16Cells)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseXYZ(f)
}

// OpenCached opens path through a sibling cache file. The cache is reused
// while its fingerprint matches the source; otherwise the source is decoded
// and the cache rewritten. A failed cache write is logged, not returned.
func OpenCached(path string, logger *slog.Logger) (*Grid, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.EqualFold(filepath.Ext(path), CacheSuffix) {
		g, _, err := LoadFile(path)
		return g, err
	}
	fp, err := Fingerprint(path)
	if err != nil {
		return nil, err
	}

	cachePath := path + CacheSuffix
	if g, cached, err := LoadFile(cachePath); err == nil && cached == fp {
		logger.Debug("Grid cache hit", "path", cachePath)
		return g, nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Discarding grid cache", "path", cachePath, "error", err)
	}

	g, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := g.SaveFile(cachePath, fp); err != nil {
		logger.Warn("Failed to write grid cache", "path", cachePath, "error", err)
	}
	return g, nil
}
