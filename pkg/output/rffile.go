// Package output writes sweep results: the binary .rf matrix and PNG
// coverage maps.
package output

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
)

// ErrFormat is returned for a malformed .rf stream.
var ErrFormat = errors.New("malformed rf file")

const maxRayPoints = 1 << 24

// Header is the fixed preamble of an .rf file.
type Header struct {
	Center      orb.Point // projected metres
	Radius      float64   // m
	AngularStep float64   // degrees
	Points      int       // samples per ray
}

// RF is a decoded .rf file. Rays are in angle order.
type RF struct {
	Header
	Rays [][]float64
}

type rawHeader struct {
	X, Y, Radius, AngularStep float64
	Points                    int32
}

// WriteRF writes the header followed by each ray as little-endian float64.
// Every ray must have h.Points samples.
func WriteRF(w io.Writer, h Header, rays [][]float64) error {
	bw := bufio.NewWriter(w)
	raw := rawHeader{
		X:           h.Center[0],
		Y:           h.Center[1],
		Radius:      h.Radius,
		AngularStep: h.AngularStep,
		Points:      int32(h.Points),
	}
	if err := binary.Write(bw, binary.LittleEndian, &raw); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, ray := range rays {
		if len(ray) != h.Points {
			return fmt.Errorf("ray %d has %d points, header says %d", i, len(ray), h.Points)
		}
		if err := binary.Write(bw, binary.LittleEndian, ray); err != nil {
			return fmt.Errorf("write ray %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadRF decodes a stream written by WriteRF. The number of rays is implied
// by the stream length.
func ReadRF(r io.Reader) (*RF, error) {
	br := bufio.NewReader(r)
	var raw rawHeader
	if err := binary.Read(br, binary.LittleEndian, &raw); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}
	if raw.Points <= 0 || raw.Points > maxRayPoints {
		return nil, fmt.Errorf("%w: %d points per ray", ErrFormat, raw.Points)
	}

	out := &RF{Header: Header{
		Center:      orb.Point{raw.X, raw.Y},
		Radius:      raw.Radius,
		AngularStep: raw.AngularStep,
		Points:      int(raw.Points),
	}}
	for {
		ray := make([]float64, out.Points)
		err := binary.Read(br, binary.LittleEndian, ray)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: ray %d: %v", ErrFormat, len(out.Rays), err)
		}
		out.Rays = append(out.Rays, ray)
	}
}

// WriteRFFile writes an .rf file at path.
func WriteRFFile(path string, h Header, rays [][]float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteRF(f, h, rays); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadRFFile reads an .rf file from path.
func ReadRFFile(path string) (*RF, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRF(f)
}
