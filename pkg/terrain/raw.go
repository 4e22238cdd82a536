package terrain

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// CellType is the on-disk cell encoding of a raw grid.
type CellType int

const (
	// Float64Cells stores each sample as a little-endian float64.
	Float64Cells CellType = iota
	// Uint16Cells stores clutter heights in centimetres; 0xFFFF is missing.
	Uint16Cells
)

const (
	uint16Missing = math.MaxUint16
	maxRawAxis    = 1 << 24
)

// ReadRaw decodes the raw layout: int32 row count, int32 column count, the
// y ticks, the x ticks, then rows of cells. Uint16 cells are converted to
// metres.
func ReadRaw(r io.Reader, cell CellType) (*Grid, error) {
	br := bufio.NewReader(r)
	var dims [2]int32
	if err := binary.Read(br, binary.LittleEndian, &dims); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	ny, nx := int(dims[0]), int(dims[1])
	if ny <= 0 || nx <= 0 || ny > maxRawAxis || nx > maxRawAxis {
		return nil, fmt.Errorf("%w: raw header %d x %d", ErrInvalidGrid, ny, nx)
	}

	y := make([]float64, ny)
	x := make([]float64, nx)
	if err := binary.Read(br, binary.LittleEndian, y); err != nil {
		return nil, fmt.Errorf("read y axis: %w", err)
	}
	if err := binary.Read(br, binary.LittleEndian, x); err != nil {
		return nil, fmt.Errorf("read x axis: %w", err)
	}

	values := make([]float64, nx*ny)
	switch cell {
	case Float64Cells:
		if err := binary.Read(br, binary.LittleEndian, values); err != nil {
			return nil, fmt.Errorf("read cells: %w", err)
		}
	case Uint16Cells:
		raw := make([]uint16, nx)
		for j := range ny {
			if err := binary.Read(br, binary.LittleEndian, raw); err != nil {
				return nil, fmt.Errorf("read row %d: %w", j, err)
			}
			row := values[j*nx : (j+1)*nx]
			for i, v := range raw {
				if v == uint16Missing {
					row[i] = math.NaN()
				} else {
					row[i] = float64(v) / 100
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown cell type %d", cell)
	}
	return NewGrid(x, y, values)
}

// ReadRawFile opens path and decodes it with ReadRaw.
func ReadRawFile(path string, cell CellType) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRaw(f, cell)
}

// WriteRaw encodes the grid in the raw float64 layout read by ReadRaw.
func (g *Grid) WriteRaw(w io.Writer) error {
	bw := bufio.NewWriter(w)
	dims := [2]int32{int32(len(g.Y)), int32(len(g.X))}
	for _, v := range []any{dims, g.Y, g.X, g.Values} {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}
