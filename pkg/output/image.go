package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"

	"p1812go/pkg/sweep"
)

// Colormap maps a normalised value in [0, 1] to a colour.
type Colormap func(v float64) color.RGBA

// Jet is the classic blue-cyan-yellow-red ramp.
func Jet(v float64) color.RGBA {
	channel := func(offset float64) uint8 {
		c := 1.5 - math.Abs(4*v-offset)
		return uint8(math.Round(255 * math.Max(0, math.Min(1, c))))
	}
	return color.RGBA{R: channel(3), G: channel(2), B: channel(1), A: 255}
}

// Gray is a linear black-to-white ramp.
func Gray(v float64) color.RGBA {
	g := uint8(math.Round(255 * v))
	return color.RGBA{R: g, G: g, B: g, A: 255}
}

// ParseColormap returns a colormap by name.
func ParseColormap(s string) (Colormap, error) {
	switch strings.ToLower(s) {
	case "jet", "":
		return Jet, nil
	case "gray", "grey":
		return Gray, nil
	}
	return nil, fmt.Errorf("unknown colormap %q", s)
}

// MapOptions controls RenderMap.
type MapOptions struct {
	Size     int     // width and height in pixels
	Min, Max float64 // value range mapped onto the colormap
	Colormap Colormap
	// Value converts a result cell before scaling, e.g. loss to S-units.
	// Nil keeps the cell as is.
	Value func(cell float64) float64
}

var noData = color.RGBA{A: 255}

// RenderMap draws the swept disc, north up. Pixels outside the disc are
// transparent and cells without a value are black.
func RenderMap(res *sweep.Result, opts MapOptions) (*image.RGBA, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("image size %d", opts.Size)
	}
	if !(opts.Max > opts.Min) {
		return nil, fmt.Errorf("empty scale [%g, %g]", opts.Min, opts.Max)
	}
	cmap := opts.Colormap
	if cmap == nil {
		cmap = Jet
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	half := float64(opts.Size) / 2
	for py := 0; py < opts.Size; py++ {
		y := res.Center[1] + res.Radius*(half-float64(py))/half
		for px := 0; px < opts.Size; px++ {
			x := res.Center[0] + res.Radius*(float64(px)-half)/half
			if math.Hypot(x-res.Center[0], y-res.Center[1]) > res.Radius {
				continue
			}
			v := res.At(orb.Point{x, y})
			if opts.Value != nil {
				v = opts.Value(v)
			}
			if math.IsNaN(v) {
				img.SetRGBA(px, py, noData)
				continue
			}
			norm := math.Max(0, math.Min(1, (v-opts.Min)/(opts.Max-opts.Min)))
			img.SetRGBA(px, py, cmap(norm))
		}
	}
	return img, nil
}

// WritePNG renders the result and encodes it as PNG.
func WritePNG(w io.Writer, res *sweep.Result, opts MapOptions) error {
	img, err := RenderMap(res, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WritePNGFile renders the result to a PNG file at path.
func WritePNGFile(path string, res *sweep.Result, opts MapOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, res, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
