package field

import (
	"fmt"
	"math"

	"github.com/plumelab/plume/pkg/geom"
)

// ScalarGrid is a 2-D scalar quantity sampled at cell centers.
// Values are row-major over the grid (index = iy*W + ix).
type ScalarGrid struct {
	Grid   geom.Grid
	Values []float64
}

// NewScalarGrid builds a ScalarGrid over g.
// values must have length g.Len(); nil allocates zeros.
func NewScalarGrid(g geom.Grid, values []float64) (*ScalarGrid, error) {
	if values == nil {
		values = make([]float64, g.Len())
	}
	if len(values) != g.Len() {
		return nil, fmt.Errorf(
			"scalar grid %dx%d needs %d values, got %d",
			g.W, g.H, g.Len(), len(values),
		)
	}
	return &ScalarGrid{Grid: g, Values: values}, nil
}

// Zeros is a zero-valued ScalarGrid over g.
func Zeros(g geom.Grid) *ScalarGrid {
	return &ScalarGrid{Grid: g, Values: make([]float64, g.Len())}
}

func (f *ScalarGrid) Kind() Kind {
	return KindScalar
}

func (f *ScalarGrid) Bounds() geom.Box {
	return f.Grid.Box
}

func (f *ScalarGrid) At(ix, iy int) float64 {
	return f.Values[f.Grid.Index(ix, iy)]
}

func (f *ScalarGrid) Set(ix, iy int, v float64) {
	f.Values[f.Grid.Index(ix, iy)] = v
}

func (f *ScalarGrid) Clone() *ScalarGrid {
	values := make([]float64, len(f.Values))
	copy(values, f.Values)
	return &ScalarGrid{Grid: f.Grid, Values: values}
}

// Total is the sum over all cells.
func (f *ScalarGrid) Total() float64 {
	total := 0.0
	for _, v := range f.Values {
		total += v
	}
	return total
}

// MinMax returns the smallest and largest cell values.
func (f *ScalarGrid) MinMax() (min, max float64) {
	min, max = f.Values[0], f.Values[0]
	for _, v := range f.Values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Sample interpolates the field bilinearly at point p.
// Coordinates outside the box clamp to the edge cells.
func (f *ScalarGrid) Sample(p geom.Vec2) float64 {
	cs := f.Grid.CellSize()
	fx := (p.X-f.Grid.Box.Lower.X)/cs.X - 0.5
	fy := (p.Y-f.Grid.Box.Lower.Y)/cs.Y - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := clampIndex(x0+1, f.Grid.W)
	y1 := clampIndex(y0+1, f.Grid.H)
	x0 = clampIndex(x0, f.Grid.W)
	y0 = clampIndex(y0, f.Grid.H)

	v00 := f.At(x0, y0)
	v10 := f.At(x1, y0)
	v01 := f.At(x0, y1)
	v11 := f.At(x1, y1)

	return v00*(1-tx)*(1-ty) + v10*tx*(1-ty) + v01*(1-tx)*ty + v11*tx*ty
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if n <= i {
		return n - 1
	}
	return i
}

// Downsample block-averages the grid so that no axis exceeds maxRes
// cells. Bounds are preserved. When the grid already fits (or
// maxRes <= 0), the receiver itself is returned.
func (f *ScalarGrid) Downsample(maxRes int) *ScalarGrid {
	stride := downsampleStride(f.Grid, maxRes)
	if stride == 1 {
		return f
	}
	g := strided(f.Grid, stride)
	out := Zeros(g)
	for oy := 0; oy < g.H; oy += 1 {
		for ox := 0; ox < g.W; ox += 1 {
			out.Values[g.Index(ox, oy)] = f.blockMean(ox, oy, stride)
		}
	}
	return out
}

func (f *ScalarGrid) blockMean(ox, oy, stride int) float64 {
	sum, n := 0.0, 0
	for iy := oy * stride; iy < (oy+1)*stride && iy < f.Grid.H; iy += 1 {
		for ix := ox * stride; ix < (ox+1)*stride && ix < f.Grid.W; ix += 1 {
			sum += f.At(ix, iy)
			n += 1
		}
	}
	return sum / float64(n)
}

func downsampleStride(g geom.Grid, maxRes int) int {
	if maxRes <= 0 {
		return 1
	}
	longest := g.W
	if g.H > longest {
		longest = g.H
	}
	if longest <= maxRes {
		return 1
	}
	return (longest + maxRes - 1) / maxRes
}

func strided(g geom.Grid, stride int) geom.Grid {
	return geom.Grid{
		W:   (g.W + stride - 1) / stride,
		H:   (g.H + stride - 1) / stride,
		Box: g.Box,
	}
}

func (f *ScalarGrid) Render(maxRes int) Render {
	d := f.Downsample(maxRes)
	min, max := d.MinMax()
	return Render{
		Kind:   KindScalar,
		Box:    d.Grid.Box,
		W:      d.Grid.W,
		H:      d.Grid.H,
		Min:    min,
		Max:    max,
		Values: d.Values,
	}
}
