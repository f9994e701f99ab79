package field

import (
	"fmt"
	"math"

	"github.com/plumelab/plume/pkg/geom"
)

// Component selects a scalar view of a vector field.
type Component string

const (
	ComponentX      Component = "x"
	ComponentY      Component = "y"
	ComponentLength Component = "length"
)

// ParseComponent validates a component name from a request.
func ParseComponent(s string) (Component, error) {
	switch c := Component(s); c {
	case ComponentX, ComponentY, ComponentLength:
		return c, nil
	default:
		return "", fmt.Errorf(`unknown component %q (want "x", "y" or "length")`, s)
	}
}

// VectorGrid is a 2-D vector quantity sampled at cell centers,
// stored as separate U (x-component) and V (y-component) planes.
type VectorGrid struct {
	Grid geom.Grid
	U    []float64
	V    []float64
}

// NewVectorGrid builds a VectorGrid over g.
// u and v must each have length g.Len(); nil allocates zeros.
func NewVectorGrid(g geom.Grid, u, v []float64) (*VectorGrid, error) {
	if u == nil {
		u = make([]float64, g.Len())
	}
	if v == nil {
		v = make([]float64, g.Len())
	}
	if len(u) != g.Len() || len(v) != g.Len() {
		return nil, fmt.Errorf(
			"vector grid %dx%d needs %d values per component, got u=%d v=%d",
			g.W, g.H, g.Len(), len(u), len(v),
		)
	}
	return &VectorGrid{Grid: g, U: u, V: v}, nil
}

// ZeroVectors is a zero-valued VectorGrid over g.
func ZeroVectors(g geom.Grid) *VectorGrid {
	return &VectorGrid{
		Grid: g,
		U:    make([]float64, g.Len()),
		V:    make([]float64, g.Len()),
	}
}

func (f *VectorGrid) Kind() Kind {
	return KindVector
}

func (f *VectorGrid) Bounds() geom.Box {
	return f.Grid.Box
}

func (f *VectorGrid) AtVec(ix, iy int) geom.Vec2 {
	i := f.Grid.Index(ix, iy)
	return geom.Vec2{X: f.U[i], Y: f.V[i]}
}

func (f *VectorGrid) SetVec(ix, iy int, v geom.Vec2) {
	i := f.Grid.Index(ix, iy)
	f.U[i] = v.X
	f.V[i] = v.Y
}

func (f *VectorGrid) Clone() *VectorGrid {
	u := make([]float64, len(f.U))
	v := make([]float64, len(f.V))
	copy(u, f.U)
	copy(v, f.V)
	return &VectorGrid{Grid: f.Grid, U: u, V: v}
}

// Component extracts a scalar view: the x or y plane, or the
// per-cell vector length.
func (f *VectorGrid) Component(c Component) (*ScalarGrid, error) {
	switch c {
	case ComponentX:
		return NewScalarGrid(f.Grid, f.U)
	case ComponentY:
		return NewScalarGrid(f.Grid, f.V)
	case ComponentLength:
		length := make([]float64, f.Grid.Len())
		for i := range length {
			length[i] = math.Hypot(f.U[i], f.V[i])
		}
		return NewScalarGrid(f.Grid, length)
	default:
		return nil, fmt.Errorf("unknown component %q", c)
	}
}

// SampleVec interpolates both components bilinearly at point p.
func (f *VectorGrid) SampleVec(p geom.Vec2) geom.Vec2 {
	u := ScalarGrid{Grid: f.Grid, Values: f.U}
	v := ScalarGrid{Grid: f.Grid, Values: f.V}
	return geom.Vec2{X: u.Sample(p), Y: v.Sample(p)}
}

// Downsample block-averages both components so that no axis exceeds
// maxRes cells. When the grid already fits, the receiver is returned.
func (f *VectorGrid) Downsample(maxRes int) *VectorGrid {
	stride := downsampleStride(f.Grid, maxRes)
	if stride == 1 {
		return f
	}
	u := ScalarGrid{Grid: f.Grid, Values: f.U}
	v := ScalarGrid{Grid: f.Grid, Values: f.V}
	du := u.Downsample(maxRes)
	dv := v.Downsample(maxRes)
	return &VectorGrid{Grid: du.Grid, U: du.Values, V: dv.Values}
}

func (f *VectorGrid) Render(maxRes int) Render {
	d := f.Downsample(maxRes)
	min, max := math.Inf(1), math.Inf(-1)
	for i := range d.U {
		l := math.Hypot(d.U[i], d.V[i])
		if l < min {
			min = l
		}
		if l > max {
			max = l
		}
	}
	return Render{
		Kind: KindVector,
		Box:  d.Grid.Box,
		W:    d.Grid.W,
		H:    d.Grid.H,
		Min:  min,
		Max:  max,
		U:    d.U,
		V:    d.V,
	}
}
