package field_test

import (
	"context"
	"math"
	"testing"

	"github.com/plumelab/plume/pkg/cmp"
	"github.com/plumelab/plume/pkg/field"
	"github.com/plumelab/plume/pkg/geom"
	"github.com/plumelab/plume/pkg/utils/try"
)

func grid(t *testing.T, w, h int) geom.Grid {
	t.Helper()
	return try.To(geom.NewGrid(w, h, geom.Box{
		Lower: geom.Vec2{},
		Upper: geom.Vec2{X: float64(w), Y: float64(h)},
	})).OrFatal(t)
}

func TestScalarGrid(t *testing.T) {
	t.Run("when value count mismatches the grid, it errors", func(t *testing.T) {
		if _, err := field.NewScalarGrid(grid(t, 4, 4), make([]float64, 15)); err == nil {
			t.Error("NewScalarGrid should reject 15 values on a 4x4 grid")
		}
	})

	t.Run("it stores values row-major", func(t *testing.T) {
		f := field.Zeros(grid(t, 3, 2))
		f.Set(2, 1, 7)
		if f.Values[1*3+2] != 7 {
			t.Errorf("Set(2,1) should write index 5, values = %v", f.Values)
		}
		if f.At(2, 1) != 7 {
			t.Errorf("At(2,1) = %v, want 7", f.At(2, 1))
		}
	})

	t.Run("MinMax and Total scan all cells", func(t *testing.T) {
		f := try.To(field.NewScalarGrid(grid(t, 2, 2), []float64{3, -1, 4, 2})).OrFatal(t)
		min, max := f.MinMax()
		if min != -1 || max != 4 {
			t.Errorf("MinMax = (%v, %v), want (-1, 4)", min, max)
		}
		if f.Total() != 8 {
			t.Errorf("Total = %v, want 8", f.Total())
		}
	})

	t.Run("Sample interpolates between cell centers", func(t *testing.T) {
		f := try.To(field.NewScalarGrid(grid(t, 2, 1), []float64{0, 10})).OrFatal(t)

		// cell centers are at x=0.5 (value 0) and x=1.5 (value 10)
		if v := f.Sample(geom.Vec2{X: 0.5, Y: 0.5}); v != 0 {
			t.Errorf("Sample at first center = %v, want 0", v)
		}
		if v := f.Sample(geom.Vec2{X: 1.0, Y: 0.5}); math.Abs(v-5) > 1e-12 {
			t.Errorf("Sample at midpoint = %v, want 5", v)
		}
		// beyond the last center, clamp
		if v := f.Sample(geom.Vec2{X: 99, Y: 0.5}); v != 10 {
			t.Errorf("Sample clamped = %v, want 10", v)
		}
	})

	t.Run("Downsample caps the resolution and keeps the mean", func(t *testing.T) {
		f := field.Zeros(grid(t, 64, 32))
		for i := range f.Values {
			f.Values[i] = float64(i % 7)
		}

		d := f.Downsample(16)
		if d.Grid.W != 16 || d.Grid.H != 8 {
			t.Errorf("Downsample(16) grid = %dx%d, want 16x8", d.Grid.W, d.Grid.H)
		}
		if d.Grid.Box != f.Grid.Box {
			t.Error("Downsample should preserve bounds")
		}
		if math.Abs(d.Total()/float64(d.Grid.Len())-f.Total()/float64(f.Grid.Len())) > 1e-12 {
			t.Error("Downsample should preserve the mean value")
		}
	})

	t.Run("Downsample within the cap returns the field unchanged", func(t *testing.T) {
		f := field.Zeros(grid(t, 8, 8))
		if d := f.Downsample(16); d != f {
			t.Error("Downsample should return the receiver when already small enough")
		}
	})
}

func TestVectorGrid(t *testing.T) {
	t.Run("Component extracts x, y and length", func(t *testing.T) {
		f := try.To(field.NewVectorGrid(
			grid(t, 2, 1), []float64{3, 0}, []float64{4, 2},
		)).OrFatal(t)

		x := try.To(f.Component(field.ComponentX)).OrFatal(t)
		if !cmp.SliceEq(x.Values, []float64{3, 0}) {
			t.Errorf("x component = %v, want [3 0]", x.Values)
		}
		y := try.To(f.Component(field.ComponentY)).OrFatal(t)
		if !cmp.SliceEq(y.Values, []float64{4, 2}) {
			t.Errorf("y component = %v, want [4 2]", y.Values)
		}
		l := try.To(f.Component(field.ComponentLength)).OrFatal(t)
		if !cmp.SliceEq(l.Values, []float64{5, 2}) {
			t.Errorf("length component = %v, want [5 2]", l.Values)
		}
	})

	t.Run("unknown components are rejected", func(t *testing.T) {
		if _, err := field.ParseComponent("z"); err == nil {
			t.Error(`ParseComponent("z") should error`)
		}
		if c := try.To(field.ParseComponent("length")).OrFatal(t); c != field.ComponentLength {
			t.Errorf("ParseComponent = %q, want length", c)
		}
	})

	t.Run("Render reports min/max over vector lengths", func(t *testing.T) {
		f := try.To(field.NewVectorGrid(
			grid(t, 2, 1), []float64{3, 1}, []float64{4, 0},
		)).OrFatal(t)

		r := f.Render(0)
		if r.Kind != field.KindVector {
			t.Errorf("Kind = %q, want vector", r.Kind)
		}
		if r.Min != 1 || r.Max != 5 {
			t.Errorf("Min/Max = %v/%v, want 1/5", r.Min, r.Max)
		}
	})
}

func TestPoints(t *testing.T) {
	t.Run("value count must match positions", func(t *testing.T) {
		if _, err := field.NewPoints(
			[]geom.Vec2{{X: 1}, {X: 2}}, []float64{1},
		); err == nil {
			t.Error("NewPoints should reject mismatched values")
		}
	})

	t.Run("Bounds encloses all points", func(t *testing.T) {
		f := try.To(field.NewPoints([]geom.Vec2{
			{X: -1, Y: 2}, {X: 3, Y: 0}, {X: 1, Y: 5},
		}, nil)).OrFatal(t)

		b := f.Bounds()
		if b.Lower.X != -1 || b.Lower.Y != 0 || b.Upper.X != 3 || b.Upper.Y != 5 {
			t.Errorf("Bounds = %v, want [-1,0]..[3,5]", b)
		}
	})

	t.Run("Render drops points beyond the display cap", func(t *testing.T) {
		positions := make([]geom.Vec2, 100)
		for i := range positions {
			positions[i] = geom.Vec2{X: float64(i)}
		}
		f := try.To(field.NewPoints(positions, nil)).OrFatal(t)

		r := f.Render(3) // cap = 9 points
		if len(r.Points) == 0 || 9 < len(r.Points) {
			t.Errorf("Render(3) kept %d points, want at most 9", len(r.Points))
		}
	})
}

func TestStatic(t *testing.T) {
	t.Run("it always returns the wrapped field", func(t *testing.T) {
		f := field.Zeros(grid(t, 2, 2))
		gen := field.Static(f)

		got := try.To(gen(context.Background())).OrFatal(t)
		if got != field.Field(f) {
			t.Error("Static generator should return the wrapped field")
		}
	})
}
