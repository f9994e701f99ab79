package geom_test

import (
	"math"
	"testing"

	"github.com/plumelab/plume/pkg/geom"
	"github.com/plumelab/plume/pkg/utils/try"
)

func TestBox(t *testing.T) {
	t.Run("when corners are ordered, it is built", func(t *testing.T) {
		box := try.To(geom.NewBox(
			geom.Vec2{X: 1, Y: 2}, geom.Vec2{X: 3, Y: 6},
		)).OrFatal(t)

		if s := box.Size(); s.X != 2 || s.Y != 4 {
			t.Errorf("Size = %v, want {2 4}", s)
		}
		if c := box.Center(); c.X != 2 || c.Y != 4 {
			t.Errorf("Center = %v, want {2 4}", c)
		}
	})

	t.Run("when corners are swapped, it errors", func(t *testing.T) {
		if _, err := geom.NewBox(geom.Vec2{X: 3, Y: 0}, geom.Vec2{X: 1, Y: 1}); err == nil {
			t.Error("NewBox should reject upper < lower")
		}
	})

	t.Run("it contains its boundary", func(t *testing.T) {
		box := geom.UnitBox()
		for _, p := range []geom.Vec2{
			{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0.5, Y: 0.5}, {X: 1, Y: 0},
		} {
			if !box.Contains(p) {
				t.Errorf("unit box should contain %v", p)
			}
		}
		for _, p := range []geom.Vec2{
			{X: -0.1, Y: 0.5}, {X: 0.5, Y: 1.1},
		} {
			if box.Contains(p) {
				t.Errorf("unit box should not contain %v", p)
			}
		}
	})
}

func TestSphere(t *testing.T) {
	s := geom.Sphere{Center: geom.Vec2{X: 2, Y: 2}, Radius: 1}

	if !s.Contains(geom.Vec2{X: 2, Y: 3}) {
		t.Error("sphere should contain a point on its rim")
	}
	if s.Contains(geom.Vec2{X: 2, Y: 3.01}) {
		t.Error("sphere should not contain a point beyond its rim")
	}

	b := s.Bounds()
	if b.Lower.X != 1 || b.Lower.Y != 1 || b.Upper.X != 3 || b.Upper.Y != 3 {
		t.Errorf("Bounds = %v, want [1,1]..[3,3]", b)
	}
}

func TestUnion(t *testing.T) {
	t.Run("it contains points of each member", func(t *testing.T) {
		u := geom.Union(
			geom.Sphere{Center: geom.Vec2{X: 0, Y: 0}, Radius: 1},
			geom.Sphere{Center: geom.Vec2{X: 10, Y: 0}, Radius: 1},
		)
		if !u.Contains(geom.Vec2{X: 0.5, Y: 0}) || !u.Contains(geom.Vec2{X: 10.5, Y: 0}) {
			t.Error("union should contain points inside either sphere")
		}
		if u.Contains(geom.Vec2{X: 5, Y: 0}) {
			t.Error("union should not contain the gap between members")
		}
	})

	t.Run("its bounds enclose all members", func(t *testing.T) {
		u := geom.Union(
			geom.Sphere{Center: geom.Vec2{X: 0, Y: 0}, Radius: 1},
			geom.Sphere{Center: geom.Vec2{X: 10, Y: 0}, Radius: 2},
		)
		b := u.Bounds()
		if b.Lower.X != -1 || b.Upper.X != 12 || b.Lower.Y != -2 || b.Upper.Y != 2 {
			t.Errorf("Bounds = %v, want [-1,-2]..[12,2]", b)
		}
	})

	t.Run("union of nothing contains nothing", func(t *testing.T) {
		if geom.Union().Contains(geom.Vec2{}) {
			t.Error("empty union should contain no point")
		}
	})
}

func TestGrid(t *testing.T) {
	t.Run("cell centers cover the box uniformly", func(t *testing.T) {
		g := try.To(geom.NewGrid(4, 2, geom.Box{
			Lower: geom.Vec2{X: 0, Y: 0}, Upper: geom.Vec2{X: 4, Y: 2},
		})).OrFatal(t)

		if cs := g.CellSize(); cs.X != 1 || cs.Y != 1 {
			t.Errorf("CellSize = %v, want {1 1}", cs)
		}
		if c := g.CellCenter(0, 0); c.X != 0.5 || c.Y != 0.5 {
			t.Errorf("CellCenter(0,0) = %v, want {0.5 0.5}", c)
		}
		if c := g.CellCenter(3, 1); c.X != 3.5 || c.Y != 1.5 {
			t.Errorf("CellCenter(3,1) = %v, want {3.5 1.5}", c)
		}
	})

	t.Run("CellAt inverts CellCenter, with the upper edge clamped", func(t *testing.T) {
		g := try.To(geom.NewGrid(8, 8, geom.UnitBox())).OrFatal(t)

		ix, iy, ok := g.CellAt(g.CellCenter(5, 2))
		if !ok || ix != 5 || iy != 2 {
			t.Errorf("CellAt(center of (5,2)) = (%d, %d, %v)", ix, iy, ok)
		}

		ix, iy, ok = g.CellAt(geom.Vec2{X: 1, Y: 1})
		if !ok || ix != 7 || iy != 7 {
			t.Errorf("CellAt(upper corner) = (%d, %d, %v), want last cell", ix, iy, ok)
		}

		if _, _, ok := g.CellAt(geom.Vec2{X: 1.5, Y: 0}); ok {
			t.Error("CellAt outside the box should not be ok")
		}
	})

	t.Run("Mask counts cells inside the geometry", func(t *testing.T) {
		g := try.To(geom.NewGrid(16, 16, geom.UnitBox())).OrFatal(t)
		mask := g.Mask(geom.Sphere{Center: geom.Vec2{X: 0.5, Y: 0.5}, Radius: 0.25})

		inside := 0.0
		for _, v := range mask {
			inside += v
		}
		// pi * r^2 in cell units: pi * 16 ~ 50, rasterized
		area := inside / float64(g.Len())
		if math.Abs(area-math.Pi*0.25*0.25) > 0.05 {
			t.Errorf("masked area fraction = %v, want about %v", area, math.Pi*0.0625)
		}
	})

	t.Run("degenerate grids are rejected", func(t *testing.T) {
		if _, err := geom.NewGrid(0, 4, geom.UnitBox()); err == nil {
			t.Error("NewGrid should reject zero width")
		}
		if _, err := geom.NewGrid(4, 4, geom.Box{}); err == nil {
			t.Error("NewGrid should reject an empty box")
		}
	})
}
