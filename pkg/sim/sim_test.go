package sim_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/plumelab/plume/pkg/field"
	"github.com/plumelab/plume/pkg/geom"
	"github.com/plumelab/plume/pkg/sim"
	"github.com/plumelab/plume/pkg/utils/try"
)

func grid(t *testing.T, n int) geom.Grid {
	t.Helper()
	return try.To(geom.NewGrid(n, n, geom.Box{
		Lower: geom.Vec2{},
		Upper: geom.Vec2{X: float64(n), Y: float64(n)},
	})).OrFatal(t)
}

func TestDiffuse(t *testing.T) {
	t.Run("total mass is conserved on the closed boundary", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		d := field.Zeros(grid(t, 24))
		for i := range d.Values {
			d.Values[i] = rng.Float64() * 10
		}
		before := d.Total()

		for step := 0; step < 50; step += 1 {
			d = sim.Diffuse(d, 0.2, 1)
		}

		if rel := math.Abs(d.Total()-before) / before; rel > 1e-9 {
			t.Errorf("mass drifted by %v relative, want <= 1e-9", rel)
		}
	})

	t.Run("it flattens gradients", func(t *testing.T) {
		d := field.Zeros(grid(t, 8))
		d.Set(4, 4, 100)

		for step := 0; step < 200; step += 1 {
			d = sim.Diffuse(d, 0.2, 1)
		}

		min, max := d.MinMax()
		if max-min > 10 {
			t.Errorf("after long diffusion spread = %v, want nearly flat", max-min)
		}
	})
}

func TestAdvect(t *testing.T) {
	t.Run("a uniform scalar stays uniform", func(t *testing.T) {
		g := grid(t, 16)
		d := field.Zeros(g)
		for i := range d.Values {
			d.Values[i] = 3.5
		}
		vel := field.ZeroVectors(g)
		rng := rand.New(rand.NewSource(3))
		for i := range vel.U {
			vel.U[i] = rng.Float64()*2 - 1
			vel.V[i] = rng.Float64()*2 - 1
		}

		out := sim.Advect(d, vel, 0.8)
		for i, v := range out.Values {
			if math.Abs(v-3.5) > 1e-12 {
				t.Fatalf("cell %d = %v, want 3.5", i, v)
			}
		}
	})

	t.Run("a constant wind translates a blob downwind", func(t *testing.T) {
		g := grid(t, 16)
		d := field.Zeros(g)
		d.Set(4, 8, 1)

		vel := field.ZeroVectors(g)
		for i := range vel.U {
			vel.U[i] = 1 // one cell per unit time, +x
		}

		out := d
		for step := 0; step < 3; step += 1 {
			out = sim.Advect(out, vel, 1)
		}

		// the blob's mass center should sit near x of cell 7
		cx, mass := 0.0, 0.0
		for iy := 0; iy < g.H; iy += 1 {
			for ix := 0; ix < g.W; ix += 1 {
				cx += float64(ix) * out.At(ix, iy)
				mass += out.At(ix, iy)
			}
		}
		if mass == 0 {
			t.Fatal("blob vanished")
		}
		if cx/mass < 6 || 8 < cx/mass {
			t.Errorf("blob center at x=%v, want near 7", cx/mass)
		}
	})
}

func TestProject(t *testing.T) {
	t.Run("projection kills interior divergence", func(t *testing.T) {
		g := grid(t, 8)
		vel := field.ZeroVectors(g)
		rng := rand.New(rand.NewSource(4))
		for i := range vel.U {
			vel.U[i] = rng.Float64()*2 - 1
			vel.V[i] = rng.Float64()*2 - 1
		}

		// rms over cells at least 2 away from the walls
		interiorRMS := func(d *field.ScalarGrid) float64 {
			sum, n := 0.0, 0
			for iy := 2; iy < d.Grid.H-2; iy += 1 {
				for ix := 2; ix < d.Grid.W-2; ix += 1 {
					v := d.At(ix, iy)
					sum += v * v
					n += 1
				}
			}
			return math.Sqrt(sum / float64(n))
		}

		before := interiorRMS(sim.Divergence(vel))
		projected := sim.Project(vel, 200)
		after := interiorRMS(sim.Divergence(projected))

		if after > before/10 {
			t.Errorf("interior divergence %v -> %v, want under a tenth", before, after)
		}
	})

	t.Run("walls stay closed", func(t *testing.T) {
		g := grid(t, 8)
		vel := field.ZeroVectors(g)
		for i := range vel.U {
			vel.U[i] = 1
			vel.V[i] = -1
		}

		projected := sim.Project(vel, 10)
		for iy := 0; iy < g.H; iy += 1 {
			if projected.AtVec(0, iy).X != 0 || projected.AtVec(g.W-1, iy).X != 0 {
				t.Fatal("x walls should have zero normal velocity")
			}
		}
		for ix := 0; ix < g.W; ix += 1 {
			if projected.AtVec(ix, 0).Y != 0 || projected.AtVec(ix, g.H-1).Y != 0 {
				t.Fatal("y walls should have zero normal velocity")
			}
		}
	})
}

func TestSmoke(t *testing.T) {
	newSmoke := func(t *testing.T) *sim.Smoke {
		g := grid(t, 24)
		inflow := geom.Sphere{Center: geom.Vec2{X: 12, Y: 4}, Radius: 2}
		return sim.NewSmoke(g, inflow, sim.WithProjectionIters(20))
	}

	t.Run("smoke accumulates and rises from the inflow", func(t *testing.T) {
		s := newSmoke(t)
		for i := 0; i < 30; i += 1 {
			s.Step(0.5)
		}

		d := s.Density()
		if d.Total() <= 0 {
			t.Fatal("inflow should add smoke")
		}

		// some smoke should be above the inflow region by now
		above := 0.0
		for iy := 8; iy < d.Grid.H; iy += 1 {
			for ix := 0; ix < d.Grid.W; ix += 1 {
				above += d.At(ix, iy)
			}
		}
		if above <= 0 {
			t.Error("buoyancy should carry smoke above the inflow")
		}

		for i, v := range d.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("cell %d is not finite: %v", i, v)
			}
		}
	})

	t.Run("inflow rate zero stops new smoke", func(t *testing.T) {
		s := newSmoke(t)
		s.SetInflowRate(0)
		s.Step(1)
		if s.Density().Total() != 0 {
			t.Error("no smoke should enter at rate 0")
		}
		if s.InflowRate() != 0 {
			t.Error("InflowRate should read back 0")
		}
	})

	t.Run("Reset clears the state", func(t *testing.T) {
		s := newSmoke(t)
		s.Step(1)
		s.Reset()
		if s.Density().Total() != 0 {
			t.Error("Reset should clear density")
		}
	})
}
