// Package sim is a compact 2-D smoke model: enough physics for living
// demo content (buoyant plumes), not a full fluid solver.
package sim

import (
	"github.com/plumelab/plume/pkg/field"
)

// Advect moves a scalar through the velocity field for one step of
// length dt, semi-Lagrangian: each cell pulls the value from where its
// content came from. Advecting a uniform scalar leaves it uniform.
func Advect(d *field.ScalarGrid, vel *field.VectorGrid, dt float64) *field.ScalarGrid {
	out := field.Zeros(d.Grid)
	for iy := 0; iy < d.Grid.H; iy += 1 {
		for ix := 0; ix < d.Grid.W; ix += 1 {
			at := d.Grid.CellCenter(ix, iy)
			from := at.Sub(vel.SampleVec(at).Scale(dt))
			out.Set(ix, iy, d.Sample(from))
		}
	}
	return out
}

// AdvectVec advects both velocity components through the velocity
// field itself.
func AdvectVec(vel *field.VectorGrid, dt float64) *field.VectorGrid {
	u := &field.ScalarGrid{Grid: vel.Grid, Values: vel.U}
	v := &field.ScalarGrid{Grid: vel.Grid, Values: vel.V}
	nu := Advect(u, vel, dt)
	nv := Advect(v, vel, dt)
	return &field.VectorGrid{Grid: vel.Grid, U: nu.Values, V: nv.Values}
}

// Diffuse spreads the scalar with diffusivity k for one step of
// length dt, in flux form over interior faces. Every flux leaves one
// cell and enters its neighbor, so total mass is conserved exactly on
// the closed boundary; walls pass no flux.
//
// Stability wants k*dt below 0.25 in cell units.
func Diffuse(d *field.ScalarGrid, k, dt float64) *field.ScalarGrid {
	out := d.Clone()
	a := k * dt
	for iy := 0; iy < d.Grid.H; iy += 1 {
		for ix := 0; ix < d.Grid.W; ix += 1 {
			// right and upper faces only, each interior face once
			if ix+1 < d.Grid.W {
				flux := a * (d.At(ix+1, iy) - d.At(ix, iy))
				out.Set(ix, iy, out.At(ix, iy)+flux)
				out.Set(ix+1, iy, out.At(ix+1, iy)-flux)
			}
			if iy+1 < d.Grid.H {
				flux := a * (d.At(ix, iy+1) - d.At(ix, iy))
				out.Set(ix, iy, out.At(ix, iy)+flux)
				out.Set(ix, iy+1, out.At(ix, iy+1)-flux)
			}
		}
	}
	return out
}

// Divergence is the discrete divergence of vel in cell units, forward
// differences, with the box treated as closed: velocity beyond a wall
// is zero.
func Divergence(vel *field.VectorGrid) *field.ScalarGrid {
	out := field.Zeros(vel.Grid)
	w, h := vel.Grid.W, vel.Grid.H
	for iy := 0; iy < h; iy += 1 {
		for ix := 0; ix < w; ix += 1 {
			div := -vel.AtVec(ix, iy).X - vel.AtVec(ix, iy).Y
			if ix+1 < w {
				div += vel.AtVec(ix+1, iy).X
			}
			if iy+1 < h {
				div += vel.AtVec(ix, iy+1).Y
			}
			out.Set(ix, iy, div)
		}
	}
	return out
}

// Project makes vel approximately divergence-free inside the box:
// iters Jacobi sweeps solve the pressure Poisson equation (Neumann
// walls), then the backward-difference pressure gradient is subtracted.
// The gradient is the adjoint of Divergence, so interior divergence
// falls to the Jacobi residual. Wall-normal components stay pinned to
// zero (closed box).
func Project(vel *field.VectorGrid, iters int) *field.VectorGrid {
	out := vel.Clone()
	closeWalls(out)

	div := Divergence(out)
	g := vel.Grid
	w, h := g.W, g.H

	p := field.Zeros(g)
	next := field.Zeros(g)
	for it := 0; it < iters; it += 1 {
		for iy := 0; iy < h; iy += 1 {
			for ix := 0; ix < w; ix += 1 {
				// Neumann walls: the missing neighbor mirrors the cell
				left, right := p.At(clamp(ix-1, w), iy), p.At(clamp(ix+1, w), iy)
				down, up := p.At(ix, clamp(iy-1, h)), p.At(ix, clamp(iy+1, h))
				next.Set(ix, iy, (left+right+down+up-div.At(ix, iy))/4)
			}
		}
		p, next = next, p
	}

	for iy := 0; iy < h; iy += 1 {
		for ix := 0; ix < w; ix += 1 {
			v := out.AtVec(ix, iy)
			if 0 < ix && ix < w-1 { // wall-adjacent u stays pinned
				v.X -= p.At(ix, iy) - p.At(ix-1, iy)
			}
			if 0 < iy && iy < h-1 {
				v.Y -= p.At(ix, iy) - p.At(ix, iy-1)
			}
			out.SetVec(ix, iy, v)
		}
	}
	closeWalls(out)
	return out
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if n <= i {
		return n - 1
	}
	return i
}

// closeWalls zeroes the velocity component normal to each wall.
func closeWalls(vel *field.VectorGrid) {
	w, h := vel.Grid.W, vel.Grid.H
	for iy := 0; iy < h; iy += 1 {
		vel.U[vel.Grid.Index(0, iy)] = 0
		vel.U[vel.Grid.Index(w-1, iy)] = 0
	}
	for ix := 0; ix < w; ix += 1 {
		vel.V[vel.Grid.Index(ix, 0)] = 0
		vel.V[vel.Grid.Index(ix, h-1)] = 0
	}
}
