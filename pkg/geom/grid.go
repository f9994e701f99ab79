package geom

import "fmt"

// Grid maps a W x H cell lattice onto a box. Cells are indexed
// row-major: index = iy*W + ix, with (0,0) at the lower corner.
type Grid struct {
	W   int `json:"w"`
	H   int `json:"h"`
	Box Box `json:"box"`
}

// NewGrid builds a Grid over box with w x h cells.
func NewGrid(w, h int, box Box) (Grid, error) {
	if w <= 0 || h <= 0 {
		return Grid{}, fmt.Errorf("grid resolution %dx%d is not positive", w, h)
	}
	sz := box.Size()
	if sz.X <= 0 || sz.Y <= 0 {
		return Grid{}, fmt.Errorf("grid box %v has no area", box)
	}
	return Grid{W: w, H: h, Box: box}, nil
}

// Len is the cell count, W*H.
func (g Grid) Len() int {
	return g.W * g.H
}

// CellSize is the extent of one cell.
func (g Grid) CellSize() Vec2 {
	sz := g.Box.Size()
	return Vec2{X: sz.X / float64(g.W), Y: sz.Y / float64(g.H)}
}

// Index converts cell coordinates to the row-major index.
func (g Grid) Index(ix, iy int) int {
	return iy*g.W + ix
}

// CellCenter is the center point of cell (ix, iy).
func (g Grid) CellCenter(ix, iy int) Vec2 {
	cs := g.CellSize()
	return Vec2{
		X: g.Box.Lower.X + (float64(ix)+0.5)*cs.X,
		Y: g.Box.Lower.Y + (float64(iy)+0.5)*cs.Y,
	}
}

// CellAt finds the cell containing point p.
// ok is false when p lies outside the grid box.
func (g Grid) CellAt(p Vec2) (ix, iy int, ok bool) {
	if !g.Box.Contains(p) {
		return 0, 0, false
	}
	cs := g.CellSize()
	ix = int((p.X - g.Box.Lower.X) / cs.X)
	iy = int((p.Y - g.Box.Lower.Y) / cs.Y)
	// the upper box edge belongs to the last cell
	if ix == g.W {
		ix = g.W - 1
	}
	if iy == g.H {
		iy = g.H - 1
	}
	return ix, iy, true
}

// Mask rasterizes geo onto the grid: 1.0 where the cell center is
// inside geo, 0.0 elsewhere. Row-major, length Len().
func (g Grid) Mask(geo Geometry) []float64 {
	mask := make([]float64, g.Len())
	for iy := 0; iy < g.H; iy += 1 {
		for ix := 0; ix < g.W; ix += 1 {
			if geo.Contains(g.CellCenter(ix, iy)) {
				mask[g.Index(ix, iy)] = 1.0
			}
		}
	}
	return mask
}
