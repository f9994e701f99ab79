// Package geom models 2-D regions (boxes, spheres, unions) and the
// cell lattice that maps them onto simulation grids.
package geom

import (
	"fmt"
	"math"
)

// Vec2 is a 2-D point or displacement.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(w Vec2) float64 {
	return v.X*w.X + v.Y*w.Y
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Geometry is a region of 2-D space.
type Geometry interface {
	// Contains reports whether p lies inside the region.
	Contains(p Vec2) bool

	// Bounds returns an axis-aligned box enclosing the region.
	Bounds() Box
}

// Box is an axis-aligned box given by its lower and upper corners.
type Box struct {
	Lower Vec2 `json:"lower"`
	Upper Vec2 `json:"upper"`
}

// NewBox builds a Box, requiring lower <= upper per axis.
func NewBox(lower, upper Vec2) (Box, error) {
	if upper.X < lower.X || upper.Y < lower.Y {
		return Box{}, fmt.Errorf(
			"box upper corner %v is below lower corner %v", upper, lower,
		)
	}
	return Box{Lower: lower, Upper: upper}, nil
}

// UnitBox is the box [0,1] x [0,1].
func UnitBox() Box {
	return Box{Lower: Vec2{}, Upper: Vec2{X: 1, Y: 1}}
}

func (b Box) Contains(p Vec2) bool {
	return b.Lower.X <= p.X && p.X <= b.Upper.X &&
		b.Lower.Y <= p.Y && p.Y <= b.Upper.Y
}

func (b Box) Bounds() Box {
	return b
}

func (b Box) Size() Vec2 {
	return b.Upper.Sub(b.Lower)
}

func (b Box) Center() Vec2 {
	return b.Lower.Add(b.Size().Scale(0.5))
}

// Sphere is a disk in 2-D.
type Sphere struct {
	Center Vec2    `json:"center"`
	Radius float64 `json:"radius"`
}

func (s Sphere) Contains(p Vec2) bool {
	return p.Sub(s.Center).Len() <= s.Radius
}

func (s Sphere) Bounds() Box {
	r := Vec2{X: s.Radius, Y: s.Radius}
	return Box{Lower: s.Center.Sub(r), Upper: s.Center.Add(r)}
}

// Union combines regions; a point is contained when any member contains it.
//
// Union of nothing is the empty region.
func Union(geos ...Geometry) Geometry {
	return union(geos)
}

type union []Geometry

func (u union) Contains(p Vec2) bool {
	for _, g := range u {
		if g.Contains(p) {
			return true
		}
	}
	return false
}

func (u union) Bounds() Box {
	if len(u) == 0 {
		return Box{}
	}
	b := u[0].Bounds()
	for _, g := range u[1:] {
		gb := g.Bounds()
		b.Lower.X = math.Min(b.Lower.X, gb.Lower.X)
		b.Lower.Y = math.Min(b.Lower.Y, gb.Lower.Y)
		b.Upper.X = math.Max(b.Upper.X, gb.Upper.X)
		b.Upper.Y = math.Max(b.Upper.Y, gb.Upper.Y)
	}
	return b
}
