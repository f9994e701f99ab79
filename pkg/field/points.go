package field

import (
	"fmt"
	"math"

	"github.com/plumelab/plume/pkg/geom"
)

// Points is a cloud of positions with an optional value per point.
type Points struct {
	Positions []geom.Vec2
	Values    []float64
}

// NewPoints builds a point cloud. values may be nil (no per-point
// values) or one value per position.
func NewPoints(positions []geom.Vec2, values []float64) (*Points, error) {
	if values != nil && len(values) != len(positions) {
		return nil, fmt.Errorf(
			"point cloud has %d positions but %d values",
			len(positions), len(values),
		)
	}
	return &Points{Positions: positions, Values: values}, nil
}

func (f *Points) Kind() Kind {
	return KindPoints
}

func (f *Points) Bounds() geom.Box {
	if len(f.Positions) == 0 {
		return geom.Box{}
	}
	b := geom.Box{Lower: f.Positions[0], Upper: f.Positions[0]}
	for _, p := range f.Positions[1:] {
		b.Lower.X = math.Min(b.Lower.X, p.X)
		b.Lower.Y = math.Min(b.Lower.Y, p.Y)
		b.Upper.X = math.Max(b.Upper.X, p.X)
		b.Upper.Y = math.Max(b.Upper.Y, p.Y)
	}
	return b
}

func (f *Points) Render(maxRes int) Render {
	positions := f.Positions
	values := f.Values
	// keep at most maxRes^2 points on screen
	if limit := maxRes * maxRes; 0 < limit && limit < len(positions) {
		stride := (len(positions) + limit - 1) / limit
		kept := make([]geom.Vec2, 0, limit)
		var keptValues []float64
		if values != nil {
			keptValues = make([]float64, 0, limit)
		}
		for i := 0; i < len(positions); i += stride {
			kept = append(kept, positions[i])
			if values != nil {
				keptValues = append(keptValues, values[i])
			}
		}
		positions, values = kept, keptValues
	}

	min, max := 0.0, 0.0
	if len(values) != 0 {
		min, max = values[0], values[0]
		for _, v := range values[1:] {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	return Render{
		Kind:   KindPoints,
		Box:    f.Bounds(),
		Min:    min,
		Max:    max,
		Points: positions,
		Values: values,
	}
}
