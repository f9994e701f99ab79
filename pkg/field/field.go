// Package field holds the simulation quantities an application exposes
// to the GUI: scalar grids, vector grids, and point clouds.
//
// Fields reach the GUI through Generators. A Generator is re-evaluated
// on each refresh, so a field can show live state; Static wraps a
// quantity that never changes.
package field

import (
	"context"

	"github.com/plumelab/plume/pkg/geom"
)

type Kind string

const (
	KindScalar Kind = "scalar"
	KindVector Kind = "vector"
	KindPoints Kind = "points"
)

// Field is a displayable simulation quantity.
type Field interface {
	Kind() Kind
	Bounds() geom.Box

	// Render converts the field into the JSON shape the GUI consumes,
	// downsampled so that no grid axis exceeds maxRes cells
	// (maxRes <= 0 means no cap). Render never mutates the field.
	Render(maxRes int) Render
}

// Generator produces the current value of a named field.
type Generator func(ctx context.Context) (Field, error)

// Static wraps a constant field as a Generator.
func Static(f Field) Generator {
	return func(context.Context) (Field, error) {
		return f, nil
	}
}

// Render is the wire shape of a field for the GUI.
type Render struct {
	Kind Kind     `json:"kind"`
	Box  geom.Box `json:"box"`
	W    int      `json:"w,omitempty"`
	H    int      `json:"h,omitempty"`
	Min  float64  `json:"min"`
	Max  float64  `json:"max"`

	// scalar grids
	Values []float64 `json:"values,omitempty"`

	// vector grids
	U []float64 `json:"u,omitempty"`
	V []float64 `json:"v,omitempty"`

	// point clouds
	Points []geom.Vec2 `json:"points,omitempty"`
}
