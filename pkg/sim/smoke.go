package sim

import (
	"github.com/plumelab/plume/pkg/field"
	"github.com/plumelab/plume/pkg/geom"
)

type smokeConfig struct {
	buoyancy        float64
	diffusion       float64
	inflowRate      float64
	projectionIters int
}

type Option func(*smokeConfig)

// WithBuoyancy sets the upward force per unit density (default 0.1).
func WithBuoyancy(b float64) Option {
	return func(c *smokeConfig) { c.buoyancy = b }
}

// WithDiffusion sets the density diffusivity in cell units
// (default 0.01).
func WithDiffusion(k float64) Option {
	return func(c *smokeConfig) { c.diffusion = k }
}

// WithInflowRate sets the density added per unit time inside the
// inflow region (default 1).
func WithInflowRate(r float64) Option {
	return func(c *smokeConfig) { c.inflowRate = r }
}

// WithProjectionIters sets the Jacobi sweep count of the pressure
// solve (default 40).
func WithProjectionIters(n int) Option {
	return func(c *smokeConfig) { c.projectionIters = n }
}

// Smoke is a buoyant plume in a closed box: density rises, stirs the
// velocity field, and new smoke enters through the inflow region.
type Smoke struct {
	grid     geom.Grid
	inflow   []float64 // rasterized inflow mask
	density  *field.ScalarGrid
	velocity *field.VectorGrid
	conf     smokeConfig
}

// NewSmoke builds a smoke model on g with smoke entering inside the
// inflow region.
func NewSmoke(g geom.Grid, inflow geom.Geometry, opts ...Option) *Smoke {
	conf := smokeConfig{
		buoyancy:        0.1,
		diffusion:       0.01,
		inflowRate:      1,
		projectionIters: 40,
	}
	for _, opt := range opts {
		opt(&conf)
	}
	return &Smoke{
		grid:     g,
		inflow:   g.Mask(inflow),
		density:  field.Zeros(g),
		velocity: field.ZeroVectors(g),
		conf:     conf,
	}
}

// Step advances the model by dt: inflow, buoyancy, advection,
// diffusion, pressure projection.
func (s *Smoke) Step(dt float64) {
	for i, m := range s.inflow {
		s.density.Values[i] += m * s.conf.inflowRate * dt
	}

	for i, d := range s.density.Values {
		s.velocity.V[i] += s.conf.buoyancy * d * dt
	}

	s.velocity = AdvectVec(s.velocity, dt)
	s.velocity = Project(s.velocity, s.conf.projectionIters)

	s.density = Advect(s.density, s.velocity, dt)
	if 0 < s.conf.diffusion {
		s.density = Diffuse(s.density, s.conf.diffusion, dt)
	}
}

// Density is the live density field. Callers must not use it across a
// concurrent Step; the owning application serializes access.
func (s *Smoke) Density() *field.ScalarGrid {
	return s.density
}

// Velocity is the live velocity field, under the same access rule as
// Density.
func (s *Smoke) Velocity() *field.VectorGrid {
	return s.velocity
}

// InflowRate reads the current inflow rate.
func (s *Smoke) InflowRate() float64 {
	return s.conf.inflowRate
}

// SetInflowRate adjusts how much smoke enters per unit time.
func (s *Smoke) SetInflowRate(r float64) {
	s.conf.inflowRate = r
}

// Reset clears density and velocity back to rest.
func (s *Smoke) Reset() {
	s.density = field.Zeros(s.grid)
	s.velocity = field.ZeroVectors(s.grid)
}
