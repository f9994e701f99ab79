// Package train holds trainable parameters, optimizers and loss
// helpers for interactive training applications.
package train

import (
	"fmt"
	"strings"

	"github.com/plumelab/plume/pkg/utils/slices"
)

// Tensor is one named parameter: a shape and its flattened values.
// Optimizers update Values in place and never change the shape.
type Tensor struct {
	Dims   []int
	Values []float64
}

// Params is an ordered, named collection of tensors. Names are
// path-like ("model/stencil/weights"); use Scope to build them.
//
// Params is not safe for concurrent use. The application serializes
// access (steps, checkpoints and GUI reads all go through its lock).
type Params struct {
	order  []string
	byName map[string]*Tensor
}

func NewParams() *Params {
	return &Params{byName: map[string]*Tensor{}}
}

// Add registers a parameter. init must match the shape (nil allocates
// zeros). Registering a name twice is an error.
func (p *Params) Add(name string, dims []int, init []float64) (*Tensor, error) {
	if name == "" {
		return nil, fmt.Errorf("parameter needs a name")
	}
	if _, ok := p.byName[name]; ok {
		return nil, fmt.Errorf("parameter %q is already registered", name)
	}
	n := 1
	for _, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("parameter %q: dimension %d is not positive", name, d)
		}
		n *= d
	}
	if init == nil {
		init = make([]float64, n)
	}
	if len(init) != n {
		return nil, fmt.Errorf(
			"parameter %q: shape %v wants %d values, got %d", name, dims, n, len(init),
		)
	}

	t := &Tensor{Dims: dims, Values: init}
	p.order = append(p.order, name)
	p.byName[name] = t
	return t, nil
}

// Get looks a parameter up by its full name.
func (p *Params) Get(name string) (*Tensor, bool) {
	t, ok := p.byName[name]
	return t, ok
}

// Names lists all parameter names in registration order.
func (p *Params) Names() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// Visit calls fn for each parameter in registration order.
func (p *Params) Visit(fn func(name string, t *Tensor)) {
	for _, name := range p.order {
		fn(name, p.byName[name])
	}
}

// Snapshot deep-copies all parameter values, keyed by name.
func (p *Params) Snapshot() map[string][]float64 {
	snapshot := make(map[string][]float64, len(p.order))
	for name, t := range p.byName {
		values := make([]float64, len(t.Values))
		copy(values, t.Values)
		snapshot[name] = values
	}
	return snapshot
}

// Restore writes snapshot values back into the registered parameters.
// Every snapshot entry must name a known parameter of matching size;
// parameters missing from the snapshot keep their current values.
func (p *Params) Restore(snapshot map[string][]float64) error {
	for name, values := range snapshot {
		t, ok := p.byName[name]
		if !ok {
			return fmt.Errorf("snapshot holds unknown parameter %q", name)
		}
		if len(values) != len(t.Values) {
			return fmt.Errorf(
				"snapshot parameter %q has %d values, want %d",
				name, len(values), len(t.Values),
			)
		}
	}
	for name, values := range snapshot {
		copy(p.byName[name].Values, values)
	}
	return nil
}

// Scope returns a naming context under prefix.
func (p *Params) Scope(prefix string) *Scope {
	return &Scope{params: p, prefix: prefix}
}

// Scope groups parameters under a path prefix, so they are saved,
// loaded and displayed together. Nested scopes join with "/".
type Scope struct {
	params *Params
	prefix string
}

// Name is the scope's full prefix.
func (s *Scope) Name() string {
	return s.prefix
}

// Scope opens a nested scope.
func (s *Scope) Scope(prefix string) *Scope {
	return &Scope{params: s.params, prefix: s.prefix + "/" + prefix}
}

// Add registers a parameter under the scope prefix.
func (s *Scope) Add(name string, dims []int, init []float64) (*Tensor, error) {
	return s.params.Add(s.prefix+"/"+name, dims, init)
}

// Get looks up a parameter by its scope-relative name.
func (s *Scope) Get(name string) (*Tensor, bool) {
	return s.params.Get(s.prefix + "/" + name)
}

// Names lists the full names of all parameters under this scope.
func (s *Scope) Names() []string {
	return slices.Filter(s.params.order, func(name string) bool {
		return strings.HasPrefix(name, s.prefix+"/")
	})
}
