// Package control defines the editable values an application exposes
// in the GUI: bounded floats and ints, and bools. Edits arrive through
// the viewer and are applied between steps, never inside one.
package control

import (
	"fmt"
	"math"

	"github.com/plumelab/plume/pkg/utils/pointer"
)

type Kind string

const (
	KindFloat Kind = "float"
	KindInt   Kind = "int"
	KindBool  Kind = "bool"
)

// Control is one editable value. All values travel as float64 on the
// wire; Set rejects values that do not fit the control's kind or range.
type Control interface {
	Name() string
	Kind() Kind

	// Range is the allowed closed interval. ok is false for bools.
	Range() (min, max float64, ok bool)

	Get() float64
	Set(v float64) error
}

// State is the wire shape of a control for the GUI.
type State struct {
	Name  string   `json:"name"`
	Kind  Kind     `json:"kind"`
	Value float64  `json:"value"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// StateOf snapshots a control.
func StateOf(c Control) State {
	s := State{Name: c.Name(), Kind: c.Kind(), Value: c.Get()}
	if min, max, ok := c.Range(); ok {
		s.Min = pointer.Ref(min)
		s.Max = pointer.Ref(max)
	}
	return s
}

type floatControl struct {
	name     string
	min, max float64
	get      func() float64
	set      func(float64)
}

// Float exposes a bounded float value through get/set.
func Float(name string, min, max float64, get func() float64, set func(float64)) Control {
	return &floatControl{name: name, min: min, max: max, get: get, set: set}
}

func (c *floatControl) Name() string { return c.name }
func (c *floatControl) Kind() Kind   { return KindFloat }

func (c *floatControl) Range() (float64, float64, bool) {
	return c.min, c.max, true
}

func (c *floatControl) Get() float64 { return c.get() }

func (c *floatControl) Set(v float64) error {
	if math.IsNaN(v) || v < c.min || c.max < v {
		return fmt.Errorf("control %q: %g is out of range [%g, %g]", c.name, v, c.min, c.max)
	}
	c.set(v)
	return nil
}

type intControl struct {
	name     string
	min, max int
	get      func() int
	set      func(int)
}

// Int exposes a bounded int value through get/set.
func Int(name string, min, max int, get func() int, set func(int)) Control {
	return &intControl{name: name, min: min, max: max, get: get, set: set}
}

func (c *intControl) Name() string { return c.name }
func (c *intControl) Kind() Kind   { return KindInt }

func (c *intControl) Range() (float64, float64, bool) {
	return float64(c.min), float64(c.max), true
}

func (c *intControl) Get() float64 { return float64(c.get()) }

func (c *intControl) Set(v float64) error {
	if v != math.Trunc(v) || math.IsNaN(v) {
		return fmt.Errorf("control %q: %g is not an integer", c.name, v)
	}
	i := int(v)
	if i < c.min || c.max < i {
		return fmt.Errorf("control %q: %d is out of range [%d, %d]", c.name, i, c.min, c.max)
	}
	c.set(i)
	return nil
}

type boolControl struct {
	name string
	get  func() bool
	set  func(bool)
}

// Bool exposes a toggle through get/set. On the wire, true is 1.
func Bool(name string, get func() bool, set func(bool)) Control {
	return &boolControl{name: name, get: get, set: set}
}

func (c *boolControl) Name() string { return c.name }
func (c *boolControl) Kind() Kind   { return KindBool }

func (c *boolControl) Range() (float64, float64, bool) {
	return 0, 0, false
}

func (c *boolControl) Get() float64 {
	if c.get() {
		return 1
	}
	return 0
}

func (c *boolControl) Set(v float64) error {
	switch v {
	case 0:
		c.set(false)
	case 1:
		c.set(true)
	default:
		return fmt.Errorf("control %q: %g is not a bool (want 0 or 1)", c.name, v)
	}
	return nil
}
