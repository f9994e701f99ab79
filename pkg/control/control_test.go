package control_test

import (
	"testing"

	"github.com/plumelab/plume/pkg/control"
)

func TestFloat(t *testing.T) {
	value := 1.5
	c := control.Float(
		"inflow", 0, 10,
		func() float64 { return value },
		func(v float64) { value = v },
	)

	t.Run("it reads through get", func(t *testing.T) {
		if c.Get() != 1.5 {
			t.Errorf("Get() = %g, want 1.5", c.Get())
		}
	})

	t.Run("it writes values inside the range", func(t *testing.T) {
		if err := c.Set(7.25); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if value != 7.25 {
			t.Errorf("value = %g, want 7.25", value)
		}
	})

	t.Run("it rejects values outside the range", func(t *testing.T) {
		before := value
		if err := c.Set(10.5); err == nil {
			t.Error("Set(10.5) should fail on range [0, 10]")
		}
		if value != before {
			t.Errorf("a rejected edit changed the value to %g", value)
		}
	})
}

func TestInt(t *testing.T) {
	value := 3
	c := control.Int(
		"iterations", 1, 100,
		func() int { return value },
		func(v int) { value = v },
	)

	t.Run("it accepts whole numbers", func(t *testing.T) {
		if err := c.Set(40); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if value != 40 {
			t.Errorf("value = %d, want 40", value)
		}
	})

	t.Run("it rejects fractional values", func(t *testing.T) {
		if err := c.Set(2.5); err == nil {
			t.Error("Set(2.5) should fail for an int control")
		}
	})

	t.Run("it rejects out-of-range values", func(t *testing.T) {
		if err := c.Set(0); err == nil {
			t.Error("Set(0) should fail on range [1, 100]")
		}
	})
}

func TestBool(t *testing.T) {
	value := false
	c := control.Bool(
		"paused", func() bool { return value }, func(v bool) { value = v },
	)

	t.Run("1 switches it on", func(t *testing.T) {
		if err := c.Set(1); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !value {
			t.Error("value should be true after Set(1)")
		}
		if c.Get() != 1 {
			t.Errorf("Get() = %g, want 1", c.Get())
		}
	})

	t.Run("anything but 0 and 1 is rejected", func(t *testing.T) {
		if err := c.Set(0.5); err == nil {
			t.Error("Set(0.5) should fail for a bool control")
		}
	})
}

func TestStateOf(t *testing.T) {
	t.Run("floats carry their range", func(t *testing.T) {
		c := control.Float("x", -1, 1, func() float64 { return 0.5 }, func(float64) {})
		s := control.StateOf(c)
		if s.Min == nil || s.Max == nil || *s.Min != -1 || *s.Max != 1 {
			t.Errorf("state range = %v..%v, want -1..1", s.Min, s.Max)
		}
		if s.Value != 0.5 || s.Kind != control.KindFloat {
			t.Errorf("state = %+v", s)
		}
	})

	t.Run("bools have no range", func(t *testing.T) {
		c := control.Bool("x", func() bool { return false }, func(bool) {})
		s := control.StateOf(c)
		if s.Min != nil || s.Max != nil {
			t.Errorf("bool state should not carry a range, got %+v", s)
		}
	})
}
