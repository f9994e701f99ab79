package args_test

import (
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/plumelab/plume/pkg/utils/args"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestAdapter(t *testing.T) {
	t.Run("before Set, it is not set and String is empty", func(t *testing.T) {
		testee := args.Parser(func(s string) (stringer, error) {
			return stringer(s), nil
		})
		if testee.IsSet() {
			t.Error("IsSet should be false before Set")
		}
		if testee.String() != "" {
			t.Errorf("String = %q, want empty", testee.String())
		}
	})

	t.Run("after Set, it exposes the parsed value", func(t *testing.T) {
		testee := args.Parser(func(s string) (time.Duration, error) {
			return time.ParseDuration(s)
		})
		if err := testee.Set("1h30m"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !testee.IsSet() {
			t.Error("IsSet should be true after Set")
		}
		if testee.Value() != 90*time.Minute {
			t.Errorf("Value = %v, want 90m", testee.Value())
		}
	})

	t.Run("when the parser fails, the value stays unset", func(t *testing.T) {
		expectedErr := errors.New("bad value")
		testee := args.Parser(func(s string) (stringer, error) {
			return "", expectedErr
		})
		if err := testee.Set("anything"); !errors.Is(err, expectedErr) {
			t.Errorf("Set error = %v, want %v", err, expectedErr)
		}
		if testee.IsSet() {
			t.Error("IsSet should stay false after a failed Set")
		}
	})

	t.Run("it works through flag.FlagSet", func(t *testing.T) {
		testee := args.Parser(func(s string) (time.Duration, error) {
			return time.ParseDuration(s)
		})
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.Var(testee, "interval", "polling interval")

		if err := fs.Parse([]string{"-interval", "250ms"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if testee.Value() != 250*time.Millisecond {
			t.Errorf("Value = %v, want 250ms", testee.Value())
		}
	})
}
