package slices_test

import (
	"fmt"
	"sort"
	"testing"

	"github.com/plumelab/plume/pkg/cmp"
	"github.com/plumelab/plume/pkg/utils/slices"
)

func TestMap(t *testing.T) {
	t.Run("it converts each element", func(t *testing.T) {
		actual := slices.Map([]int{1, 2, 3}, func(n int) string {
			return fmt.Sprint(n * 2)
		})
		if !cmp.SliceEq(actual, []string{"2", "4", "6"}) {
			t.Errorf(`Map([1 2 3], *2) = %v, want ["2" "4" "6"]`, actual)
		}
	})

	t.Run("it passes through nil", func(t *testing.T) {
		actual := slices.Map(nil, func(n int) int { return n })
		if actual != nil {
			t.Errorf("Map(nil) = %v, want nil", actual)
		}
	})
}

func TestFilter(t *testing.T) {
	t.Run("it keeps matching elements in order", func(t *testing.T) {
		actual := slices.Filter([]int{5, 2, 8, 1, 9}, func(n int) bool { return n >= 5 })
		if !cmp.SliceEq(actual, []int{5, 8, 9}) {
			t.Errorf("Filter = %v, want [5 8 9]", actual)
		}
	})
}

func TestFirst(t *testing.T) {
	t.Run("when an element matches, it is returned", func(t *testing.T) {
		actual, ok := slices.First([]string{"a", "bb", "ccc"}, func(s string) bool {
			return len(s) == 2
		})
		if !ok || actual != "bb" {
			t.Errorf(`First = (%q, %v), want ("bb", true)`, actual, ok)
		}
	})

	t.Run("when no element matches, it returns false", func(t *testing.T) {
		_, ok := slices.First([]string{"a", "bb"}, func(s string) bool {
			return len(s) > 5
		})
		if ok {
			t.Error("First should not find an element")
		}
	})
}

func TestKeysOf(t *testing.T) {
	m := map[string]int{"x": 1, "y": 2, "z": 3}

	keys := slices.KeysOf(m)
	sort.Strings(keys)
	if !cmp.SliceEq(keys, []string{"x", "y", "z"}) {
		t.Errorf("KeysOf = %v, want [x y z]", keys)
	}
}
