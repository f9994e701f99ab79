package pointer_test

import (
	"testing"

	"github.com/plumelab/plume/pkg/utils/pointer"
)

func TestRef(t *testing.T) {
	p := pointer.Ref(42)
	if p == nil || *p != 42 {
		t.Errorf("Ref(42) should point at 42, got %v", p)
	}
}

func TestDeref(t *testing.T) {
	t.Run("when p is non-nil, it returns *p", func(t *testing.T) {
		v := "hello"
		if actual := pointer.Deref(&v); actual != "hello" {
			t.Errorf("Deref = %q, want %q", actual, "hello")
		}
	})

	t.Run("when p is nil, it returns the zero value", func(t *testing.T) {
		if actual := pointer.Deref[string](nil); actual != "" {
			t.Errorf("Deref(nil) = %q, want empty string", actual)
		}
	})
}

func TestDerefOr(t *testing.T) {
	t.Run("when p is nil, it returns the default", func(t *testing.T) {
		if actual := pointer.DerefOr(nil, 7); actual != 7 {
			t.Errorf("DerefOr(nil, 7) = %d, want 7", actual)
		}
	})

	t.Run("when p is non-nil, the default is ignored", func(t *testing.T) {
		v := 3
		if actual := pointer.DerefOr(&v, 7); actual != 3 {
			t.Errorf("DerefOr(&3, 7) = %d, want 3", actual)
		}
	})
}
