// Package cmp gives equality helpers for slices and maps,
// mainly for assertions in tests.
package cmp

// EqEq tests a == b. It fits where a func(T, T) bool is wanted.
func EqEq[T comparable](a, b T) bool {
	return a == b
}

// SliceEqWith verifies that a and b have the same length and
// pairwise-equal elements under eq.
func SliceEqWith[T any, U any](a []T, b []U, eq func(T, U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

// SliceEq is SliceEqWith for comparable element types.
func SliceEq[T comparable](a, b []T) bool {
	return SliceEqWith(a, b, EqEq[T])
}

// SliceContentEqWith verifies that a and b contain the same elements
// under eq, ignoring order. Duplicates count: {x, x, y} and {x, y, y}
// are not equal.
func SliceContentEqWith[T any, U any](a []T, b []U, eq func(T, U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
A:
	for _, ea := range a {
		for i, eb := range b {
			if used[i] {
				continue
			}
			if eq(ea, eb) {
				used[i] = true
				continue A
			}
		}
		return false
	}
	return true
}

// SliceContentEq is SliceContentEqWith for comparable element types.
func SliceContentEq[T comparable](a, b []T) bool {
	return SliceContentEqWith(a, b, EqEq[T])
}

// MapEqWith verifies that a and b hold the same keys and that values
// for each key are equal under eq.
func MapEqWith[K comparable, V any, W any](a map[K]V, b map[K]W, eq func(V, W) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !eq(va, vb) {
			return false
		}
	}
	return true
}

// MapEq is MapEqWith for comparable value types.
func MapEq[K comparable, V comparable](a, b map[K]V) bool {
	return MapEqWith(a, b, EqEq[V])
}
