package slices

// Map converts []T to []U, element by element.
func Map[T any, U any](sli []T, f func(T) U) []U {
	if sli == nil {
		return nil
	}
	mapped := make([]U, len(sli))
	for i, t := range sli {
		mapped[i] = f(t)
	}
	return mapped
}

// Filter returns the elements of sli for which pred holds,
// in their original order.
func Filter[T any](sli []T, pred func(T) bool) []T {
	if sli == nil {
		return nil
	}
	filtered := make([]T, 0, len(sli))
	for _, t := range sli {
		if pred(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// First finds the first element in sli satisfying pred.
//
// When no such element exists, it returns (zero-value, false).
func First[T any](sli []T, pred func(T) bool) (T, bool) {
	for _, t := range sli {
		if pred(t) {
			return t, true
		}
	}
	return *new(T), false
}

// KeysOf lists the keys of m. The order is not stable.
func KeysOf[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
