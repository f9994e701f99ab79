package pointer

// Ref returns a pointer to v.
func Ref[T any](v T) *T {
	return &v
}

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}

// DerefOr returns *p, or d when p is nil.
func DerefOr[T any](p *T, d T) T {
	if p == nil {
		return d
	}
	return *p
}
