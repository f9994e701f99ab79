// Package args adapts parsed value types to the standard flag package.
package args

// Adapter lifts a parser func(string) (T, error) into a flag.Value,
// so typed command line flags do not need one-off wrapper types.
type Adapter[T interface{ String() string }] struct {
	value  T
	parser func(string) (T, error)
	isSet  bool
}

func (a *Adapter[T]) String() string {
	if a.isSet {
		return a.value.String()
	}
	return ""
}

func (a *Adapter[T]) Set(s string) error {
	v, err := a.parser(s)
	if err != nil {
		return err
	}
	a.isSet = true
	a.value = v
	return nil
}

func (a Adapter[T]) Value() T {
	return a.value
}

// IsSet reports whether Set has succeeded at least once,
// meaning the flag was given on the command line.
func (a Adapter[T]) IsSet() bool {
	return a.isSet
}

// Parser builds an Adapter around parser. Pass the result to flag.Var.
func Parser[T interface{ String() string }](parser func(string) (T, error)) *Adapter[T] {
	return &Adapter[T]{parser: parser}
}
