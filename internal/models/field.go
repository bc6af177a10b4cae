package models

// Field is one entry of a partial update. The zero value means "unchanged".
type Field[T any] struct {
	value T
	set   bool
}

// Set returns a Field that replaces the target with v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

func (f Field[T]) IsSet() bool {
	return f.set
}

func (f Field[T]) Get() (T, bool) {
	return f.value, f.set
}

// Apply writes the value into dst when the field is set.
func (f Field[T]) Apply(dst *T) {
	if f.set {
		*dst = f.value
	}
}
