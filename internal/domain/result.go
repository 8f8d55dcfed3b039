package domain

// Result carries either a value or the reason it could not be produced.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successfully produced value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err wraps a failure reason. A nil reason is treated as a success of the zero value.
func Err[T any](reason error) Result[T] {
	return Result[T]{err: reason}
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool { return r.err == nil }

// Get returns the value and failure reason.
func (r Result[T]) Get() (T, error) { return r.value, r.err }

// Reason returns the failure reason, or nil.
func (r Result[T]) Reason() error { return r.err }

// OrElse returns the value, or fallback when the result failed.
func (r Result[T]) OrElse(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}
