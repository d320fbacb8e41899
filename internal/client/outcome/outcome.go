package outcome

// Outcome is the result of a client call: exactly one of value or failure
// is meaningful.
type Outcome[T any] struct {
	value   T
	failure *Failure
}

// Success wraps v.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Fail wraps f. A nil f is turned into a generic ServerFailure so that a
// failed Outcome always carries a Failure.
func Fail[T any](f *Failure) Outcome[T] {
	if f == nil {
		f = NewFailure(ServerFailure, "unknown failure")
	}
	return Outcome[T]{failure: f}
}

// Ok reports whether o is a success.
func (o Outcome[T]) Ok() bool {
	return o.failure == nil
}

// Value returns the success value (zero value on failure).
func (o Outcome[T]) Value() T {
	return o.value
}

// Failure returns the failure, or nil on success.
func (o Outcome[T]) Failure() *Failure {
	return o.failure
}

// Get returns (value, nil) on success and (zero, failure) otherwise, for
// callers that prefer the error idiom.
func (o Outcome[T]) Get() (T, error) {
	if o.failure != nil {
		var zero T
		return zero, o.failure
	}
	return o.value, nil
}

// Map transforms a successful outcome with fn. An error from fn becomes a
// failure of kind onErr unless it already is a *Failure.
func Map[T, U any](o Outcome[T], onErr Kind, fn func(T) (U, error)) Outcome[U] {
	if o.failure != nil {
		return Fail[U](o.failure)
	}
	u, err := fn(o.value)
	if err != nil {
		return Fail[U](Wrap(onErr, err))
	}
	return Success(u)
}
