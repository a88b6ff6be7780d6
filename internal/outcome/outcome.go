// Package outcome models the three-way result returned by collaborator calls
// whose failure policy the pipeline decides: a usable value, a degraded value
// the run can continue with, or a fatal condition that stops the run.
package outcome

// Status classifies a Result.
type Status int

const (
	StatusOK Status = iota
	StatusDegraded
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Result carries a value together with the status of the call that produced it.
// Reason is a short human-readable explanation for degraded and fatal results;
// Err holds the underlying cause when there is one.
type Result[T any] struct {
	Value  T
	Status Status
	Reason string
	Err    error
}

// Ok wraps a healthy value.
func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value, Status: StatusOK}
}

// Degraded wraps a fallback value the caller may continue with.
func Degraded[T any](value T, reason string, err error) Result[T] {
	return Result[T]{Value: value, Status: StatusDegraded, Reason: reason, Err: err}
}

// Fatal reports a condition that must stop the run.
func Fatal[T any](reason string, err error) Result[T] {
	return Result[T]{Status: StatusFatal, Reason: reason, Err: err}
}

// IsOK reports whether the result is healthy.
func (r Result[T]) IsOK() bool { return r.Status == StatusOK }

// Error renders the reason and cause for logging.
func (r Result[T]) Error() string {
	switch {
	case r.Reason != "" && r.Err != nil:
		return r.Reason + ": " + r.Err.Error()
	case r.Reason != "":
		return r.Reason
	case r.Err != nil:
		return r.Err.Error()
	default:
		return ""
	}
}
