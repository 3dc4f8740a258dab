package history

import "errors"

// Sentinel errors for the five categories spec.md §7 defines. Callers
// should compare with errors.Is; the concrete error returned up the stack
// is usually wrapped with additional context via fmt.Errorf("...: %w", ...).
var (
	// ErrPrecondition is returned when a public operation is invoked before
	// Attach has bound a reader and mutex to the history.
	ErrPrecondition = errors.New("history: reader not attached")

	// ErrCapacityExceeded is returned when an admission policy refuses a
	// sample, or the instance table has no room and no reclaimable slot.
	ErrCapacityExceeded = errors.New("history: capacity exceeded")

	// ErrKeyUnresolvable is returned when a keyed sample arrives with an
	// undefined instance handle and either has_key is false or get_key
	// fails.
	ErrKeyUnresolvable = errors.New("history: key unresolvable")

	// ErrInvariantBreach names the category of a change expected in its
	// owning instance entry but not found there. The removal operations log
	// that condition at Error and complete the removal without returning an
	// error; no operation in this package currently returns
	// ErrInvariantBreach.
	ErrInvariantBreach = errors.New("history: invariant breach")

	// ErrNotFound is a benign absence in a lookup or removal operation.
	ErrNotFound = errors.New("history: not found")
)
