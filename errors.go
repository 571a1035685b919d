package nio

import "github.com/pkg/errors"

// Sentinel errors. Use errors.Is against these; dynamic context (which
// endpoint, which syscall) is layered on with errors.Wrap at the call site
// so the sentinel is still recoverable by the caller.
var (
	// ErrAllocFailure is returned when memory for a new monitor or hash
	// table segment could not be obtained. No state change occurs.
	ErrAllocFailure = errors.New("nio: allocation failure")

	// ErrAlreadyRegistered is returned by Register when the endpoint is
	// already present in the selector's map.
	ErrAlreadyRegistered = errors.New("nio: endpoint already registered")

	// ErrNotRegistered is returned by operations that require a known
	// endpoint, when the endpoint is absent from the map.
	ErrNotRegistered = errors.New("nio: endpoint not registered")

	// ErrSelectorClosed is returned by any mutation attempted after
	// Selector.Close.
	ErrSelectorClosed = errors.New("nio: selector closed")

	// ErrMonitorClosed is returned by any mutation attempted on a closed
	// Monitor.
	ErrMonitorClosed = errors.New("nio: monitor closed")

	// ErrBackendRejection is returned when the OS readiness primitive
	// refused a registration, modification, or removal.
	ErrBackendRejection = errors.New("nio: backend rejected operation")

	// ErrWaitFailure is returned when the OS multiplexer call itself
	// failed; the wait yields zero ready monitors in this case.
	ErrWaitFailure = errors.New("nio: wait failed")
)

// sentinelError pairs a fixed sentinel with the dynamic cause that produced
// it, so a caller can both errors.Is against the sentinel and reach the
// backend's error through Cause. For a rejected registration, interest
// change or failed wait, the backend's error wraps backend.ErrRejected or
// backend.ErrWaitFailed with the syscall name and errno in its message
// text only: errors.Cause ends at that backend sentinel, not at the errno.
type sentinelError struct {
	sentinel error
	cause    error
}

func wrapSentinel(sentinel, cause error) error {
	return &sentinelError{sentinel: sentinel, cause: cause}
}

func (e *sentinelError) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

// Unwrap lets errors.Is/As walk to the sentinel.
func (e *sentinelError) Unwrap() error {
	return e.sentinel
}

// Cause lets github.com/pkg/errors.Cause walk past the sentinel into the
// backend's error instead of stopping at the sentinel.
func (e *sentinelError) Cause() error {
	return e.cause
}
