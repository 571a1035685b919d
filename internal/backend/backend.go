// Package backend is the pluggable readiness backend behind Selector: a
// single contract with three interchangeable implementations (epoll,
// kqueue, select) that normalize their materially different
// submission/retrieval semantics into one shape. The platform-appropriate
// implementation is chosen at build time via build tags, each backed by
// golang.org/x/sys for the raw syscalls.
package backend

import "github.com/pkg/errors"

// ErrRejected is wrapped with syscall context and returned whenever the OS
// primitive refuses a Register/SetInterest/Deregister.
var ErrRejected = errors.New("backend: rejected by OS")

// ErrWaitFailed is wrapped with syscall context and returned when the OS
// multiplexer call itself errors (as opposed to timing out).
var ErrWaitFailed = errors.New("backend: wait failed")

// Event is one readiness report from Wait. UserData is whatever pointer was
// last attached via Register/SetInterest, round-tripped so the caller can
// recover its monitor without a second lookup.
type Event struct {
	Handle   int
	UserData any
	Readable bool
	Writable bool
	Error    bool
}

// Backend is the contract every OS-specific readiness mechanism satisfies.
// A Backend instance is not safe for concurrent use except where documented
// (Wait may run concurrently with nothing; all mutation calls are serialized
// by the owning Selector).
type Backend interface {
	// Name returns the human-readable backend tag ("epoll", "kqueue",
	// "select").
	Name() string

	// Register announces handle with an initially empty armed interest.
	// Fails if handle is already known, capacity is exhausted, or the OS
	// rejects it.
	Register(handle int, userData any) error

	// Deregister removes handle. Tolerant of a handle that is already
	// gone, where the underlying OS primitive allows that distinction.
	Deregister(handle int) error

	// SetInterest arms handle for exactly the given readable/writable
	// combination and re-attaches userData so future events carry it.
	SetInterest(handle int, readable, writable bool, userData any) error

	// Wait blocks up to timeoutMs (-1 = indefinite, 0 = non-blocking
	// poll) and appends up to cap(out) ready events to out, returning the
	// populated slice.
	Wait(out []Event, timeoutMs int) ([]Event, error)

	// Close releases all OS resources held by the backend.
	Close() error
}

// New constructs the backend appropriate for the host platform. Exactly one
// backend instance is created per Selector, selected once at construction;
// see newPlatformBackend in the platform-specific files.
func New() (Backend, error) {
	return newPlatformBackend()
}
