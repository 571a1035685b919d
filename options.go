package nio

// options carries Selector construction knobs. Functional-option pattern,
// following the root tnet package's own options.go.
type options struct {
	registerWakeWrite bool
}

func defaultOptions() options {
	return options{
		// The write side is never polled, so there is nothing for any
		// backend to report on it; registering only the read side
		// avoids a second construction-time failure path for no loss
		// of observable behavior.
		registerWakeWrite: false,
	}
}

// Option configures a Selector at construction time.
type Option func(*options)

// WithWakeWriteRegistered reproduces the source library's behavior of also
// registering the self-pipe's write side with the backend. Provided for
// parity testing against the original; has no observable effect on
// Select's output since the write side is never armed for any interest.
func WithWakeWriteRegistered() Option {
	return func(o *options) {
		o.registerWakeWrite = true
	}
}
