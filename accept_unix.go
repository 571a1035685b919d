//go:build aix || darwin || dragonfly || freebsd || illumos || linux || netbsd || openbsd || solaris

package nio

import (
	"github.com/pkg/errors"

	"github.com/shixiongfei/nio/internal/netutil"
)

// AcceptOption configures AcceptEndpoint.
type AcceptOption func(*acceptOptions)

type acceptOptions struct {
	keepAliveSecs int
}

// WithKeepAliveSeconds turns on TCP keep-alive on the accepted connection,
// using secs as both the idle time and probe interval. 0 (the default)
// leaves keep-alive untouched.
func WithKeepAliveSeconds(secs int) AcceptOption {
	return func(o *acceptOptions) { o.keepAliveSecs = secs }
}

// AcceptEndpoint accepts one pending connection off listener — ordinarily
// an Endpoint wrapping a *net.TCPListener, reported Readable by a Select
// call — and wraps it as an Endpoint. The accepted descriptor already
// carries close-on-exec and non-blocking from the accept call itself.
func AcceptEndpoint(listener Endpoint, opts ...AcceptOption) (Endpoint, error) {
	var o acceptOptions
	for _, opt := range opts {
		opt(&o)
	}

	fd, _, err := netutil.Accept(listener.Fd())
	if err != nil {
		return nil, errors.Wrap(err, "nio: accept")
	}
	if o.keepAliveSecs > 0 {
		if err := applyKeepAlive(fd, o.keepAliveSecs); err != nil {
			_ = closeFd(fd)
			return nil, errors.Wrap(err, "nio: set keepalive")
		}
	}
	return NewFdEndpoint(fd), nil
}
