package nio

import (
	"syscall"

	"github.com/pkg/errors"

	"github.com/shixiongfei/nio/internal/netutil"
)

// Endpoint is anything the selector can track: a construct exposing a
// stable integer handle. The core never constructs, binds, or closes an
// Endpoint itself — that is the caller's responsibility (see the
// socket-handle wrapper a caller builds around net.Conn/net.Listener).
type Endpoint interface {
	// Fd returns the stable OS handle identifying this endpoint for the
	// lifetime of its registration.
	Fd() int
}

// fdEndpoint is the thin Endpoint wrapper a caller typically reaches for
// when tracking a standard library net.Conn or net.Listener. The handle is
// extracted once via syscall.RawConn and cached, since repeated extraction
// after the conn has been handed to a selector risks racing the runtime's
// netpoller.
//
// The handle is extracted via internal/netutil.GetFD and then dup'd so its
// lifetime is independent of the original net.Conn.
type fdEndpoint struct {
	fd int
}

// NewEndpoint wraps a syscall.Conn (almost always a *net.TCPConn,
// *net.UDPConn, or *net.TCPListener) as an Endpoint by extracting its
// underlying file descriptor.
func NewEndpoint(conn syscall.Conn) (Endpoint, error) {
	sourceFd, err := netutil.GetFD(conn)
	if err != nil {
		return nil, errors.Wrap(err, "nio: get raw fd")
	}
	fd, err := dupCloexec(sourceFd)
	if err != nil {
		return nil, errors.Wrap(err, "nio: duplicate fd")
	}
	return &fdEndpoint{fd: fd}, nil
}

// NewFdEndpoint wraps a raw, already-owned file descriptor directly.
func NewFdEndpoint(fd int) Endpoint {
	return &fdEndpoint{fd: fd}
}

func (e *fdEndpoint) Fd() int { return e.fd }

// selfPipe is the selector's internal wakeup pair: a connected endpoint
// pair that behaves like a one-directional pipe. The read side (and, with
// WithWakeWriteRegistered, the write side) is registered with the backend
// under nil user data, invisible to the monitor map, and
// identified by saved handle at classification time rather than by a
// phantom map entry.
type selfPipe struct {
	readFd  int
	writeFd int
}

func (p *selfPipe) wake() error {
	return writeWakeByte(p.writeFd)
}

func (p *selfPipe) drain() error {
	return drainWakeByte(p.readFd)
}

func (p *selfPipe) close() {
	_ = closeFd(p.readFd)
	if p.writeFd != p.readFd {
		_ = closeFd(p.writeFd)
	}
}
