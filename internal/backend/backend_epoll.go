//go:build linux

package backend

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/shixiongfei/nio/metrics"
)

func newPlatformBackend() (Backend, error) {
	return newEpollBackend()
}

// epollBackend is the Linux readiness backend. Register arms with an empty
// (zero) event mask via EPOLL_CTL_ADD, and SetInterest is the only call
// that ever enables EPOLLIN/EPOLLOUT, via EPOLL_CTL_MOD. EPOLLHUP folds
// into readable, EPOLLERR sets Error.
type epollBackend struct {
	fd    int
	slots map[int]any
}

func newEpollBackend() (*epollBackend, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "epoll_create1")
	}
	return &epollBackend{fd: fd, slots: make(map[int]any)}, nil
}

func (b *epollBackend) Name() string { return "epoll" }

func (b *epollBackend) Register(handle int, userData any) error {
	if _, ok := b.slots[handle]; ok {
		return errors.Wrap(ErrRejected, "handle already registered")
	}
	ev := unix.EpollEvent{Events: 0, Fd: int32(handle)}
	if err := unix.EpollCtl(b.fd, unix.EPOLL_CTL_ADD, handle, &ev); err != nil {
		return errors.Wrapf(ErrRejected, "epoll_ctl(ADD, %d): %v", handle, err)
	}
	b.slots[handle] = userData
	return nil
}

func (b *epollBackend) Deregister(handle int) error {
	if _, ok := b.slots[handle]; !ok {
		return nil
	}
	delete(b.slots, handle)
	if err := unix.EpollCtl(b.fd, unix.EPOLL_CTL_DEL, handle, nil); err != nil {
		return errors.Wrapf(ErrRejected, "epoll_ctl(DEL, %d): %v", handle, err)
	}
	return nil
}

func (b *epollBackend) SetInterest(handle int, readable, writable bool, userData any) error {
	if _, ok := b.slots[handle]; !ok {
		return errors.Wrap(ErrRejected, "handle not registered")
	}
	var mask uint32
	if readable {
		mask |= unix.EPOLLIN
	}
	if writable {
		mask |= unix.EPOLLOUT
	}
	ev := unix.EpollEvent{Events: mask, Fd: int32(handle)}
	if err := unix.EpollCtl(b.fd, unix.EPOLL_CTL_MOD, handle, &ev); err != nil {
		return errors.Wrapf(ErrRejected, "epoll_ctl(MOD, %d): %v", handle, err)
	}
	b.slots[handle] = userData
	return nil
}

func (b *epollBackend) Wait(out []Event, timeoutMs int) ([]Event, error) {
	raw := make([]unix.EpollEvent, cap(out))
	if len(raw) == 0 {
		raw = make([]unix.EpollEvent, 64)
	}
	if timeoutMs == 0 {
		metrics.Add(metrics.EpollNoWait, 1)
	}
	n, err := unix.EpollWait(b.fd, raw, timeoutMs)
	metrics.Add(metrics.EpollWait, 1)
	if err != nil {
		if err == unix.EINTR {
			return out[:0], nil
		}
		return out[:0], errors.Wrapf(ErrWaitFailed, "epoll_wait: %v", err)
	}
	metrics.Add(metrics.EpollEvents, uint64(n))
	out = out[:0]
	for i := 0; i < n; i++ {
		e := raw[i]
		handle := int(e.Fd)
		ud, ok := b.slots[handle]
		if !ok {
			continue
		}
		out = append(out, Event{
			Handle:   handle,
			UserData: ud,
			Readable: e.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
			Writable: e.Events&unix.EPOLLOUT != 0,
			Error:    e.Events&unix.EPOLLERR != 0,
		})
	}
	return out, nil
}

func (b *epollBackend) Close() error {
	return unix.Close(b.fd)
}
