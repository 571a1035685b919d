//go:build unix && !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package backend

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/shixiongfei/nio/metrics"
)

// maxSelectHandles bounds the number of concurrently registered handles:
// the select backend is a portable fallback, not a scaling one, mirroring
// select(2)'s own FD_SETSIZE ceiling.
const maxSelectHandles = 1024

func newPlatformBackend() (Backend, error) {
	return newSelectBackend(), nil
}

type selectSlot struct {
	handle   int
	userData any
	readable bool
	writable bool
}

// selectBackend is the portable fallback used where neither epoll nor
// kqueue is available. Handles are kept in a flat slice; deregistration
// swap-removes with the last entry.
type selectBackend struct {
	slots []selectSlot
	index map[int]int
}

func newSelectBackend() *selectBackend {
	return &selectBackend{index: make(map[int]int)}
}

func (b *selectBackend) Name() string { return "select" }

func (b *selectBackend) Register(handle int, userData any) error {
	if _, ok := b.index[handle]; ok {
		return errors.Wrap(ErrRejected, "handle already registered")
	}
	if len(b.slots) >= maxSelectHandles {
		return errors.Wrap(ErrRejected, "select backend at capacity")
	}
	b.index[handle] = len(b.slots)
	b.slots = append(b.slots, selectSlot{handle: handle, userData: userData})
	return nil
}

func (b *selectBackend) Deregister(handle int) error {
	i, ok := b.index[handle]
	if !ok {
		return nil
	}
	last := len(b.slots) - 1
	b.slots[i] = b.slots[last]
	b.index[b.slots[i].handle] = i
	b.slots = b.slots[:last]
	delete(b.index, handle)
	return nil
}

func (b *selectBackend) SetInterest(handle int, readable, writable bool, userData any) error {
	i, ok := b.index[handle]
	if !ok {
		return errors.Wrap(ErrRejected, "handle not registered")
	}
	b.slots[i].readable = readable
	b.slots[i].writable = writable
	b.slots[i].userData = userData
	return nil
}

// Wait also puts every armed handle in select(2)'s exceptional fd set;
// membership there sets Error, as EPOLLERR does for epoll and EV_ERROR for
// kqueue.
func (b *selectBackend) Wait(out []Event, timeoutMs int) ([]Event, error) {
	var rset, wset, eset unix.FdSet
	maxFd := -1
	for _, s := range b.slots {
		if s.readable {
			fdSet(&rset, s.handle)
		}
		if s.writable {
			fdSet(&wset, s.handle)
		}
		if s.readable || s.writable {
			fdSet(&eset, s.handle)
		}
		if (s.readable || s.writable) && s.handle > maxFd {
			maxFd = s.handle
		}
	}

	out = out[:0]
	if maxFd < 0 {
		return out, nil
	}

	var tv *unix.Timeval
	if timeoutMs >= 0 {
		t := unix.NsecToTimeval(int64(timeoutMs) * 1e6)
		tv = &t
	}
	if timeoutMs == 0 {
		metrics.Add(metrics.SelectNoWait, 1)
	}

	n, err := unix.Select(maxFd+1, &rset, &wset, &eset, tv)
	metrics.Add(metrics.SelectWait, 1)
	if err != nil {
		if err == unix.EINTR {
			return out, nil
		}
		return out, errors.Wrapf(ErrWaitFailed, "select: %v", err)
	}
	if n == 0 {
		return out, nil
	}

	for _, s := range b.slots {
		readable := s.readable && fdIsSet(&rset, s.handle)
		writable := s.writable && fdIsSet(&wset, s.handle)
		errored := (s.readable || s.writable) && fdIsSet(&eset, s.handle)
		if !readable && !writable && !errored {
			continue
		}
		out = append(out, Event{
			Handle:   s.handle,
			UserData: s.userData,
			Readable: readable,
			Writable: writable,
			Error:    errored,
		})
		if len(out) >= cap(out) && cap(out) > 0 {
			break
		}
	}
	metrics.Add(metrics.SelectEvents, uint64(len(out)))
	return out, nil
}

func (b *selectBackend) Close() error {
	b.slots = nil
	b.index = nil
	return nil
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
