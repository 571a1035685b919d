//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package backend

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/shixiongfei/nio/metrics"
)

func newPlatformBackend() (Backend, error) {
	return newKqueueBackend()
}

// kqueueBackend is the BSD/Darwin readiness backend. Register adds BOTH
// EVFILT_READ and EVFILT_WRITE with EV_ADD|EV_DISABLE so a handle is
// always tracked but idle until SetInterest toggles EV_ENABLE/EV_DISABLE
// per filter.
type kqueueBackend struct {
	fd    int
	slots map[int]any
}

func newKqueueBackend() (*kqueueBackend, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, errors.Wrap(err, "kqueue")
	}
	return &kqueueBackend{fd: fd, slots: make(map[int]any)}, nil
}

func (b *kqueueBackend) Name() string { return "kqueue" }

func (b *kqueueBackend) Register(handle int, userData any) error {
	if _, ok := b.slots[handle]; ok {
		return errors.Wrap(ErrRejected, "handle already registered")
	}
	changes := []unix.Kevent_t{
		{Ident: uint64(handle), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_DISABLE},
		{Ident: uint64(handle), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ADD | unix.EV_DISABLE},
	}
	if _, err := unix.Kevent(b.fd, changes, nil, nil); err != nil {
		return errors.Wrapf(ErrRejected, "kevent(ADD, %d): %v", handle, err)
	}
	b.slots[handle] = userData
	return nil
}

func (b *kqueueBackend) Deregister(handle int) error {
	if _, ok := b.slots[handle]; !ok {
		return nil
	}
	delete(b.slots, handle)
	changes := []unix.Kevent_t{
		{Ident: uint64(handle), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE},
		{Ident: uint64(handle), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE},
	}
	// Best-effort: the fd may already be closed by the caller, in which
	// case the kernel has already dropped these filters.
	_, _ = unix.Kevent(b.fd, changes, nil, nil)
	return nil
}

func (b *kqueueBackend) SetInterest(handle int, readable, writable bool, userData any) error {
	if _, ok := b.slots[handle]; !ok {
		return errors.Wrap(ErrRejected, "handle not registered")
	}
	readFlag := uint16(unix.EV_DISABLE)
	if readable {
		readFlag = unix.EV_ENABLE
	}
	writeFlag := uint16(unix.EV_DISABLE)
	if writable {
		writeFlag = unix.EV_ENABLE
	}
	changes := []unix.Kevent_t{
		{Ident: uint64(handle), Filter: unix.EVFILT_READ, Flags: readFlag},
		{Ident: uint64(handle), Filter: unix.EVFILT_WRITE, Flags: writeFlag},
	}
	if _, err := unix.Kevent(b.fd, changes, nil, nil); err != nil {
		return errors.Wrapf(ErrRejected, "kevent(MOD, %d): %v", handle, err)
	}
	b.slots[handle] = userData
	return nil
}

func (b *kqueueBackend) Wait(out []Event, timeoutMs int) ([]Event, error) {
	raw := make([]unix.Kevent_t, cap(out))
	if len(raw) == 0 {
		raw = make([]unix.Kevent_t, 64)
	}
	var ts *unix.Timespec
	if timeoutMs >= 0 {
		t := unix.NsecToTimespec(int64(timeoutMs) * 1e6)
		ts = &t
	}
	if timeoutMs == 0 {
		metrics.Add(metrics.KqueueNoWait, 1)
	}
	n, err := unix.Kevent(b.fd, nil, raw, ts)
	metrics.Add(metrics.KqueueWait, 1)
	if err != nil {
		if err == unix.EINTR {
			return out[:0], nil
		}
		return out[:0], errors.Wrapf(ErrWaitFailed, "kevent(wait): %v", err)
	}
	metrics.Add(metrics.KqueueEvents, uint64(n))

	merged := make(map[int]*Event, n)
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		e := raw[i]
		handle := int(e.Ident)
		ud, ok := b.slots[handle]
		if !ok {
			continue
		}
		ev, seen := merged[handle]
		if !seen {
			ev = &Event{Handle: handle, UserData: ud}
			merged[handle] = ev
			order = append(order, handle)
		}
		if e.Flags&unix.EV_ERROR != 0 {
			ev.Error = true
		}
		switch e.Filter {
		case unix.EVFILT_READ:
			ev.Readable = true
		case unix.EVFILT_WRITE:
			ev.Writable = true
		}
	}

	out = out[:0]
	for _, h := range order {
		out = append(out, *merged[h])
	}
	return out, nil
}

func (b *kqueueBackend) Close() error {
	return unix.Close(b.fd)
}
