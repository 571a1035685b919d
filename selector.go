package nio

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/shixiongfei/nio/internal/backend"
	"github.com/shixiongfei/nio/internal/htable"
	"github.com/shixiongfei/nio/log"
	"github.com/shixiongfei/nio/metrics"
)

// Selector is the composite facade: it owns exactly one readiness backend,
// one endpoint-indexed map, one internal self-pipe used for wakeups, and a
// closed flag. It is single-threaded cooperative from the viewpoint of its
// public API with the single exception of Wakeup, which may be called from
// any thread.
type Selector struct {
	backend  backend.Backend
	monitors *htable.Table[*Monitor]
	pipe     *selfPipe
	closed   atomic.Bool

	opts options
}

// NewSelector constructs a Selector. It creates the platform backend,
// creates the self-pipe wakeup pair, and registers the pipe's read side with
// the backend, armed for READ, before any user registration. The write side
// is registered too (present but idle) only with WithWakeWriteRegistered.
func NewSelector(opts ...Option) (*Selector, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	be, err := backend.New()
	if err != nil {
		return nil, errors.Wrap(err, "nio: create backend")
	}

	pipe, err := newSelfPipe()
	if err != nil {
		_ = be.Close()
		return nil, errors.Wrap(err, "nio: create self-pipe")
	}

	sel := &Selector{
		backend:  be,
		monitors: htable.New[*Monitor](),
		pipe:     pipe,
		opts:     o,
	}
	sel.monitors.OnResize(func(oldSize, newSize int) {
		metrics.Add(metrics.HashTableResize, 1)
		log.Debugf("nio: monitor table resized %d -> %d", oldSize, newSize)
	})

	if err := be.Register(pipe.readFd, nil); err != nil {
		sel.teardownOnConstructFailure()
		return nil, errors.Wrap(err, "nio: register self-pipe read side")
	}
	if err := be.SetInterest(pipe.readFd, true, false, nil); err != nil {
		sel.teardownOnConstructFailure()
		return nil, errors.Wrap(err, "nio: arm self-pipe read side")
	}
	if o.registerWakeWrite {
		if err := be.Register(pipe.writeFd, nil); err != nil {
			sel.teardownOnConstructFailure()
			return nil, errors.Wrap(err, "nio: register self-pipe write side")
		}
	}

	return sel, nil
}

func (s *Selector) teardownOnConstructFailure() {
	_ = s.backend.Close()
	s.pipe.close()
}

// BackendName returns the backend tag: "epoll", "kqueue", or "select".
func (s *Selector) BackendName() string {
	return s.backend.Name()
}

// Closed reports whether Close has been called.
func (s *Selector) Closed() bool {
	return s.closed.Load()
}

// Empty reports whether no user endpoints are registered. Self-pipe
// handles do not count; they are backend-only.
func (s *Selector) Empty() bool {
	return s.monitors.Len() == 0
}

// Registered reports whether ep currently has a monitor.
func (s *Selector) Registered(ep Endpoint) bool {
	_, ok := s.monitors.Get(ep.Fd())
	return ok
}

// MonitorTableSize returns the current bucket count of the underlying
// endpoint index, for callers (and tests) that want to observe its growth.
func (s *Selector) MonitorTableSize() int {
	return s.monitors.Size()
}

// Register adds ep to the selector with the given initial interest and
// opaque user data, returning its Monitor. Fails if the selector is closed
// or ep is already registered.
func (s *Selector) Register(ep Endpoint, interest Interest, userData any) (*Monitor, error) {
	if s.closed.Load() {
		return nil, ErrSelectorClosed
	}
	if s.Registered(ep) {
		return nil, ErrAlreadyRegistered
	}

	mon := newMonitor(s, ep, userData)
	if err := s.backend.Register(ep.Fd(), mon); err != nil {
		return nil, wrapSentinel(ErrBackendRejection, err)
	}
	if err := mon.pushInterests(interest); err != nil {
		_ = s.backend.Deregister(ep.Fd())
		return nil, err
	}
	if _, failed := s.monitors.Set(ep.Fd(), mon); failed {
		_ = s.backend.Deregister(ep.Fd())
		return nil, ErrAllocFailure
	}
	metrics.Add(metrics.SelectorRegister, 1)
	log.Debugf("nio: registered fd %d for %s", ep.Fd(), interest)
	return mon, nil
}

// Deregister removes ep's monitor from the map, if present, and tells the
// backend to drop the registration unless the monitor is already closed.
// The monitor object itself continues to exist until the caller discards
// it. Returns the removed monitor, if any.
func (s *Selector) Deregister(ep Endpoint) *Monitor {
	mon, ok := s.monitors.Erase(ep.Fd())
	if !ok {
		return nil
	}
	if !mon.closed.Swap(true) {
		_ = s.backend.Deregister(ep.Fd())
	}
	metrics.Add(metrics.SelectorDeregister, 1)
	return mon
}

// deregisterMonitor is the backend for Monitor.Close(deregister=true): the
// monitor has already flipped its own closed flag by the time this runs, so
// only the map entry and the backend registration need cleanup.
func (s *Selector) deregisterMonitor(mon *Monitor) {
	if _, ok := s.monitors.Erase(mon.endpoint.Fd()); ok {
		_ = s.backend.Deregister(mon.endpoint.Fd())
		metrics.Add(metrics.SelectorDeregister, 1)
	}
}

// Select waits up to timeoutMs (-1 = indefinite, 0 = non-blocking poll) and
// returns the monitors observed ready, up to capacity entries. It
// invalidates every monitor's readiness, waits on the backend, then
// classifies each event — draining and hiding the wakeup event rather than
// surfacing it.
func (s *Selector) Select(capacity int, timeoutMs int) ([]*Monitor, error) {
	if s.closed.Load() {
		return nil, nil
	}
	metrics.Add(metrics.SelectorSelectCalls, 1)

	s.monitors.Iterate(func(_ int, mon *Monitor) {
		mon.resetReadiness()
	})

	scratch := make([]backend.Event, 0, capacity)
	events, err := s.backend.Wait(scratch, timeoutMs)
	if err != nil {
		return nil, wrapSentinel(ErrWaitFailure, err)
	}

	out := make([]*Monitor, 0, len(events))
	for _, ev := range events {
		if ev.Handle == s.pipe.readFd {
			_ = s.pipe.drain()
			metrics.Add(metrics.SelectorWakeupDrains, 1)
			continue
		}

		mon, ok := ev.UserData.(*Monitor)
		if !ok || mon == nil {
			continue
		}
		if ev.Error {
			mon.markError()
		}
		if ev.Readable {
			mon.markReadable()
		}
		if ev.Writable {
			mon.markWritable()
		}
		out = append(out, mon)
		if len(out) >= capacity {
			break
		}
	}
	metrics.Add(metrics.SelectorReadyMonitors, uint64(len(out)))
	return out, nil
}

// Wakeup interrupts a concurrently blocked Select, from any thread. Safe to
// call after Close; in that case it is a best-effort no-op.
func (s *Selector) Wakeup() error {
	if s.closed.Load() {
		return nil
	}
	if err := s.pipe.wake(); err != nil {
		return err
	}
	metrics.Add(metrics.SelectorWakeupWrites, 1)
	return nil
}

// Close marks the selector closed, deregisters and destroys the self-pipe,
// and releases the backend. Existing monitor registrations are left in the
// map; Empty may still report false after Close until the caller
// deregisters them.
func (s *Selector) Close() error {
	if s.closed.Swap(true) {
		return ErrSelectorClosed
	}
	_ = s.backend.Deregister(s.pipe.readFd)
	if s.opts.registerWakeWrite {
		_ = s.backend.Deregister(s.pipe.writeFd)
	}
	s.pipe.close()
	return s.backend.Close()
}
