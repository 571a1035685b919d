package nio

import "sync/atomic"

// Monitor is the per-endpoint record held by a Selector: it pairs an
// Endpoint with its armed Interest, its last-observed Readiness, and
// caller-supplied user data. A Monitor is returned by Selector.Register and
// is owned by the caller from that point on — the Selector's map holds only
// a non-owning reference to it.
//
// A Monitor has two states: Open admits all mutations; Closed rejects
// interest mutation but still permits queries against its last-observed
// readiness.
type Monitor struct {
	selector *Selector
	endpoint Endpoint
	userData any

	interests Interest
	readiness Readiness
	closed    atomic.Bool
}

func newMonitor(sel *Selector, ep Endpoint, userData any) *Monitor {
	return &Monitor{selector: sel, endpoint: ep, userData: userData}
}

// Endpoint returns the endpoint this monitor tracks.
func (m *Monitor) Endpoint() Endpoint {
	return m.endpoint
}

// UserData returns the caller-supplied value passed to Register.
func (m *Monitor) UserData() any {
	return m.userData
}

// Interests returns the currently armed interest mask.
func (m *Monitor) Interests() Interest {
	return m.interests
}

// SetInterests arms the monitor for exactly mask, pushing the change to the
// backend if it differs from the current value. A no-op (success) if mask
// equals the current interest. Fails with ErrMonitorClosed if the monitor
// is closed.
func (m *Monitor) SetInterests(mask Interest) error {
	if m.closed.Load() {
		return ErrMonitorClosed
	}
	if m.interests == mask {
		return nil
	}
	return m.pushInterests(mask)
}

// AddInterest ORs mask into the current interest set.
func (m *Monitor) AddInterest(mask Interest) error {
	if m.closed.Load() {
		return ErrMonitorClosed
	}
	return m.SetInterests(m.interests | mask)
}

// RemoveInterest clears mask's bits from the current interest set.
func (m *Monitor) RemoveInterest(mask Interest) error {
	if m.closed.Load() {
		return ErrMonitorClosed
	}
	return m.SetInterests(m.interests &^ mask)
}

// pushInterests updates the backend then records the new value locally. A
// backend rejection still leaves the new value observable in memory, so a
// caller retry is a plain SetInterests call rather than a repair dance.
func (m *Monitor) pushInterests(mask Interest) error {
	err := m.selector.backend.SetInterest(m.endpoint.Fd(), mask.Has(Read), mask.Has(Write), m)
	m.interests = mask
	if err != nil {
		return wrapSentinel(ErrBackendRejection, err)
	}
	return nil
}

// Readable reports whether the last Select observed this endpoint as
// readable.
func (m *Monitor) Readable() bool {
	return m.readiness&ReadinessRead != 0
}

// Writable reports whether the last Select observed this endpoint as
// writable.
func (m *Monitor) Writable() bool {
	return m.readiness&ReadinessWrite != 0
}

// Exception reports whether the last Select observed an error condition on
// this endpoint.
func (m *Monitor) Exception() bool {
	return m.readiness&IOError != 0
}

// Closed reports whether Close has been called on this monitor.
func (m *Monitor) Closed() bool {
	return m.closed.Load()
}

// Close marks the monitor closed. If deregister is true, the owning
// selector's backing registration is removed too (and the monitor erased
// from the selector's map if still present). Closing twice fails with
// ErrMonitorClosed.
func (m *Monitor) Close(deregister bool) error {
	if m.closed.Swap(true) {
		return ErrMonitorClosed
	}
	if deregister {
		m.selector.deregisterMonitor(m)
	}
	return nil
}

func (m *Monitor) resetReadiness() {
	m.readiness = ReadinessNone
}

func (m *Monitor) markReadable() {
	m.readiness |= ReadinessRead
}

func (m *Monitor) markWritable() {
	m.readiness |= ReadinessWrite
}

func (m *Monitor) markError() {
	m.readiness |= IOError
}
