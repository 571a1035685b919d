package nio_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shixiongfei/nio"
)

func TestSelectorEmptyAndRegistered(t *testing.T) {
	sel, err := nio.NewSelector()
	require.NoError(t, err)
	defer sel.Close()

	assert.True(t, sel.Empty())

	_, server := loopbackPair(t)
	defer server.Close()
	ep, err := nio.NewEndpoint(server.(*net.TCPConn))
	require.NoError(t, err)

	_, err = sel.Register(ep, nio.Read, nil)
	require.NoError(t, err)

	assert.False(t, sel.Empty())
	assert.True(t, sel.Registered(ep))

	sel.Deregister(ep)
	assert.True(t, sel.Empty())
}

func TestSelectorRegisterRejectsDuplicate(t *testing.T) {
	sel, err := nio.NewSelector()
	require.NoError(t, err)
	defer sel.Close()

	_, server := loopbackPair(t)
	defer server.Close()
	ep, err := nio.NewEndpoint(server.(*net.TCPConn))
	require.NoError(t, err)

	_, err = sel.Register(ep, nio.Read, nil)
	require.NoError(t, err)

	_, err = sel.Register(ep, nio.Read, nil)
	assert.ErrorIs(t, err, nio.ErrAlreadyRegistered)
}

// TestWakeupUnblocksSelect verifies that a thread waiting on an
// indefinite Select is released by a concurrent Wakeup with zero ready
// monitors.
func TestWakeupUnblocksSelect(t *testing.T) {
	sel, err := nio.NewSelector()
	require.NoError(t, err)
	defer sel.Close()

	_, server := loopbackPair(t)
	defer server.Close()
	ep, err := nio.NewEndpoint(server.(*net.TCPConn))
	require.NoError(t, err)

	_, err = sel.Register(ep, nio.Nil, nil)
	require.NoError(t, err)

	done := make(chan []*nio.Monitor, 1)
	errs := make(chan error, 1)
	go func() {
		ready, err := sel.Select(8, -1)
		if err != nil {
			errs <- err
			return
		}
		done <- ready
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, sel.Wakeup())

	select {
	case ready := <-done:
		assert.Empty(t, ready)
	case err := <-errs:
		t.Fatalf("select failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("wakeup did not unblock select in time")
	}
}

// TestInterestMutationSurfacesOnNextSelect verifies that an interest
// change only takes effect on the next Select call.
func TestInterestMutationSurfacesOnNextSelect(t *testing.T) {
	sel, err := nio.NewSelector()
	require.NoError(t, err)
	defer sel.Close()

	client, server := loopbackPair(t)
	defer client.Close()
	defer server.Close()

	ep, err := nio.NewEndpoint(server.(*net.TCPConn))
	require.NoError(t, err)

	mon, err := sel.Register(ep, nio.Read, nil)
	require.NoError(t, err)

	ready, err := sel.Select(8, 0)
	require.NoError(t, err)
	assert.Empty(t, ready)

	require.NoError(t, mon.AddInterest(nio.Write))

	ready, err = sel.Select(8, 50)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Same(t, mon, ready[0])
	assert.True(t, mon.Writable())
	assert.False(t, mon.Readable())
}

// TestCloseContract verifies that after Close, Register fails and Select
// returns no monitors, but existing registrations remain until the caller
// deregisters them.
func TestCloseContract(t *testing.T) {
	sel, err := nio.NewSelector()
	require.NoError(t, err)

	_, server := loopbackPair(t)
	defer server.Close()
	ep, err := nio.NewEndpoint(server.(*net.TCPConn))
	require.NoError(t, err)

	_, err = sel.Register(ep, nio.Read, nil)
	require.NoError(t, err)

	require.NoError(t, sel.Close())
	assert.True(t, sel.Closed())

	_, server2 := loopbackPair(t)
	defer server2.Close()
	ep2, err := nio.NewEndpoint(server2.(*net.TCPConn))
	require.NoError(t, err)

	_, err = sel.Register(ep2, nio.Read, nil)
	assert.ErrorIs(t, err, nio.ErrSelectorClosed)

	ready, err := sel.Select(8, 0)
	require.NoError(t, err)
	assert.Empty(t, ready)

	assert.False(t, sel.Empty())
	assert.ErrorIs(t, sel.Close(), nio.ErrSelectorClosed)
}

func TestBackendNameIsOneOfKnownTags(t *testing.T) {
	sel, err := nio.NewSelector()
	require.NoError(t, err)
	defer sel.Close()

	name := sel.BackendName()
	assert.Contains(t, []string{nio.BackendEpoll, nio.BackendKqueue, nio.BackendSelect}, name)
}
