//go:build linux

package backend_test

import (
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shixiongfei/nio/internal/backend"
)

func fd(t *testing.T, conn syscall.Conn) int {
	t.Helper()
	raw, err := conn.SyscallConn()
	require.NoError(t, err)
	var h int
	require.NoError(t, raw.Control(func(p uintptr) { h = int(p) }))
	return h
}

func TestEpollBackendName(t *testing.T) {
	be, err := backend.New()
	require.NoError(t, err)
	defer be.Close()
	assert.Equal(t, "epoll", be.Name())
}

func TestEpollRegisterWaitDeregister(t *testing.T) {
	be, err := backend.New()
	require.NoError(t, err)
	defer be.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	server, err := ln.Accept()
	require.NoError(t, err)
	defer server.Close()

	clientFd := fd(t, client.(*net.TCPConn))

	require.NoError(t, be.Register(clientFd, "ud"))
	require.NoError(t, be.SetInterest(clientFd, false, true, "ud"))

	events, err := be.Wait(make([]backend.Event, 0, 4), 1000)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, clientFd, events[0].Handle)
	assert.Equal(t, "ud", events[0].UserData)
	assert.True(t, events[0].Writable)

	require.NoError(t, be.Deregister(clientFd))
}

func TestEpollWaitTimesOutWithNoEvents(t *testing.T) {
	be, err := backend.New()
	require.NoError(t, err)
	defer be.Close()

	start := time.Now()
	events, err := be.Wait(make([]backend.Event, 0, 4), 50)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestEpollRegisterDuplicateRejected(t *testing.T) {
	be, err := backend.New()
	require.NoError(t, err)
	defer be.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	lnFd := fd(t, ln.(*net.TCPListener))

	require.NoError(t, be.Register(lnFd, nil))
	assert.Error(t, be.Register(lnFd, nil))
}
