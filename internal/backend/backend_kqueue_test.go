//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package backend_test

import (
	"net"
	"syscall"
	"testing"

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

func TestKqueueBackendName(t *testing.T) {
	be, err := backend.New()
	require.NoError(t, err)
	defer be.Close()
	assert.Equal(t, "kqueue", be.Name())
}

func TestKqueueRegisterTracksButIdle(t *testing.T) {
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

	events, err := be.Wait(make([]backend.Event, 0, 4), 50)
	require.NoError(t, err)
	assert.Empty(t, events, "registered but not armed: nothing should be reported")

	require.NoError(t, be.SetInterest(clientFd, false, true, "ud"))
	events, err = be.Wait(make([]backend.Event, 0, 4), 1000)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Writable)
	assert.False(t, events[0].Readable)
}
