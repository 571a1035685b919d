package netutil_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shixiongfei/nio/internal/netutil"
)

func TestSetKeepAlive(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	c := make(chan struct{})
	go func() {
		client, err := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, err)
		<-c
		client.Close()
	}()

	conn, err := ln.Accept()
	require.NoError(t, err)
	defer conn.Close()

	fd, err := netutil.GetFD(conn)
	require.NoError(t, err)

	require.NoError(t, netutil.SetKeepAlive(fd, 1))
	require.Error(t, netutil.SetKeepAlive(fd, -1))
	c <- struct{}{}
}

func TestSetKeepAliveBadFd(t *testing.T) {
	require.Error(t, netutil.SetKeepAlive(-1, 1))
}
