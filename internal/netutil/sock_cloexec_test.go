//go:build unix

package netutil_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shixiongfei/nio/internal/netutil"
)

func TestAccept(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	fd, err := netutil.GetFD(ln)
	require.NoError(t, err)

	listenAddr := ln.Addr()
	go func() {
		conn, err := net.Dial("tcp", listenAddr.String())
		require.NoError(t, err)
		defer conn.Close()
	}()

	time.Sleep(100 * time.Millisecond)
	_, _, err = netutil.Accept(fd)
	assert.NoError(t, err)

	_, _, err = netutil.Accept(10086)
	assert.Error(t, err)
}
