package netutil_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shixiongfei/nio/internal/netutil"
)

func TestGetFDTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	fd, err := netutil.GetFD(ln)
	assert.NoError(t, err)
	assert.NotEqual(t, -1, fd)

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	fd2, err := netutil.GetFD(conn)
	assert.NoError(t, err)
	assert.NotEqual(t, fd, fd2)
}

func TestGetFDNotSyscallConn(t *testing.T) {
	_, err := netutil.GetFD("not a conn")
	assert.Error(t, err)
}

func TestGetFDAfterClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln.Close()

	_, err = netutil.GetFD(ln)
	assert.Error(t, err)
}
