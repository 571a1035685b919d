// Package netutil holds the small ambient socket helpers a caller needs to
// build the socket-handle wrapper around nio.Endpoint: extracting a raw fd,
// accepting with close-on-exec, and setting keep-alive.
package netutil

import (
	"errors"
	"fmt"
	"syscall"
)

// GetFD returns the integer file descriptor backing a net.Conn or
// net.Listener.
func GetFD(socket interface{}) (int, error) {
	conn, ok := socket.(syscall.Conn)
	if !ok {
		return -1, fmt.Errorf("type %T doesn't implement syscall.Conn interface", socket)
	}
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return -1, fmt.Errorf("get raw connection fail %w", err)
	}

	fd := -1
	err = rawConn.Control(func(sysfd uintptr) {
		fd = int(sysfd)
	})
	if fd == -1 {
		return -1, errors.New("invalid file descriptor")
	}
	return fd, err
}
