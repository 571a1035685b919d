//go:build aix || darwin || (js && wasm) || (solaris && !illumos)

package netutil

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Accept wraps the accept system call and marks the returned file
// descriptor close-on-exec and non-blocking, for platforms without accept4.
func Accept(fd int) (int, unix.Sockaddr, error) {
	ns, sa, err := unix.Accept(fd)
	if err != nil {
		return -1, nil, err
	}
	syscall.CloseOnExec(ns)
	syscall.SetNonblock(ns, true)
	return ns, sa, nil
}
