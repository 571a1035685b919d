//go:build dragonfly || freebsd || illumos || linux || netbsd || openbsd

package netutil

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Accept wraps the accept system call and marks the returned file
// descriptor close-on-exec and non-blocking in one syscall where available,
// falling back to separate calls when accept4 is missing.
func Accept(fd int) (int, unix.Sockaddr, error) {
	ns, sa, err := unix.Accept4(fd, syscall.SOCK_CLOEXEC|syscall.SOCK_NONBLOCK)
	switch err {
	case nil:
		return ns, sa, nil
	default:
		return -1, sa, err
	case syscall.ENOSYS, syscall.EINVAL, syscall.EACCES, syscall.EFAULT:
	}

	ns, sa, err = unix.Accept(fd)
	if err != nil {
		return -1, nil, err
	}
	syscall.CloseOnExec(ns)
	syscall.SetNonblock(ns, true)
	return ns, sa, nil
}
