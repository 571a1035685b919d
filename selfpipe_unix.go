//go:build unix

package nio

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// newSelfPipe creates the POSIX self-pipe: a connected, non-blocking
// SOCK_STREAM pair. A socket pair is used rather than a literal pipe(2) so
// the same code path also satisfies kqueue, which only tracks socket-like
// descriptors reliably across all supported BSD variants.
func newSelfPipe() (*selfPipe, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return nil, errors.Wrap(err, "nio: socketpair")
	}
	return &selfPipe{readFd: fds[0], writeFd: fds[1]}, nil
}

func dupCloexec(fd int) (int, error) {
	newFd, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return -1, errors.Wrap(err, "fcntl(F_DUPFD_CLOEXEC)")
	}
	return newFd, nil
}

func closeFd(fd int) error {
	return unix.Close(fd)
}

func writeWakeByte(fd int) error {
	_, err := unix.Write(fd, []byte{1})
	if err != nil && err != unix.EAGAIN {
		return errors.Wrap(err, "nio: wakeup write")
	}
	return nil
}

func drainWakeByte(fd int) error {
	var buf [64]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return nil
			}
			return errors.Wrap(err, "nio: wakeup drain")
		}
		if n < len(buf) {
			return nil
		}
	}
}
