//go:build windows

package nio

import (
	"net"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// newSelfPipe creates the Windows self-pipe: winsock has no socketpair, so
// this uses a loopback TCP accept pairing instead.
func newSelfPipe() (*selfPipe, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, errors.Wrap(err, "nio: selfpipe listen")
	}
	defer ln.Close()

	writeConn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		return nil, errors.Wrap(err, "nio: selfpipe dial")
	}

	readConn, err := ln.Accept()
	if err != nil {
		writeConn.Close()
		return nil, errors.Wrap(err, "nio: selfpipe accept")
	}

	readFd, err := socketFd(readConn)
	if err != nil {
		readConn.Close()
		writeConn.Close()
		return nil, err
	}
	writeFd, err := socketFd(writeConn)
	if err != nil {
		readConn.Close()
		writeConn.Close()
		return nil, err
	}
	return &selfPipe{readFd: readFd, writeFd: writeFd}, nil
}

func socketFd(conn net.Conn) (int, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return -1, errors.New("nio: selfpipe conn has no raw handle")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, errors.Wrap(err, "nio: selfpipe rawconn")
	}
	var fd int
	ctrlErr := raw.Control(func(h uintptr) {
		fd = int(h)
	})
	if ctrlErr != nil {
		return -1, errors.Wrap(ctrlErr, "nio: selfpipe control")
	}
	return fd, nil
}

func dupCloexec(fd int) (int, error) {
	var newHandle windows.Handle
	proc := windows.CurrentProcess()
	err := windows.DuplicateHandle(proc, windows.Handle(fd), proc, &newHandle, 0, false, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return -1, errors.Wrap(err, "nio: duplicate handle")
	}
	return int(newHandle), nil
}

func closeFd(fd int) error {
	return windows.Closesocket(windows.Handle(fd))
}

func writeWakeByte(fd int) error {
	_, err := windows.Send(windows.Handle(fd), []byte{1}, 0)
	if err != nil {
		return errors.Wrap(err, "nio: wakeup write")
	}
	return nil
}

func drainWakeByte(fd int) error {
	var buf [64]byte
	for {
		n, _, err := windows.Recvfrom(windows.Handle(fd), buf[:], 0)
		if err != nil {
			if err == windows.WSAEWOULDBLOCK {
				return nil
			}
			return errors.Wrap(err, "nio: wakeup drain")
		}
		if n < len(buf) {
			return nil
		}
	}
}
