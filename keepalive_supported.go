//go:build linux || freebsd || dragonfly || darwin

package nio

import "github.com/shixiongfei/nio/internal/netutil"

func applyKeepAlive(fd, secs int) error {
	return netutil.SetKeepAlive(fd, secs)
}
