// File: transport/tcp/sockopt_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux

package tcp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlSocket disables Nagle and enables keepalive on the raw fd.
// Frame writes are already coalesced by the writer, so delaying small
// control frames behind Nagle only adds latency.
func controlSocket(network, address string, c syscall.RawConn) error {
	var optErr error
	err := c.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
			optErr = err
			return
		}
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
			optErr = err
		}
	})
	if err != nil {
		return err
	}
	return optErr
}
