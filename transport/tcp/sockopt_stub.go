// File: transport/tcp/sockopt_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build !linux

package tcp

import "syscall"

// controlSocket is a no-op on platforms without the tuned setsockopt
// path; the net package defaults (TCP_NODELAY on) already apply.
func controlSocket(network, address string, c syscall.RawConn) error {
	return nil
}
