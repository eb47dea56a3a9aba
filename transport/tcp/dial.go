// File: transport/tcp/dial.go
// Package tcp dials outbound TCP connections with low-latency socket
// tuning applied where the platform supports it.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"context"
	"net"
	"time"
)

// DialContext connects to addr, applying per-platform socket options
// (TCP_NODELAY, keepalive) through the dialer's Control hook before
// the connect completes.
func DialContext(ctx context.Context, addr string) (net.Conn, error) {
	d := net.Dialer{
		KeepAlive: 30 * time.Second,
		Control:   controlSocket,
	}
	return d.DialContext(ctx, "tcp", addr)
}
