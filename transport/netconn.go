// File: transport/netconn.go
// Package transport wraps the network connections the client runs on.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"net"
	"sync/atomic"
	"time"
)

// NetConn adapts a net.Conn into the client's stream: it applies the
// configured per-operation deadlines and keeps byte counters.
//
// When a timeout is zero, explicit deadlines set through
// SetReadDeadline/SetWriteDeadline (handshake, close-wait) stay in
// force; a non-zero per-operation timeout re-arms the deadline on
// every call and therefore takes precedence.
type NetConn struct {
	conn         net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration

	bytesIn  atomic.Int64
	bytesOut atomic.Int64
}

// NewNetConn wraps conn with optional per-operation timeouts.
func NewNetConn(conn net.Conn, readTimeout, writeTimeout time.Duration) *NetConn {
	return &NetConn{conn: conn, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

func (n *NetConn) Read(p []byte) (int, error) {
	if n.readTimeout > 0 {
		_ = n.conn.SetReadDeadline(time.Now().Add(n.readTimeout))
	}
	c, err := n.conn.Read(p)
	n.bytesIn.Add(int64(c))
	return c, err
}

func (n *NetConn) Write(p []byte) (int, error) {
	if n.writeTimeout > 0 {
		_ = n.conn.SetWriteDeadline(time.Now().Add(n.writeTimeout))
	}
	c, err := n.conn.Write(p)
	n.bytesOut.Add(int64(c))
	return c, err
}

func (n *NetConn) Close() error { return n.conn.Close() }

func (n *NetConn) SetReadDeadline(t time.Time) error  { return n.conn.SetReadDeadline(t) }
func (n *NetConn) SetWriteDeadline(t time.Time) error { return n.conn.SetWriteDeadline(t) }

// RemoteAddr exposes the peer address for logging.
func (n *NetConn) RemoteAddr() net.Addr { return n.conn.RemoteAddr() }

// Stats returns total bytes read and written through this wrapper.
func (n *NetConn) Stats() (in, out int64) {
	return n.bytesIn.Load(), n.bytesOut.Load()
}
