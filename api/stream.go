// File: api/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import (
	"io"
	"time"
)

// Stream is the byte-stream abstraction the client runs on: a connected,
// ordered, reliable duplex stream, already TLS-terminated when wss was
// requested. net.Conn satisfies it; so does transport.NetConn.
type Stream interface {
	io.ReadWriteCloser

	// SetReadDeadline bounds the next Read; zero time clears it.
	SetReadDeadline(t time.Time) error
	// SetWriteDeadline bounds the next Write; zero time clears it.
	SetWriteDeadline(t time.Time) error
}
