// File: client/config.go
// Package client: configuration for the WebSocket client.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/momentics/hioload-wsclient/control"
	"github.com/momentics/hioload-wsclient/pool"
	"github.com/momentics/hioload-wsclient/protocol"
)

// Config holds all configurable parameters for a connection.
// The zero value of each field selects the documented default.
type Config struct {
	// MaxMessageSize bounds a reassembled message; frames pushing an
	// in-progress message past it are a fatal protocol error
	// (close code 1009). 0 selects the default, -1 disables the bound.
	MaxMessageSize int64

	// HandshakeTimeout bounds the whole upgrade exchange.
	HandshakeTimeout time.Duration

	// CloseWait bounds the wait for the peer's Close echo after this
	// side initiates the close handshake.
	CloseWait time.Duration

	// ReadTimeout / WriteTimeout are per-operation idle caps applied
	// by the transport wrapper; 0 disables them.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// DisableAutoPong stops the reader from answering Pings itself;
	// Ping events are then surfaced for the caller to answer.
	DisableAutoPong bool

	// Subprotocols are offered during the handshake and otherwise not
	// processed by this client.
	Subprotocols []string

	// Header holds extra request headers sent with the upgrade.
	Header http.Header

	// ControlHandler, when set, receives control events synchronously
	// from the reader instead of the polled event queue.
	ControlHandler func(*protocol.ControlEvent)

	// ReadBufferSize is the pooled chunk size for stream reads.
	ReadBufferSize int

	Logger  *slog.Logger
	Metrics *control.ConnMetrics
}

// DefaultConfig returns the defaults used when fields are zero.
func DefaultConfig() *Config {
	return &Config{
		MaxMessageSize:   16 << 20,
		HandshakeTimeout: 10 * time.Second,
		CloseWait:        5 * time.Second,
		ReadBufferSize:   pool.DefaultBufferSize,
	}
}

// withDefaults returns a copy of c with zero fields filled in.
func (c *Config) withDefaults() *Config {
	def := DefaultConfig()
	if c == nil {
		c = def
	}
	out := *c
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = def.MaxMessageSize
	}
	if out.HandshakeTimeout == 0 {
		out.HandshakeTimeout = def.HandshakeTimeout
	}
	if out.CloseWait == 0 {
		out.CloseWait = def.CloseWait
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = def.ReadBufferSize
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}
