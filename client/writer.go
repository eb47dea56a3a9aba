// File: client/writer.go
// Package client: the outbound half of a split connection.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"time"
	"unicode/utf8"

	"github.com/momentics/hioload-wsclient/api"
	"github.com/momentics/hioload-wsclient/protocol"
)

// Writer owns the outbound direction of the stream. Each send encodes
// one complete masked frame and writes it atomically; the client does
// not auto-fragment, callers send complete messages.
//
// Writer methods are safe to call concurrently with the Reader, and
// with each other.
type Writer struct {
	c *Conn
}

// SendText sends s as a Text message. s must be well-formed UTF-8;
// the violation is reported locally and nothing reaches the wire.
func (w *Writer) SendText(s string) error {
	if !utf8.ValidString(s) {
		return api.NewProtocolErrorCode(1007, "outbound text is not valid UTF-8")
	}
	return w.send(protocol.OpcodeText, []byte(s))
}

// SendBinary sends p as a Binary message.
func (w *Writer) SendBinary(p []byte) error {
	return w.send(protocol.OpcodeBinary, p)
}

// Ping sends a Ping frame; payload may be nil and is capped at 125
// bytes by the codec.
func (w *Writer) Ping(payload []byte) error {
	return w.send(protocol.OpcodePing, payload)
}

// Pong sends an unsolicited Pong, which RFC 6455 permits as a
// unidirectional heartbeat.
func (w *Writer) Pong(payload []byte) error {
	return w.send(protocol.OpcodePong, payload)
}

func (w *Writer) send(op protocol.Opcode, payload []byte) error {
	if w.c.state.Load() != StateOpen {
		return w.c.terminal()
	}
	return w.c.writeFrame(op, payload)
}

// Close initiates the close handshake with the given status. The
// reader half finishes the handshake when the peer's echo arrives;
// CloseWait bounds that wait whether or not anyone is reading.
// Subsequent sends on either handle fail with ClosedError.
func (w *Writer) Close(info protocol.CloseInfo) error {
	c := w.c
	if !c.state.CompareAndSwap(StateOpen, StateClosing) {
		return c.terminal()
	}
	if err := c.sendClose(info); err != nil {
		return err
	}

	// Unblock a reader stuck in a stream read, and cover the case of
	// no reader at all: the connection must reach Closed even when
	// the peer never echoes.
	_ = c.stream.SetReadDeadline(time.Now().Add(c.cfg.CloseWait))
	t := time.AfterFunc(c.cfg.CloseWait, func() {
		c.die(&api.ClosedError{
			Code:   uint16(protocol.CloseAbnormalClosure),
			Reason: "close-wait expired",
		})
	})
	c.mu.Lock()
	c.closeTimer = t
	dead := c.cause != nil
	c.mu.Unlock()
	if dead {
		// The peer's echo (or a failure) won the race; die already ran
		// and missed the timer.
		t.Stop()
	}
	return nil
}
