// File: client/reader.go
// Package client: the inbound half of a split connection.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The reader drives the incremental decode loop: read bytes into the
// growable buffer, decode frames, feed the assembler, and transparently
// run the control-frame obligations (Ping echo, Close handshake).
// Control frames the caller may care about go to the side channel:
// either the configured handler or a bounded polled queue.

package client

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-wsclient/api"
	"github.com/momentics/hioload-wsclient/protocol"
)

// maxPendingControlEvents bounds the polled side channel; the oldest
// event is dropped on overflow.
const maxPendingControlEvents = 32

// Reader owns the inbound direction: the decode buffer, the assembler
// and the control-event side channel. Next must not be called
// concurrently with itself; it may run concurrently with any Writer
// method.
type Reader struct {
	c *Conn

	evmu   sync.Mutex
	events *queue.Queue
}

func newReader(c *Conn) *Reader {
	return &Reader{c: c, events: queue.New()}
}

// Next returns the next complete message. It blocks until a message,
// a fatal error, or the end of the connection; after the close
// handshake completes every call reports ClosedError. The sequence is
// infinite until Closed and does not restart: reconnection is caller
// policy.
func (r *Reader) Next() (*protocol.Message, error) {
	c := r.c
	for {
		if c.state.Load() == StateClosed {
			return nil, c.terminal()
		}

		f, consumed, err := protocol.DecodeFrameLimit(c.rbuf[c.roff:], c.cfg.MaxMessageSize)
		if err != nil {
			return nil, c.fail(err)
		}
		if f == nil {
			// Incomplete frame: pull more bytes and retry.
			if err := c.fill(); err != nil {
				return nil, r.readFailed(err)
			}
			continue
		}
		c.roff += consumed
		c.metrics.AddFrameReceived()

		if f.Masked {
			return nil, c.fail(api.NewProtocolError("server-to-client frames must not be masked"))
		}

		msg, ev, err := c.asm.Feed(f)
		if err != nil {
			return nil, c.fail(err)
		}
		if ev != nil {
			if err := r.handleControl(ev); err != nil {
				return nil, err
			}
			continue
		}
		if msg == nil {
			continue
		}
		c.metrics.AddMessage()
		return msg, nil
	}
}

// Control pops one pending control event from the side channel,
// nil when none are queued or a ControlHandler is configured.
func (r *Reader) Control() *protocol.ControlEvent {
	r.evmu.Lock()
	defer r.evmu.Unlock()
	if r.events.Length() == 0 {
		return nil
	}
	return r.events.Remove().(*protocol.ControlEvent)
}

// handleControl performs the transparent control-frame duties. A
// non-nil return is terminal for Next.
func (r *Reader) handleControl(ev *protocol.ControlEvent) error {
	c := r.c
	switch ev.Opcode {
	case protocol.OpcodePing:
		if c.cfg.DisableAutoPong {
			r.surface(ev)
			return nil
		}
		if c.state.Load() == StateOpen {
			if err := c.writeFrame(protocol.OpcodePong, ev.Payload); err != nil {
				return err
			}
			c.metrics.AddPingAnswered()
		}
		return nil

	case protocol.OpcodePong:
		r.surface(ev)
		return nil

	case protocol.OpcodeClose:
		ci := *ev.Close
		c.setPeerClose(ci)
		r.surface(ev)

		if c.state.CompareAndSwap(StateOpen, StateClosing) {
			// Peer closed first: echo, policy-compliant code or 1000.
			echo := ci.Code
			if !echo.IsValid() {
				echo = protocol.CloseNormalClosure
			}
			_ = c.sendClose(protocol.CloseInfo{Code: echo})
		}
		// Both directions have now delivered their Close.
		c.die(&api.ClosedError{Code: uint16(ci.Code), Reason: ci.Reason})
		return c.terminal()
	}
	return nil
}

// readFailed maps a stream read failure to the right terminal state:
// an expired close-wait after this side initiated the handshake is an
// orderly end, anything else is an I/O failure.
func (r *Reader) readFailed(err error) error {
	c := r.c
	switch c.state.Load() {
	case StateClosed:
		return c.terminal()
	case StateClosing:
		c.die(&api.ClosedError{
			Code:   uint16(protocol.CloseAbnormalClosure),
			Reason: "close-wait expired",
		})
		return c.terminal()
	}
	return c.fail(&api.IoError{Op: "read", Err: err})
}

func (r *Reader) surface(ev *protocol.ControlEvent) {
	if h := r.c.cfg.ControlHandler; h != nil {
		h(ev)
		return
	}
	r.evmu.Lock()
	r.events.Add(ev)
	if r.events.Length() > maxPendingControlEvents {
		r.events.Remove()
	}
	r.evmu.Unlock()
}
