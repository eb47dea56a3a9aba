// File: client/conn.go
// Package client implements the WebSocket client connection: handshake
// driving, lifecycle, and the split into writer and reader halves.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ownership after Split: the Writer holds the outbound half behind
// wmu; the Reader exclusively owns the decode buffer and assembler.
// The lifecycle state machine is the only state both halves touch.

package client

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-wsclient/api"
	"github.com/momentics/hioload-wsclient/control"
	"github.com/momentics/hioload-wsclient/pool"
	"github.com/momentics/hioload-wsclient/protocol"
)

// Conn is one established WebSocket session over a caller-supplied
// byte stream. It is inert until Split hands out the two halves.
type Conn struct {
	cfg     *Config
	stream  api.Stream
	log     *slog.Logger
	metrics *control.ConnMetrics

	state stateMachine
	meta  *protocol.HandshakeResult

	// outbound half, shared by the Writer and the reader's control
	// echoes; wmu also guards closeSent
	wmu       sync.Mutex
	closeSent bool

	// inbound half, reader-owned after Split
	rbuf []byte
	roff int
	bp   *pool.BytePool
	asm  *protocol.Assembler

	isSplit atomic.Bool

	mu         sync.Mutex
	cause      error
	seen       bool
	peerClose  *protocol.CloseInfo
	closeTimer *time.Timer

	dieOnce  sync.Once
	closedCh chan struct{}
}

// NewConn performs the opening handshake over stream, which must be a
// connected, ordered byte stream (already TLS-terminated for wss).
// u supplies the request target and Host header. On success the
// connection is Open and any pipelined frame bytes the server sent
// after the handshake response are queued as pre-read data.
func NewConn(ctx context.Context, stream api.Stream, u *url.URL, cfg *Config) (*Conn, error) {
	cfg = cfg.withDefaults()
	c := &Conn{
		cfg:      cfg,
		stream:   stream,
		log:      cfg.Logger.With("component", "wsclient"),
		metrics:  cfg.Metrics,
		bp:       pool.NewBytePool(cfg.ReadBufferSize),
		asm:      protocol.NewAssembler(cfg.MaxMessageSize),
		closedCh: make(chan struct{}),
	}
	c.state.Store(StateConnecting)

	key, err := protocol.GenerateKey()
	if err != nil {
		stream.Close()
		return nil, api.NewHandshakeError(0, "generating key: %v", err)
	}

	deadline := time.Now().Add(cfg.HandshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = stream.SetReadDeadline(deadline)
	_ = stream.SetWriteDeadline(deadline)

	req := protocol.BuildUpgradeRequest(u, key, cfg.Header, cfg.Subprotocols)
	if _, err := stream.Write(req); err != nil {
		stream.Close()
		return nil, &api.IoError{Op: "handshake write", Err: err}
	}
	res, err := protocol.ReadUpgradeResponse(stream, key)
	if err != nil {
		stream.Close()
		return nil, err
	}

	_ = stream.SetReadDeadline(time.Time{})
	_ = stream.SetWriteDeadline(time.Time{})

	c.meta = res
	c.rbuf = append(c.rbuf, res.Leftover...)
	c.state.CompareAndSwap(StateConnecting, StateOpen)
	c.log.Debug("connection open",
		"subprotocol", res.Subprotocol, "preread", len(res.Leftover))
	return c, nil
}

// State returns the current lifecycle position.
func (c *Conn) State() State { return c.state.Load() }

// Subprotocol returns the server-selected subprotocol, "" when none.
func (c *Conn) Subprotocol() string { return c.meta.Subprotocol }

// Handshake exposes the negotiated handshake metadata.
func (c *Conn) Handshake() *protocol.HandshakeResult { return c.meta }

// Done is closed when the connection reaches Closed.
func (c *Conn) Done() <-chan struct{} { return c.closedCh }

// PeerClose returns the close status received from the peer, nil when
// the peer never delivered one.
func (c *Conn) PeerClose() *protocol.CloseInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerClose
}

// Split consumes exclusive ownership of the connection into the two
// cooperating halves. It succeeds exactly once.
func (c *Conn) Split() (*Writer, *Reader, error) {
	if !c.isSplit.CompareAndSwap(false, true) {
		return nil, nil, api.ErrAlreadySplit
	}
	return &Writer{c: c}, newReader(c), nil
}

// Shutdown force-closes the connection: a best-effort Close frame,
// then the stream is torn down, unblocking any outstanding read or
// write with a terminal error. Safe to call from any goroutine.
func (c *Conn) Shutdown() error {
	if c.state.CompareAndSwap(StateOpen, StateClosing) {
		_ = c.sendClose(protocol.CloseInfo{Code: protocol.CloseGoingAway})
	}
	c.die(api.ErrClosed)
	return nil
}

// writeFrame encodes one masked frame and writes it atomically under
// the write lock, so frames from concurrent senders never interleave.
func (c *Conn) writeFrame(op protocol.Opcode, payload []byte) error {
	if c.state.Load() == StateClosed {
		return c.terminal()
	}
	key, err := protocol.NewMaskKey()
	if err != nil {
		return &api.IoError{Op: "mask", Err: err}
	}
	raw, err := protocol.EncodeFrame(&protocol.Frame{
		Fin:     true,
		Opcode:  op,
		Masked:  true,
		MaskKey: key,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closeSent {
		return c.terminal()
	}
	if _, err := c.stream.Write(raw); err != nil {
		c.die(&api.IoError{Op: "write", Err: err})
		return c.terminal()
	}
	c.metrics.AddFrameSent(len(raw))
	return nil
}

// sendClose writes the one Close frame this side may send. Later
// calls are no-ops so the writer's Close, the reader's echo and the
// failure path cannot race a duplicate onto the wire.
func (c *Conn) sendClose(info protocol.CloseInfo) error {
	var payload []byte
	if info.Code != protocol.CloseNoStatusReceived {
		payload = info.Encode()
	}
	key, err := protocol.NewMaskKey()
	if err != nil {
		return &api.IoError{Op: "mask", Err: err}
	}
	raw, err := protocol.EncodeFrame(&protocol.Frame{
		Fin:     true,
		Opcode:  protocol.OpcodeClose,
		Masked:  true,
		MaskKey: key,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closeSent {
		return nil
	}
	c.closeSent = true
	if _, err := c.stream.Write(raw); err != nil {
		c.die(&api.IoError{Op: "write", Err: err})
		return c.terminal()
	}
	c.metrics.AddFrameSent(len(raw))
	return nil
}

// fill appends one stream read to the decode buffer, compacting the
// consumed prefix first. A read that delivers bytes together with an
// error reports success; the decoder must see those bytes (a final
// Close frame can arrive in the same read as EOF) and the error will
// repeat on the next call.
func (c *Conn) fill() error {
	if c.roff > 0 {
		c.rbuf = append(c.rbuf[:0], c.rbuf[c.roff:]...)
		c.roff = 0
	}
	chunk := c.bp.Get()
	n, err := c.stream.Read(chunk)
	if n > 0 {
		c.rbuf = append(c.rbuf, chunk[:n]...)
		c.metrics.AddBytesReceived(n)
		err = nil
	}
	c.bp.Put(chunk)
	return err
}

// fail records a fatal error, makes a best-effort attempt to tell the
// peer why (for protocol violations), and tears the connection down.
// It must not be called while holding wmu.
func (c *Conn) fail(err error) error {
	var pe *api.ProtocolError
	if errors.As(err, &pe) {
		c.metrics.AddProtocolError()
		_ = c.sendClose(protocol.CloseInfo{Code: protocol.CloseCode(pe.Code)})
	}
	c.log.Debug("connection failed", "err", err)
	c.die(err)
	return c.terminal()
}

// die moves the connection to Closed exactly once, recording the
// cause and releasing everything blocked on the stream.
func (c *Conn) die(cause error) {
	c.dieOnce.Do(func() {
		c.mu.Lock()
		c.cause = cause
		if c.closeTimer != nil {
			c.closeTimer.Stop()
		}
		c.mu.Unlock()
		c.state.Store(StateClosed)
		close(c.closedCh)
		_ = c.stream.Close()
	})
}

// terminal reports why the connection ended: the original cause on
// first observation, ClosedError afterwards.
func (c *Conn) terminal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cause != nil && !c.seen {
		c.seen = true
		return c.cause
	}
	if c.peerClose != nil {
		return &api.ClosedError{Code: uint16(c.peerClose.Code), Reason: c.peerClose.Reason}
	}
	return &api.ClosedError{Code: uint16(protocol.CloseAbnormalClosure)}
}

func (c *Conn) setPeerClose(ci protocol.CloseInfo) {
	c.mu.Lock()
	c.peerClose = &ci
	c.mu.Unlock()
	c.metrics.AddCloseCode(uint16(ci.Code))
}
