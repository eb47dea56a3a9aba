// File: api/errors.go
// Package api defines the error taxonomy shared across hioload-wsclient.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Every failure crossing the library boundary is one of four kinds:
// handshake, protocol, I/O, or closed. Nothing is silently swallowed;
// a terminal connection always carries the error that ended it.

package api

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by any operation attempted after the connection
// reached the closed state, once the original cause has been observed.
var ErrClosed = errors.New("wsclient: connection closed")

// ErrAlreadySplit is returned when Split is called more than once.
var ErrAlreadySplit = errors.New("wsclient: connection already split")

// HandshakeError reports a failed HTTP upgrade exchange. It is fatal:
// the library never retries a handshake, the caller may reconnect.
type HandshakeError struct {
	Status int // HTTP status, 0 when the response never parsed
	Reason string
}

func (e *HandshakeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("wsclient: handshake failed: %s (status %d)", e.Reason, e.Status)
	}
	return "wsclient: handshake failed: " + e.Reason
}

// NewHandshakeError builds a HandshakeError with an optional status code.
func NewHandshakeError(status int, format string, args ...any) *HandshakeError {
	return &HandshakeError{Status: status, Reason: fmt.Sprintf(format, args...)}
}

// ProtocolError reports a violation of RFC 6455 framing rules by the peer.
// Code is the close status the connection should send before dying.
type ProtocolError struct {
	Reason string
	Code   uint16 // close status code, 1002 unless a more specific one applies
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wsclient: protocol error: %s (close code %d)", e.Reason, e.Code)
}

// NewProtocolError builds a ProtocolError with close code 1002.
func NewProtocolError(format string, args ...any) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...), Code: 1002}
}

// NewProtocolErrorCode builds a ProtocolError carrying a specific close code.
func NewProtocolErrorCode(code uint16, format string, args ...any) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...), Code: code}
}

// IoError wraps a stream read/write failure, including timeouts.
type IoError struct {
	Op  string // "read", "write", "dial", "close"
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("wsclient: %s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// ClosedError reports that the connection ended, carrying the peer's close
// status when one was delivered.
type ClosedError struct {
	Code   uint16
	Reason string
}

func (e *ClosedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("wsclient: closed: code %d: %s", e.Code, e.Reason)
	}
	return fmt.Sprintf("wsclient: closed: code %d", e.Code)
}

// Is lets errors.Is(err, api.ErrClosed) match a ClosedError.
func (e *ClosedError) Is(target error) bool { return target == ErrClosed }

// IsHandshakeError reports whether err is (or wraps) a HandshakeError.
func IsHandshakeError(err error) bool {
	var he *HandshakeError
	return errors.As(err, &he)
}

// IsProtocolError reports whether err is (or wraps) a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsIoError reports whether err is (or wraps) an IoError.
func IsIoError(err error) bool {
	var ioe *IoError
	return errors.As(err, &ioe)
}

// IsClosedError reports whether err indicates a closed connection.
func IsClosedError(err error) bool {
	return errors.Is(err, ErrClosed)
}
