// File: protocol/frame.go
// Package protocol implements RFC 6455 client-side framing: the frame
// codec, message assembly and the HTTP upgrade handshake.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

// Opcode identifies the frame type per RFC 6455 Section 5.2.
type Opcode byte

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA
)

// IsControl reports whether the opcode is Close, Ping or Pong.
func (o Opcode) IsControl() bool { return o >= 0x8 }

// IsData reports whether the opcode is Continuation, Text or Binary.
func (o Opcode) IsData() bool { return o <= 0x2 }

// IsKnown reports whether the opcode is defined by RFC 6455; the
// reserved ranges 0x3-0x7 and 0xB-0xF are rejected on the wire.
func (o Opcode) IsKnown() bool {
	switch o {
	case OpcodeContinuation, OpcodeText, OpcodeBinary,
		OpcodeClose, OpcodePing, OpcodePong:
		return true
	}
	return false
}

func (o Opcode) String() string {
	switch o {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	}
	return "reserved"
}

// Wire-format bit masks.
const (
	FinBit  = 0x80
	RsvMask = 0x70
	MaskBit = 0x80
	lenMask = 0x7F
)

// MaxControlPayload is the payload ceiling for control frames. Control
// frames also must never be fragmented.
const MaxControlPayload = 125

// MaxFrameHeaderLen is the worst-case encoded header size:
// 2 fixed bytes + 8 extended-length bytes + 4 mask-key bytes.
const MaxFrameHeaderLen = 14

// Frame is one WebSocket wire unit.
type Frame struct {
	Fin     bool
	Rsv     byte // RSV1-3 as read from the wire; must be zero
	Opcode  Opcode
	Masked  bool
	MaskKey [4]byte
	Payload []byte
}
