// File: protocol/assembler.go
// Package protocol: reassembly of fragmented messages.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The assembler accumulates data frames into one logical message and
// hands control frames straight back to the caller without disturbing
// the in-progress accumulator. Data messages must not interleave;
// control frames may.

package protocol

import (
	"unicode/utf8"

	"github.com/momentics/hioload-wsclient/api"
)

// Assembler reassembles one message at a time from decoded frames.
// Not safe for concurrent use; it belongs to the reader half.
type Assembler struct {
	limit   int64
	started bool
	kind    MessageKind
	buf     []byte
}

// NewAssembler bounds accumulated message size by limit bytes; limit <= 0
// means unbounded, which is only sane against a trusted peer.
func NewAssembler(limit int64) *Assembler {
	return &Assembler{limit: limit}
}

// InProgress reports whether a partially assembled message is pending.
func (a *Assembler) InProgress() bool { return a.started }

// Reset discards any partially assembled message, as happens when the
// connection dies mid-assembly.
func (a *Assembler) Reset() {
	a.started = false
	a.buf = nil
}

// Feed consumes one decoded frame. Exactly one of the results is set:
// a complete Message, a ControlEvent, or neither when the frame only
// extended an in-progress message. Errors are protocol violations and
// fatal to the connection.
func (a *Assembler) Feed(f *Frame) (*Message, *ControlEvent, error) {
	if f.Opcode.IsControl() {
		ev := &ControlEvent{Opcode: f.Opcode, Payload: f.Payload}
		if f.Opcode == OpcodeClose {
			ci, err := ParseCloseInfo(f.Payload)
			if err != nil {
				return nil, nil, err
			}
			ev.Close = &ci
		}
		return nil, ev, nil
	}

	switch {
	case !a.started:
		if f.Opcode == OpcodeContinuation {
			return nil, nil, api.NewProtocolError("continuation frame without a message in progress")
		}
		a.started = true
		a.kind = MessageKind(f.Opcode)
		a.buf = append([]byte(nil), f.Payload...)
	case f.Opcode != OpcodeContinuation:
		return nil, nil, api.NewProtocolError("%s frame interleaved with an in-progress message", f.Opcode)
	default:
		a.buf = append(a.buf, f.Payload...)
	}

	if a.limit > 0 && int64(len(a.buf)) > a.limit {
		a.Reset()
		return nil, nil, api.NewProtocolErrorCode(1009, "message exceeds %d byte limit", a.limit)
	}
	if !f.Fin {
		return nil, nil, nil
	}

	msg := &Message{Kind: a.kind, Data: a.buf}
	a.started = false
	a.buf = nil
	if msg.Kind == MessageText && !utf8.Valid(msg.Data) {
		return nil, nil, api.NewProtocolErrorCode(1007, "text message is not valid UTF-8")
	}
	return msg, nil, nil
}
