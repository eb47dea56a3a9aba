// File: protocol/frame_codec.go
// Package protocol implements the incremental WebSocket frame codec.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Decoding works against a caller-managed growable buffer: when the
// buffer holds less than one complete frame, DecodeFrame reports
// "need more data" by returning (nil, 0, nil) without consuming input,
// so the reader can append more bytes and retry. This replaces any
// buffered-stream abstraction and is independent of how the transport
// chunks its reads.

package protocol

import (
	"encoding/binary"
	"math"

	"github.com/momentics/hioload-wsclient/api"
)

// EncodeFrame serializes f, masking the payload when f.Masked is set.
// The input payload is not modified; masking happens in the output
// buffer. Control frames are validated against RFC 6455 rules.
func EncodeFrame(f *Frame) ([]byte, error) {
	if f.Rsv != 0 {
		return nil, api.NewProtocolError("cannot encode non-zero RSV bits without a negotiated extension")
	}
	if !f.Opcode.IsKnown() {
		return nil, api.NewProtocolError("cannot encode reserved opcode 0x%x", byte(f.Opcode))
	}
	if f.Opcode.IsControl() {
		if !f.Fin {
			return nil, api.NewProtocolError("control frames must not be fragmented")
		}
		if len(f.Payload) > MaxControlPayload {
			return nil, api.NewProtocolError("control frame payload is %d bytes, limit is %d", len(f.Payload), MaxControlPayload)
		}
	}

	plen := len(f.Payload)
	buf := make([]byte, 0, MaxFrameHeaderLen+plen)

	b0 := byte(f.Opcode)
	if f.Fin {
		b0 |= FinBit
	}
	buf = append(buf, b0)

	var maskBit byte
	if f.Masked {
		maskBit = MaskBit
	}
	switch {
	case plen <= 125:
		buf = append(buf, byte(plen)|maskBit)
	case plen <= math.MaxUint16:
		buf = append(buf, 126|maskBit, 0, 0)
		binary.BigEndian.PutUint16(buf[len(buf)-2:], uint16(plen))
	default:
		buf = append(buf, 127|maskBit, 0, 0, 0, 0, 0, 0, 0, 0)
		binary.BigEndian.PutUint64(buf[len(buf)-8:], uint64(plen))
	}

	if f.Masked {
		buf = append(buf, f.MaskKey[:]...)
		start := len(buf)
		buf = append(buf, f.Payload...)
		maskBytes(f.MaskKey, 0, buf[start:])
		return buf, nil
	}
	return append(buf, f.Payload...), nil
}

// DecodeFrame parses one frame from the front of buf.
//
// Returns (nil, 0, nil) when buf does not yet hold a complete frame,
// (frame, consumed, nil) on success, or a *api.ProtocolError for
// malformed input. The returned payload is a copy, already unmasked;
// buf may be reused by the caller after the call.
//
// Enforcing the client-role rule that server frames arrive unmasked is
// left to the connection, which knows its role; the codec itself
// round-trips masked frames so encode/decode stay inverses.
func DecodeFrame(buf []byte) (*Frame, int, error) {
	return DecodeFrameLimit(buf, 0)
}

// DecodeFrameLimit is DecodeFrame with a bound on the declared payload
// length of data frames: when limit > 0, a data frame announcing more
// than limit bytes is rejected (close code 1009) as soon as its header
// parses, before any of the payload is buffered. Without this check a
// peer could declare an enormous length and have the caller accumulate
// it all just to reach the size check after reassembly. Control frames
// are exempt; the 125-byte control cap already bounds them.
func DecodeFrameLimit(buf []byte, limit int64) (*Frame, int, error) {
	if len(buf) < 2 {
		return nil, 0, nil
	}

	b0, b1 := buf[0], buf[1]
	f := &Frame{
		Fin:    b0&FinBit != 0,
		Rsv:    b0 & RsvMask,
		Opcode: Opcode(b0 & 0x0F),
		Masked: b1&MaskBit != 0,
	}

	if f.Rsv != 0 {
		return nil, 0, api.NewProtocolError("non-zero RSV bits 0x%x with no extension negotiated", f.Rsv>>4)
	}
	if !f.Opcode.IsKnown() {
		return nil, 0, api.NewProtocolError("reserved opcode 0x%x", byte(f.Opcode))
	}

	len7 := int64(b1 & lenMask)
	if f.Opcode.IsControl() {
		if !f.Fin {
			return nil, 0, api.NewProtocolError("fragmented %s frame", f.Opcode)
		}
		// A control frame may not even declare an extended length.
		if len7 > MaxControlPayload {
			return nil, 0, api.NewProtocolError("%s frame declares extended payload length", f.Opcode)
		}
	}

	offset := 2
	payloadLen := len7
	switch len7 {
	case 126:
		if len(buf) < offset+2 {
			return nil, 0, nil
		}
		payloadLen = int64(binary.BigEndian.Uint16(buf[offset:]))
		offset += 2
	case 127:
		if len(buf) < offset+8 {
			return nil, 0, nil
		}
		v := binary.BigEndian.Uint64(buf[offset:])
		if v > math.MaxInt64 {
			return nil, 0, api.NewProtocolError("payload length %d exceeds 2^63-1", v)
		}
		payloadLen = int64(v)
		offset += 8
	}

	if limit > 0 && f.Opcode.IsData() && payloadLen > limit {
		return nil, 0, api.NewProtocolErrorCode(1009, "frame declares %d byte payload, limit is %d", payloadLen, limit)
	}

	if f.Masked {
		if len(buf) < offset+4 {
			return nil, 0, nil
		}
		copy(f.MaskKey[:], buf[offset:])
		offset += 4
	}

	total := int64(offset) + payloadLen
	if total > int64(maxInt) {
		return nil, 0, api.NewProtocolErrorCode(1009, "frame of %d bytes cannot be buffered", total)
	}
	if int64(len(buf)) < total {
		return nil, 0, nil
	}

	f.Payload = make([]byte, payloadLen)
	copy(f.Payload, buf[offset:total])
	if f.Masked {
		maskBytes(f.MaskKey, 0, f.Payload)
	}
	return f, int(total), nil
}

const maxInt = int(^uint(0) >> 1)
