// File: protocol/close.go
// Package protocol: close status registry and Close frame payloads.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/momentics/hioload-wsclient/api"
)

// CloseCode is a 2-byte close status per the RFC 6455 Section 7.4 registry.
type CloseCode uint16

const (
	CloseNormalClosure   CloseCode = 1000
	CloseGoingAway       CloseCode = 1001
	CloseProtocolError   CloseCode = 1002
	CloseUnsupportedData CloseCode = 1003

	// CloseNoStatusReceived and CloseAbnormalClosure are reporting-only
	// codes: never sent on the wire, only synthesized locally.
	CloseNoStatusReceived CloseCode = 1005
	CloseAbnormalClosure  CloseCode = 1006

	CloseInvalidFramePayloadData CloseCode = 1007
	ClosePolicyViolation         CloseCode = 1008
	CloseMessageTooBig           CloseCode = 1009
	CloseMandatoryExtension      CloseCode = 1010
	CloseInternalError           CloseCode = 1011
)

// IsValid reports whether the code may appear inside a Close frame on
// the wire: the defined 1000-range codes plus the registered and
// private-use ranges.
func (c CloseCode) IsValid() bool {
	return (c >= 1000 && c <= 1003) ||
		(c >= 1007 && c <= 1011) ||
		(c >= 3000 && c <= 4999)
}

// maxCloseReason bounds the reason so 2 + len(reason) fits within the
// control-frame payload limit.
const maxCloseReason = MaxControlPayload - 2

// CloseInfo is the status carried by a Close frame. Immutable once built.
type CloseInfo struct {
	Code   CloseCode
	Reason string
}

// Encode produces the Close frame payload: a big-endian code followed
// by the UTF-8 reason, truncated to 123 bytes on a rune boundary.
func (ci CloseInfo) Encode() []byte {
	reason := ci.Reason
	if len(reason) > maxCloseReason {
		cut := maxCloseReason
		for cut > 0 && !utf8.RuneStart(reason[cut]) {
			cut--
		}
		reason = reason[:cut]
	}
	payload := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(payload, uint16(ci.Code))
	copy(payload[2:], reason)
	return payload
}

// ParseCloseInfo interprets a received Close frame payload.
// An empty payload is legal and reported as CloseNoStatusReceived.
func ParseCloseInfo(payload []byte) (CloseInfo, error) {
	switch {
	case len(payload) == 0:
		return CloseInfo{Code: CloseNoStatusReceived}, nil
	case len(payload) == 1:
		return CloseInfo{}, api.NewProtocolError("close payload of 1 byte cannot carry a status code")
	}
	code := CloseCode(binary.BigEndian.Uint16(payload))
	if !code.IsValid() {
		return CloseInfo{}, api.NewProtocolError("close code %d is not sendable", uint16(code))
	}
	reason := payload[2:]
	if !utf8.Valid(reason) {
		return CloseInfo{}, api.NewProtocolErrorCode(1007, "close reason is not valid UTF-8")
	}
	return CloseInfo{Code: code, Reason: string(reason)}, nil
}
