// File: protocol/message.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

// MessageKind distinguishes the two data message types.
type MessageKind byte

const (
	MessageText   MessageKind = MessageKind(OpcodeText)
	MessageBinary MessageKind = MessageKind(OpcodeBinary)
)

func (k MessageKind) String() string {
	if k == MessageText {
		return "text"
	}
	return "binary"
}

// Message is a complete logical unit delivered to the caller after
// reassembly. Text message data is always well-formed UTF-8.
type Message struct {
	Kind MessageKind
	Data []byte
}

// Text returns the message data as a string.
func (m *Message) Text() string { return string(m.Data) }

// ControlEvent is a control frame surfaced out of band: a Ping that was
// (or must be) answered, an informational Pong, or a peer Close.
type ControlEvent struct {
	Opcode  Opcode
	Payload []byte
	// Close carries the parsed status for OpcodeClose events.
	Close *CloseInfo
}
