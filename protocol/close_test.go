package protocol_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/momentics/hioload-wsclient/api"
	"github.com/momentics/hioload-wsclient/protocol"
)

func TestCloseCodeValidity(t *testing.T) {
	valid := []protocol.CloseCode{1000, 1001, 1002, 1003, 1007, 1008, 1009, 1010, 1011, 3000, 4000, 4999}
	for _, c := range valid {
		if !c.IsValid() {
			t.Errorf("code %d reported invalid", c)
		}
	}
	invalid := []protocol.CloseCode{0, 999, 1004, 1005, 1006, 1012, 2999, 5000, 65535}
	for _, c := range invalid {
		if c.IsValid() {
			t.Errorf("code %d reported valid", c)
		}
	}
}

func TestCloseInfoEncodeParse(t *testing.T) {
	in := protocol.CloseInfo{Code: protocol.CloseGoingAway, Reason: "maintenance"}
	out, err := protocol.ParseCloseInfo(in.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestCloseInfoEncodeTruncatesOnRuneBoundary(t *testing.T) {
	// 3-byte runes that do not divide 123 evenly, so a naive byte cut
	// would split a rune.
	reason := strings.Repeat("€", 60) // 180 bytes
	payload := protocol.CloseInfo{Code: protocol.CloseNormalClosure, Reason: reason}.Encode()
	if len(payload) > 125 {
		t.Fatalf("payload %d bytes exceeds control limit", len(payload))
	}
	if !utf8.Valid(payload[2:]) {
		t.Fatal("truncation split a rune")
	}
}

func TestParseCloseInfoEmptyPayload(t *testing.T) {
	ci, err := protocol.ParseCloseInfo(nil)
	if err != nil {
		t.Fatal(err)
	}
	if ci.Code != protocol.CloseNoStatusReceived || ci.Reason != "" {
		t.Fatalf("got %+v", ci)
	}
}

func TestParseCloseInfoRejects(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
	}{
		{"one byte", []byte{0x03}},
		{"unregistered code", []byte{0x03, 0xED}}, // 1005 is reporting-only
		{"out of range code", []byte{0x00, 0x64}}, // 100
		{"invalid UTF-8 reason", []byte{0x03, 0xE8, 0xFF}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := protocol.ParseCloseInfo(tc.payload); !api.IsProtocolError(err) {
				t.Fatalf("got %v, want protocol error", err)
			}
		})
	}
}
