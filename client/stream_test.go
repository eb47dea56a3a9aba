// File: client/stream_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-wsclient/api"
	"github.com/momentics/hioload-wsclient/client"
	"github.com/momentics/hioload-wsclient/protocol"
)

// eofTailStream serves the upgrade handshake, then hands out its tail
// bytes and io.EOF from the same Read call. The io.Reader contract
// permits returning data alongside an error, and some wrappers do.
type eofTailStream struct {
	mu    sync.Mutex
	wrote bytes.Buffer
	step  int
	tail  []byte
}

func (s *eofTailStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.step {
	case 0:
		s.step = 1
		key := upgradeKey(s.wrote.String())
		return copy(p, upgradeResponse(key)), nil
	case 1:
		s.step = 2
		return copy(p, s.tail), io.EOF
	}
	return 0, io.EOF
}

func (s *eofTailStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrote.Write(p)
	return len(p), nil
}

func (s *eofTailStream) Close() error                     { return nil }
func (s *eofTailStream) SetReadDeadline(time.Time) error  { return nil }
func (s *eofTailStream) SetWriteDeadline(time.Time) error { return nil }

func TestCloseFrameDeliveredWithEOF(t *testing.T) {
	payload := protocol.CloseInfo{Code: protocol.CloseNormalClosure, Reason: "bye"}.Encode()
	frame, err := protocol.EncodeFrame(&protocol.Frame{Fin: true, Opcode: protocol.OpcodeClose, Payload: payload})
	if err != nil {
		t.Fatal(err)
	}
	stream := &eofTailStream{tail: frame}

	u, err := url.Parse("ws://eof.test/ws")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := client.NewConn(ctx, stream, u, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, r, err := conn.Split()
	if err != nil {
		t.Fatal(err)
	}

	// The close status must win over the EOF it rode in on.
	_, err = r.Next()
	var ce *api.ClosedError
	if !errors.As(err, &ce) || ce.Code != 1000 || ce.Reason != "bye" {
		t.Fatalf("next: %v", err)
	}
	if pc := conn.PeerClose(); pc == nil || pc.Code != protocol.CloseNormalClosure {
		t.Fatalf("peer close %+v", pc)
	}
}
