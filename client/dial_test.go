// File: client/dial_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/momentics/hioload-wsclient/api"
	"github.com/momentics/hioload-wsclient/client"
	"github.com/momentics/hioload-wsclient/protocol"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newEchoServer(t *testing.T, up websocket.Upgrader) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			mt, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			if err := c.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDialEcho(t *testing.T) {
	srv := newEchoServer(t, websocket.Upgrader{})
	conn, err := client.Dial(testCtx(t), wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	if conn.State() != client.StateOpen {
		t.Fatalf("state %v after dial", conn.State())
	}

	w, r, err := conn.Split()
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := conn.Split(); !errors.Is(err, api.ErrAlreadySplit) {
		t.Fatalf("second split: %v", err)
	}

	if err := w.SendText("hello"); err != nil {
		t.Fatal(err)
	}
	msg, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != protocol.MessageText || msg.Text() != "hello" {
		t.Fatalf("got %v %q", msg.Kind, msg.Data)
	}

	payload := []byte{0x00, 0x01, 0xFE, 0xFF}
	if err := w.SendBinary(payload); err != nil {
		t.Fatal(err)
	}
	msg, err = r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != protocol.MessageBinary || !bytes.Equal(msg.Data, payload) {
		t.Fatalf("got %v %x", msg.Kind, msg.Data)
	}

	if err := w.Close(protocol.CloseInfo{Code: protocol.CloseNormalClosure, Reason: "done"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Next(); !errors.Is(err, api.ErrClosed) {
		t.Fatalf("next after close: %v", err)
	}

	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("connection never reached closed")
	}
	if conn.State() != client.StateClosed {
		t.Fatalf("state %v after close", conn.State())
	}
}

func TestDialSubprotocol(t *testing.T) {
	srv := newEchoServer(t, websocket.Upgrader{Subprotocols: []string{"v2.chat"}})
	d := &client.Dialer{Config: &client.Config{Subprotocols: []string{"v1.chat", "v2.chat"}}}
	conn, err := d.Dial(testCtx(t), wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Shutdown()
	if got := conn.Subprotocol(); got != "v2.chat" {
		t.Fatalf("subprotocol %q", got)
	}
}

func TestDialServerInitiatedClose(t *testing.T) {
	var up websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		deadline := time.Now().Add(time.Second)
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), deadline)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	conn, err := client.Dial(testCtx(t), wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	w, r, err := conn.Split()
	if err != nil {
		t.Fatal(err)
	}

	_, err = r.Next()
	var ce *api.ClosedError
	if !errors.As(err, &ce) {
		t.Fatalf("next: %v", err)
	}
	if ce.Code != 1000 || ce.Reason != "bye" {
		t.Fatalf("close error %+v", ce)
	}

	ev := r.Control()
	if ev == nil || ev.Opcode != protocol.OpcodeClose || ev.Close == nil {
		t.Fatalf("control event %+v", ev)
	}
	if ev.Close.Code != protocol.CloseNormalClosure || ev.Close.Reason != "bye" {
		t.Fatalf("close info %+v", ev.Close)
	}
	if pc := conn.PeerClose(); pc == nil || pc.Code != protocol.CloseNormalClosure {
		t.Fatalf("peer close %+v", pc)
	}

	// Every operation after the handshake completed reports closed.
	if err := w.SendText("late"); !api.IsClosedError(err) {
		t.Fatalf("send after close: %v", err)
	}
	if _, err := r.Next(); !api.IsClosedError(err) {
		t.Fatalf("next after close: %v", err)
	}
}

func TestDialAutoPong(t *testing.T) {
	var up websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()

		pong := make(chan string, 1)
		c.SetPongHandler(func(data string) error {
			pong <- data
			return nil
		})
		go func() {
			for {
				if _, _, err := c.NextReader(); err != nil {
					return
				}
			}
		}()

		deadline := time.Now().Add(time.Second)
		_ = c.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline)
		select {
		case data := <-pong:
			if data != "keepalive" {
				return
			}
			_ = c.WriteMessage(websocket.TextMessage, []byte("done"))
		case <-time.After(2 * time.Second):
		}
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	conn, err := client.Dial(testCtx(t), wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Shutdown()
	_, r, err := conn.Split()
	if err != nil {
		t.Fatal(err)
	}

	// "done" only arrives once the server saw our automatic pong.
	msg, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if msg.Text() != "done" {
		t.Fatalf("got %q", msg.Data)
	}
}

func TestDialMessageTooBig(t *testing.T) {
	srv := newEchoServer(t, websocket.Upgrader{})
	d := &client.Dialer{Config: &client.Config{MaxMessageSize: 10}}
	conn, err := d.Dial(testCtx(t), wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	w, r, err := conn.Split()
	if err != nil {
		t.Fatal(err)
	}

	if err := w.SendBinary(make([]byte, 64)); err != nil {
		t.Fatal(err)
	}
	_, err = r.Next()
	var pe *api.ProtocolError
	if !errors.As(err, &pe) || pe.Code != 1009 {
		t.Fatalf("got %v, want protocol error 1009", err)
	}
}

func TestDialRejectedUpgrade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no websockets here", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := client.Dial(testCtx(t), wsURL(srv))
	var he *api.HandshakeError
	if !errors.As(err, &he) {
		t.Fatalf("got %v, want handshake error", err)
	}
	if he.Status != http.StatusForbidden {
		t.Fatalf("status %d", he.Status)
	}
}

func TestDialUnsupportedScheme(t *testing.T) {
	_, err := client.Dial(testCtx(t), "http://example.com/ws")
	if !api.IsHandshakeError(err) {
		t.Fatalf("got %v, want handshake error", err)
	}
}

func TestDialOutboundTextValidation(t *testing.T) {
	srv := newEchoServer(t, websocket.Upgrader{})
	conn, err := client.Dial(testCtx(t), wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Shutdown()
	w, _, err := conn.Split()
	if err != nil {
		t.Fatal(err)
	}

	err = w.SendText(string([]byte{0xFF, 0xFE}))
	var pe *api.ProtocolError
	if !errors.As(err, &pe) || pe.Code != 1007 {
		t.Fatalf("got %v, want local protocol error 1007", err)
	}
	// The connection survives a locally rejected send.
	if conn.State() != client.StateOpen {
		t.Fatalf("state %v", conn.State())
	}
}
