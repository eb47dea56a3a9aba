package transport_test

import (
	"net"
	"testing"
	"time"

	"github.com/momentics/hioload-wsclient/transport"
)

func TestNetConnCountsBytes(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	nc := transport.NewNetConn(a, 0, 0)
	go func() {
		buf := make([]byte, 16)
		n, _ := b.Read(buf)
		b.Write(buf[:n])
	}()

	if _, err := nc.Write([]byte("ping!")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 16)
	n, err := nc.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "ping!" {
		t.Fatalf("got %q", buf[:n])
	}

	in, out := nc.Stats()
	if in != 5 || out != 5 {
		t.Fatalf("stats in=%d out=%d", in, out)
	}
}

func TestNetConnReadTimeout(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	nc := transport.NewNetConn(a, 20*time.Millisecond, 0)
	_, err := nc.Read(make([]byte, 1))
	ne, ok := err.(net.Error)
	if !ok || !ne.Timeout() {
		t.Fatalf("got %v, want timeout", err)
	}
}
