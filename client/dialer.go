// File: client/dialer.go
// Package client: dialing and endpoint handling.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/momentics/hioload-wsclient/api"
	"github.com/momentics/hioload-wsclient/transport"
	"github.com/momentics/hioload-wsclient/transport/tcp"
)

const tracerName = "github.com/momentics/hioload-wsclient"

// Dialer establishes WebSocket connections for ws and wss URLs.
// The zero value is usable.
type Dialer struct {
	Config    *Config
	TLSConfig *tls.Config // TLS settings for wss, nil for defaults
}

// Dial connects with a zero-value Dialer.
func Dial(ctx context.Context, rawURL string) (*Conn, error) {
	return (&Dialer{}).Dial(ctx, rawURL)
}

// Dial parses rawURL, dials TCP (plus TLS for wss), performs the
// upgrade handshake and returns an Open connection. ctx bounds the
// dial and, together with HandshakeTimeout, the handshake.
func (d *Dialer) Dial(ctx context.Context, rawURL string) (*Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &api.IoError{Op: "dial", Err: err}
	}
	addr, err := endpointAddr(u)
	if err != nil {
		return nil, err
	}
	cfg := d.Config.withDefaults()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "wsclient.Dial",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", rawURL)),
	)
	defer span.End()

	netConn, err := tcp.DialContext(ctx, addr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial")
		return nil, &api.IoError{Op: "dial", Err: err}
	}
	if u.Scheme == "wss" {
		netConn, err = transport.WrapTLS(ctx, netConn, u.Hostname(), d.TLSConfig)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "tls")
			return nil, &api.IoError{Op: "tls", Err: err}
		}
	}

	stream := transport.NewNetConn(netConn, cfg.ReadTimeout, cfg.WriteTimeout)
	conn, err := NewConn(ctx, stream, u, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handshake")
		return nil, err
	}
	span.SetAttributes(attribute.String("ws.subprotocol", conn.Subprotocol()))
	return conn, nil
}

// endpointAddr extracts host:port from u, applying the scheme default
// port when the URL carries none.
func endpointAddr(u *url.URL) (string, error) {
	port := u.Port()
	switch u.Scheme {
	case "ws":
		if port == "" {
			port = "80"
		}
	case "wss":
		if port == "" {
			port = "443"
		}
	default:
		return "", api.NewHandshakeError(0, "unsupported scheme %q, want ws or wss", u.Scheme)
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
