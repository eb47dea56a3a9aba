// File: transport/tls.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"context"
	"crypto/tls"
	"net"
)

// WrapTLS layers a TLS client session over conn for wss endpoints and
// completes the TLS handshake before returning. The library does no
// further TLS management; the connection core only ever sees an
// established byte stream.
func WrapTLS(ctx context.Context, conn net.Conn, serverName string, cfg *tls.Config) (net.Conn, error) {
	if cfg == nil {
		cfg = &tls.Config{}
	} else {
		cfg = cfg.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = serverName
	}
	tc := tls.Client(conn, cfg)
	if err := tc.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tc, nil
}
