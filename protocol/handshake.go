// File: protocol/handshake.go
// Package protocol: client side of the RFC 6455 opening handshake.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The handshake engine writes an HTTP/1.1 upgrade request and validates
// the response against the key it sent. It deliberately reads from the
// raw stream in chunks rather than through a buffered reader, so that
// any frame bytes the server pipelines right after the header
// terminator are captured and handed to the connection as pre-read
// data instead of being lost inside a bufio layer.

package protocol

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/momentics/hioload-wsclient/api"
)

// WebSocketGUID is the fixed GUID from RFC 6455 Section 1.3 used to
// derive the accept key.
const WebSocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// MaxHandshakeHeadersSize caps the upgrade response head.
const MaxHandshakeHeadersSize = 8192

// websocketVersion is the only protocol version this client speaks.
const websocketVersion = "13"

// GenerateKey produces the Sec-WebSocket-Key value: 16 random bytes
// from the system CSPRNG, base64-encoded.
func GenerateKey() (string, error) {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(nonce[:]), nil
}

// AcceptKey computes the Sec-WebSocket-Accept value the server must
// echo for a given client key.
func AcceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key + WebSocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// BuildUpgradeRequest renders the HTTP/1.1 GET upgrade request for u.
// Caller headers are appended verbatim after the required set;
// subprotocols are offered but not otherwise processed by this client.
func BuildUpgradeRequest(u *url.URL, key string, extra http.Header, subprotocols []string) []byte {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", path)
	fmt.Fprintf(&b, "Host: %s\r\n", u.Host)
	b.WriteString("Upgrade: websocket\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	fmt.Fprintf(&b, "Sec-WebSocket-Key: %s\r\n", key)
	fmt.Fprintf(&b, "Sec-WebSocket-Version: %s\r\n", websocketVersion)
	if len(subprotocols) > 0 {
		fmt.Fprintf(&b, "Sec-WebSocket-Protocol: %s\r\n", strings.Join(subprotocols, ", "))
	}
	for name, values := range extra {
		for _, v := range values {
			fmt.Fprintf(&b, "%s: %s\r\n", name, v)
		}
	}
	b.WriteString("\r\n")
	return b.Bytes()
}

// HandshakeResult is the negotiated metadata of a successful upgrade.
type HandshakeResult struct {
	Accept      string      // validated Sec-WebSocket-Accept value
	Subprotocol string      // selected subprotocol, "" when none
	Header      http.Header // full response headers
	Leftover    []byte      // frame bytes read past the header terminator
}

var headerTerminator = []byte("\r\n\r\n")

// ReadUpgradeResponse reads and validates the server's upgrade response.
// Success requires status 101, Upgrade/Connection token matches and an
// accept value derived from key. Any other outcome is a fatal
// *api.HandshakeError; a partial or garbled response is never retried.
func ReadUpgradeResponse(r io.Reader, key string) (*HandshakeResult, error) {
	buf := make([]byte, 0, 1024)
	tmp := make([]byte, 1024)
	for !bytes.Contains(buf, headerTerminator) {
		if len(buf) > MaxHandshakeHeadersSize {
			return nil, api.NewHandshakeError(0, "response headers exceed %d bytes", MaxHandshakeHeadersSize)
		}
		n, err := r.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			continue
		}
		if err != nil {
			return nil, api.NewHandshakeError(0, "reading upgrade response: %v", err)
		}
	}

	idx := bytes.Index(buf, headerTerminator)
	head := buf[:idx+len(headerTerminator)]
	leftover := append([]byte(nil), buf[idx+len(headerTerminator):]...)

	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(head)), nil)
	if err != nil {
		return nil, api.NewHandshakeError(0, "malformed HTTP response: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		return nil, api.NewHandshakeError(resp.StatusCode, "expected status 101, got %q", resp.Status)
	}
	if !headerContainsToken(resp.Header, "Upgrade", "websocket") {
		return nil, api.NewHandshakeError(resp.StatusCode, "missing Upgrade: websocket header")
	}
	if !headerContainsToken(resp.Header, "Connection", "Upgrade") {
		return nil, api.NewHandshakeError(resp.StatusCode, "missing Connection: Upgrade header")
	}
	if accept := resp.Header.Get("Sec-WebSocket-Accept"); accept != AcceptKey(key) {
		return nil, api.NewHandshakeError(resp.StatusCode, "Sec-WebSocket-Accept mismatch")
	}

	return &HandshakeResult{
		Accept:      resp.Header.Get("Sec-WebSocket-Accept"),
		Subprotocol: resp.Header.Get("Sec-WebSocket-Protocol"),
		Header:      resp.Header,
		Leftover:    leftover,
	}, nil
}

// headerContainsToken checks for token in a comma-separated header
// value list, case-insensitive.
func headerContainsToken(h http.Header, headerName, token string) bool {
	for _, v := range h[http.CanonicalHeaderKey(headerName)] {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}
