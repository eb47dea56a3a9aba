// File: control/metrics.go
// Package control exposes connection counters for monitoring.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Metrics are optional: a nil *ConnMetrics is a valid no-op receiver,
// so the hot path never branches on configuration.

package control

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ConnMetrics aggregates per-process WebSocket client counters.
type ConnMetrics struct {
	FramesSent     prometheus.Counter
	FramesReceived prometheus.Counter
	BytesSent      prometheus.Counter
	BytesReceived  prometheus.Counter
	Messages       prometheus.Counter
	PingsAnswered  prometheus.Counter
	ProtocolErrors prometheus.Counter
	CloseCodes     *prometheus.CounterVec
}

// NewConnMetrics builds and registers the collector set on reg.
func NewConnMetrics(reg prometheus.Registerer) *ConnMetrics {
	m := &ConnMetrics{
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wsclient", Name: "frames_sent_total",
			Help: "Frames written to the peer.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wsclient", Name: "frames_received_total",
			Help: "Frames decoded from the peer.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wsclient", Name: "bytes_sent_total",
			Help: "Wire bytes written, headers included.",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wsclient", Name: "bytes_received_total",
			Help: "Wire bytes read.",
		}),
		Messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wsclient", Name: "messages_total",
			Help: "Complete messages delivered to the caller.",
		}),
		PingsAnswered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wsclient", Name: "pings_answered_total",
			Help: "Pings answered with an automatic Pong.",
		}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wsclient", Name: "protocol_errors_total",
			Help: "Fatal protocol violations observed.",
		}),
		CloseCodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wsclient", Name: "close_codes_total",
			Help: "Close status codes received from peers.",
		}, []string{"code"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.FramesSent, m.FramesReceived,
			m.BytesSent, m.BytesReceived,
			m.Messages, m.PingsAnswered, m.ProtocolErrors,
			m.CloseCodes,
		)
	}
	return m
}

// AddFrameSent records one outbound frame of n wire bytes.
func (m *ConnMetrics) AddFrameSent(n int) {
	if m == nil {
		return
	}
	m.FramesSent.Inc()
	m.BytesSent.Add(float64(n))
}

// AddFrameReceived records one decoded inbound frame.
func (m *ConnMetrics) AddFrameReceived() {
	if m == nil {
		return
	}
	m.FramesReceived.Inc()
}

// AddBytesReceived records n wire bytes read.
func (m *ConnMetrics) AddBytesReceived(n int) {
	if m == nil {
		return
	}
	m.BytesReceived.Add(float64(n))
}

// AddMessage records a complete message delivered to the caller.
func (m *ConnMetrics) AddMessage() {
	if m == nil {
		return
	}
	m.Messages.Inc()
}

// AddPingAnswered records an automatic Pong reply.
func (m *ConnMetrics) AddPingAnswered() {
	if m == nil {
		return
	}
	m.PingsAnswered.Inc()
}

// AddProtocolError records a fatal protocol violation.
func (m *ConnMetrics) AddProtocolError() {
	if m == nil {
		return
	}
	m.ProtocolErrors.Inc()
}

// AddCloseCode records a close status received from the peer.
func (m *ConnMetrics) AddCloseCode(code uint16) {
	if m == nil {
		return
	}
	m.CloseCodes.WithLabelValues(strconv.Itoa(int(code))).Inc()
}
