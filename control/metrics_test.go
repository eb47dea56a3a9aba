package control_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/momentics/hioload-wsclient/control"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *control.ConnMetrics
	m.AddFrameSent(10)
	m.AddFrameReceived()
	m.AddBytesReceived(10)
	m.AddMessage()
	m.AddPingAnswered()
	m.AddProtocolError()
	m.AddCloseCode(1000)
}

func TestConnMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := control.NewConnMetrics(reg)

	m.AddFrameSent(7)
	m.AddFrameSent(5)
	m.AddFrameReceived()
	m.AddBytesReceived(3)
	m.AddMessage()
	m.AddCloseCode(1000)
	m.AddCloseCode(1000)
	m.AddCloseCode(1006)

	if got := testutil.ToFloat64(m.FramesSent); got != 2 {
		t.Errorf("frames sent %v", got)
	}
	if got := testutil.ToFloat64(m.BytesSent); got != 12 {
		t.Errorf("bytes sent %v", got)
	}
	if got := testutil.ToFloat64(m.BytesReceived); got != 3 {
		t.Errorf("bytes received %v", got)
	}
	if got := testutil.ToFloat64(m.CloseCodes.WithLabelValues("1000")); got != 2 {
		t.Errorf("close code 1000 count %v", got)
	}
	if got := testutil.ToFloat64(m.CloseCodes.WithLabelValues("1006")); got != 1 {
		t.Errorf("close code 1006 count %v", got)
	}
}

func TestConnMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = control.NewConnMetrics(reg)
	defer func() {
		if recover() == nil {
			t.Fatal("double registration did not panic")
		}
	}()
	_ = control.NewConnMetrics(reg)
}
