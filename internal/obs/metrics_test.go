package obs

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestParseBucketsCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []float64
	}{
		{"", nil},
		{"  ", nil},
		{"100, 5,25", []float64{5, 25, 100}},
		{"5,5,abc,-1,0,10", []float64{5, 10}},
		{"0.5,,2.5", []float64{0.5, 2.5}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ParseBucketsCSV(tc.in), "input %q", tc.in)
	}
}

func TestNewHTTPMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewHTTPMetrics("komisi_reuse", nil, reg)
	second := NewHTTPMetrics("komisi_reuse", nil, reg)

	require.Same(t, first.ReqTotal, second.ReqTotal)
	require.Same(t, first.ReqDur, second.ReqDur)
	require.Equal(t, first.InFlight, second.InFlight)
}

func TestDurationMillis(t *testing.T) {
	require.InDelta(t, 1.5, DurationMillis(1500*time.Microsecond), 1e-9)
}
