package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestDomainMetricsObserve(t *testing.T) {
	MustRegisterDomainMetrics("komisi_test", prometheus.NewRegistry())

	before := testutil.ToFloat64(CommissionCalculations.WithLabelValues("clamped"))
	ObserveCommission(true)
	require.Equal(t, before+1, testutil.ToFloat64(CommissionCalculations.WithLabelValues("clamped")))

	beforeAmount := testutil.ToFloat64(CommissionAmount)
	ObserveCommissionAmount(235)
	ObserveCommissionAmount(-10)
	require.Equal(t, beforeAmount+235, testutil.ToFloat64(CommissionAmount))

	ObserveInvoiceTransition("pending", "paid")
	require.GreaterOrEqual(t, testutil.ToFloat64(InvoiceTransitions.WithLabelValues("pending", "paid")), 1.0)

	ObserveGateAttempt("locked")
	require.GreaterOrEqual(t, testutil.ToFloat64(GateAttempts.WithLabelValues("locked")), 1.0)
}
