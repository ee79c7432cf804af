package health_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-komisi/internal/health"
)

func TestReadyWhileDraining(t *testing.T) {
	t.Cleanup(func() { health.SetReady(true) })
	h := health.Handler{Probes: []health.Probe{probe("db", nil)}}

	code, _ := serveReady(t, h)
	require.Equal(t, http.StatusOK, code)

	health.SetReady(false)
	require.False(t, health.IsReady())
	code, body := serveReady(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "draining", body.Status)
}
