package metrics_test

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/quizclient/internal/metrics"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))
	require.NoError(t, metrics.Register(reg), "second registration must be tolerated")

	metrics.RequestReplays.Inc()
	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["quizclient_request_replays_total"])
}

func TestObserveRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(metrics.APIRequests.WithLabelValues(http.MethodGet, "200"))
	errBefore := testutil.ToFloat64(metrics.APIRequests.WithLabelValues(http.MethodPost, "error"))

	metrics.ObserveRequest(http.MethodGet, http.StatusOK, 0.01)
	metrics.ObserveRequest(http.MethodPost, 0, 0.5)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.APIRequests.WithLabelValues(http.MethodGet, "200")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(metrics.APIRequests.WithLabelValues(http.MethodPost, "error")))
}
