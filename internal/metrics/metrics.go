package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizclient_api_requests_total",
			Help: "Backend requests by method and response status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizclient_api_request_duration_seconds",
			Help:    "Duration of backend requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method"},
	)

	CredentialRenewals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizclient_credential_renewals_total",
			Help: "Access credential renewals by outcome",
		},
		[]string{"outcome"},
	)

	RequestReplays = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quizclient_request_replays_total",
			Help: "Requests replayed after a credential renewal",
		},
	)

	GenerationParses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizclient_generation_parse_total",
			Help: "Generation outputs by operation and the parse stage that accepted them",
		},
		[]string{"operation", "stage"},
	)

	GenerationRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quizclient_generation_retries_total",
			Help: "Generator calls repeated after a failure",
		},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		APIRequests,
		APIRequestDuration,
		CredentialRenewals,
		RequestReplays,
		GenerationParses,
		GenerationRetries,
	}
}

// Register adds every collector to reg. Registering twice on the same registry is not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveRequest(method string, status int, seconds float64) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	APIRequests.WithLabelValues(method, label).Inc()
	APIRequestDuration.WithLabelValues(method).Observe(seconds)
}
