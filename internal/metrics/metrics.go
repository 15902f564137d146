package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's collectors; /metrics serves only these.
	Registry = prometheus.NewRegistry()

	syncOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalogsync",
			Subsystem: "sync",
			Name:      "outcomes_total",
			Help:      "Sync attempts by platform, result and failure reason.",
		},
		[]string{"platform", "result", "reason"},
	)

	syncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalogsync",
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Time spent in a platform adapter.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"platform"},
	)

	credentialsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "catalogsync",
			Subsystem: "credential",
			Name:      "issued_total",
			Help:      "Photo-share access tokens issued, including refreshes.",
		},
	)
)

func init() {
	Registry.MustRegister(syncOutcomes, syncDuration, credentialsIssued)
}

func ObserveSync(platform, result, reason string, d time.Duration) {
	syncOutcomes.WithLabelValues(platform, result, reason).Inc()
	syncDuration.WithLabelValues(platform).Observe(d.Seconds())
}

func CredentialIssued() { credentialsIssued.Inc() }

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
