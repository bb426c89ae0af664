package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "uploads_total",
			Help:      "Uploads that reached a terminal status.",
		},
		[]string{"status"},
	)

	ingestionInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "in_progress",
			Help:      "Uploads currently being ingested.",
		},
	)

	ingestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "duration_seconds",
			Help:      "Time to ingest one upload.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160, 320},
		},
	)

	staleRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "stale_recovered_total",
			Help:      "Uploads failed after being stuck in processing.",
		},
	)

	searchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Semantic search requests.",
		},
		[]string{"outcome"},
	)
)

// IngestionStarted marks one upload as in flight and returns a func that
// records its outcome.
func IngestionStarted() func(status string) {
	start := time.Now()
	ingestionInProgress.Inc()

	return func(status string) {
		ingestionInProgress.Dec()
		ingestionDuration.Observe(time.Since(start).Seconds())
		uploadsTotal.WithLabelValues(status).Inc()
	}
}

func StaleRecovered(n int64) {
	if n > 0 {
		staleRecovered.Add(float64(n))
	}
}

func SearchRequest(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	searchRequests.WithLabelValues(outcome).Inc()
}
