package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Mutation and workflow metrics. There is no HTTP surface in this module;
// the registry is populated for whatever host process embeds the stores.
var (
	storeMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_mutations_total",
			Help: "Total number of store mutations by operation and outcome.",
		},
		[]string{"store", "op", "outcome"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Latency of report and statement generation workflows.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	insightsRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_request_duration_seconds",
			Help:    "Latency of external text-generation calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)

// Init registers metrics in the default registry.
func Init() {
	prometheus.MustRegister(storeMutationsTotal, generationDuration, insightsRequestDuration)
}

// ObserveMutation records one store mutation attempt.
func ObserveMutation(store, op, outcome string) {
	storeMutationsTotal.WithLabelValues(store, op, outcome).Inc()
}

// ObserveGeneration records the wall time of a completed generation workflow.
func ObserveGeneration(kind string, d time.Duration) {
	generationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveInsights records one external summarization call.
func ObserveInsights(outcome string, d time.Duration) {
	insightsRequestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
