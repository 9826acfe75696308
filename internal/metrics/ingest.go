package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingest pipeline metrics.
var (
	IngestChunksIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stardex",
			Name:      "ingest_chunks_indexed_total",
			Help:      "Total number of chunks embedded and written to the index",
		},
		[]string{"collection"},
	)

	IngestChunksSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stardex",
			Name:      "ingest_chunks_skipped_total",
			Help:      "Total number of chunks skipped after an embedding failure",
		},
		[]string{"collection"},
	)

	IngestBatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stardex",
			Name:      "ingest_batch_duration_seconds",
			Help:      "Index upsert batch duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"collection"},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers Prometheus ingest metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestChunksIndexedTotal)
	prometheus.MustRegister(IngestChunksSkippedTotal)
	prometheus.MustRegister(IngestBatchDuration)
	ingestMetricsRegistered = true
}
