package services

import "github.com/prometheus/client_golang/prometheus"

var (
	codesGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codegen_codes_generated_total",
		Help: "Codes encoded from allocated sequence ranges.",
	})

	codesPersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codegen_codes_persisted_total",
		Help: "Codes committed to storage.",
	})

	subBatchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codegen_subbatch_failures_total",
		Help: "Persistence sub-batches that were rolled back or never ran.",
	})

	// phase is "encode" or "persist".
	chunkDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codegen_chunk_duration_seconds",
			Help:    "Time spent per generation chunk, by phase.",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"phase"},
	)

	insertWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "codegen_insert_workers",
		Help: "Worker count chosen for the most recent persistence pool run.",
	})
)

func init() {
	prometheus.MustRegister(codesGenerated, codesPersisted, subBatchFailures, chunkDuration, insertWorkers)
}
