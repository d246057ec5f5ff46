package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kolektor_wizard_sessions_open",
		Help: "Number of wizard sessions currently open.",
	})

	SessionsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kolektor_wizard_sessions_opened_total",
		Help: "Total number of wizard sessions opened.",
	})

	SessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kolektor_wizard_sessions_evicted_total",
		Help: "Total number of idle wizard sessions evicted by the janitor.",
	})

	TablesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kolektor_tables_uploaded_total",
		Help: "Total number of table files registered through uploads.",
	})

	SchemaFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kolektor_schema_fallbacks_total",
		Help: "Total number of uploads that fell back to generic columns.",
	})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kolektor_submissions_total",
		Help: "Total number of collection submissions by outcome.",
	}, []string{"outcome"})

	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kolektor_submission_duration_seconds",
		Help:    "Time spent submitting collections to the engine.",
		Buckets: prometheus.DefBuckets,
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
