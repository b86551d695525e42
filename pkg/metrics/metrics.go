package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	JobsInQueue         prometheus.Gauge
	JobsEnqueuedTotal   *prometheus.CounterVec
	BatchStepsTotal     *prometheus.CounterVec
	BatchStepDuration   *prometheus.HistogramVec
	ItemsExtractedTotal *prometheus.CounterVec
	TagsScrapedTotal    *prometheus.CounterVec
	DocumentFetchTotal  *prometheus.CounterVec
	BackfillsTotal      *prometheus.CounterVec
)

var once sync.Once

// Init registers every collector with the default registry. It is safe to call more
// than once.
func Init() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	JobsInQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "batch_jobs_in_queue",
			Help: "Current number of batch jobs waiting in the queue.",
		},
	)

	JobsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_jobs_enqueued_total",
			Help: "Total number of batch jobs submitted to the queue.",
		},
		[]string{"kind"}, // genre, keyword
	)

	BatchStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_steps_total",
			Help: "Total number of executed batch steps.",
		},
		[]string{"mode", "status", "error_type"}, // mode: inline, queued
	)

	BatchStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batch_step_duration_seconds",
			Help:    "Duration of a batch step, session open to last parsed record.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"mode"},
	)

	ItemsExtractedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_extracted_total",
			Help: "Total number of catalog items extracted and persisted.",
		},
		[]string{"kind"},
	)

	TagsScrapedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tags_scraped_total",
			Help: "Total number of taxonomy tags scraped.",
		},
		[]string{"kind"},
	)

	DocumentFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_fetch_total",
			Help: "Total number of static document fetches.",
		},
		[]string{"outcome"}, // fetched, cached, failed
	)

	BackfillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lazy_backfills_total",
			Help: "Total number of lazy backfills triggered by empty tag reads.",
		},
		[]string{"status"}, // started, skipped, failed
	)
}
