package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts every handled RPC by operation and outcome
	// (the lower-case error kind, or "ok").
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vss_requests_total",
			Help: "Total number of VSS requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// RequestDuration tracks end-to-end handler latency per operation.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vss_request_duration_seconds",
			Help:    "VSS request duration in seconds by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ConflictsTotal counts version-mismatch rejections by operation,
	// isolated from other InvalidRequest/Internal failures so operators
	// can distinguish expected optimistic-concurrency contention from
	// real errors.
	ConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vss_conflicts_total",
			Help: "Total number of CONFLICT rejections by operation",
		},
		[]string{"operation"},
	)

	// RecordStoreOpDuration tracks time spent inside the record store
	// driver (memory or postgres), separate from request-handling
	// overhead such as wire decoding.
	RecordStoreOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vss_recordstore_op_duration_seconds",
			Help:    "Record store driver call duration in seconds by op kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op_kind"},
	)

	// ListPagesTotal counts pages served by ListKeyVersions, useful for
	// spotting callers stuck in pathological re-list loops.
	ListPagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vss_list_pages_total",
			Help: "Total number of ListKeyVersions pages served",
		},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ConflictsTotal)
	prometheus.MustRegister(RecordStoreOpDuration)
	prometheus.MustRegister(ListPagesTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
