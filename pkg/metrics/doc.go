/*
Package metrics provides Prometheus metrics collection and exposition for
the VSS engine.

All metrics are registered at package init against the default Prometheus
registry and exposed via Handler() for mounting under /metrics.

# Metrics Catalog

vss_requests_total{operation, outcome}:
  - Type: Counter
  - operation is one of getObject, putObjects, deleteObject,
    listKeyVersions; outcome is "ok" or the lower-case error kind
    ("conflict", "no_such_key", "invalid_request", "auth", "internal").

vss_request_duration_seconds{operation}:
  - Type: Histogram
  - End-to-end handler latency, including wire decode/encode.

vss_conflicts_total{operation}:
  - Type: Counter
  - Version-mismatch rejections, broken out so contention can be
    distinguished from real failures.

vss_recordstore_op_duration_seconds{op_kind}:
  - Type: Histogram
  - Time spent inside the record store driver, per engine call
    (get, put_batch, delete, scan).

vss_list_pages_total:
  - Type: Counter
  - Pages served by ListKeyVersions.

# Usage

	import "github.com/cuemby/vss/pkg/metrics"

	timer := metrics.NewTimer()
	err := engine.Put(ctx, req)
	timer.ObserveDurationVec(metrics.RequestDuration, "putObjects")

	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(vsserr.KindOf(err).String())
	}
	metrics.RequestsTotal.WithLabelValues("putObjects", outcome).Inc()
*/
package metrics
