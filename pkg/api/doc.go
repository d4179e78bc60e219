// Package api provides the HTTP health and readiness endpoints served
// alongside the VSS transport. HealthServer exposes /health (liveness),
// /ready (record store connectivity), and /metrics (Prometheus).
//
// /health always returns 200 while the process is running. /ready issues
// a bounded Get against the configured recordstore.Store and reports 503
// until that call succeeds, so orchestrators don't route traffic to an
// instance that can't reach its backing store yet.
package api
