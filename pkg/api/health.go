package api

import (
	"context"
	"net/http"
	"time"

	"github.com/cuemby/vss/pkg/metrics"
	"github.com/cuemby/vss/pkg/recordstore"
)

// HealthServer exposes /health, /ready, /live, and /metrics for a
// running vss-server process. Component health is tracked through
// pkg/metrics's registry, so the /health, /ready, and /live endpoints
// and the CLI's own startup calls (metrics.SetVersion) share the same
// source. /metrics serves the Prometheus registry.
type HealthServer struct {
	store recordstore.Store
	mux   *http.ServeMux
}

// NewHealthServer creates a new health check HTTP server. store may be
// nil, in which case readiness always reports the store component as
// not initialized.
func NewHealthServer(store recordstore.Store) *HealthServer {
	mux := http.NewServeMux()
	hs := &HealthServer{
		store: store,
		mux:   mux,
	}

	if store != nil {
		metrics.RegisterComponent("store", true, "initialized")
	} else {
		metrics.RegisterComponent("store", false, "not initialized")
	}
	metrics.RegisterComponent("http", true, "serving")

	mux.HandleFunc("/health", methodGet(metrics.HealthHandler()))
	mux.HandleFunc("/ready", methodGet(hs.readyHandler))
	mux.HandleFunc("/live", methodGet(metrics.LivenessHandler()))
	mux.Handle("/metrics", metrics.Handler())

	return hs
}

// Start starts the health check HTTP server
func (hs *HealthServer) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      hs.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// readyHandler probes the record store and refreshes the "store"
// component before delegating to metrics.ReadyHandler, so the
// registry reflects live reachability rather than just the status at
// construction time.
func (hs *HealthServer) readyHandler(w http.ResponseWriter, r *http.Request) {
	if hs.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if _, _, err := hs.store.Get(ctx, "__readiness_probe__", "__readiness_probe__", "__readiness_probe__"); err != nil {
			metrics.UpdateComponent("store", false, err.Error())
		} else {
			metrics.UpdateComponent("store", true, "ok")
		}
	} else {
		metrics.UpdateComponent("store", false, "not initialized")
	}

	metrics.ReadyHandler()(w, r)
}

func methodGet(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// GetHandler returns the HTTP handler for embedding in other servers
func (hs *HealthServer) GetHandler() http.Handler {
	return hs.mux
}
