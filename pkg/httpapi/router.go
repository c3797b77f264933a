// Package httpapi is the HTTP front end: a single JSON-RPC endpoint, a
// ticket-gated download endpoint, and the ambient /healthz and /metrics
// probes, wired together with go-chi/chi.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/blob"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/metrics"
	"github.com/wsobjects/wsd/pkg/payload/fs"
	"github.com/wsobjects/wsd/pkg/rpc"
)

// Config configures the router beyond its wired dependencies.
type Config struct {
	APIRoot     string
	MetricsPath string
}

// NewRouter builds the full HTTP front end.
func NewRouter(dispatcher *rpc.Dispatcher, store metadata.Store, bodies *fs.Store, blobStore blob.Store, mtr *metrics.Metrics, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", handleHealthz)

	if cfg.MetricsPath != "" {
		r.Handle(cfg.MetricsPath, promhttp.Handler())
	}

	apiRoot := cfg.APIRoot
	if apiRoot == "" {
		apiRoot = "/api"
	}
	rpcHandler := newRPCHandler(dispatcher, mtr)
	r.Post(apiRoot, rpcHandler)
	r.Options(apiRoot, handleCORSPreflight)

	r.Get("/dl/{ticket}/{name}", newDownloadHandler(store, bodies, blobStore))

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleCORSPreflight answers an OPTIONS preflight for the JSON-RPC
// endpoint with a permissive cross-origin posture.
func handleCORSPreflight(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	if origin := r.Header.Get("Origin"); origin != "" {
		h.Set("Access-Control-Allow-Origin", origin)
	} else {
		h.Set("Access-Control-Allow-Origin", "*")
	}
	if method := r.Header.Get("Access-Control-Request-Method"); method != "" {
		h.Set("Access-Control-Allow-Methods", method)
	}
	if headers := r.Header.Get("Access-Control-Request-Headers"); headers != "" {
		h.Set("Access-Control-Allow-Headers", headers)
	}
	h.Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusNoContent)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("http request completed",
			logger.TraceID(requestID),
			logger.ClientIP(r.RemoteAddr),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			logger.DurationMs(logger.Duration(start)),
		)
	})
}
