package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"replikv/internal/configuration"
	"replikv/internal/metrics"
	"replikv/internal/transport/handler"
)

// responseWriter captures the status code for logging and metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// instrument records per-route metrics and an access log line.
func instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, fmt.Sprintf("%d", rw.statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())
		slog.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", duration,
		)
	})
}

// leaderOnly rejects the request unless this node is the leader.
func leaderOnly(cfg *configuration.Properties, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.IsLeader() {
			handler.Error(w, http.StatusForbidden, "write operations allowed on leader only")
			return
		}
		next(w, r)
	}
}

// followerOnly rejects the request unless this node is a follower.
func followerOnly(cfg *configuration.Properties, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.IsLeader() {
			handler.Error(w, http.StatusForbidden, "replication endpoint for followers only")
			return
		}
		next(w, r)
	}
}
