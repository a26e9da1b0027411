// Package middleware wraps the router with the boundary concerns that are
// not part of any single route: CORS, request ids with access logging, and
// Prometheus request metrics.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/students-docstore/internal/config"
	"github.com/aanand-mishra/students-docstore/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-ID"

type loggerKey struct{}

// Logger returns the request-scoped logger stored by RequestLogger, or the
// default logger outside a request.
func Logger(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return log
	}
	return slog.Default()
}

// CORS applies the cross-origin policy from config. With no origins
// configured every origin is allowed.
func CORS(cfg config.CORS, next http.Handler) http.Handler {
	if cfg.AllowsAnyOrigin() {
		return cors.AllowAll().Handler(next)
	}

	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	}).Handler(next)
}

// RequestLogger tags every request with an id (reusing the client's
// X-Request-ID when present), hands handlers a logger carrying that id
// through the request context, and writes one access log line per request.
func RequestLogger(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)

		reqLog := log.With(slog.String("request_id", reqID))
		ctx := context.WithValue(r.Context(), loggerKey{}, reqLog)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		reqLog.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapped.statusCode),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// Metrics records count and latency for one route. route is the mux
// pattern, not the raw path, so ids do not explode label cardinality.
func Metrics(m *metrics.Metrics, route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		m.ObserveRequest(route, r.Method, wrapped.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
