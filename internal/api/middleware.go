package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"trade-journal/internal/logging"
	"trade-journal/internal/metrics"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestContext tags every request with an ID and a request-scoped logger.
func requestContext(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := logging.WithRequestID(r.Context(), id)
			ctx = logging.WithLogger(ctx, logger.With().Str("request_id", id).Logger())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessLog records each matched request in the log and the HTTP metrics.
// Routes are labelled by their template so IDs don't blow up cardinality.
func accessLog(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			elapsed := time.Since(start)
			m.ObserveHTTP(route, r.Method, rec.status, elapsed)
			logging.LogAPICall(logging.FromContext(r.Context()), r.Method, route, rec.status, elapsed)
		})
	}
}
