package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
)

const (
	headerRequestID     = "X-Request-ID"
	headerCorrelationID = "X-Correlation-ID"
	headerActor         = "X-Actor"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestContext puts request, correlation and actor ids on the context
// and logs one line per request.
func withRequestContext(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := observability.NewRequestContext(r.Context(), r.Header.Get(headerCorrelationID))
		if id := r.Header.Get(headerRequestID); id != "" {
			ctx = observability.WithRequestID(ctx, id)
		}
		if actor := r.Header.Get(headerActor); actor != "" {
			ctx = observability.WithActor(ctx, actor)
		}

		w.Header().Set(headerCorrelationID, observability.CorrelationIDFromContext(ctx))
		w.Header().Set(headerRequestID, observability.RequestIDFromContext(ctx))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			observability.DurationKey, time.Since(start),
		)
	})
}
