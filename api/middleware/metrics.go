package middleware

import (
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/ofcourt/storefront-backend/pkg/metrics"
)

// Metrics records request counts and latencies labeled by route pattern.
func Metrics(httpMetrics *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			httpMetrics.Observe(r.Method, route, rec.status, time.Since(start))
		})
	}
}
