package middleware

import (
	"net/http"
	"time"
)

type requestObserver interface {
	ObserveRequest(method string, route string, status int, d time.Duration)
}

// Observe request duration by route pattern
// Must wrap the ServeMux directly: the pattern is known only after the mux matched the request
func MetricsMiddleware(o requestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := newLogWriter(w)
			next.ServeHTTP(lw, r)

			o.ObserveRequest(r.Method, r.Pattern, lw.data.responseStatus, time.Since(start))
		})
	}
}
