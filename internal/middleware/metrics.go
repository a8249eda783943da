package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tropical/internal/metrics"
)

// Metrics records request count and duration per route template, so path
// parameters do not explode label cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordRequest(r.Method, path, status, time.Since(start).Seconds())
	})
}
