package common

import (
	"log"
	"net/http"
	"time"
)

// statusRecorder lets the logging middleware see the status the handler wrote
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every request with its method, path, status and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		log.Printf("→ %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		if rec.status >= 500 {
			log.Printf("✗ %s %s failed with %d (%v)", r.Method, r.URL.Path, rec.status, duration)
		} else {
			log.Printf("✓ %s %s completed %d (%v)", r.Method, r.URL.Path, rec.status, duration)
		}
	})
}
