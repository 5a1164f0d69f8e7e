package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mobil-koeln/moko-board/internal/logging"
)

// statusRecorder tracks response status and size for the access log
type statusRecorder struct {
	http.ResponseWriter
	status    int
	written   int64
	start     time.Time
	requestID string
}

// WriteHeader captures the status code and injects tracing headers
func (r *statusRecorder) WriteHeader(status int) {
	if r.status != 0 {
		return
	}
	r.status = status
	r.ResponseWriter.Header().Set("X-Request-ID", r.requestID)
	r.ResponseWriter.Header().Set("X-Processing-Time", time.Since(r.start).String())
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.written += int64(n)
	return n, err
}

// Logging logs one line per request and turns handler panics into 500s
func Logging(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = fmt.Sprintf("req_%d", start.UnixNano())
			}

			rec := &statusRecorder{
				ResponseWriter: w,
				start:          start,
				requestID:      requestID,
			}

			defer func() {
				if err := recover(); err != nil {
					logger.Printf("PANIC [%s] %s %s: %v", requestID, r.Method, r.URL.Path, err)
					http.Error(rec, "Internal Server Error", http.StatusInternalServerError)
				}

				logger.Printf("[%s] %s %s %d %d bytes %s",
					requestID, r.Method, r.URL.Path, rec.status, rec.written, time.Since(start))
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// contentSecurityPolicy lets the dashboard load its own styles and logos
const contentSecurityPolicy = "default-src 'none'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; " +
	"connect-src 'self'; frame-ancestors 'none'; base-uri 'none';"

// Security sets conservative response headers
func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
