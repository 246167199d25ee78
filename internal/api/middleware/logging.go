package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// statusRecorder remembers the status and body size a handler produced
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// quiet reports requests the UI polls: health checks and job status reads.
// They are only logged when they fail.
func quiet(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if r.URL.Path == "/api/health" || r.URL.Path == "/api/jobs" {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/jobs/") && !strings.HasSuffix(r.URL.Path, "/download")
}

func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		if quiet(r) && rec.status < 400 {
			return
		}
		log.Printf("[http] %s %s %d %dB %s", r.Method, r.URL.Path, rec.status, rec.bytes, time.Since(start).Round(time.Millisecond))
	})
}
