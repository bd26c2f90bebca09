package middleware

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"
)

// ErrorNotifier receives alerts for server errors. Implemented by
// services.SlackService.
type ErrorNotifier interface {
	SendCriticalError(method, path string, statusCode int, message string)
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps WebSocket upgrades working through the wrapper
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// LoggingMiddleware logs every request and alerts on server errors
func LoggingMiddleware(notifier ErrorNotifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			duration := time.Since(start)
			log.Printf("📊 %s %s → %d (%s)", r.Method, r.URL.Path, recorder.status, duration)

			if recorder.status >= 500 && notifier != nil {
				notifier.SendCriticalError(r.Method, r.URL.Path, recorder.status, "Server error")
			}
		})
	}
}
