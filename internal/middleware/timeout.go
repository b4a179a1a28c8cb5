package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds trade handler execution
const DefaultRequestTimeout = 30 * time.Second

// Timeout bounds handler execution; the request context is cancelled when it elapses and the
// client receives a JSON 503.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	body, _ := json.Marshal(ErrorResponse{
		Error:   "Service Unavailable",
		Message: "Request timed out",
	})

	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			th.ServeHTTP(timeoutResponseWriter{w}, r)
		})
	}
}

// timeoutResponseWriter labels the TimeoutHandler's 503 body as JSON. Responses from the
// wrapped handler arrive with their own Content-Type already copied in.
type timeoutResponseWriter struct {
	http.ResponseWriter
}

func (w timeoutResponseWriter) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.ResponseWriter.WriteHeader(code)
}
