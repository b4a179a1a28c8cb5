package middleware

import (
	"fmt"
	"net/http"
)

// DefaultMaxRequestSize bounds trade request bodies (1MB)
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize rejects bodies larger than maxBytes with a JSON 413. A declared
// Content-Length over the limit is refused before the handler runs; chunked bodies are cut
// off by http.MaxBytesReader and surface as a decode error in the handler.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}
	message := fmt.Sprintf("Request body must not exceed %d bytes", maxBytes)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				_ = writeErrorJSON(w, r, http.StatusRequestEntityTooLarge, "Payload Too Large", message)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
