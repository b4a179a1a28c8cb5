package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/tradepros/tradepro-agents/internal/request"
)

const maxRequestIDLength = 128

// RequestID propagates an incoming X-Request-ID or assigns a new UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(request.RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(request.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}
