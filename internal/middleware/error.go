package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tradepros/tradepro-agents/internal/request"
	"go.uber.org/zap"
)

// ErrorResponse is the error envelope written by middleware. It matches the handlers' error
// body and adds the path and request ID so a client report can be traced to the access log.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
	Path      string `json:"path,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func newErrorResponse(r *http.Request, errorType, message string) ErrorResponse {
	resp := ErrorResponse{
		Error:     errorType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if r != nil {
		resp.Path = r.URL.Path
		resp.RequestID = request.RequestIDFromContext(r.Context())
	}
	return resp
}

// ErrorHandler recovers panics and answers with a JSON 500.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				// Details stay server-side
				logger.Error("panic_recovered",
					zap.Any("error", rec),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.String("request_id", request.RequestIDFromContext(r.Context())),
				)
				if err := writeErrorJSON(w, r, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred"); err != nil {
					logger.Error("failed_to_encode_error_response",
						zap.Error(err),
						zap.String("path", r.URL.Path),
					)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writeErrorJSON(w http.ResponseWriter, r *http.Request, status int, errorType, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(newErrorResponse(r, errorType, message))
}
