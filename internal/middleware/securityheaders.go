package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeaders sets security headers on all responses. Paths under staticPrefix get a
// content policy that still allows the browser to render the asset itself.
func SecurityHeaders(enableHSTS bool, staticPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			if staticPrefix != "" && strings.HasPrefix(r.URL.Path, staticPrefix) {
				h.Set("Content-Security-Policy", "default-src 'self'")
			} else {
				h.Set("Content-Security-Policy", "default-src 'none'")
			}

			// HSTS only over TLS and when enabled, so local development keeps working
			if enableHSTS && r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}

			next.ServeHTTP(w, r)
		})
	}
}
