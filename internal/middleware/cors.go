package middleware

import (
	"net/http"

	"github.com/rs/cors"
	logpkg "github.com/tradepros/tradepro-agents/internal/logger"
	"go.uber.org/zap"
)

// AllMethods is every method the CORS policy permits for allowed origins. rs/cors has no
// method wildcard, so this is the RFC 9110 set; extension methods are refused at preflight.
var AllMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
}

// CORS returns rs/cors middleware for the given origin set. Allowed origins get credentials,
// every method and any request header; other origins receive no CORS headers.
func CORS(allowedOrigins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   AllMethods,
		AllowedHeaders:   []string{"*"},
		MaxAge:           600,
	})

	logger.Info("cors_configured", zap.Strings("allowed_origins", allowedOrigins))

	return func(next http.Handler) http.Handler {
		h := c.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && !origins[origin] {
				logger.Debug("cors_origin_rejected",
					zap.String("origin", logpkg.SanitizeOrigin(origin)),
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				)
			}
			h.ServeHTTP(w, r)
		})
	}
}
