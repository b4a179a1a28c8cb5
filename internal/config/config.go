package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/ulule/limiter/v3"
)

// Fixed origins that are always allowed in addition to FRONTEND_URL.
const (
	LocalFrontendOrigin    = "http://localhost:3000"
	LocalAltFrontendOrigin = "http://localhost:3001"
	ProductionOrigin       = "https://tradepros.vercel.app"
)

// ErrInvalidPort is returned when PORT is not a positive integer in the TCP port range.
var ErrInvalidPort = errors.New("invalid PORT")

// Config holds application configuration. It is built once by Load and never mutated afterwards.
type Config struct {
	FrontendURL  string
	Host         string
	Port         int
	StaticDir    string
	Reload       bool
	DebugMode    bool
	EnableHSTS   bool
	DatabaseURL  string
	RedisURL     string
	RateLimit    string
	OpenAPIPath  string
	OTELEnabled  bool
	OTELEndpoint string

	// TrustProxyHeaders keys rate limits on X-Forwarded-For / X-Real-IP. Only safe behind a
	// proxy that overwrites them.
	TrustProxyHeaders bool

	allowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	port, err := parsePort(getEnv("PORT", "8000"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FrontendURL:       getEnv("FRONTEND_URL", LocalFrontendOrigin),
		Host:              getEnv("HOST", "0.0.0.0"),
		Port:              port,
		StaticDir:         getEnv("STATIC_DIR", "static"),
		Reload:            getEnvBool("RELOAD", false),
		DebugMode:         getEnvBool("SERVER_DEBUG_MODE", false),
		EnableHSTS:        getEnvBool("ENABLE_HSTS", false),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		RateLimit:         getEnv("RATE_LIMIT", "20-S"),
		OpenAPIPath:       getEnv("OPENAPI_PATH", "api/openapi/openapi.yaml"),
		OTELEnabled:       getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}

	if _, err := limiter.NewRateFromFormatted(cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}

	cfg.allowedOrigins = BuildAllowedOrigins(cfg.FrontendURL)
	return cfg, nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AllowedOrigins returns a copy of the CORS origin set.
func (c *Config) AllowedOrigins() []string {
	if c.allowedOrigins == nil {
		return BuildAllowedOrigins(c.FrontendURL)
	}
	out := make([]string, len(c.allowedOrigins))
	copy(out, c.allowedOrigins)
	return out
}

// BuildAllowedOrigins combines the frontend URL with the fixed origins.
// Empty entries are dropped and duplicates removed; order is not significant.
func BuildAllowedOrigins(frontendURL string) []string {
	candidates := []string{
		frontendURL,
		LocalFrontendOrigin,
		LocalAltFrontendOrigin,
		ProductionOrigin,
	}
	seen := make(map[string]bool, len(candidates))
	origins := make([]string, 0, len(candidates))
	for _, c := range candidates {
		origin := strings.TrimSpace(c)
		if origin == "" || seen[origin] {
			continue
		}
		seen[origin] = true
		origins = append(origins, origin)
	}
	return origins
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidPort, raw, err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%w %q: must be between 1 and 65535", ErrInvalidPort, raw)
	}
	return port, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
