package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradepros/tradepro-agents/internal/request"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitKeyPrefix = "tradepro:ratelimit"

// NewRedisClient parses redisURL and verifies the connection.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RateLimit returns ulule/limiter middleware keyed by client IP. The store is Redis when
// redisClient is non-nil and process memory otherwise. The key is the connection's peer IP
// unless trustProxyHeaders is set, in which case X-Forwarded-For and X-Real-IP win.
func RateLimit(formattedRate string, redisClient *redis.Client, trustProxyHeaders bool) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formattedRate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formattedRate, err)
	}

	var store limiter.Store
	if redisClient != nil {
		store, err = redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: rateLimitKeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memorystore.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitKeyPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
	}

	instance := limiter.New(store, rate)
	keyGetter := request.RemoteIP
	if trustProxyHeaders {
		keyGetter = request.ClientIP
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}
