package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/notehq/notehub/internal/request"
	"github.com/redis/go-redis/v9"
)

// getClientIPForRateLimit extracts the client IP for rate limiting
func getClientIPForRateLimit(r *http.Request) string {
	return request.ClientIP(r)
}

// DefaultUnauthenticatedRateLimit is the fallback rate limit (requests per minute)
const DefaultUnauthenticatedRateLimit = 100

// RedisRateLimiter wraps Redis client for rate limiting
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter creates a new Redis-backed rate limiter
func NewRedisRateLimiter(redisURL string) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRateLimiter{client: client}, nil
}

// Client exposes the underlying Redis client for shared stores
func (r *RedisRateLimiter) Client() *redis.Client {
	return r.client
}

// Close closes the Redis connection
func (r *RedisRateLimiter) Close() error {
	return r.client.Close()
}

// Ping checks if Redis is reachable
func (r *RedisRateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// slidingCounter approximates a sliding window over two fixed Redis windows
type slidingCounter struct {
	client *redis.Client
	key    string
	window time.Duration
}

// Increment bumps the current window and returns the weighted count
func (c *slidingCounter) Increment(ctx context.Context) (int, error) {
	now := time.Now()
	windowStart := now.Truncate(c.window)
	key := fmt.Sprintf("%s:%d", c.key, windowStart.Unix())

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	count := int(incr.Val())

	// Weight the previous window by its remaining overlap
	prevKey := fmt.Sprintf("%s:%d", c.key, windowStart.Add(-c.window).Unix())
	if prev := c.client.Get(ctx, prevKey).Val(); prev != "" {
		var prevCount int
		if _, err := fmt.Sscanf(prev, "%d", &prevCount); err == nil && prevCount > 0 {
			remaining := float64(c.window-now.Sub(windowStart)) / float64(c.window)
			count += int(float64(prevCount) * remaining)
		}
	}

	return count, nil
}

// RateLimit limits requests per client IP per minute. Used as a static
// fallback when the DB-backed reloader is unavailable; Redis errors fail
// open.
func RateLimit(redisLimiter *RedisRateLimiter, requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultUnauthenticatedRateLimit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			counter := &slidingCounter{
				client: redisLimiter.client,
				key:    "ratelimit:" + getClientIPForRateLimit(r),
				window: time.Minute,
			}

			count, err := counter.Increment(r.Context())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", requestsPerMinute))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, requestsPerMinute-count)))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(time.Minute).Unix()))

			if count > requestsPerMinute {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
