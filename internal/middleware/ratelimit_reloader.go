package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/notehq/notehub/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const defaultRatelimitRate = "5-S"

// RateLimitReloader serves ulule/limiter over Redis with a rate read from the
// database, rebuilding the limiter whenever the stored rate changes. The Redis
// store is created once; only the limiter instance is swapped.
type RateLimitReloader struct {
	redisClient *redis.Client
	store       limiter.Store
	repo        *database.RatelimitConfigRepository
	defaultRate string
	log         *zap.Logger
	interval    time.Duration

	next http.Handler

	mu      sync.RWMutex
	current http.Handler
}

// NewRateLimitReloader builds a reloader. Returns nil when the Redis store
// cannot be created; defaultRate falls back to the package default when empty.
func NewRateLimitReloader(redisClient *redis.Client, repo *database.RatelimitConfigRepository, defaultRate string, log *zap.Logger, reloadInterval time.Duration) *RateLimitReloader {
	if defaultRate == "" {
		defaultRate = defaultRatelimitRate
	}
	store, err := redisstore.NewStore(redisClient)
	if err != nil {
		log.Error("failed_to_create_redis_store_for_rate_limiter", zap.Error(err))
		return nil
	}
	return &RateLimitReloader{
		redisClient: redisClient,
		store:       store,
		repo:        repo,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
}

// Middleware wraps next and performs the initial rate load.
func (rl *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		rl.next = next
		rl.reload(context.Background())
		return rl
	}
}

// Start re-reads the stored rate on a ticker until ctx is cancelled.
// Call after Middleware() has been applied.
func (rl *RateLimitReloader) Start(ctx context.Context) {
	if rl.interval <= 0 {
		return
	}
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.reload(ctx)
		}
	}
}

// storedRate resolves the effective rate string, seeding the database with the
// default when no row exists yet.
func (rl *RateLimitReloader) storedRate(ctx context.Context) string {
	cfg, err := rl.repo.Get(ctx)
	if err != nil {
		rl.log.Warn("failed_to_load_ratelimit_config_from_db_using_default",
			zap.Error(err),
			zap.String("default_rate", rl.defaultRate),
		)
		return rl.defaultRate
	}
	if cfg != nil && cfg.Rate != "" {
		return cfg.Rate
	}
	if err := rl.repo.Set(ctx, &models.RatelimitConfig{Rate: rl.defaultRate}); err != nil {
		rl.log.Error("failed_to_save_default_ratelimit_config",
			zap.Error(err),
			zap.String("default_rate", rl.defaultRate),
		)
	}
	return rl.defaultRate
}

func (rl *RateLimitReloader) reload(ctx context.Context) {
	if rl.next == nil {
		return
	}

	rateStr := rl.storedRate(ctx)
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		rl.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate_str", rateStr),
			zap.String("default_rate", rl.defaultRate),
		)
		rate, err = limiter.NewRateFromFormatted(rl.defaultRate)
		if err != nil {
			rl.log.Error("failed_to_parse_default_rate_limit",
				zap.Error(err),
				zap.String("default_rate", rl.defaultRate),
			)
			return
		}
	}

	instance := limiter.New(rl.store, rate)
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(func(req *http.Request) string {
		return request.ClientIP(req)
	}))
	h := mw.Handler(rl.next)

	rl.mu.Lock()
	rl.current = h
	rl.mu.Unlock()
}

// ServeHTTP implements http.Handler.
func (rl *RateLimitReloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	rl.mu.RLock()
	h := rl.current
	rl.mu.RUnlock()
	if h == nil {
		h = rl.next
	}
	if h != nil {
		h.ServeHTTP(w, req)
	}
}
