package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/notehq/notehub/internal/database"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const corsDefaultMaxAge = 86400

// CORSReloader serves rs/cors with a policy read from the database, swapping
// in a freshly built handler whenever the stored config changes.
type CORSReloader struct {
	repo     *database.CorsConfigRepository
	fallback string
	log      *zap.Logger
	interval time.Duration

	next http.Handler

	mu      sync.RWMutex
	current http.Handler
}

// NewCORSReloader builds a reloader. frontendURLFallback is used when no row
// exists in the database yet.
func NewCORSReloader(repo *database.CorsConfigRepository, frontendURLFallback string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	return &CORSReloader{
		repo:     repo,
		fallback: strings.TrimSpace(frontendURLFallback),
		log:      log,
		interval: reloadInterval,
	}
}

// Middleware wraps next and performs the initial policy load.
func (cr *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		cr.next = next
		cr.reload(context.Background())
		return cr
	}
}

// Start re-reads the stored policy on a ticker until ctx is cancelled.
// Call after Middleware() has been applied.
func (cr *CORSReloader) Start(ctx context.Context) {
	if cr.interval <= 0 {
		return
	}
	ticker := time.NewTicker(cr.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cr.reload(ctx)
		}
	}
}

func (cr *CORSReloader) reload(ctx context.Context) {
	if cr.next == nil {
		return
	}

	opts := cors.Options{
		AllowCredentials: true,
		MaxAge:           corsDefaultMaxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	}

	cfg, err := cr.repo.Get(ctx)
	switch {
	case err != nil || cfg == nil:
		if err != nil && cr.log != nil {
			cr.log.Warn("cors_config_load_failed", zap.Error(err))
		}
		opts.AllowedOrigins = database.AllowedOriginsSlice(cr.fallback)
	default:
		opts.AllowedOrigins = database.AllowedOriginsSlice(cfg.AllowedOrigins)
		opts.AllowCredentials = cfg.AllowCredentials
		opts.MaxAge = cfg.MaxAge
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000"}
	}

	h := cors.New(opts).Handler(cr.next)
	cr.mu.Lock()
	cr.current = h
	cr.mu.Unlock()
}

// ServeHTTP implements http.Handler.
func (cr *CORSReloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	cr.mu.RLock()
	h := cr.current
	cr.mu.RUnlock()
	if h == nil {
		h = cr.next
	}
	if h != nil {
		h.ServeHTTP(w, req)
	}
}
