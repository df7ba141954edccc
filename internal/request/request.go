package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/notehq/notehub/internal/models"
)

type contextKey string

const actorContextKey contextKey = "actor"

// ActorContextKey returns the context key used for the actor. Exposed for tests that inject non-actor values.
func ActorContextKey() contextKey { return actorContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithActor returns a context with the acting identity attached.
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the actor from the context, or nil if missing or wrong type.
func ActorFromContext(ctx context.Context) *models.Actor {
	a, _ := ctx.Value(actorContextKey).(*models.Actor)
	return a
}
