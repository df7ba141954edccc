package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/request"
	"go.uber.org/zap"
)

// Presence keeps the people index in sync with active users
func Presence(people *database.PersonRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only track authenticated requests
			actor := request.ActorFromContext(r.Context())
			if actor != nil {
				// Upsert runs in a background goroutine independent of the
				// request lifecycle; failures never affect the request
				go func(parentCtx context.Context) {
					upsertCtx, cancel := context.WithTimeout(parentCtx, 10*time.Second)
					defer cancel()

					if err := people.EnsurePerson(upsertCtx, actor.Email); err != nil {
						logger.Debug("people_index_update_failed",
							zap.Error(err),
						)
					}
				}(context.WithoutCancel(r.Context()))
			}

			next.ServeHTTP(w, r)
		})
	}
}
