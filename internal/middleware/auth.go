package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/notehq/notehub/internal/request"
)

// AuthConfig controls how request identities are established.
type AuthConfig struct {
	// JWTSecret is the HS256 signing secret for bearer tokens
	JWTSecret string
	// DevMode accepts identity from X-User-* headers instead of a token.
	// Never enable outside local development.
	DevMode bool
}

// Auth creates authentication middleware. Verified identities are
// auto-provisioned in the user store on first sight and attached to the
// request context as an Actor.
func Auth(db *database.DB, cfg AuthConfig) func(http.Handler) http.Handler {
	userRepo := database.NewUserRepository(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, name, role, ok := identify(w, r, cfg)
			if !ok {
				return
			}

			ctx := r.Context()
			user, err := userRepo.Ensure(ctx, email, name, role)
			if err != nil {
				log.Printf("Failed to provision user: %v", err)
				respondError(w, http.StatusInternalServerError, "Database error")
				return
			}

			actor := &models.Actor{
				Email: user.Email,
				Name:  user.Name,
				Role:  user.Role,
			}
			next.ServeHTTP(w, r.WithContext(request.WithActor(ctx, actor)))
		})
	}
}

// identify resolves the caller's identity from the request. It writes the
// error response itself when authentication fails.
func identify(w http.ResponseWriter, r *http.Request, cfg AuthConfig) (email, name string, role models.Role, ok bool) {
	if cfg.DevMode {
		email = strings.TrimSpace(r.Header.Get("X-User-Email"))
		if email == "" {
			respondError(w, http.StatusUnauthorized, "Missing X-User-Email header")
			return "", "", "", false
		}
		name = strings.TrimSpace(r.Header.Get("X-User-Name"))
		if name == "" {
			name = email
		}
		return email, name, models.ParseRole(r.Header.Get("X-User-Role")), true
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		respondError(w, http.StatusUnauthorized, "Missing Authorization header")
		return "", "", "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
		return "", "", "", false
	}

	token, err := jwt.Parse([]byte(parts[1]),
		jwt.WithKey(jwa.HS256, []byte(cfg.JWTSecret)),
		jwt.WithValidate(true),
	)
	if err != nil {
		log.Printf("Token verification failed: %v", err)
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return "", "", "", false
	}

	email = claimString(token, "email")
	if email == "" {
		// fall back to the subject for tokens without an email claim
		email = token.Subject()
	}
	if email == "" {
		respondError(w, http.StatusUnauthorized, "Token carries no identity")
		return "", "", "", false
	}
	name = claimString(token, "name")
	if name == "" {
		name = email
	}
	return email, name, models.ParseRole(claimString(token, "role")), true
}

func claimString(token jwt.Token, claim string) string {
	v, ok := token.Get(claim)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
