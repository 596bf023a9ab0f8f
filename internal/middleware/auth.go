package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/hms-console/internal/models"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// TokenParser verifies bearer tokens
type TokenParser interface {
	ParseToken(token string) (*models.JWTClaims, error)
}

// Authenticate rejects requests without a valid bearer token
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				abort(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := parser.ParseToken(strings.TrimSpace(token))
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected bearer token")
				abort(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles answers 403 unless the caller holds one of roles
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				abort(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !slices.Contains(roles, claims.Role) {
				log.Warn().
					Int64("user_id", claims.UserID).
					Str("role", string(claims.Role)).
					Str("path", r.URL.Path).
					Msg("Access denied")
				abort(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext extracts the caller's claims from context
func ClaimsFromContext(ctx context.Context) (*models.JWTClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*models.JWTClaims)
	return claims, ok
}
