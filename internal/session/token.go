package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reads the exp claim without verifying the signature; the server stays
// the authority. Tokens that are not JWTs are treated as opaque and never expire
// locally.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}
