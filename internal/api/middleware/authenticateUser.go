package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/eonjenawa/eonjenawa-cli/internal/utils"
)

type ctxKey int

const claimsKey ctxKey = iota

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// AuthMiddleware rejects requests without a valid access token and stores its
// claims in the request context. Validated claims are cached in utils.AuthCache.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString, ok := BearerToken(authHeader)
			if !ok {
				http.Error(w, "Invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := utils.CachedAccessClaims(secret, tokenString)
			if err != nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*utils.Claims)
	return claims, ok
}
