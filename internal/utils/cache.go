package utils

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// AuthCache holds validated access-token claims on the backend so the broker and
// REST middleware skip re-verifying the same token for a few minutes.
var AuthCache = cache.New(time.Minute*5, time.Second*30)

// CachedAccessClaims validates token through AuthCache.
func CachedAccessClaims(secret, token string) (*Claims, error) {
	if v, found := AuthCache.Get(token); found {
		if claims, ok := v.(*Claims); ok {
			return claims, nil
		}
	}
	claims, err := ValidateAccessToken(secret, token)
	if err != nil {
		return nil, err
	}
	ttl := cache.DefaultExpiration
	if claims.ExpiresAt != nil {
		if left := time.Until(claims.ExpiresAt.Time); left < 5*time.Minute {
			ttl = left
		}
	}
	AuthCache.Set(token, claims, ttl)
	return claims, nil
}
