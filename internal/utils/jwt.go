package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenPair is persisted by the terminal client between runs.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

func SaveTokenPair(path string, tokenPair TokenPair) error {
	data, err := json.Marshal(tokenPair)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func LoadTokenPair(path string) (TokenPair, error) {
	var tokenPair TokenPair
	data, err := os.ReadFile(path)
	if err != nil {
		return tokenPair, err
	}
	err = json.Unmarshal(data, &tokenPair)
	return tokenPair, err
}

// Claims carried by both token kinds.
type Claims struct {
	UserID   int64  `json:"userID"`
	Nickname string `json:"nickname"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(secret string, userID int64, nickname string) (string, error) {
	return generate(secret, userID, nickname, tokenTypeAccess, AccessTokenTTL)
}

func GenerateRefreshToken(secret string, userID int64, nickname string) (string, error) {
	return generate(secret, userID, nickname, tokenTypeRefresh, RefreshTokenTTL)
}

func generate(secret string, userID int64, nickname, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Nickname: nickname,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateAccessToken verifies signature, expiry and token kind.
func ValidateAccessToken(secret, token string) (*Claims, error) {
	return validate(secret, token, tokenTypeAccess)
}

func ValidateRefreshToken(secret, token string) (*Claims, error) {
	return validate(secret, token, tokenTypeRefresh)
}

func validate(secret, token, typ string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, typ)
	}
	return claims, nil
}

// GetClaimsFromToken decodes claims without verifying the signature. The client
// only uses it to show who is logged in; the backend verifies every request.
func GetClaimsFromToken(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
