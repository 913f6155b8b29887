package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestAccessToken_RoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, 42, "지원자")
	require.NoError(t, err)

	claims, err := ValidateAccessToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "지원자", claims.Nickname)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	token, err := GenerateRefreshToken(testSecret, 1, "a")
	require.NoError(t, err)

	_, err = ValidateAccessToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, 1, "a")
	require.NoError(t, err)

	_, err = ValidateAccessToken("another-secret-0123456789", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetClaimsFromToken_Unverified(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, 7, "nick")
	require.NoError(t, err)

	claims, err := GetClaimsFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "nick", claims.Nickname)

	_, err = GetClaimsFromToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenPair_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	require.NoError(t, SaveTokenPair(path, TokenPair{AccessToken: "a", RefreshToken: "r"}))

	got, err := LoadTokenPair(path)
	require.NoError(t, err)
	assert.Equal(t, TokenPair{AccessToken: "a", RefreshToken: "r"}, got)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!pw")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret!pw", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
