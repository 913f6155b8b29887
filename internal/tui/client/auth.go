package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/utils"
)

type credentials struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// LoginOrRegister logs in, registering the nickname first when the backend does not
// know it. Tokens are kept and saved to the token file.
func (c *APIClient) LoginOrRegister(ctx context.Context, nickname, password string) (models.TokenResponse, error) {
	data := credentials{Nickname: nickname, Password: password}

	body, err := c.post(ctx, "/auth/login", data)
	if isNotFound(err) {
		body, err = c.post(ctx, "/auth/register", data)
	}
	if err != nil {
		return models.TokenResponse{}, err
	}

	res, err := decode[models.TokenResponse](body)
	if err != nil {
		return res, err
	}
	if err := c.storeTokens(res.AccessToken, res.RefreshToken); err != nil {
		return res, err
	}
	return res, nil
}

// Me returns the user the current token belongs to.
func (c *APIClient) Me(ctx context.Context) (models.User, error) {
	body, err := c.get(ctx, "/auth/me")
	if err != nil {
		return models.User{}, err
	}
	return decode[models.User](body)
}

// Logout forgets the tokens locally and in the token file.
func (c *APIClient) Logout() error {
	c.cache.Flush()
	if err := c.storeTokens("", ""); err != nil {
		return fmt.Errorf("error clearing token pair: %w", err)
	}
	return nil
}

// tokenRefreshMargin is how close to expiry ConnectToken refreshes the access token.
const tokenRefreshMargin = 30 * time.Second

// ConnectToken is the access token for a broker connection attempt. An access token
// that has expired or is about to is refreshed first; on failure the current token
// is returned and the broker decides.
func (c *APIClient) ConnectToken() string {
	access, refresh := c.tokens()
	if access == "" || refresh == "" {
		return access
	}
	claims, err := utils.GetClaimsFromToken(access)
	if err != nil || claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > tokenRefreshMargin {
		return access
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.refreshTokens(ctx); err != nil {
		c.log.Debug("token refresh before connect failed", zap.Error(err))
		return access
	}
	return c.AccessToken()
}

func (c *APIClient) refreshTokens(ctx context.Context) error {
	_, refresh := c.tokens()
	payload, err := json.Marshal(map[string]string{"refreshToken": refresh})
	if err != nil {
		return err
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/auth/refresh", payload)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	res, err := decode[models.TokenResponse](body)
	if err != nil {
		return err
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		return fmt.Errorf("refresh failed: missing tokens")
	}
	c.cache.Flush()
	return c.storeTokens(res.AccessToken, res.RefreshToken)
}

func (c *APIClient) storeTokens(access, refresh string) error {
	c.setTokens(access, refresh)
	if c.tokenPath == "" {
		return nil
	}
	return utils.SaveTokenPair(c.tokenPath, utils.TokenPair{AccessToken: access, RefreshToken: refresh})
}
