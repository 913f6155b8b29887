package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/config"
	"github.com/eonjenawa/eonjenawa-cli/internal/utils"
)

// SubscriptionCacheTTL bounds how long a fetched subscription page is reused.
const SubscriptionCacheTTL = 30 * time.Second

type APIClient struct {
	baseURL    string
	httpClient *http.Client
	tokenPath  string
	cache      *cache.Cache
	log        *zap.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

// NewAPIClient checks that the backend answers /api/health and loads any saved
// token pair.
func NewAPIClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (*APIClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &APIClient{
		baseURL:    cfg.BaseURL() + "/api",
		httpClient: &http.Client{Jar: jar, Timeout: 15 * time.Second},
		tokenPath:  cfg.TokenPath,
		cache:      cache.New(SubscriptionCacheTTL, time.Minute),
		log:        log,
	}

	if _, err := c.get(ctx, "/health"); err != nil {
		return nil, fmt.Errorf("failed to connect to server at %s: %w", c.baseURL, err)
	}

	if tp, err := utils.LoadTokenPair(c.tokenPath); err == nil {
		c.setTokens(tp.AccessToken, tp.RefreshToken)
	}
	return c, nil
}

// AccessToken is the current bearer token, empty when logged out.
func (c *APIClient) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *APIClient) setTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken, c.refreshToken = access, refresh
	c.mu.Unlock()
}

func (c *APIClient) tokens() (access, refresh string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.refreshToken
}
