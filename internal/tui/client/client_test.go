package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eonjenawa/eonjenawa-cli/internal/config"
	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/utils"
)

func newTestClient(t *testing.T, mux *http.ServeMux) (*APIClient, *config.Config) {
	t.Helper()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &config.Config{APIBaseURL: srv.URL, TokenPath: filepath.Join(t.TempDir(), "tokens.json")}
	c, err := NewAPIClient(context.Background(), cfg, nil)
	require.NoError(t, err)
	return c, cfg
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPError_MessageIsBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/notifications/{id}", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "알림을 찾을 수 없습니다", http.StatusNotFound)
	})
	c, _ := newTestClient(t, mux)

	err := c.DeleteNotification(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, "알림을 찾을 수 없습니다", err.Error())

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestHTTPError_EmptyBody(t *testing.T) {
	assert.Equal(t, "Bad Gateway", (&HTTPError{Status: http.StatusBadGateway}).Error())
}

func TestLoginOrRegister_FallsBackToRegister(t *testing.T) {
	var registered atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "user not found", http.StatusNotFound)
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		_ = json.NewDecoder(r.Body).Decode(&body)
		registered.Store(body.Nickname == "취준생")
		writeJSON(w, models.TokenResponse{AccessToken: "a1", RefreshToken: "r1", Nickname: body.Nickname})
	})
	c, cfg := newTestClient(t, mux)

	res, err := c.LoginOrRegister(context.Background(), "취준생", "pw123456!")
	require.NoError(t, err)
	assert.True(t, registered.Load())
	assert.Equal(t, "a1", c.AccessToken())
	assert.Equal(t, "취준생", res.Nickname)

	saved, err := utils.LoadTokenPair(cfg.TokenPath)
	require.NoError(t, err)
	assert.Equal(t, "r1", saved.RefreshToken)

	require.NoError(t, c.Logout())
	assert.Empty(t, c.AccessToken())
}

func TestLoginOrRegister_WrongPasswordDoesNotRegister(t *testing.T) {
	var registerCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, _ *http.Request) {
		registerCalls.Add(1)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.LoginOrRegister(context.Background(), "a", "b")
	assert.EqualError(t, err, "invalid credentials")
	assert.Zero(t, registerCalls.Load())
}

func TestRefreshOn401(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			http.Error(w, "token expired", http.StatusUnauthorized)
			return
		}
		writeJSON(w, models.User{ID: 3, Nickname: "n"})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refreshToken"] != "old-refresh" {
			http.Error(w, "bad refresh", http.StatusUnauthorized)
			return
		}
		writeJSON(w, models.TokenResponse{AccessToken: "fresh", RefreshToken: "new-refresh"})
	})
	c, _ := newTestClient(t, mux)
	c.setTokens("stale", "old-refresh")

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), me.ID)
	access, refresh := c.tokens()
	assert.Equal(t, "fresh", access)
	assert.Equal(t, "new-refresh", refresh)
}

func tokenExpiringIn(t *testing.T, d time.Duration) string {
	t.Helper()
	claims := utils.Claims{
		UserID:           3,
		Nickname:         "n",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(d))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestConnectToken_RefreshesExpiringToken(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, models.TokenResponse{AccessToken: "fresh", RefreshToken: "new-refresh"})
	})
	c, _ := newTestClient(t, mux)

	valid := tokenExpiringIn(t, 10*time.Minute)
	c.setTokens(valid, "old-refresh")
	assert.Equal(t, valid, c.ConnectToken())
	assert.Zero(t, refreshCalls.Load())

	c.setTokens(tokenExpiringIn(t, -time.Minute), "old-refresh")
	assert.Equal(t, "fresh", c.ConnectToken())
	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestConnectToken_LoggedOut(t *testing.T) {
	c, _ := newTestClient(t, http.NewServeMux())
	assert.Empty(t, c.ConnectToken())
}

func TestSubscriptions_CachedUntilMutation(t *testing.T) {
	var listCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notification-subscriptions", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		assert.Equal(t, "0", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("size"))
		writeJSON(w, models.Page[models.NotificationSubscription]{
			Content: []models.NotificationSubscription{{SubscriptionID: 1, CompanyID: 1}},
			Size:    12,
		})
	})
	mux.HandleFunc("POST /api/notification-subscriptions", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, models.NotificationSubscription{SubscriptionID: 2, CompanyID: 9})
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.Subscriptions(ctx, 0, 12)
	require.NoError(t, err)
	p, err := c.Subscriptions(ctx, 0, 12)
	require.NoError(t, err)
	assert.Len(t, p.Content, 1)
	assert.Equal(t, int32(1), listCalls.Load())

	created, err := c.CreateSubscription(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.CompanyID)

	_, err = c.Subscriptions(ctx, 0, 12)
	require.NoError(t, err)
	assert.Equal(t, int32(2), listCalls.Load())
}

func TestRoomMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chat/room/{companyId}/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4", r.PathValue("companyId"))
		assert.Equal(t, "30", r.URL.Query().Get("limit"))
		writeJSON(w, []models.ChatMessage{{CompanyID: 4, SenderNickname: "a", Message: "hi"}})
	})
	c, _ := newTestClient(t, mux)

	msgs, err := c.RoomMessages(context.Background(), 4, 30)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Message)
}

func TestNewAPIClient_ServerDown(t *testing.T) {
	cfg := &config.Config{APIBaseURL: "http://127.0.0.1:1"}
	_, err := NewAPIClient(context.Background(), cfg, nil)
	assert.Error(t, err)
}
