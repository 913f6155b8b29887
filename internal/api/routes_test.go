package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/api"
	"github.com/eonjenawa/eonjenawa-cli/internal/config"
	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		WSPath:         "/ws-stomp",
		JWTSecret:      "router-test-secret-000001",
		AllowedOrigins: []string{"*"},
	}
	srv, err := api.NewServer(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, h http.Handler, nickname string) models.TokenResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/register", "", `{"nickname":"`+nickname+`","password":"secret12!"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res models.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestRouter_HealthAndCompanies(t *testing.T) {
	h := newRouter(t)

	rec := do(t, h, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/companies", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var companies []models.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &companies))
	assert.Len(t, companies, 10)
}

func TestRouter_LoginUnknownNicknameIs404(t *testing.T) {
	h := newRouter(t)
	rec := do(t, h, http.MethodPost, "/api/auth/login", "", `{"nickname":"nobody","password":"secret12!"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RegisterDuplicateIsConflict(t *testing.T) {
	h := newRouter(t)
	register(t, h, "취준생")
	rec := do(t, h, http.MethodPost, "/api/auth/register", "", `{"nickname":"취준생","password":"secret12!"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	h := newRouter(t)
	for _, path := range []string{"/api/auth/me", "/api/notifications", "/api/notification-subscriptions"} {
		rec := do(t, h, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_ErrorsArePlainText(t *testing.T) {
	h := newRouter(t)
	tok := register(t, h, "alice").AccessToken

	rec := do(t, h, http.MethodPost, "/api/notification-subscriptions", tok, `{"companyId":999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.NotEmpty(t, strings.TrimSpace(rec.Body.String()))

	rec = do(t, h, http.MethodPost, "/api/notification-subscriptions", tok, `{bad json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/notifications?page=-1", tok, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/notifications/abc", tok, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ReportNotifiesSubscribers(t *testing.T) {
	h := newRouter(t)
	subscriber := register(t, h, "구독자").AccessToken
	reporter := register(t, h, "제보자").AccessToken

	rec := do(t, h, http.MethodPost, "/api/notification-subscriptions", subscriber, `{"companyId":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/reports", reporter, `{"companyId":3,"eventDate":"2026-04-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"notified":1}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/reports", reporter, `{"companyId":3,"eventDate":"04/01/2026"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/notifications", subscriber, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page models.Page[models.UserNotification]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Content, 1)
	assert.Equal(t, "제보자", page.Content[0].FirstReporterNickname)
	assert.Equal(t, 1, page.Content[0].ReporterCount)
}

func TestRouter_RoomHistoryIsPublic(t *testing.T) {
	h := newRouter(t)
	rec := do(t, h, http.MethodGet, "/api/chat/room/1/messages?limit=30", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/chat/room/x/messages", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
