package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_API_BASE_URL", "")
	t.Setenv("NEXT_PUBLIC_USE_MOCK_DATA", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, "/ws-stomp", cfg.WSPath)
	assert.False(t, cfg.UseMockData)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_API_BASE_URL", "https://api.example.com/")
	t.Setenv("NEXT_PUBLIC_USE_MOCK_DATA", "true")
	t.Setenv("NEXT_PUBLIC_RECONNECT_DELAY", "500ms")
	t.Setenv("NEXT_PUBLIC_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.UseMockData)
	assert.Equal(t, 500*time.Millisecond, cfg.ReconnectDelay)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestBaseURL_FallsBackToSiteURL(t *testing.T) {
	cfg := &Config{SiteURL: "http://localhost:3000/"}
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL())
}

func TestBrokerURL(t *testing.T) {
	got, err := BrokerURL("https://api.example.com", "/ws-stomp")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/ws-stomp", got)

	got, err = BrokerURL("http://127.0.0.1:8080/", "/ws-stomp")
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:8080/ws-stomp", got)
}

func TestValidate_RejectsShortSecret(t *testing.T) {
	cfg := &Config{ReconnectDelay: time.Second, ServerPort: 80, JWTSecret: "short", WSPath: "/ws"}
	assert.Error(t, cfg.Validate())
}
