package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is shared with the web frontend so one .env file configures both.
const EnvPrefix = "NEXT_PUBLIC"

// Config holds runtime configuration for the terminal client and the mock backend.
type Config struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	UseMockData    bool          `mapstructure:"use_mock_data"`
	SiteURL        string        `mapstructure:"site_url"`
	WSPath         string        `mapstructure:"ws_path"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	TokenPath      string        `mapstructure:"token_path"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	ServerPort     int      `mapstructure:"server_port"`
	JWTSecret      string   `mapstructure:"jwt_secret"`
	StoreDSN       string   `mapstructure:"store_dsn"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from defaults, an optional .env file and the environment.
// Environment variables win over .env values, which win over defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("api_base_url", "")
	v.SetDefault("use_mock_data", false)
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("ws_path", "/ws-stomp")
	v.SetDefault("reconnect_delay", "3s")
	v.SetDefault("token_path", defaultTokenPath())

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_file", "")

	v.SetDefault("server_port", 8080)
	v.SetDefault("jwt_secret", "eonjenawa-development-secret")
	v.SetDefault("store_dsn", "")
	v.SetDefault("allowed_origins", "*")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowedOrigins = splitOrigins(v.GetString("allowed_origins"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail much later.
func (c *Config) Validate() error {
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("config: reconnect_delay must be positive, got %s", c.ReconnectDelay)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("config: server_port must be within 1-65535, got %d", c.ServerPort)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("config: jwt_secret must be at least 16 characters")
	}
	if !strings.HasPrefix(c.WSPath, "/") {
		return fmt.Errorf("config: ws_path must start with '/', got %q", c.WSPath)
	}
	return nil
}

// BaseURL is the origin used for REST and WebSocket calls. An empty API base URL
// falls back to the site URL, the terminal equivalent of "current origin".
func (c *Config) BaseURL() string {
	base := strings.TrimRight(c.APIBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(c.SiteURL, "/")
	}
	return base
}

// BrokerURL derives the STOMP WebSocket endpoint from BaseURL.
func (c *Config) BrokerURL() (string, error) {
	return BrokerURL(c.BaseURL(), c.WSPath)
}

// BrokerURL maps an http(s) origin to the ws(s) endpoint at path.
func BrokerURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func defaultTokenPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".eonjenawa.json"
	}
	return filepath.Join(homeDir, ".eonjenawa.json")
}
