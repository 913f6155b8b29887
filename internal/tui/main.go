package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/api"
	"github.com/eonjenawa/eonjenawa-cli/internal/auth"
	"github.com/eonjenawa/eonjenawa-cli/internal/config"
	"github.com/eonjenawa/eonjenawa-cli/internal/logger"
	"github.com/eonjenawa/eonjenawa-cli/internal/tui/client"
	"github.com/eonjenawa/eonjenawa-cli/internal/tui/models"
)

const startupTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// The UI owns the terminal, so logs always go to a file.
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(os.TempDir(), "eonjenawa-tui.log")
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.UseMockData {
		srv, err := api.NewServer(cfg, log.Named("mock"))
		if err != nil {
			return fmt.Errorf("start mock backend: %w", err)
		}
		base, err := srv.StartLocal()
		if err != nil {
			return fmt.Errorf("start mock backend: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Warn("mock backend shutdown", zap.Error(err))
			}
		}()
		cfg.APIBaseURL = base
	}

	env := &models.Env{Identity: auth.NewProvider(), Log: log}
	setup := func() (tea.Model, error) { return firstScreen(cfg, env) }

	first, err := setup()
	if err != nil {
		log.Warn("api unreachable", zap.Error(err))
		first = models.NewServerDownModel(setup)
	}

	program := tea.NewProgram(models.NewApp(env, first), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// firstScreen connects the API client and picks the first screen: the
// subscriptions screen for a still-valid saved login, the login screen otherwise.
func firstScreen(cfg *config.Config, env *models.Env) (tea.Model, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	apiClient, err := client.NewAPIClient(ctx, cfg, env.Log.Named("api"))
	if err != nil {
		return nil, err
	}
	brokerURL, err := cfg.BrokerURL()
	if err != nil {
		return nil, err
	}
	env.API = apiClient
	env.Rooms = client.NewRoomConnector(brokerURL, apiClient.ConnectToken, cfg.ReconnectDelay, env.Log.Named("stomp"))

	if apiClient.AccessToken() == "" {
		return models.NewLoginModel(*env, 0), nil
	}
	me, err := apiClient.Me(ctx)
	if err != nil {
		var httpErr *client.HTTPError
		if !errors.As(err, &httpErr) {
			return nil, err
		}
		env.Log.Info("saved login rejected", zap.Error(err))
		return models.NewLoginModel(*env, 0), nil
	}
	env.Identity.Set(auth.Identity{UserID: me.ID, Nickname: me.Nickname})
	return models.NewSubscriptionsModel(*env), nil
}
