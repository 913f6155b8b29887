// Package api is the mock backend: the REST API and STOMP broker the terminal
// client talks to when no real backend is configured.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eonjenawa/eonjenawa-cli/internal/api/handlers"
	"github.com/eonjenawa/eonjenawa-cli/internal/api/middleware"
	"github.com/eonjenawa/eonjenawa-cli/internal/api/ws"
	"github.com/eonjenawa/eonjenawa-cli/internal/config"
	"github.com/eonjenawa/eonjenawa-cli/internal/cron"
	"github.com/eonjenawa/eonjenawa-cli/internal/repositories"
	"github.com/eonjenawa/eonjenawa-cli/internal/services"
)

// Server is a runnable mock backend.
type Server struct {
	cfg       *config.Config
	log       *zap.Logger
	svcs      *handlers.Services
	hub       *ws.Hub
	handler   http.Handler
	http      *http.Server
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
}

// NewServer wires repositories, services, the broker and the router. With
// cfg.StoreDSN set the data lives in MySQL, otherwise in memory.
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	var repos *repositories.Repositories
	if cfg.StoreDSN != "" {
		db, err := config.OpenDB(cfg.StoreDSN, repositories.Models()...)
		if err != nil {
			return nil, err
		}
		repos = repositories.NewGormRepositories(db)
		log.Info("mock backend using mysql store")
	} else {
		repos = repositories.NewMemoryRepositories()
	}

	svcs := handlers.NewServices(repos, cfg.JWTSecret, log)
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer seedCancel()
	if err := svcs.Companies.Seed(seedCtx, services.MockCompanies); err != nil {
		return nil, fmt.Errorf("seed companies: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub(svcs.Chat, cfg.JWTSecret, log.Named("broker"))
	s := &Server{
		cfg:    cfg,
		log:    log,
		svcs:   svcs,
		hub:    hub,
		cancel: cancel,
	}
	s.handler = NewRouter(ctx, cfg, svcs, hub, log)
	return s, nil
}

// NewRouter builds the chi router for the REST API and the broker endpoint.
func NewRouter(ctx context.Context, cfg *config.Config, svcs *handlers.Services, hub *ws.Hub, log *zap.Logger) http.Handler {
	h := handlers.NewHandler(svcs, log)
	authMw := middleware.AuthMiddleware(cfg.JWTSecret)
	// 5 requests/second, burst of 10, on login and registration.
	sensitiveRL := middleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(middleware.CheckCORS(cfg.AllowedOrigins))

	r.Get(cfg.WSPath, handlers.ChatWebSocket(hub))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/companies", h.ListCompanies)
		r.With(middleware.CompanyParam).Get("/chat/room/{companyId}/messages", h.RoomMessages)

		r.With(sensitiveRL.Limit).Post("/auth/login", h.Login)
		r.With(sensitiveRL.Limit).Post("/auth/register", h.Register)
		r.Post("/auth/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", h.Me)
			r.Get("/notifications", h.ListNotifications)
			r.Delete("/notifications/{id}", h.DeleteNotification)
			r.Get("/notification-subscriptions", h.ListSubscriptions)
			r.Post("/notification-subscriptions", h.CreateSubscription)
			r.Delete("/notification-subscriptions/{id}", h.DeleteSubscription)
			r.Post("/reports", h.CreateReport)
		})
	})
	return r
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Start listens on addr and serves in the background, returning the base URL.
// The cleanup jobs start with it.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", addr, err)
	}

	jobs := cron.NewJobs(s.svcs.Chat, s.svcs.Notifications, s.log.Named("cron"))
	if s.scheduler, err = jobs.StartCronJobs(); err != nil {
		_ = ln.Close()
		return "", fmt.Errorf("start cron: %w", err)
	}

	s.http = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", zap.Error(err))
		}
	}()

	baseURL := "http://" + ln.Addr().String()
	s.log.Info("mock backend listening", zap.String("url", baseURL))
	return baseURL, nil
}

// StartLocal starts on a free loopback port, for the in-process mock mode.
func (s *Server) StartLocal() (string, error) {
	return s.Start("127.0.0.1:0")
}

// Shutdown stops accepting requests, closes broker sessions and stops the jobs.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.hub.Close()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
