package handlers

import (
	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/repositories"
	"github.com/eonjenawa/eonjenawa-cli/internal/services"
)

// Services holds the service singletons the handlers use.
type Services struct {
	Auth          *services.AuthService
	Chat          *services.ChatService
	Companies     *services.CompanyService
	Notifications *services.NotificationService
	Subscriptions *services.SubscriptionService
}

// NewServices wires every service onto repos.
func NewServices(repos *repositories.Repositories, jwtSecret string, log *zap.Logger) *Services {
	return &Services{
		Auth:          services.NewAuthService(repos.Users, jwtSecret, log.Named("auth")),
		Chat:          services.NewChatService(repos.Messages, log.Named("chat")),
		Companies:     services.NewCompanyService(repos.Companies),
		Notifications: services.NewNotificationService(repos.Notifications, repos.Subscriptions, repos.Companies, log.Named("notifications")),
		Subscriptions: services.NewSubscriptionService(repos.Subscriptions, repos.Companies),
	}
}

// Handler serves the REST endpoints.
type Handler struct {
	svcs *Services
	log  *zap.Logger
}

func NewHandler(svcs *Services, log *zap.Logger) *Handler {
	return &Handler{svcs: svcs, log: log}
}
