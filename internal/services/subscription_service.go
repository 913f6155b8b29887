package services

import (
	"context"
	"fmt"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/repositories"
)

type SubscriptionService struct {
	subscriptions repositories.SubscriptionRepository
	companies     repositories.CompanyRepository
}

func NewSubscriptionService(subscriptions repositories.SubscriptionRepository, companies repositories.CompanyRepository) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions, companies: companies}
}

func (s *SubscriptionService) List(ctx context.Context, userID int64, page, size int) (models.Page[models.NotificationSubscription], error) {
	all, err := s.subscriptions.ListByUser(ctx, userID)
	if err != nil {
		return models.Page[models.NotificationSubscription]{}, err
	}
	return models.Paginate(all, page, size), nil
}

// Create subscribes the user to a known company.
func (s *SubscriptionService) Create(ctx context.Context, userID, companyID int64) (models.NotificationSubscription, error) {
	if companyID <= 0 {
		return models.NotificationSubscription{}, fmt.Errorf("companyId must be positive: %w", models.ErrBadRequest)
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return models.NotificationSubscription{}, err
	}
	sub := models.NotificationSubscription{
		UserID:      userID,
		CompanyID:   company.CompanyID,
		CompanyName: company.Name,
	}
	if err := s.subscriptions.Create(ctx, &sub); err != nil {
		return models.NotificationSubscription{}, err
	}
	return sub, nil
}

func (s *SubscriptionService) Delete(ctx context.Context, userID, subscriptionID int64) error {
	return s.subscriptions.Delete(ctx, userID, subscriptionID)
}
