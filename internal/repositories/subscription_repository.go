package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

type SubscriptionRepository interface {
	// ListByUser returns the user's subscriptions in creation order.
	ListByUser(ctx context.Context, userID int64) ([]models.NotificationSubscription, error)
	ListByCompany(ctx context.Context, companyID int64) ([]models.NotificationSubscription, error)
	// Create fails with models.ErrConflict when the user already follows the company.
	Create(ctx context.Context, s *models.NotificationSubscription) error
	Delete(ctx context.Context, userID, subscriptionID int64) error
}

type GormSubscriptionRepository struct{ db *gorm.DB }

func NewSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

func (r *GormSubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]models.NotificationSubscription, error) {
	var out []models.NotificationSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("subscription_id").Find(&out).Error
	return out, translate(err, "list subscriptions")
}

func (r *GormSubscriptionRepository) ListByCompany(ctx context.Context, companyID int64) ([]models.NotificationSubscription, error) {
	var out []models.NotificationSubscription
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("subscription_id").Find(&out).Error
	return out, translate(err, "list company subscriptions")
}

func (r *GormSubscriptionRepository) Create(ctx context.Context, s *models.NotificationSubscription) error {
	return translate(r.db.WithContext(ctx).Create(s).Error, "create subscription")
}

func (r *GormSubscriptionRepository) Delete(ctx context.Context, userID, subscriptionID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND subscription_id = ?", userID, subscriptionID).
		Delete(&models.NotificationSubscription{})
	if res.Error != nil {
		return translate(res.Error, "delete subscription")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete subscription")
	}
	return nil
}
