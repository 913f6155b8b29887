package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

type NotificationRepository interface {
	// ListByUser returns the user's notifications, most recently updated first.
	ListByUser(ctx context.Context, userID int64) ([]models.UserNotification, error)
	FindByEvent(ctx context.Context, userID, companyID int64, eventDate string) (*models.UserNotification, error)
	Save(ctx context.Context, n *models.UserNotification) error
	Delete(ctx context.Context, userID, notificationID int64) error
	DeleteOlderThan(ctx context.Context, t time.Time) (int64, error)
}

type GormNotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) ListByUser(ctx context.Context, userID int64) ([]models.UserNotification, error) {
	var out []models.UserNotification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("notification_id DESC").
		Find(&out).Error
	return out, translate(err, "list notifications")
}

func (r *GormNotificationRepository) FindByEvent(ctx context.Context, userID, companyID int64, eventDate string) (*models.UserNotification, error) {
	var n models.UserNotification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ? AND event_date = ?", userID, companyID, eventDate).
		First(&n).Error
	if err != nil {
		return nil, translate(err, "find notification")
	}
	return &n, nil
}

func (r *GormNotificationRepository) Save(ctx context.Context, n *models.UserNotification) error {
	return translate(r.db.WithContext(ctx).Save(n).Error, "save notification")
}

func (r *GormNotificationRepository) Delete(ctx context.Context, userID, notificationID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		Delete(&models.UserNotification{})
	if res.Error != nil {
		return translate(res.Error, "delete notification")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete notification")
	}
	return nil
}

func (r *GormNotificationRepository) DeleteOlderThan(ctx context.Context, t time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("updated_at < ?", t).Delete(&models.UserNotification{})
	return res.RowsAffected, translate(res.Error, "delete old notifications")
}
