package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/pkg/validate"
	"github.com/eonjenawa/eonjenawa-cli/internal/repositories"
)

// NotificationService creates notifications from crowd reports and serves them
// back to their owners.
type NotificationService struct {
	notifications repositories.NotificationRepository
	subscriptions repositories.SubscriptionRepository
	companies     repositories.CompanyRepository
	log           *zap.Logger
}

func NewNotificationService(
	notifications repositories.NotificationRepository,
	subscriptions repositories.SubscriptionRepository,
	companies repositories.CompanyRepository,
	log *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		subscriptions: subscriptions,
		companies:     companies,
		log:           log,
	}
}

func (s *NotificationService) List(ctx context.Context, userID int64, page, size int) (models.Page[models.UserNotification], error) {
	all, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return models.Page[models.UserNotification]{}, err
	}
	return models.Paginate(all, page, size), nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID int64) error {
	return s.notifications.Delete(ctx, userID, notificationID)
}

// Report notifies every subscriber of the reported company. A subscriber already
// holding a notification for the same event date gets it updated: the first
// reporter is kept and the count goes up. It returns how many users were notified.
func (s *NotificationService) Report(ctx context.Context, reporter string, report models.Report) (int, error) {
	report.Message = strings.TrimSpace(report.Message)
	if err := validate.Struct(report); err != nil {
		return 0, fmt.Errorf("%s: %w", err.Error(), models.ErrBadRequest)
	}
	company, err := s.companies.FindByID(ctx, report.CompanyID)
	if err != nil {
		return 0, err
	}
	subs, err := s.subscriptions.ListByCompany(ctx, report.CompanyID)
	if err != nil {
		return 0, err
	}

	for _, sub := range subs {
		n, err := s.notifications.FindByEvent(ctx, sub.UserID, company.CompanyID, report.EventDate)
		switch {
		case errors.Is(err, models.ErrNotFound):
			n = &models.UserNotification{
				UserID:                sub.UserID,
				CompanyID:             company.CompanyID,
				CompanyName:           company.Name,
				EventDate:             report.EventDate,
				FirstReporterNickname: reporter,
				ReporterMessage:       report.Message,
			}
		case err != nil:
			return 0, err
		}
		n.ReporterCount++
		n.Read = false
		n.SummaryText = Summary(company.Name, report.EventDate, n.ReporterCount)
		if err := s.notifications.Save(ctx, n); err != nil {
			return 0, err
		}
	}

	s.log.Info("report delivered",
		zap.Int64("company_id", company.CompanyID),
		zap.String("event_date", report.EventDate),
		zap.Int("subscribers", len(subs)))
	return len(subs), nil
}

// Summary is the one-line text shown for a notification.
func Summary(companyName, eventDate string, reporters int) string {
	if reporters <= 1 {
		return fmt.Sprintf("%s의 %s 결과 발표 제보가 도착했어요", companyName, eventDate)
	}
	return fmt.Sprintf("%s의 %s 결과 발표 제보가 %d건 도착했어요", companyName, eventDate, reporters)
}

// RemoveOld deletes notifications not updated within maxAge.
func (s *NotificationService) RemoveOld(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.notifications.DeleteOlderThan(ctx, time.Now().Add(-maxAge))
}
