package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

const subscriptionsCachePrefix = "subscriptions:"

func (c *APIClient) Notifications(ctx context.Context, page, size int) (models.Page[models.UserNotification], error) {
	body, err := c.get(ctx, fmt.Sprintf("/notifications?page=%d&size=%d", page, size))
	if err != nil {
		return models.Page[models.UserNotification]{}, err
	}
	return decode[models.Page[models.UserNotification]](body)
}

func (c *APIClient) DeleteNotification(ctx context.Context, notificationID int64) error {
	_, err := c.delete(ctx, fmt.Sprintf("/notifications/%d", notificationID))
	return err
}

// Subscriptions returns one page of the user's subscriptions. Pages are cached
// until a subscription is created or deleted.
func (c *APIClient) Subscriptions(ctx context.Context, page, size int) (models.Page[models.NotificationSubscription], error) {
	key := fmt.Sprintf("%s%d:%d", subscriptionsCachePrefix, page, size)
	if v, ok := c.cache.Get(key); ok {
		if p, ok := v.(models.Page[models.NotificationSubscription]); ok {
			p.Content = append([]models.NotificationSubscription(nil), p.Content...)
			return p, nil
		}
	}

	body, err := c.get(ctx, fmt.Sprintf("/notification-subscriptions?page=%d&size=%d", page, size))
	if err != nil {
		return models.Page[models.NotificationSubscription]{}, err
	}
	p, err := decode[models.Page[models.NotificationSubscription]](body)
	if err != nil {
		return p, err
	}

	cp := p
	cp.Content = append([]models.NotificationSubscription(nil), p.Content...)
	c.cache.Set(key, cp, cache.DefaultExpiration)
	return p, nil
}

func (c *APIClient) CreateSubscription(ctx context.Context, companyID int64) (models.NotificationSubscription, error) {
	body, err := c.post(ctx, "/notification-subscriptions", map[string]int64{"companyId": companyID})
	if err != nil {
		return models.NotificationSubscription{}, err
	}
	c.invalidateSubscriptions()
	return decode[models.NotificationSubscription](body)
}

func (c *APIClient) DeleteSubscription(ctx context.Context, subscriptionID int64) error {
	_, err := c.delete(ctx, fmt.Sprintf("/notification-subscriptions/%d", subscriptionID))
	if err == nil {
		c.invalidateSubscriptions()
	}
	return err
}

// Report submits a crowd report, which notifies every subscriber of the company.
func (c *APIClient) Report(ctx context.Context, report models.Report) error {
	_, err := c.post(ctx, "/reports", report)
	return err
}

func (c *APIClient) invalidateSubscriptions() {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, subscriptionsCachePrefix) {
			c.cache.Delete(key)
		}
	}
}
