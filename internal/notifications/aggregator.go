// Package notifications is the client view of the user's notification
// subscriptions and notifications: paged loading, per-company grouping, display
// order and dismissal.
package notifications

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

// DefaultPageSize is the page size for both collections.
const DefaultPageSize = 12

// API is the subset of the REST client the aggregator needs.
type API interface {
	Subscriptions(ctx context.Context, page, size int) (models.Page[models.NotificationSubscription], error)
	CreateSubscription(ctx context.Context, companyID int64) (models.NotificationSubscription, error)
	DeleteSubscription(ctx context.Context, subscriptionID int64) error
	Notifications(ctx context.Context, page, size int) (models.Page[models.UserNotification], error)
	DeleteNotification(ctx context.Context, notificationID int64) error
}

// Aggregator holds the loaded pages. State only changes from server responses;
// mutations always reload afterwards.
type Aggregator struct {
	api      API
	pageSize int
	log      *zap.Logger

	mu            sync.Mutex
	collator      *collate.Collator
	subs          []models.NotificationSubscription
	subsPage      int
	subsHasNext   bool
	notifs        []models.UserNotification
	notifsPage    int
	notifsHasNext bool
}

func New(api API, pageSize int, log *zap.Logger) *Aggregator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		api:      api,
		pageSize: pageSize,
		log:      log,
		collator: collate.New(language.Korean),
	}
}

// LoadSubscriptions fetches one page. appendPage concatenates it onto the loaded
// subscriptions, otherwise it replaces them. A page whose ctx was cancelled while
// in flight is dropped.
func (a *Aggregator) LoadSubscriptions(ctx context.Context, page int, appendPage bool) error {
	p, err := a.api.Subscriptions(ctx, page, a.pageSize)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("load subscriptions page %d: %w", page, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if appendPage {
		a.subs = append(a.subs, p.Content...)
	} else {
		a.subs = append([]models.NotificationSubscription(nil), p.Content...)
	}
	a.subsPage = page
	a.subsHasNext = p.HasNext
	return nil
}

// LoadNotifications is LoadSubscriptions for notifications.
func (a *Aggregator) LoadNotifications(ctx context.Context, page int, appendPage bool) error {
	p, err := a.api.Notifications(ctx, page, a.pageSize)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("load notifications page %d: %w", page, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if appendPage {
		a.notifs = append(a.notifs, p.Content...)
	} else {
		a.notifs = append([]models.UserNotification(nil), p.Content...)
	}
	a.notifsPage = page
	a.notifsHasNext = p.HasNext
	return nil
}

// LoadMoreSubscriptions appends the next page, if there is one.
func (a *Aggregator) LoadMoreSubscriptions(ctx context.Context) error {
	a.mu.Lock()
	next, ok := a.subsPage+1, a.subsHasNext
	a.mu.Unlock()
	if !ok {
		return nil
	}
	return a.LoadSubscriptions(ctx, next, true)
}

func (a *Aggregator) LoadMoreNotifications(ctx context.Context) error {
	a.mu.Lock()
	next, ok := a.notifsPage+1, a.notifsHasNext
	a.mu.Unlock()
	if !ok {
		return nil
	}
	return a.LoadNotifications(ctx, next, true)
}

// Refresh replaces both collections with their first page.
func (a *Aggregator) Refresh(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.LoadSubscriptions(gctx, 0, false) })
	g.Go(func() error { return a.LoadNotifications(gctx, 0, false) })
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// HasMore reports whether another page exists for subscriptions and notifications.
func (a *Aggregator) HasMore() (subscriptions, notifications bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.subsHasNext, a.notifsHasNext
}

// Notifications returns the loaded notifications in fetch order.
func (a *Aggregator) Notifications() []models.UserNotification {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.UserNotification(nil), a.notifs...)
}

// Grouped maps company id to that company's loaded notifications, in fetch order.
func (a *Aggregator) Grouped() map[int64][]models.UserNotification {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.groupedLocked()
}

func (a *Aggregator) groupedLocked() map[int64][]models.UserNotification {
	out := make(map[int64][]models.UserNotification)
	for _, n := range a.notifs {
		out[n.CompanyID] = append(out[n.CompanyID], n)
	}
	return out
}

// UnreadCount is the number of loaded notifications for the company.
func (a *Aggregator) UnreadCount(companyID int64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, x := range a.notifs {
		if x.CompanyID == companyID {
			n++
		}
	}
	return n
}

func (a *Aggregator) HasUnread(companyID int64) bool {
	return a.UnreadCount(companyID) > 0
}

// Subscriptions returns the loaded subscriptions in display order: companies with
// notifications first, then by company name in Korean collation, then by id.
func (a *Aggregator) Subscriptions() []models.NotificationSubscription {
	a.mu.Lock()
	defer a.mu.Unlock()

	grouped := a.groupedLocked()
	out := append([]models.NotificationSubscription(nil), a.subs...)
	sort.SliceStable(out, func(i, j int) bool {
		ui, uj := len(grouped[out[i].CompanyID]) > 0, len(grouped[out[j].CompanyID]) > 0
		if ui != uj {
			return ui
		}
		if c := a.collator.CompareString(out[i].CompanyName, out[j].CompanyName); c != 0 {
			return c < 0
		}
		return out[i].SubscriptionID < out[j].SubscriptionID
	})
	return out
}

// DismissAll pages through every notification on the server, deletes them one by
// one and reloads both collections. The first failure aborts.
func (a *Aggregator) DismissAll(ctx context.Context) error {
	var ids []int64
	for page := 0; ; page++ {
		p, err := a.api.Notifications(ctx, page, a.pageSize)
		if err != nil {
			return fmt.Errorf("collect notifications page %d: %w", page, err)
		}
		for _, n := range p.Content {
			ids = append(ids, n.NotificationID)
		}
		if !p.HasNext {
			break
		}
	}

	for _, id := range ids {
		if err := a.api.DeleteNotification(ctx, id); err != nil {
			return fmt.Errorf("delete notification %d: %w", id, err)
		}
	}
	a.log.Debug("dismissed all notifications", zap.Int("count", len(ids)))
	return a.Refresh(ctx)
}

// DismissCompany deletes the loaded notifications of one company concurrently and
// reloads both collections.
func (a *Aggregator) DismissCompany(ctx context.Context, companyID int64) error {
	targets := a.Grouped()[companyID]

	g, gctx := errgroup.WithContext(ctx)
	for _, n := range targets {
		id := n.NotificationID
		g.Go(func() error {
			if err := a.api.DeleteNotification(gctx, id); err != nil {
				return fmt.Errorf("delete notification %d: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Debug("dismissed company notifications",
		zap.Int64("company_id", companyID), zap.Int("count", len(targets)))
	return a.Refresh(ctx)
}

// Subscribe creates a subscription for the company and reloads subscriptions.
func (a *Aggregator) Subscribe(ctx context.Context, companyID int64) error {
	if _, err := a.api.CreateSubscription(ctx, companyID); err != nil {
		return fmt.Errorf("subscribe company %d: %w", companyID, err)
	}
	return a.LoadSubscriptions(ctx, 0, false)
}

func (a *Aggregator) Unsubscribe(ctx context.Context, subscriptionID int64) error {
	if err := a.api.DeleteSubscription(ctx, subscriptionID); err != nil {
		return fmt.Errorf("unsubscribe %d: %w", subscriptionID, err)
	}
	return a.LoadSubscriptions(ctx, 0, false)
}
