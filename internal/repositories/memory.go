package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

// The memory repositories back the mock backend when no database is configured.
// They copy values in and out so callers never share state with the store.

type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	nextID int64
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]models.User)}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("find user: %w", models.ErrNotFound)
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByNickname(_ context.Context, nickname string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Nickname == nickname {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("find user: %w", models.ErrNotFound)
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Nickname == user.Nickname {
			return fmt.Errorf("create user: %w", models.ErrConflict)
		}
	}
	r.nextID++
	user.ID = r.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("save user: %w", models.ErrNotFound)
	}
	r.users[user.ID] = *user
	return nil
}

type MemoryCompanyRepository struct {
	mu        sync.RWMutex
	companies map[int64]models.Company
}

func NewMemoryCompanyRepository() *MemoryCompanyRepository {
	return &MemoryCompanyRepository{companies: make(map[int64]models.Company)}
}

func (r *MemoryCompanyRepository) FindByID(_ context.Context, id int64) (*models.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, fmt.Errorf("find company: %w", models.ErrNotFound)
	}
	return &c, nil
}

func (r *MemoryCompanyRepository) List(_ context.Context) ([]models.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyID < out[j].CompanyID })
	return out, nil
}

func (r *MemoryCompanyRepository) Upsert(_ context.Context, company *models.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[company.CompanyID] = *company
	return nil
}

type MemoryMessageRepository struct {
	mu     sync.RWMutex
	rooms  map[int64][]models.ChatMessage
	nextID uint64
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{rooms: make(map[int64][]models.ChatMessage)}
}

func (r *MemoryMessageRepository) Create(_ context.Context, message *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	message.ID = r.nextID
	r.rooms[message.CompanyID] = append(r.rooms[message.CompanyID], *message)
	return nil
}

func (r *MemoryMessageRepository) Recent(_ context.Context, companyID int64, limit int) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[companyID]
	start := 0
	if limit > 0 && len(room) > limit {
		start = len(room) - limit
	}
	return append([]models.ChatMessage{}, room[start:]...), nil
}

func (r *MemoryMessageRepository) Prune(_ context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for id, room := range r.rooms {
		if extra := len(room) - keep; extra > 0 {
			r.rooms[id] = append([]models.ChatMessage(nil), room[extra:]...)
			total += int64(extra)
		}
	}
	return total, nil
}

type MemoryNotificationRepository struct {
	mu     sync.RWMutex
	items  map[int64]models.UserNotification
	nextID int64
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{items: make(map[int64]models.UserNotification)}
}

func (r *MemoryNotificationRepository) ListByUser(_ context.Context, userID int64) ([]models.UserNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.UserNotification{}
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].NotificationID > out[j].NotificationID
	})
	return out, nil
}

func (r *MemoryNotificationRepository) FindByEvent(_ context.Context, userID, companyID int64, eventDate string) (*models.UserNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.items {
		if n.UserID == userID && n.CompanyID == companyID && n.EventDate == eventDate {
			return &n, nil
		}
	}
	return nil, fmt.Errorf("find notification: %w", models.ErrNotFound)
}

func (r *MemoryNotificationRepository) Save(_ context.Context, n *models.UserNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if n.NotificationID == 0 {
		r.nextID++
		n.NotificationID = r.nextID
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	r.items[n.NotificationID] = *n
	return nil
}

func (r *MemoryNotificationRepository) Delete(_ context.Context, userID, notificationID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[notificationID]
	if !ok || n.UserID != userID {
		return fmt.Errorf("delete notification: %w", models.ErrNotFound)
	}
	delete(r.items, notificationID)
	return nil
}

func (r *MemoryNotificationRepository) DeleteOlderThan(_ context.Context, t time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, item := range r.items {
		if item.UpdatedAt.Before(t) {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

type MemorySubscriptionRepository struct {
	mu     sync.RWMutex
	items  map[int64]models.NotificationSubscription
	nextID int64
}

func NewMemorySubscriptionRepository() *MemorySubscriptionRepository {
	return &MemorySubscriptionRepository{items: make(map[int64]models.NotificationSubscription)}
}

func (r *MemorySubscriptionRepository) ListByUser(_ context.Context, userID int64) ([]models.NotificationSubscription, error) {
	return r.filter(func(s models.NotificationSubscription) bool { return s.UserID == userID }), nil
}

func (r *MemorySubscriptionRepository) ListByCompany(_ context.Context, companyID int64) ([]models.NotificationSubscription, error) {
	return r.filter(func(s models.NotificationSubscription) bool { return s.CompanyID == companyID }), nil
}

func (r *MemorySubscriptionRepository) filter(keep func(models.NotificationSubscription) bool) []models.NotificationSubscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.NotificationSubscription{}
	for _, s := range r.items {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubscriptionID < out[j].SubscriptionID })
	return out
}

func (r *MemorySubscriptionRepository) Create(_ context.Context, s *models.NotificationSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.UserID == s.UserID && existing.CompanyID == s.CompanyID {
			return fmt.Errorf("create subscription: %w", models.ErrConflict)
		}
	}
	r.nextID++
	s.SubscriptionID = r.nextID
	s.CreatedAt = time.Now()
	r.items[s.SubscriptionID] = *s
	return nil
}

func (r *MemorySubscriptionRepository) Delete(_ context.Context, userID, subscriptionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[subscriptionID]
	if !ok || s.UserID != userID {
		return fmt.Errorf("delete subscription: %w", models.ErrNotFound)
	}
	delete(r.items, subscriptionID)
	return nil
}
