package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

// Repositories bundles the stores the mock backend runs on.
type Repositories struct {
	Users         UserRepository
	Companies     CompanyRepository
	Messages      MessageRepository
	Notifications NotificationRepository
	Subscriptions SubscriptionRepository
}

// Models lists every persisted type, for AutoMigrate.
func Models() []any {
	return []any{
		&models.User{},
		&models.Company{},
		&models.ChatMessage{},
		&models.UserNotification{},
		&models.NotificationSubscription{},
	}
}

func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Companies:     NewCompanyRepository(db),
		Messages:      NewMessageRepository(db),
		Notifications: NewNotificationRepository(db),
		Subscriptions: NewSubscriptionRepository(db),
	}
}

func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Users:         NewMemoryUserRepository(),
		Companies:     NewMemoryCompanyRepository(),
		Messages:      NewMemoryMessageRepository(),
		Notifications: NewMemoryNotificationRepository(),
		Subscriptions: NewMemorySubscriptionRepository(),
	}
}

// translate maps gorm errors onto the shared sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, models.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
