package models

import (
	"time"
)

// UserNotification is created by the backend when a crowd report concerns a
// company the user subscribed to. Deleting it is the acknowledgment.
type UserNotification struct {
	NotificationID        int64     `gorm:"primaryKey;autoIncrement" json:"notificationId"`
	UserID                int64     `gorm:"index;not null" json:"-"`
	CompanyID             int64     `gorm:"index;not null" json:"companyId"`
	CompanyName           string    `gorm:"type:varchar(100)" json:"companyName"`
	EventDate             string    `gorm:"type:varchar(10)" json:"eventDate"`
	FirstReporterNickname string    `gorm:"type:varchar(100)" json:"firstReporterNickname"`
	ReporterMessage       string    `gorm:"type:text" json:"reporterMessage"`
	ReporterCount         int       `json:"reporterCount"`
	SummaryText           string    `gorm:"type:text" json:"summaryText"`
	Read                  bool      `json:"read"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime;index" json:"updatedAt"`
}

// NotificationSubscription marks a company the user wants notifications for.
// CompanyID never changes after creation.
type NotificationSubscription struct {
	SubscriptionID int64     `gorm:"primaryKey;autoIncrement" json:"subscriptionId"`
	UserID         int64     `gorm:"uniqueIndex:idx_subscription_user_company;not null" json:"-"`
	CompanyID      int64     `gorm:"uniqueIndex:idx_subscription_user_company;not null" json:"companyId"`
	CompanyName    string    `gorm:"type:varchar(100)" json:"companyName"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
