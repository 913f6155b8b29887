package models

import (
	"time"
)

type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"userId"`
	Nickname     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"nickname"`
	PasswordHash string     `gorm:"type:varchar(100);not null" json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `gorm:"type:datetime" json:"lastLogin"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
	Nickname     string `json:"nickname"`
}
