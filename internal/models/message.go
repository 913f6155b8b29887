package models

import (
	"strconv"
	"time"
)

// MaxMessageLength is the longest chat message accepted, counted in characters.
const MaxMessageLength = 300

// ChatMessage is a broadcast chat frame body, and a history row on the backend.
type ChatMessage struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	CompanyID      int64     `gorm:"index;not null" json:"companyId"`
	SenderNickname string    `gorm:"type:varchar(100);not null" json:"senderNickname"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
}

// ChatPublish is the body a client publishes to the chat destination.
type ChatPublish struct {
	CompanyID int64  `json:"companyId" validate:"required,gt=0"`
	Message   string `json:"message" validate:"required,max=300"`
}

// Broker destinations for company chat rooms.
const (
	ChatPublishDestination = "/pub/chat/message"
	RoomTopicPrefix        = "/sub/chat/room/"
)

// RoomTopic is the destination a client subscribes to for a company's room.
func RoomTopic(companyID int64) string {
	return RoomTopicPrefix + strconv.FormatInt(companyID, 10)
}
