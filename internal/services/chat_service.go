package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/pkg/validate"
	"github.com/eonjenawa/eonjenawa-cli/internal/repositories"
)

const (
	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 100
)

type ChatService struct {
	messages repositories.MessageRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewChatService(messages repositories.MessageRepository, log *zap.Logger) *ChatService {
	return &ChatService{messages: messages, log: log, now: time.Now}
}

// Record validates an inbound publish, stamps it with the sender and server time,
// and stores it. The returned message is what gets broadcast.
func (s *ChatService) Record(ctx context.Context, nickname string, in models.ChatPublish) (models.ChatMessage, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := validate.Struct(in); err != nil {
		return models.ChatMessage{}, fmt.Errorf("%s: %w", err.Error(), models.ErrBadRequest)
	}

	msg := models.ChatMessage{
		CompanyID:      in.CompanyID,
		SenderNickname: nickname,
		Message:        in.Message,
		Timestamp:      s.now().UTC(),
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return models.ChatMessage{}, err
	}
	return msg, nil
}

// History returns the newest messages of a room, oldest first. limit is clamped to
// 1..MaxHistoryLimit, with zero meaning DefaultHistoryLimit.
func (s *ChatService) History(ctx context.Context, companyID int64, limit int) ([]models.ChatMessage, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.messages.Recent(ctx, companyID, limit)
}

// PruneHistory keeps the newest keep messages per room.
func (s *ChatService) PruneHistory(ctx context.Context, keep int) (int64, error) {
	return s.messages.Prune(ctx, keep)
}
