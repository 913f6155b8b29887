package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	// Recent returns up to limit of the newest messages of a room, oldest first.
	Recent(ctx context.Context, companyID int64, limit int) ([]models.ChatMessage, error)
	// Prune keeps the newest keep messages of every room and deletes the rest.
	Prune(ctx context.Context, keep int) (int64, error)
}

type GormMessageRepository struct{ db *gorm.DB }

func NewMessageRepository(db *gorm.DB) *GormMessageRepository { return &GormMessageRepository{db: db} }

func (r *GormMessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	return translate(r.db.WithContext(ctx).Create(message).Error, "create message")
}

func (r *GormMessageRepository) Recent(ctx context.Context, companyID int64, limit int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, translate(err, "recent messages")
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *GormMessageRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, nil
	}
	db := r.db.WithContext(ctx)

	var rooms []int64
	if err := db.Model(&models.ChatMessage{}).Distinct().Pluck("company_id", &rooms).Error; err != nil {
		return 0, translate(err, "prune messages")
	}

	var total int64
	for _, room := range rooms {
		var cutoff models.ChatMessage
		err := db.Where("company_id = ?", room).Order("id DESC").Offset(keep - 1).Limit(1).Take(&cutoff).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return total, translate(err, "prune messages")
		}
		res := db.Where("company_id = ? AND id < ?", room, cutoff.ID).Delete(&models.ChatMessage{})
		if res.Error != nil {
			return total, translate(res.Error, "prune messages")
		}
		total += res.RowsAffected
	}
	return total, nil
}
