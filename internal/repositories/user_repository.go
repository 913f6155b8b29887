package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByNickname(ctx context.Context, nickname string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *GormUserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &u, nil
}

func (r *GormUserRepository) FindByNickname(ctx context.Context, nickname string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("nickname = ?", nickname).First(&u).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "create user")
}

func (r *GormUserRepository) Save(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error, "save user")
}
