package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

type CompanyRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Company, error)
	List(ctx context.Context) ([]models.Company, error)
	Upsert(ctx context.Context, company *models.Company) error
}

type GormCompanyRepository struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) *GormCompanyRepository { return &GormCompanyRepository{db: db} }

func (r *GormCompanyRepository) FindByID(ctx context.Context, id int64) (*models.Company, error) {
	var c models.Company
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, "find company")
	}
	return &c, nil
}

func (r *GormCompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	err := r.db.WithContext(ctx).Order("company_id").Find(&out).Error
	return out, translate(err, "list companies")
}

func (r *GormCompanyRepository) Upsert(ctx context.Context, company *models.Company) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(company).Error
	return translate(err, "upsert company")
}
