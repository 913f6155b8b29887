package services

import (
	"context"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
	"github.com/eonjenawa/eonjenawa-cli/internal/repositories"
)

// MockCompanies seed the mock backend.
var MockCompanies = []models.Company{
	{CompanyID: 1, Name: "네이버"},
	{CompanyID: 2, Name: "카카오"},
	{CompanyID: 3, Name: "라인플러스"},
	{CompanyID: 4, Name: "쿠팡"},
	{CompanyID: 5, Name: "배달의민족"},
	{CompanyID: 6, Name: "토스"},
	{CompanyID: 7, Name: "당근"},
	{CompanyID: 8, Name: "삼성전자"},
	{CompanyID: 9, Name: "LG전자"},
	{CompanyID: 10, Name: "현대자동차"},
}

type CompanyService struct {
	companies repositories.CompanyRepository
}

func NewCompanyService(companies repositories.CompanyRepository) *CompanyService {
	return &CompanyService{companies: companies}
}

func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	return s.companies.List(ctx)
}

// Seed inserts or renames the given companies.
func (s *CompanyService) Seed(ctx context.Context, companies []models.Company) error {
	for i := range companies {
		c := companies[i]
		if err := s.companies.Upsert(ctx, &c); err != nil {
			return err
		}
	}
	return nil
}
