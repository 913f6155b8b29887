package models

// Company is the subset of company data the chat and notification features need.
type Company struct {
	CompanyID int64  `gorm:"primaryKey;autoIncrement:false" json:"companyId"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
}

// Report is a crowd-submitted result-announcement report for a company.
type Report struct {
	CompanyID int64  `json:"companyId" validate:"required,gt=0"`
	EventDate string `json:"eventDate" validate:"required,datetime=2006-01-02"`
	Message   string `json:"message" validate:"max=300"`
}
