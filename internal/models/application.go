package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application review statuses.
const (
	ApplicationPending         = "pending"
	ApplicationUnderReview     = "under_review"
	ApplicationApproved        = "approved"
	ApplicationRejected        = "rejected"
	ApplicationRequiresChanges = "requires_changes"
)

// Application is a prospective author's submission.
type Application struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ApplicantName  string     `gorm:"not null" json:"applicant_name"`
	ApplicantEmail string     `gorm:"index;not null" json:"applicant_email"`
	PortfolioURL   string     `json:"portfolio_url"`
	WritingSample  string     `gorm:"type:text" json:"writing_sample"`
	Status         string     `gorm:"default:'pending';index" json:"status"`
	ReviewedBy     *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewNotes    string     `json:"review_notes"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	return nil
}

func (Application) TableName() string {
	return "author_applications"
}
