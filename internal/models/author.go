package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Author statuses.
const (
	AuthorActive    = "active"
	AuthorSuspended = "suspended"
)

type Author struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	FullName        string     `gorm:"not null" json:"full_name"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	Bio             string     `json:"bio"`
	Status          string     `gorm:"default:'active';index" json:"status"`
	ArticlesCount   int        `gorm:"default:0" json:"articles_count"`
	TotalViews      int64      `gorm:"default:0" json:"total_views"`
	TotalVotes      int64      `gorm:"default:0" json:"total_votes"`
	LastPublishedAt *time.Time `json:"last_published_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (a *Author) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	return nil
}

func (Author) TableName() string {
	return "authors"
}
