package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article statuses and visibilities.
const (
	ArticleDraft     = "draft"
	ArticlePublished = "published"
	ArticleArchived  = "archived"

	VisibilityPublic   = "public"
	VisibilityPrivate  = "private"
	VisibilityUnlisted = "unlisted"
)

type Article struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AuthorID   uuid.UUID `gorm:"type:uuid;index;not null" json:"author_id"`
	Title      string    `gorm:"not null" json:"title"`
	Subtitle   string    `json:"subtitle"`
	Content    string    `gorm:"type:text" json:"content"`
	Category   string    `gorm:"index" json:"category"`
	Status     string    `gorm:"default:'draft';index" json:"status"`
	Visibility string    `gorm:"default:'public'" json:"visibility"`
	TotalViews int64     `gorm:"default:0" json:"total_views"`
	VoteScore  int       `gorm:"default:0" json:"vote_score"`
	TrendScore float64   `gorm:"default:0" json:"trend_score"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	return nil
}

func (Article) TableName() string {
	return "articles"
}
