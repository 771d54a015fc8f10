package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pressroom/admin-gateway/internal/models"
	"github.com/pressroom/admin-gateway/internal/storage"
	"gorm.io/gorm"
)

type ArticleRepository struct {
	db *storage.Postgres
}

func NewArticleRepository(db *storage.Postgres) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.db.DB.WithContext(ctx).Create(article).Error
}

func (r *ArticleRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&article).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &article, err
}

// List returns a page of articles filtered by status and category. Empty
// filters match everything.
func (r *ArticleRepository) List(ctx context.Context, status, category string, limit, offset int) ([]models.Article, error) {
	var articles []models.Article

	query := r.db.DB.WithContext(ctx).Model(&models.Article{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error

	return articles, err
}

func (r *ArticleRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *ArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Article{}).Error
}

func (r *ArticleRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64

	query := r.db.DB.WithContext(ctx).Model(&models.Article{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Count(&count).Error
	return count, err
}

func (r *ArticleRepository) TotalViews(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.Article{}).
		Select("COALESCE(SUM(total_views), 0)").
		Scan(&total).Error

	return total, err
}

// TopByViews returns the most viewed published articles for analytics.
func (r *ArticleRepository) TopByViews(ctx context.Context, limit int) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.DB.WithContext(ctx).
		Where("status = ?", models.ArticlePublished).
		Order("total_views DESC").
		Limit(limit).
		Find(&articles).Error

	return articles, err
}
