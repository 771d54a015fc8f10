package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pressroom/admin-gateway/internal/models"
	"github.com/pressroom/admin-gateway/internal/storage"
	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *storage.Postgres
}

func NewApplicationRepository(db *storage.Postgres) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.DB.WithContext(ctx).Create(app).Error
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&app).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &app, err
}

func (r *ApplicationRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Application, error) {
	var apps []models.Application

	query := r.db.DB.WithContext(ctx).Model(&models.Application{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&apps).Error

	return apps, err
}

func (r *ApplicationRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64

	query := r.db.DB.WithContext(ctx).Model(&models.Application{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Count(&count).Error
	return count, err
}
