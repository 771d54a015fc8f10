package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pressroom/admin-gateway/internal/models"
	"github.com/pressroom/admin-gateway/internal/storage"
	"gorm.io/gorm"
)

type AuthorRepository struct {
	db *storage.Postgres
}

func NewAuthorRepository(db *storage.Postgres) *AuthorRepository {
	return &AuthorRepository{db: db}
}

func (r *AuthorRepository) Create(ctx context.Context, author *models.Author) error {
	return r.db.DB.WithContext(ctx).Create(author).Error
}

func (r *AuthorRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Author, error) {
	var author models.Author
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&author).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &author, err
}

func (r *AuthorRepository) FindByEmail(ctx context.Context, email string) (*models.Author, error) {
	var author models.Author
	err := r.db.DB.WithContext(ctx).
		Where("email = ?", email).
		First(&author).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &author, err
}

func (r *AuthorRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Author, error) {
	var authors []models.Author

	query := r.db.DB.WithContext(ctx).Model(&models.Author{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error

	return authors, err
}

func (r *AuthorRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.DB.WithContext(ctx).
		Model(&models.Author{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *AuthorRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64

	query := r.db.DB.WithContext(ctx).Model(&models.Author{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Count(&count).Error
	return count, err
}
