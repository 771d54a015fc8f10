package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pressroom/admin-gateway/internal/models"
	"github.com/pressroom/admin-gateway/internal/storage"
)

type AuditLogRepository struct {
	db *storage.Postgres
}

func NewAuditLogRepository(db *storage.Postgres) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.DB.WithContext(ctx).Create(entry).Error
}

func (r *AuditLogRepository) List(ctx context.Context, actionType string, limit, offset int) ([]models.AuditLog, error) {
	var entries []models.AuditLog

	query := r.db.DB.WithContext(ctx).Model(&models.AuditLog{})
	if actionType != "" {
		query = query.Where("action_type = ?", actionType)
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error

	return entries, err
}

func (r *AuditLogRepository) FindByAdmin(ctx context.Context, adminID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.DB.WithContext(ctx).
		Where("admin_user_id = ?", adminID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error

	return entries, err
}

func (r *AuditLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("created_at >= ?", since).
		Count(&count).Error

	return count, err
}

// DeleteOlderThan prunes audit entries past the retention period.
func (r *AuditLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.AuditLog{})

	return result.RowsAffected, result.Error
}
