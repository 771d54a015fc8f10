package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/pressroom/admin-gateway/internal/models"
	"github.com/pressroom/admin-gateway/internal/repository"
)

// Standardized action types for the audit trail.
const (
	ActionApplicationApproved        = "application_approved"
	ActionApplicationRejected        = "application_rejected"
	ActionApplicationUnderReview     = "application_under_review"
	ActionApplicationRequiresChanges = "application_requires_changes"

	ActionArticleStatusChanged     = "article_status_changed"
	ActionArticleVisibilityChanged = "article_visibility_changed"
	ActionArticleDeleted           = "article_deleted"

	ActionAuthorSuspended     = "author_suspended"
	ActionAuthorActivated     = "author_activated"
	ActionAuthorStatusChanged = "author_status_changed"

	ActionUserAdminGranted = "user_admin_granted"
	ActionUserAdminRevoked = "user_admin_revoked"
)

// Standardized entity types for the audit trail.
const (
	EntityApplication = "application"
	EntityArticle     = "article"
	EntityAuthor      = "author"
	EntityUser        = "user"
	EntitySystem      = "system"
)

// AuditEntry carries the context of one administrative action.
type AuditEntry struct {
	AdminUserID      uuid.UUID
	ActionType       string
	TargetEntityType string
	TargetEntityID   *uuid.UUID
	Justification    string
	Details          map[string]interface{}
	IPAddress        string
	UserAgent        string
}

type AuditService struct {
	repo *repository.AuditLogRepository
}

func NewAuditService(repo *repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// LogAdminAction records an administrative action. Audit failures are
// logged, never propagated: losing one audit row must not fail the admin
// action itself.
func (s *AuditService) LogAdminAction(ctx context.Context, entry AuditEntry) {
	details := "{}"
	if entry.Details != nil {
		if b, err := json.Marshal(entry.Details); err == nil {
			details = string(b)
		}
	}

	row := &models.AuditLog{
		AdminUserID:      entry.AdminUserID,
		ActionType:       entry.ActionType,
		TargetEntityType: entry.TargetEntityType,
		TargetEntityID:   entry.TargetEntityID,
		Justification:    entry.Justification,
		Details:          details,
		IPAddress:        entry.IPAddress,
		UserAgent:        entry.UserAgent,
	}

	if err := s.repo.Create(ctx, row); err != nil {
		log.Printf("Failed to write audit log for %s: %v", entry.ActionType, err)
	}
}

func (s *AuditService) List(ctx context.Context, actionType string, limit, offset int) ([]models.AuditLog, error) {
	return s.repo.List(ctx, actionType, limit, offset)
}
