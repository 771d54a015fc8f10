package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog records one administrative action. Details is a JSON payload
// with action-specific context.
type AuditLog struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	AdminUserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"admin_user_id"`
	ActionType       string     `gorm:"index;not null" json:"action_type"`
	TargetEntityType string     `gorm:"index" json:"target_entity_type"`
	TargetEntityID   *uuid.UUID `gorm:"type:uuid" json:"target_entity_id,omitempty"`
	Justification    string     `json:"justification"`
	Details          string     `gorm:"type:jsonb" json:"details"`
	IPAddress        string     `json:"ip_address"`
	UserAgent        string     `json:"user_agent"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	return nil
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
