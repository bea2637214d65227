package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionUpdate       AuditAction = "UPDATE"
	AuditActionDelete       AuditAction = "DELETE"
	AuditActionStatusChange AuditAction = "STATUS_CHANGE"
)

// AuditLog represents an administrative change to coupons, rewards or accounts
type AuditLog struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TableName string         `json:"table_name" gorm:"type:varchar(50);not null;index"`
	RecordID  uuid.UUID      `json:"record_id" gorm:"type:uuid;not null;index"`
	Action    AuditAction    `json:"action" gorm:"type:varchar(20);not null"`
	OldData   datatypes.JSON `json:"old_data"`
	NewData   datatypes.JSON `json:"new_data"`
	ChangedBy *uuid.UUID     `json:"changed_by" gorm:"type:uuid"`
	ChangedAt time.Time      `json:"changed_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
