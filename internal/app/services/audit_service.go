package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

// LogAudit creates an audit log entry for an administrative change
func (s *AuditService) LogAudit(ctx context.Context, tableName string, recordID uuid.UUID, action models.AuditAction, oldData, newData interface{}, changedBy *uuid.UUID) error {
	oldDataJSON, err := marshalAuditData(oldData)
	if err != nil {
		return fmt.Errorf("failed to marshal old data: %w", err)
	}

	newDataJSON, err := marshalAuditData(newData)
	if err != nil {
		return fmt.Errorf("failed to marshal new data: %w", err)
	}

	auditLog := &models.AuditLog{
		TableName: tableName,
		RecordID:  recordID,
		Action:    action,
		OldData:   oldDataJSON,
		NewData:   newDataJSON,
		ChangedBy: changedBy,
		ChangedAt: time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(auditLog).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to create audit log")
	}

	return nil
}

// record logs an audit entry without failing the caller; the change itself
// has already been committed.
func (s *AuditService) record(ctx context.Context, tableName string, recordID uuid.UUID, action models.AuditAction, oldData, newData interface{}, changedBy *uuid.UUID) {
	if err := s.LogAudit(ctx, tableName, recordID, action, oldData, newData, changedBy); err != nil {
		logrus.WithFields(logrus.Fields{
			"table":     tableName,
			"record_id": recordID,
			"action":    action,
		}).WithError(err).Warn("audit log not written")
	}
}

func marshalAuditData(data interface{}) (datatypes.JSON, error) {
	if data == nil {
		return nil, nil
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(jsonBytes), nil
}

// GetAuditLogs retrieves audit logs with pagination, optionally for one table
func (s *AuditService) GetAuditLogs(ctx context.Context, pagination *models.PaginationRequest, tableName string) (*models.Pagination[[]models.AuditLog], error) {
	query := s.db.WithContext(ctx)
	if tableName != "" {
		query = query.Where("table_name = ?", tableName)
	}

	return paginate[models.AuditLog](query, pagination, "changed_at DESC", "audit logs")
}

// GetRecordHistory retrieves every audit entry for one record, newest first
func (s *AuditService) GetRecordHistory(ctx context.Context, tableName, recordID string) ([]models.AuditLog, error) {
	parsedID, err := uuid.Parse(recordID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid record ID format")
	}

	var history []models.AuditLog
	if err := s.db.WithContext(ctx).
		Where("table_name = ? AND record_id = ?", tableName, parsedID).
		Order("changed_at DESC").
		Find(&history).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get audit history")
	}

	return history, nil
}
