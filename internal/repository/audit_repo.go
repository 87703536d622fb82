package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"civicauth/internal/domain"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

type auditEntryModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;index"`
	Action    string    `gorm:"column:action"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (auditEntryModel) TableName() string { return "audit_log" }

func (r *AuditRepository) Record(ctx context.Context, e *domain.AuditEntry) error {
	m := auditEntryModel{UserID: e.UserID, Action: e.Action}
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		return err
	}
	e.ID = m.ID
	e.CreatedAt = m.CreatedAt
	return nil
}
