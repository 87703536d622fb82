package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"civicauth/internal/domain"
)

// RevokedTokenRepository persists the access-token blacklist.
type RevokedTokenRepository struct {
	db *gorm.DB
}

func NewRevokedTokenRepository(db *gorm.DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

type revokedTokenModel struct {
	JTI       string    `gorm:"column:jti;primaryKey;size:36"`
	UserID    *int64    `gorm:"column:user_id"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (revokedTokenModel) TableName() string { return "jwt_blacklist" }

// Insert is duplicate-safe: a jti that is already blacklisted leaves the
// existing row untouched and reports success, so concurrent double logout
// cannot fail.
func (r *RevokedTokenRepository) Insert(ctx context.Context, t *domain.RevokedToken) error {
	m := revokedTokenModel{
		JTI:       t.JTI,
		UserID:    t.UserID,
		ExpiresAt: t.ExpiresAt,
	}
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "jti"}},
		DoNothing: true,
	}).Create(&m).Error
}

func (r *RevokedTokenRepository) FindByJTI(ctx context.Context, jti string) (*domain.RevokedToken, error) {
	var m revokedTokenModel
	if err := conn(ctx, r.db).Where("jti = ?", jti).First(&m).Error; err != nil {
		return nil, err
	}
	return &domain.RevokedToken{
		JTI:       m.JTI,
		UserID:    m.UserID,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := conn(ctx, r.db).Where("expires_at < ?", before).Delete(&revokedTokenModel{})
	return res.RowsAffected, res.Error
}
