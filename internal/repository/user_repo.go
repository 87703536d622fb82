package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"civicauth/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID                    int64       `gorm:"column:id;primaryKey"`
	Email                 string      `gorm:"column:email;uniqueIndex"`
	Username              string      `gorm:"column:username;uniqueIndex"`
	PasswordHash          string      `gorm:"column:password_hash"`
	Status                string      `gorm:"column:status"`
	RefreshTokenHash      *string     `gorm:"column:refresh_token_hash;size:64"`
	RefreshTokenExpiresAt *time.Time  `gorm:"column:refresh_token_expires_at"`
	Roles                 []roleModel `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID"`
	CreatedAt             time.Time   `gorm:"column:created_at"`
	UpdatedAt             time.Time   `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type roleModel struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex"`
}

func (roleModel) TableName() string { return "roles" }

func toDomainUser(m userModel) *domain.User {
	roles := make([]domain.Role, 0, len(m.Roles))
	for _, r := range m.Roles {
		roles = append(roles, domain.Role{ID: r.ID, Name: r.Name})
	}
	return &domain.User{
		ID:                    m.ID,
		Email:                 m.Email,
		Username:              m.Username,
		PasswordHash:          m.PasswordHash,
		Status:                m.Status,
		Roles:                 roles,
		RefreshTokenHash:      m.RefreshTokenHash,
		RefreshTokenExpiresAt: m.RefreshTokenExpiresAt,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	if err := conn(ctx, r.db).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m userModel
	if err := conn(ctx, r.db).Where("username = ?", username).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEmailWithRoles(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	if err := conn(ctx, r.db).Preload("Roles").Where("email = ?", email).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByIDWithRoles(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := conn(ctx, r.db).Preload("Roles").First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

// Create inserts the user and attaches roleName, creating the role row on
// first use. Unique violations come back as gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, u *domain.User, roleName string) error {
	db := conn(ctx, r.db)

	var role roleModel
	if err := db.Where("name = ?", roleName).FirstOrCreate(&role, roleModel{Name: roleName}).Error; err != nil {
		return err
	}

	m := userModel{
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Status:       u.Status,
		Roles:        []roleModel{role},
	}
	if err := translateErr(db.Create(&m).Error); err != nil {
		return err
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) UpdateRefreshCredential(ctx context.Context, userID int64, hash string, expiresAt time.Time) error {
	return conn(ctx, r.db).Model(&userModel{}).Where("id = ?", userID).Updates(map[string]any{
		"refresh_token_hash":       hash,
		"refresh_token_expires_at": expiresAt,
	}).Error
}

// ClearRefreshCredential nulls the stored digest. A missing user row is not
// an error; logout treats it as already cleared.
func (r *UserRepository) ClearRefreshCredential(ctx context.Context, userID int64) error {
	return conn(ctx, r.db).Model(&userModel{}).Where("id = ?", userID).Updates(map[string]any{
		"refresh_token_hash":       nil,
		"refresh_token_expires_at": nil,
	}).Error
}
