package auth

import (
	"context"
	"time"

	"civicauth/internal/domain"
	"civicauth/internal/pkg/jwt"
)

// UserRepositoryInterface covers only the methods the session engine uses.
// Lookups return gorm.ErrRecordNotFound semantics: a missing row is an
// error, not a nil user.
type UserRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmailWithRoles(ctx context.Context, email string) (*domain.User, error)
	GetByIDWithRoles(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, u *domain.User, roleName string) error
	UpdateRefreshCredential(ctx context.Context, userID int64, hash string, expiresAt time.Time) error
	ClearRefreshCredential(ctx context.Context, userID int64) error
}

// RevokedTokenRepositoryInterface is the access-token blacklist storage.
// Insert must swallow duplicate jti rows.
type RevokedTokenRepositoryInterface interface {
	Insert(ctx context.Context, t *domain.RevokedToken) error
	FindByJTI(ctx context.Context, jti string) (*domain.RevokedToken, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type AuditRepositoryInterface interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
}

// TxRunner executes fn atomically. Repository calls made with the callback
// context share one transaction connection.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenCodec is implemented by jwt.Codec.
type TokenCodec interface {
	IssueAccess(user *domain.User, roles []string) (string, error)
	IssueRefresh(userID int64) (string, error)
	VerifyAccess(token string) (*jwt.AccessClaims, error)
	VerifyRefresh(token string) (*jwt.RefreshClaims, error)
	RefreshTTL() time.Duration
}
