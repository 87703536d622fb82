package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"civicauth/internal/domain"
	"civicauth/internal/pkg/jwt"
)

// bcrypt cost is pinned: raising it invalidates no stored hash but slows
// every login.
const bcryptCost = 10

// Service is the session engine: registration, credential verification and
// the token lifecycle (issue, rotate, revoke, blacklist).
//
// It never touches a database driver; all persistence goes through the
// repository interfaces, and multi-write steps run inside tx.Transaction so
// they share one connection.
type Service struct {
	users  UserRepositoryInterface
	tokens RevokedTokenRepositoryInterface
	audit  AuditRepositoryInterface
	tx     TxRunner
	codec  TokenCodec

	now func() time.Time
}

func NewService(
	users UserRepositoryInterface,
	tokens RevokedTokenRepositoryInterface,
	audit AuditRepositoryInterface,
	tx TxRunner,
	codec TokenCodec,
) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		audit:  audit,
		tx:     tx,
		codec:  codec,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates the user and its audit entry in one transaction and
// returns the new user id. Uniqueness is checked up front, but a concurrent
// registration can still trip the unique index at write time; that race is
// reported as the matching conflict error, never as an internal one.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (int64, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return 0, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("auth: register email lookup failed: %v", err)
		return 0, ErrInternal
	}
	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return 0, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("auth: register username lookup failed: %v", err)
		return 0, ErrInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return 0, ErrInternal
	}

	user := &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Status:       domain.StatusActive,
	}

	txErr := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user, domain.DefaultRoleName); err != nil {
			return err
		}
		return s.audit.Record(ctx, &domain.AuditEntry{UserID: user.ID, Action: domain.AuditActionUserRegistered})
	})
	if txErr != nil {
		if e, ok := declared(txErr); ok {
			return 0, e
		}
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			// Lost a race against a concurrent registration; figure out
			// which unique index fired.
			if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
				return 0, ErrEmailTaken
			}
			return 0, ErrUsernameTaken
		}
		log.Printf("auth: register transaction failed: %v", txErr)
		return 0, ErrInternal
	}

	return user.ID, nil
}

// Login verifies credentials, gates on account status and mints a fresh
// token pair. The refresh digest and audit entry are persisted best-effort:
// the caller already holds valid tokens, so a failed bookkeeping write is
// logged and the login still succeeds.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmailWithRoles(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same error as a wrong password: no user-existence oracle.
			return nil, ErrInvalidCredentials
		}
		log.Printf("auth: login lookup failed: %v", err)
		return nil, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := statusGate(user); err != nil {
		return nil, err
	}

	roles := user.RoleNames()
	accessToken, err := s.codec.IssueAccess(user, roles)
	if err != nil {
		log.Printf("auth: issue access token failed: %v", err)
		return nil, ErrInternal
	}
	refreshToken, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		log.Printf("auth: issue refresh token failed: %v", err)
		return nil, ErrInternal
	}

	refreshHash := digest(refreshToken)
	expiresAt := s.now().Add(s.codec.RefreshTTL())

	if txErr := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.users.UpdateRefreshCredential(ctx, user.ID, refreshHash, expiresAt); err != nil {
			return err
		}
		return s.audit.Record(ctx, &domain.AuditEntry{UserID: user.ID, Action: domain.AuditActionLoginSucceeded})
	}); txErr != nil {
		log.Printf("auth: login bookkeeping failed for user %d: %v", user.ID, txErr)
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: UserPublic{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
			Roles:    roles,
		},
	}, nil
}

// Refresh rotates the token pair. The presented token must verify against
// the refresh key AND match the stored digest with an unexpired server-side
// expiry; a token superseded by an earlier rotation or cleared by logout
// fails the digest check even though its signature is still good. The new
// digest is persisted before responding: the old refresh token is unusable
// the moment this returns, whether or not the client receives the reply.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrRefreshInvalid
	}
	userID, err := jwt.SubjectID(claims)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	user, err := s.users.GetByIDWithRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshInvalid
		}
		log.Printf("auth: refresh lookup failed: %v", err)
		return nil, ErrInternal
	}

	if err := statusGate(user); err != nil {
		return nil, err
	}

	now := s.now()
	if user.RefreshTokenHash == nil ||
		*user.RefreshTokenHash != digest(refreshToken) ||
		user.RefreshTokenExpiresAt == nil ||
		!user.RefreshTokenExpiresAt.After(now) {
		return nil, ErrRefreshInvalid
	}

	roles := user.RoleNames()
	newAccess, err := s.codec.IssueAccess(user, roles)
	if err != nil {
		log.Printf("auth: issue access token failed: %v", err)
		return nil, ErrInternal
	}
	newRefresh, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		log.Printf("auth: issue refresh token failed: %v", err)
		return nil, ErrInternal
	}

	// Not best-effort: losing this write would leave the presented token
	// valid and reopen the replay window.
	if err := s.users.UpdateRefreshCredential(ctx, user.ID, digest(newRefresh), now.Add(s.codec.RefreshTTL())); err != nil {
		log.Printf("auth: refresh rotation write failed for user %d: %v", user.ID, err)
		return nil, ErrInternal
	}

	return &RefreshResult{AccessToken: newAccess, RefreshToken: newRefresh}, nil
}

// Logout revokes the session. Once the refresh token's signature checks out
// the operation always reports success: clearing an already-cleared
// credential is a no-op, a duplicate blacklist row is swallowed by the
// store, and any other transaction failure is logged without surfacing.
// The optional access token is blacklisted only when it still verifies and
// carries a jti; an unverifiable token needs no blacklist entry.
func (s *Service) Logout(ctx context.Context, refreshToken, accessToken string) (string, error) {
	const message = "session closed"

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return "", ErrRefreshInvalid
	}
	userID, err := jwt.SubjectID(claims)
	if err != nil {
		return "", ErrRefreshInvalid
	}

	if txErr := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.users.ClearRefreshCredential(ctx, userID); err != nil {
			return err
		}
		if accessToken == "" {
			return nil
		}
		access, err := s.codec.VerifyAccess(accessToken)
		if err != nil || access.ID == "" || access.ExpiresAt == nil {
			return nil
		}
		revoked := &domain.RevokedToken{
			JTI:       access.ID,
			ExpiresAt: access.ExpiresAt.Time,
		}
		if sub, err := jwt.SubjectID(access); err == nil {
			revoked.UserID = &sub
		}
		return s.tokens.Insert(ctx, revoked)
	}); txErr != nil {
		log.Printf("auth: logout transaction failed for user %d: %v", userID, txErr)
	}

	return message, nil
}

// IsBlacklisted reports whether the jti is revoked and still inside its
// original token lifetime. Expired rows count as not blacklisted but are
// left in place; the sweeper prunes them.
func (s *Service) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	record, err := s.tokens.FindByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return !record.IsExpired(s.now()), nil
}

// statusGate rejects non-active accounts. Status text is normalized first;
// unknown values fail closed as inactive.
func statusGate(user *domain.User) error {
	switch user.NormalizedStatus() {
	case domain.StatusActive:
		return nil
	case domain.StatusBlocked:
		return ErrAccountBlocked
	default:
		return ErrAccountInactive
	}
}

// digest is the stored fingerprint of a refresh token. The raw value never
// reaches the database.
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
