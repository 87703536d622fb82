package domain

import (
	"strings"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBlocked  = "blocked"
)

// DefaultRoleName is assigned to every newly registered user.
const DefaultRoleName = "citizen"

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email" validate:"required,email"`
	Username     string `json:"username" validate:"required,alphanum,min=4,max=20"`
	PasswordHash string `json:"-"`

	// Status is stored as free text; legacy rows may carry stray casing or
	// whitespace, so always compare through NormalizedStatus.
	Status string `json:"status"`

	Roles []Role `json:"roles"`

	// RefreshTokenHash holds the SHA-256 digest of the single outstanding
	// refresh token, never the raw value. Nil means no live session
	// credential. Writing a new hash invalidates the previous token.
	RefreshTokenHash      *string    `json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) NormalizedStatus() string {
	return strings.ToLower(strings.TrimSpace(u.Status))
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
