package domain

import "time"

// RevokedToken blacklists a single access token by its jti claim.
//
// Rows mirror the token's own expiry: once ExpiresAt has passed the token
// would be rejected by signature verification anyway, so the row is inert
// and eligible for cleanup.
type RevokedToken struct {
	JTI       string    `json:"jti"`
	UserID    *int64    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *RevokedToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
