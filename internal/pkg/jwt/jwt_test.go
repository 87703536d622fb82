package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"civicauth/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:       7,
		Email:    "user@example.com",
		Username: "someuser",
		Status:   domain.StatusActive,
	}
}

func TestCodec_AccessRoundTrip(t *testing.T) {
	codec := NewCodec("access-key", "refresh-key", 15*time.Minute, 7*24*time.Hour)

	token, err := codec.IssueAccess(testUser(), []string{"citizen", "moderator"})
	assert.NoError(t, err)

	claims, err := codec.VerifyAccess(token)
	assert.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, []string{"citizen", "moderator"}, claims.Roles)
	assert.NotEmpty(t, claims.ID)

	id, err := SubjectID(claims)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestCodec_RefreshRoundTrip(t *testing.T) {
	codec := NewCodec("access-key", "refresh-key", 15*time.Minute, 7*24*time.Hour)

	token, err := codec.IssueRefresh(7)
	assert.NoError(t, err)

	claims, err := codec.VerifyRefresh(token)
	assert.NoError(t, err)

	id, err := SubjectID(claims)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestCodec_WrongSecretRejected(t *testing.T) {
	signer := NewCodec("access-key", "refresh-key", 15*time.Minute, 7*24*time.Hour)
	verifier := NewCodec("other-access-key", "other-refresh-key", 15*time.Minute, 7*24*time.Hour)

	access, _ := signer.IssueAccess(testUser(), nil)
	refresh, _ := signer.IssueRefresh(7)

	_, err := verifier.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = verifier.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodec_KeySeparation(t *testing.T) {
	// A refresh token must not pass access verification and vice versa,
	// even when someone misconfigures both families onto one secret.
	codec := NewCodec("shared-key", "shared-key", 15*time.Minute, 7*24*time.Hour)

	access, _ := codec.IssueAccess(testUser(), nil)

	// The access token's signature checks out against the shared secret,
	// so the type claim is the last line of defense.
	_, err := codec.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodec_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	signer := NewCodec("access-key", "refresh-key", 15*time.Minute, 30*time.Minute).
		WithClock(func() time.Time { return past })

	access, _ := signer.IssueAccess(testUser(), nil)
	refresh, _ := signer.IssueRefresh(7)

	verifier := NewCodec("access-key", "refresh-key", 15*time.Minute, 30*time.Minute)

	_, err := verifier.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = verifier.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodec_GarbageToken(t *testing.T) {
	codec := NewCodec("access-key", "refresh-key", 15*time.Minute, 7*24*time.Hour)

	_, err := codec.VerifyAccess("definitely.not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = codec.VerifyRefresh("")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseTTL(t *testing.T) {
	fallback := 15 * time.Minute

	cases := []struct {
		value string
		want  time.Duration
	}{
		{"30s", 30 * time.Second},
		{"15m", 15 * time.Minute},
		{"12h", 12 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"", fallback},
		{"7w", fallback},
		{"d7", fallback},
		{"-5m", fallback},
		{"1.5h", fallback},
		{"15 m", fallback},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseTTL(tc.value, fallback), "value %q", tc.value)
	}
}
