package jwt

import (
	"errors"
	"regexp"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"civicauth/internal/domain"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour

	refreshTokenType = "refresh"
)

var (
	// ErrTokenExpired and ErrTokenInvalid are the two verification outcomes.
	// Callers collapse both into a generic unauthorized error so clients
	// cannot distinguish an expired token from a forged one.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessClaims is the payload of short-lived API tokens.
type AccessClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwtlib.RegisteredClaims
}

// RefreshClaims is the payload of refresh tokens. TokenType must be
// "refresh"; an access token presented to VerifyRefresh fails on it.
type RefreshClaims struct {
	TokenType string `json:"type"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies both token families. Access and refresh tokens
// use distinct secrets so one leaked key cannot mint the other family.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now   func() time.Time
	newID func() string
}

func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// WithClock overrides the time source, for tests.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// WithIDGenerator overrides the jti source, for tests.
func (c *Codec) WithIDGenerator(newID func() string) *Codec {
	c.newID = newID
	return c
}

func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

func (c *Codec) IssueAccess(user *domain.User, roles []string) (string, error) {
	now := c.now()
	claims := AccessClaims{
		Email: user.Email,
		Roles: roles,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        c.newID(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.accessTTL)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.accessSecret)
}

func (c *Codec) IssueRefresh(userID int64) (string, error) {
	now := c.now()
	claims := RefreshClaims{
		TokenType: refreshTokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        c.newID(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.refreshTTL)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.refreshSecret)
}

func (c *Codec) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(token, claims, c.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(token, claims, c.refreshSecret); err != nil {
		return nil, err
	}
	if claims.TokenType != refreshTokenType {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (c *Codec) verify(token string, claims jwtlib.Claims, secret []byte) error {
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	}, jwtlib.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// SubjectID parses the numeric subject claim shared by both token families.
func SubjectID(claims jwtlib.Claims) (int64, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrTokenInvalid
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

var ttlPattern = regexp.MustCompile(`^(\d+)(s|m|h|d)$`)

// ParseTTL reads durations in the "<integer><unit>" form with unit one of
// s, m, h, d. Anything else falls back to the given default instead of
// failing, so a mistyped env var cannot keep the service from starting.
func ParseTTL(value string, fallback time.Duration) time.Duration {
	m := ttlPattern.FindStringSubmatch(value)
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	switch m[2] {
	case "s":
		return time.Duration(n) * time.Second
	case "m":
		return time.Duration(n) * time.Minute
	case "h":
		return time.Duration(n) * time.Hour
	default:
		return time.Duration(n) * 24 * time.Hour
	}
}
