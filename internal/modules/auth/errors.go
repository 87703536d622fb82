package auth

// ErrorKind is the exhaustive discriminant callers switch on. The Code on
// each Error is the stable client contract; the HTTP status is derived from
// the kind by the handler.
type ErrorKind int

const (
	KindConflict ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindInternal
)

type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrEmailTaken         = &Error{Kind: KindConflict, Code: "AUTH_EMAIL_TAKEN", Message: "email is already registered"}
	ErrUsernameTaken      = &Error{Kind: KindConflict, Code: "AUTH_USERNAME_TAKEN", Message: "username is not available"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Code: "AUTH_INVALID_CREDENTIALS", Message: "invalid credentials"}
	ErrRefreshInvalid     = &Error{Kind: KindUnauthorized, Code: "AUTH_REFRESH_INVALID", Message: "session expired, sign in again"}
	ErrTokenRevoked       = &Error{Kind: KindUnauthorized, Code: "AUTH_TOKEN_REVOKED", Message: "session closed, sign in again"}
	ErrAccountBlocked     = &Error{Kind: KindForbidden, Code: "AUTH_ACCOUNT_BLOCKED", Message: "account is blocked"}
	ErrAccountInactive    = &Error{Kind: KindForbidden, Code: "AUTH_ACCOUNT_INACTIVE", Message: "account is not active"}
	ErrInternal           = &Error{Kind: KindInternal, Code: "AUTH_INTERNAL", Message: "internal error"}
)

// declared reports whether err is one of the package sentinels. Declared
// business errors cross transaction boundaries unchanged; anything else
// collapses to ErrInternal before reaching the caller.
func declared(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
