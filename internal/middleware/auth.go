package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"civicauth/internal/modules/auth"
	"civicauth/internal/pkg/jwt"
	"civicauth/internal/pkg/response"
)

// BlacklistChecker is satisfied by the auth service.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// TokenVerifier is satisfied by the jwt codec.
type TokenVerifier interface {
	VerifyAccess(token string) (*jwt.AccessClaims, error)
}

// BearerAuth guards protected routes. Signature and expiry are checked
// first, then the token's jti is looked up in the blacklist: a revoked
// token is rejected even though it is otherwise valid. Subject, email and
// roles land in the gin context for downstream handlers.
func BearerAuth(codec TokenVerifier, blacklist BlacklistChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "AUTH_INVALID_TOKEN", "Missing bearer token")
			c.Abort()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, err := codec.VerifyAccess(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "AUTH_INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		userID, err := jwt.SubjectID(claims)
		if err != nil || claims.ID == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_INVALID_TOKEN", "Invalid token")
			c.Abort()
			return
		}

		revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, auth.ErrInternal.Code, auth.ErrInternal.Message)
			c.Abort()
			return
		}
		if revoked {
			response.Error(c, http.StatusUnauthorized, auth.ErrTokenRevoked.Code, auth.ErrTokenRevoked.Message)
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("email", claims.Email)
		c.Set("roles", claims.Roles)
		c.Next()
	}
}
