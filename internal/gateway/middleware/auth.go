package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/database/models"
	"storefront-backend/internal/gateway/respond"
	sysutils "storefront-backend/internal/utils"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// RequireRole accepts a bearer token issued by tokens whose role is one of roles.
func RequireRole(tokens *sysutils.TokenIssuer, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respond.Fail(c, apperr.Unauthorized("Authorization header required"))
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			respond.Fail(c, apperr.Unauthorized("Bearer token required"))
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			respond.Fail(c, apperr.Unauthorized("Invalid or expired token"))
			return
		}

		if len(roles) > 0 && !slices.Contains(roles, models.Role(claims.Role)) {
			respond.Fail(c, apperr.Forbidden("Access denied"))
			return
		}

		c.Set(ContextUserID, claims.UserId)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// UserID returns the authenticated user, or 0 on public routes.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}
