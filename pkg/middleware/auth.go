package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crypto_invest_back/models"
)

const (
	CtxAccountID = "accountID"
	CtxRole      = "role"
)

// Identity trusts the gateway-resolved identity headers completely; the core
// never re-verifies credentials.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetHeader("X-Account-ID")
		if accountID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account id is required in 'X-Account-ID' header"})
			return
		}
		role := c.GetHeader("X-Account-Role")
		if role == "" {
			role = models.RoleUser
		}
		c.Set(CtxAccountID, accountID)
		c.Set(CtxRole, role)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role != models.RoleAdmin && role != models.RoleSuperAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}
