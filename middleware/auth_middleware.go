package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"companychallenges/api/utils"
)

const (
	AdminCookieName = "admin_token"

	ctxAdminID    = "admin_id"
	ctxAdminEmail = "admin_email"
)

// AdminRequired accepts the admin token from the admin_token cookie or an
// Authorization: Bearer header.
func AdminRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(AdminCookieName)
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
			if tokenString == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
				return
			}
		}

		claims, err := utils.ValidateAdminJWT(secret, tokenString)
		if err != nil {
			slog.Warn("admin token rejected", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set(ctxAdminID, claims.UserID)
		c.Set(ctxAdminEmail, claims.Email)
		c.Next()
	}
}

// AdminEmail returns the signed-in admin's email, if any.
func AdminEmail(c *gin.Context) string {
	return c.GetString(ctxAdminEmail)
}
