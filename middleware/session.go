package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"companychallenges/api/utils"
)

const ctxSessionID = "session_id"

// AnalyticsSession resolves the anonymous session id for the request and
// sets the cookie when a new one was minted.
func AnalyticsSession(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, cookie := utils.ResolveSession(c.Request, secureCookies)
		if cookie != nil {
			http.SetCookie(c.Writer, cookie)
		}
		c.Set(ctxSessionID, sessionID)
		c.Next()
	}
}

// SessionID returns the id stored by AnalyticsSession.
func SessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}
