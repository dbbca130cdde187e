package utils

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookieName = "analytics_session"
	SessionLifetime   = 24 * time.Hour
)

// ResolveSession returns the anonymous analytics session id carried by r.
// When the request has none, a new id is minted and the cookie to set is
// returned alongside it; otherwise the returned cookie is nil.
func ResolveSession(r *http.Request, secure bool) (string, *http.Cookie) {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	sessionID := uuid.NewString()
	return sessionID, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(SessionLifetime / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
