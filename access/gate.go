// Package access guards password-protected assignments.
package access

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"companychallenges/api/models"
	"companychallenges/api/utils"
)

const grantCookiePrefix = "assignment_access_"

// NormalizePassword makes assignment passwords case-insensitive.
func NormalizePassword(plain string) string {
	return strings.ToLower(strings.TrimSpace(plain))
}

// HashPassword hashes an assignment password for storage.
func HashPassword(plain string) (string, error) {
	normalized := NormalizePassword(plain)
	if normalized == "" {
		return "", fmt.Errorf("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(normalized), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether guess matches the stored hash.
func CheckPassword(hash, guess string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(NormalizePassword(guess))) == nil
}

func GrantCookieName(assignmentID string) string {
	return grantCookiePrefix + assignmentID
}

// Gate issues and verifies per-assignment access grants.
type Gate struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewGate(secret []byte, ttl time.Duration, secureCookies bool) *Gate {
	return &Gate{secret: secret, ttl: ttl, secure: secureCookies}
}

// IssueGrant returns the cookie that unlocks assignmentID for the visitor.
func (g *Gate) IssueGrant(assignmentID string) (*http.Cookie, error) {
	token, err := utils.GenerateAccessJWT(g.secret, assignmentID, g.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue access grant: %w", err)
	}
	return &http.Cookie{
		Name:     GrantCookieName(assignmentID),
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.ttl / time.Second),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// HasAccess is true for unprotected assignments and for requests carrying a
// valid grant for this assignment.
func (g *Gate) HasAccess(r *http.Request, a *models.Assignment) bool {
	if !a.RequiresPassword() {
		return true
	}
	c, err := r.Cookie(GrantCookieName(a.ID))
	if err != nil || c.Value == "" {
		return false
	}
	return utils.ValidateAccessJWT(g.secret, c.Value, a.ID) == nil
}
