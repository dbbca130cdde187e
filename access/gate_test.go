package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companychallenges/api/models"
)

var testSecret = []byte("test-secret-key-32-characters!!!")

func TestPasswordsAreCaseInsensitive(t *testing.T) {
	hash, err := HashPassword("  Open Sesame ")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "open sesame"))
	assert.True(t, CheckPassword(hash, "OPEN SESAME"))
	assert.True(t, CheckPassword(hash, "Open Sesame  "))
	assert.False(t, CheckPassword(hash, "open sesame!"))
	assert.False(t, CheckPassword("", "open sesame"))
}

func TestHashPassword_RejectsBlank(t *testing.T) {
	_, err := HashPassword("   ")
	assert.Error(t, err)
}

func protectedAssignment(t *testing.T) *models.Assignment {
	t.Helper()
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	return &models.Assignment{ID: "as-1", PasswordHash: &hash}
}

func TestGate_UnprotectedAssignmentIsOpen(t *testing.T) {
	gate := NewGate(testSecret, time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/a/intro", nil)

	assert.True(t, gate.HasAccess(req, &models.Assignment{ID: "as-1"}))
}

func TestGate_GrantUnlocksOnlyItsAssignment(t *testing.T) {
	gate := NewGate(testSecret, time.Hour, true)
	a := protectedAssignment(t)

	req := httptest.NewRequest(http.MethodGet, "/a/secret", nil)
	assert.False(t, gate.HasAccess(req, a))

	cookie, err := gate.IssueGrant(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "assignment_access_as-1", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, 3600, cookie.MaxAge)

	req.AddCookie(cookie)
	assert.True(t, gate.HasAccess(req, a))

	other := &models.Assignment{ID: "as-2", PasswordHash: a.PasswordHash}
	forged := httptest.NewRequest(http.MethodGet, "/a/other", nil)
	forged.AddCookie(&http.Cookie{Name: GrantCookieName("as-2"), Value: cookie.Value})
	assert.False(t, gate.HasAccess(forged, other))
}

func TestGate_RejectsGrantSignedWithOtherSecret(t *testing.T) {
	a := protectedAssignment(t)
	cookie, err := NewGate([]byte("another-secret-key-32-characters"), time.Hour, false).IssueGrant(a.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/a/secret", nil)
	req.AddCookie(cookie)
	assert.False(t, NewGate(testSecret, time.Hour, false).HasAccess(req, a))
}

func TestNoLimitAllowsEverything(t *testing.T) {
	res, err := NoLimit{}.Allow(context.Background(), "as-1", "s-1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiterKey(t *testing.T) {
	assert.Equal(t, "unlock:as-1:s-1", limiterKey("as-1", "s-1"))
}
