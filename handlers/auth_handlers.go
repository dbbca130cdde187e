package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"companychallenges/api/middleware"
	"companychallenges/api/models"
	"companychallenges/api/utils"
)

type AuthHandlers struct {
	Admins        AdminFinder
	Secret        []byte
	SecureCookies bool
}

func NewAuthHandlers(admins AdminFinder, secret []byte, secureCookies bool) *AuthHandlers {
	return &AuthHandlers{Admins: admins, Secret: secret, SecureCookies: secureCookies}
}

// Login checks admin credentials and sets the admin_token cookie.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.Admins.GetAdminByEmail(c.Request.Context(), email)
	if err != nil {
		slog.Warn("admin login failed", "email", email, "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(req.Password)); err != nil {
		slog.Warn("admin login failed: password mismatch", "email", email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := utils.GenerateAdminJWT(h.Secret, user)
	if err != nil {
		slog.Error("failed to generate admin token", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AdminCookieName,
		tokenString,
		int(utils.AdminTokenLifetime.Seconds()),
		"/",
		"",
		h.SecureCookies,
		true,
	)

	slog.Info("admin logged in", "user_id", user.ID, "email", user.Email)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"email":   user.Email,
		"token":   tokenString,
	})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, "", -1, "/", "", h.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
