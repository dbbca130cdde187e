package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"companychallenges/api/models"
)

const (
	issuer = "companychallenges-api"

	audienceAdmin  = "admin"
	audienceAccess = "assignment-access"

	AdminTokenLifetime = 24 * time.Hour
)

// AdminClaims identify a signed-in admin.
type AdminClaims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AccessClaims prove a successful password check for one assignment.
type AccessClaims struct {
	AssignmentID string `json:"assignment_id"`
	jwt.RegisteredClaims
}

func registered(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
	}
}

func sign(secret []byte, claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func parse(secret []byte, tokenString, audience string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience))
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return errors.New("token is not valid")
	}
	return nil
}

// GenerateAdminJWT issues the admin session token.
func GenerateAdminJWT(secret []byte, user *models.AdminUser) (string, error) {
	return sign(secret, &AdminClaims{
		UserID:           user.ID,
		Email:            user.Email,
		RegisteredClaims: registered(strconv.Itoa(user.ID), audienceAdmin, AdminTokenLifetime),
	})
}

func ValidateAdminJWT(secret []byte, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := parse(secret, tokenString, audienceAdmin, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateAccessJWT issues an access grant for assignmentID.
func GenerateAccessJWT(secret []byte, assignmentID string, ttl time.Duration) (string, error) {
	return sign(secret, &AccessClaims{
		AssignmentID:     assignmentID,
		RegisteredClaims: registered(assignmentID, audienceAccess, ttl),
	})
}

// ValidateAccessJWT checks the grant and that it was issued for assignmentID.
func ValidateAccessJWT(secret []byte, tokenString, assignmentID string) error {
	claims := &AccessClaims{}
	if err := parse(secret, tokenString, audienceAccess, claims); err != nil {
		return err
	}
	if claims.AssignmentID != assignmentID {
		return fmt.Errorf("grant issued for assignment %q", claims.AssignmentID)
	}
	return nil
}
