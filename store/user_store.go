package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"companychallenges/api/models"
)

type AdminStore struct {
	db *sql.DB
}

func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

// EnsureAdmin creates the admin account or resets its password.
func (s *AdminStore) EnsureAdmin(ctx context.Context, email string, hashedPassword []byte) (*models.AdminUser, error) {
	user := &models.AdminUser{}
	query := `
		INSERT INTO admin_users (email, hashed_password)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE
		SET hashed_password = EXCLUDED.hashed_password, updated_at = NOW()
		RETURNING id, email, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, hashedPassword).Scan(
		&user.ID,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure admin user: %w", err)
	}

	slog.Info("admin user ready", "id", user.ID, "email", user.Email)
	return user, nil
}

func (s *AdminStore) GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	user := &models.AdminUser{}
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM admin_users
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin %q: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}

	return user, nil
}
