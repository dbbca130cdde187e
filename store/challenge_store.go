package store

import (
	"context"
	"fmt"
	"strings"

	"companychallenges/api/models"
)

const challengeColumns = `id, client_id, slug, internal_name, public_title, show_public_title, description,
	brand_color, support_info, contact_info, password_instructions, is_archived, created_at, updated_at`

// ChallengeFilter narrows ListChallenges. Zero value lists active challenges.
type ChallengeFilter struct {
	ClientID        string
	IncludeArchived bool
	Limit           int
}

func scanChallenge(row rowScanner, extra ...any) (*models.Challenge, error) {
	c := &models.Challenge{}
	dest := []any{
		&c.ID,
		&c.ClientID,
		&c.Slug,
		&c.InternalName,
		&c.PublicTitle,
		&c.ShowPublicTitle,
		&c.Description,
		&c.BrandColor,
		&c.SupportInfo,
		&c.ContactInfo,
		&c.PasswordInstructions,
		&c.IsArchived,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return c, nil
}

// scanChallengeWithClient scans challenge columns followed by client columns.
func scanChallengeWithClient(row rowScanner) (*models.Challenge, error) {
	cl := &models.Client{}
	c, err := scanChallenge(row, &cl.ID, &cl.Name, &cl.LogoURL, &cl.CreatedAt, &cl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Client = cl
	return c, nil
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

var challengeWithClientSelect = `SELECT ` + prefixed("ch", challengeColumns) + `, ` + prefixed("cl", clientColumns) + `
	FROM challenges ch
	JOIN clients cl ON cl.id = ch.client_id`

// ListChallenges returns challenges with their client, newest first.
func (s *ContentStore) ListChallenges(ctx context.Context, f ChallengeFilter) ([]models.Challenge, error) {
	var (
		conds []string
		args  []any
	)
	if !f.IncludeArchived {
		conds = append(conds, "ch.is_archived = FALSE")
	}
	if f.ClientID != "" {
		if !validID(f.ClientID) {
			return []models.Challenge{}, nil
		}
		args = append(args, f.ClientID)
		conds = append(conds, fmt.Sprintf("ch.client_id = $%d", len(args)))
	}

	query := challengeWithClientSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ch.created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	challenges := []models.Challenge{}
	for rows.Next() {
		c, err := scanChallengeWithClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return challenges, nil
}

func (s *ContentStore) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	if !validID(id) {
		return nil, fmt.Errorf("get challenge: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx, challengeWithClientSelect+` WHERE ch.id = $1`, id)
	c, err := scanChallengeWithClient(row)
	if err != nil {
		return nil, notFound("get challenge", err)
	}
	return c, nil
}

// GetChallengeBySlug returns the challenge with its client. Archived
// challenges are still returned; callers decide visibility.
func (s *ContentStore) GetChallengeBySlug(ctx context.Context, slug string) (*models.Challenge, error) {
	row := s.db.QueryRowContext(ctx, challengeWithClientSelect+` WHERE ch.slug = $1`, slug)
	c, err := scanChallengeWithClient(row)
	if err != nil {
		return nil, notFound("get challenge by slug", err)
	}
	return c, nil
}

func (s *ContentStore) CreateChallenge(ctx context.Context, slug string, req models.ChallengeRequest) (*models.Challenge, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO challenges (
			client_id, slug, internal_name, public_title, show_public_title, description,
			brand_color, support_info, contact_info, password_instructions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+challengeColumns,
		req.ClientID,
		slug,
		req.InternalName,
		req.PublicTitle,
		req.ShowPublicTitle,
		req.Description,
		req.BrandColor,
		req.SupportInfo,
		req.ContactInfo,
		req.PasswordInstructions,
	)
	c, err := scanChallenge(row)
	if err != nil {
		return nil, mapWriteError("create challenge", err)
	}
	return c, nil
}

func (s *ContentStore) UpdateChallenge(ctx context.Context, id, slug string, req models.ChallengeRequest) (*models.Challenge, error) {
	if !validID(id) {
		return nil, fmt.Errorf("update challenge: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE challenges SET
			client_id = $2,
			slug = $3,
			internal_name = $4,
			public_title = $5,
			show_public_title = $6,
			description = $7,
			brand_color = $8,
			support_info = $9,
			contact_info = $10,
			password_instructions = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+challengeColumns,
		id,
		req.ClientID,
		slug,
		req.InternalName,
		req.PublicTitle,
		req.ShowPublicTitle,
		req.Description,
		req.BrandColor,
		req.SupportInfo,
		req.ContactInfo,
		req.PasswordInstructions,
	)
	c, err := scanChallenge(row)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("update challenge", err)
		}
		return nil, mapWriteError("update challenge", err)
	}
	return c, nil
}

// ArchiveChallenge hides the challenge from public routes and stats.
func (s *ContentStore) ArchiveChallenge(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("archive challenge: %w", ErrNotFound)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE challenges SET is_archived = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("archive challenge: %w", err)
	}
	return expectOne("archive challenge", res)
}
