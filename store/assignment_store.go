package store

import (
	"context"
	"fmt"

	"companychallenges/api/models"
)

const assignmentColumns = `id, slug, internal_title, public_title, subtitle, instructions, instructions_html,
	content, content_html, media_url, visual_url, password_hash, created_at, updated_at`

func scanAssignment(row rowScanner, extra ...any) (*models.Assignment, error) {
	a := &models.Assignment{}
	dest := []any{
		&a.ID,
		&a.Slug,
		&a.InternalTitle,
		&a.PublicTitle,
		&a.Subtitle,
		&a.Instructions,
		&a.InstructionsHTML,
		&a.Content,
		&a.ContentHTML,
		&a.MediaURL,
		&a.VisualURL,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAssignments returns assignments newest first. limit <= 0 means no limit.
func (s *ContentStore) ListAssignments(ctx context.Context, limit int) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

func (s *ContentStore) GetAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	if !validID(id) {
		return nil, fmt.Errorf("get assignment: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
	a, err := scanAssignment(row)
	if err != nil {
		return nil, notFound("get assignment", err)
	}
	return a, nil
}

func (s *ContentStore) GetAssignmentBySlug(ctx context.Context, slug string) (*models.Assignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE slug = $1`, slug)
	a, err := scanAssignment(row)
	if err != nil {
		return nil, notFound("get assignment by slug", err)
	}
	return a, nil
}

// CreateAssignment stores a new assignment. passwordHash may be nil.
func (s *ContentStore) CreateAssignment(ctx context.Context, slug string, req models.AssignmentRequest, passwordHash *string) (*models.Assignment, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO assignments (
			slug, internal_title, public_title, subtitle, instructions, instructions_html,
			content, content_html, media_url, visual_url, password_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+assignmentColumns,
		slug,
		req.InternalTitle,
		req.PublicTitle,
		req.Subtitle,
		req.Instructions,
		req.InstructionsHTML,
		req.Content,
		req.ContentHTML,
		req.MediaURL,
		req.VisualURL,
		passwordHash,
	)
	a, err := scanAssignment(row)
	if err != nil {
		return nil, mapWriteError("create assignment", err)
	}
	return a, nil
}

// UpdateAssignment rewrites the assignment. A nil passwordHash keeps the
// stored one unless clearPassword is set.
func (s *ContentStore) UpdateAssignment(ctx context.Context, id, slug string, req models.AssignmentRequest, passwordHash *string, clearPassword bool) (*models.Assignment, error) {
	if !validID(id) {
		return nil, fmt.Errorf("update assignment: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE assignments SET
			slug = $2,
			internal_title = $3,
			public_title = $4,
			subtitle = $5,
			instructions = $6,
			instructions_html = $7,
			content = $8,
			content_html = $9,
			media_url = $10,
			visual_url = $11,
			password_hash = CASE WHEN $13 THEN NULL ELSE COALESCE($12, password_hash) END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+assignmentColumns,
		id,
		slug,
		req.InternalTitle,
		req.PublicTitle,
		req.Subtitle,
		req.Instructions,
		req.InstructionsHTML,
		req.Content,
		req.ContentHTML,
		req.MediaURL,
		req.VisualURL,
		passwordHash,
		clearPassword,
	)
	a, err := scanAssignment(row)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("update assignment", err)
		}
		return nil, mapWriteError("update assignment", err)
	}
	return a, nil
}

func (s *ContentStore) DeleteAssignment(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("delete assignment: %w", ErrNotFound)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return expectOne("delete assignment", res)
}
