package store

import (
	"context"
	"fmt"

	"companychallenges/api/models"
)

const clientColumns = `id, name, logo_url, created_at, updated_at`

func scanClient(row rowScanner) (*models.Client, error) {
	c := &models.Client{}
	if err := row.Scan(&c.ID, &c.Name, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// ListClients returns clients newest first. limit <= 0 means no limit.
func (s *ContentStore) ListClients(ctx context.Context, limit int) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (s *ContentStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	if !validID(id) {
		return nil, fmt.Errorf("get client: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		return nil, notFound("get client", err)
	}
	return c, nil
}

func (s *ContentStore) CreateClient(ctx context.Context, req models.ClientRequest) (*models.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO clients (name, logo_url)
		VALUES ($1, $2)
		RETURNING `+clientColumns,
		req.Name, req.LogoURL,
	)
	c, err := scanClient(row)
	if err != nil {
		return nil, mapWriteError("create client", err)
	}
	return c, nil
}

func (s *ContentStore) UpdateClient(ctx context.Context, id string, req models.ClientRequest) (*models.Client, error) {
	if !validID(id) {
		return nil, fmt.Errorf("update client: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE clients SET name = $2, logo_url = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+clientColumns,
		id, req.Name, req.LogoURL,
	)
	c, err := scanClient(row)
	if err != nil {
		return nil, notFound("update client", err)
	}
	return c, nil
}

// DeleteClient removes the client and, by cascade, its challenges.
func (s *ContentStore) DeleteClient(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("delete client: %w", ErrNotFound)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return expectOne("delete client", res)
}
