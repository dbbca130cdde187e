package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/lib/pq"

	"companychallenges/api/database"
	"companychallenges/api/models"
)

// ContentStore persists clients, challenges, assignments and their joins.
type ContentStore struct {
	db *sql.DB
}

func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

// mapWriteError translates constraint violations into store sentinels.
func mapWriteError(op string, err error) error {
	switch {
	case database.IsPGCode(err, database.CodeUniqueViolation):
		return fmt.Errorf("%s: %w", op, ErrSlugTaken)
	case database.IsPGCode(err, database.CodeForeignKeyViolation), database.IsPGCode(err, database.CodeInvalidText):
		return fmt.Errorf("%s: %w", op, ErrInvalidReference)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func notFound(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var tableName = regexp.MustCompile(`^[a-z_]+$`)

// ProbeTable checks that table exists and is readable.
func (s *ContentStore) ProbeTable(ctx context.Context, table string) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" LIMIT 1").Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("probe %s: %w", table, err)
	}
	return nil
}

func (s *ContentStore) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (s *ContentStore) CountClients(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM clients`)
}

func (s *ContentStore) CountActiveChallenges(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM challenges WHERE is_archived = FALSE`)
}

func (s *ContentStore) CountAssignments(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM assignments`)
}

// LookupNames resolves the given ids into a NameIndex. Unknown ids are absent.
func (s *ContentStore) LookupNames(ctx context.Context, challengeIDs, assignmentIDs, clientIDs []string) (models.NameIndex, error) {
	idx := models.NameIndex{
		Challenges:  map[string]models.Challenge{},
		Assignments: map[string]models.Assignment{},
		Clients:     map[string]models.Client{},
	}
	challengeIDs, assignmentIDs, clientIDs = validIDs(challengeIDs), validIDs(assignmentIDs), validIDs(clientIDs)

	if len(challengeIDs) > 0 {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+challengeColumns+` FROM challenges WHERE id = ANY($1::uuid[])`, pq.Array(challengeIDs))
		if err != nil {
			return idx, fmt.Errorf("lookup challenge names: %w", err)
		}
		for rows.Next() {
			c, err := scanChallenge(rows)
			if err != nil {
				rows.Close()
				return idx, err
			}
			idx.Challenges[c.ID] = *c
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return idx, fmt.Errorf("lookup challenge names: %w", err)
		}
	}

	if len(assignmentIDs) > 0 {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+assignmentColumns+` FROM assignments WHERE id = ANY($1::uuid[])`, pq.Array(assignmentIDs))
		if err != nil {
			return idx, fmt.Errorf("lookup assignment names: %w", err)
		}
		for rows.Next() {
			a, err := scanAssignment(rows)
			if err != nil {
				rows.Close()
				return idx, err
			}
			idx.Assignments[a.ID] = *a
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return idx, fmt.Errorf("lookup assignment names: %w", err)
		}
	}

	if len(clientIDs) > 0 {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+clientColumns+` FROM clients WHERE id = ANY($1::uuid[])`, pq.Array(clientIDs))
		if err != nil {
			return idx, fmt.Errorf("lookup client names: %w", err)
		}
		for rows.Next() {
			c, err := scanClient(rows)
			if err != nil {
				rows.Close()
				return idx, err
			}
			idx.Clients[c.ID] = *c
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return idx, fmt.Errorf("lookup client names: %w", err)
		}
	}

	return idx, nil
}
