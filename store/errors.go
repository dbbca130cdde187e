package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"companychallenges/api/database"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrSlugTaken = errors.New("slug already in use")
	ErrConflict  = errors.New("conflicting record")
	// ErrInvalidReference means a referenced client, challenge, assignment or sprint does not exist.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func expectOne(op string, res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUnique(err error) bool {
	return database.IsPGCode(err, database.CodeUniqueViolation)
}

// validID reports whether id is a well-formed UUID. Malformed ids match no row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			out = append(out, id)
		}
	}
	return out
}
