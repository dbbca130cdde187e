package store

import (
	"context"
	"fmt"

	"companychallenges/api/models"
)

const usageColumns = `id, challenge_id, assignment_id, sprint_id, position, release_at`

func scanUsageWithAssignment(row rowScanner) (*models.AssignmentUsage, error) {
	u := &models.AssignmentUsage{}
	a, err := scanAssignment(row, &u.ID, &u.ChallengeID, &u.AssignmentID, &u.SprintID, &u.Position, &u.ReleaseAt)
	if err != nil {
		return nil, err
	}
	u.Assignment = a
	return u, nil
}

var usageWithAssignmentSelect = `SELECT ` + prefixed("a", assignmentColumns) + `, ` + prefixed("u", usageColumns) + `
	FROM assignment_usages u
	JOIN assignments a ON a.id = u.assignment_id`

func (s *ContentStore) queryUsages(ctx context.Context, op, where string, arg any) ([]models.AssignmentUsage, error) {
	rows, err := s.db.QueryContext(ctx, usageWithAssignmentSelect+" WHERE "+where+" ORDER BY u.position ASC, a.created_at ASC", arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	usages := []models.AssignmentUsage{}
	for rows.Next() {
		u, err := scanUsageWithAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		usages = append(usages, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return usages, nil
}

// ListUsages returns the challenge's assignments in position order.
func (s *ContentStore) ListUsages(ctx context.Context, challengeID string) ([]models.AssignmentUsage, error) {
	if !validID(challengeID) {
		return []models.AssignmentUsage{}, nil
	}
	return s.queryUsages(ctx, "list usages", "u.challenge_id = $1", challengeID)
}

// ListUsagesByAssignment returns every challenge placement of an assignment.
func (s *ContentStore) ListUsagesByAssignment(ctx context.Context, assignmentID string) ([]models.AssignmentUsage, error) {
	if !validID(assignmentID) {
		return []models.AssignmentUsage{}, nil
	}
	return s.queryUsages(ctx, "list usages by assignment", "u.assignment_id = $1", assignmentID)
}

// AddUsage places an assignment in a challenge. Without a position it is appended.
func (s *ContentStore) AddUsage(ctx context.Context, challengeID string, req models.UsageRequest) (*models.AssignmentUsage, error) {
	u := &models.AssignmentUsage{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO assignment_usages (challenge_id, assignment_id, sprint_id, position, release_at)
		VALUES (
			$1, $2, $3,
			COALESCE($4, (SELECT COALESCE(MAX(position) + 1, 0) FROM assignment_usages WHERE challenge_id = $1)),
			$5
		)
		RETURNING `+usageColumns,
		challengeID, req.AssignmentID, req.SprintID, req.Position, req.ReleaseAt,
	).Scan(&u.ID, &u.ChallengeID, &u.AssignmentID, &u.SprintID, &u.Position, &u.ReleaseAt)
	if err != nil {
		if isUnique(err) {
			return nil, fmt.Errorf("add usage: %w", ErrConflict)
		}
		return nil, mapWriteError("add usage", err)
	}
	return u, nil
}

func (s *ContentStore) RemoveUsage(ctx context.Context, challengeID, usageID string) error {
	if !validID(challengeID) || !validID(usageID) {
		return fmt.Errorf("remove usage: %w", ErrNotFound)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM assignment_usages WHERE id = $1 AND challenge_id = $2`, usageID, challengeID)
	if err != nil {
		return fmt.Errorf("remove usage: %w", err)
	}
	return expectOne("remove usage", res)
}

func (s *ContentStore) ListSprints(ctx context.Context, challengeID string) ([]models.Sprint, error) {
	if !validID(challengeID) {
		return []models.Sprint{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, challenge_id, name, position, starts_at
		FROM sprints
		WHERE challenge_id = $1
		ORDER BY position ASC`, challengeID)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	defer rows.Close()

	sprints := []models.Sprint{}
	for rows.Next() {
		var sp models.Sprint
		if err := rows.Scan(&sp.ID, &sp.ChallengeID, &sp.Name, &sp.Position, &sp.StartsAt); err != nil {
			return nil, fmt.Errorf("scan sprint: %w", err)
		}
		sprints = append(sprints, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	return sprints, nil
}

func (s *ContentStore) CreateSprint(ctx context.Context, challengeID string, req models.SprintRequest) (*models.Sprint, error) {
	sp := &models.Sprint{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sprints (challenge_id, name, position, starts_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, challenge_id, name, position, starts_at`,
		challengeID, req.Name, req.Position, req.StartsAt,
	).Scan(&sp.ID, &sp.ChallengeID, &sp.Name, &sp.Position, &sp.StartsAt)
	if err != nil {
		return nil, mapWriteError("create sprint", err)
	}
	return sp, nil
}
