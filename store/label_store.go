package store

import (
	"context"
	"fmt"

	"companychallenges/api/models"
)

// ListLabels returns a challenge's labels ordered by key.
func (s *ContentStore) ListLabels(ctx context.Context, challengeID string) ([]models.ChallengeLabel, error) {
	if !validID(challengeID) {
		return []models.ChallengeLabel{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, challenge_id, key, value, created_at, updated_at
		FROM challenge_labels
		WHERE challenge_id = $1
		ORDER BY key ASC`, challengeID)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	defer rows.Close()

	labels := []models.ChallengeLabel{}
	for rows.Next() {
		var l models.ChallengeLabel
		if err := rows.Scan(&l.ID, &l.ChallengeID, &l.Key, &l.Value, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}

// SetLabels upserts each label on (challenge_id, key) in one transaction.
func (s *ContentStore) SetLabels(ctx context.Context, challengeID string, labels []models.LabelInput) error {
	if !validID(challengeID) {
		return fmt.Errorf("set labels: %w", ErrNotFound)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set labels: begin: %w", err)
	}
	defer tx.Rollback()

	for _, l := range labels {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO challenge_labels (challenge_id, key, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (challenge_id, key) DO UPDATE
			SET value = EXCLUDED.value, updated_at = NOW()`,
			challengeID, l.Key, l.Value,
		)
		if err != nil {
			return mapWriteError("set labels", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set labels: commit: %w", err)
	}
	return nil
}

func (s *ContentStore) DeleteLabel(ctx context.Context, challengeID, key string) error {
	if !validID(challengeID) {
		return fmt.Errorf("delete label: %w", ErrNotFound)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM challenge_labels WHERE challenge_id = $1 AND key = $2`, challengeID, key)
	if err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	return expectOne("delete label", res)
}

func (s *ContentStore) DeleteAllLabels(ctx context.Context, challengeID string) error {
	if !validID(challengeID) {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM challenge_labels WHERE challenge_id = $1`, challengeID); err != nil {
		return fmt.Errorf("delete labels: %w", err)
	}
	return nil
}
