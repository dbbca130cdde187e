package store

import (
	"context"
	"database/sql"
	"fmt"

	"companychallenges/api/database"
	"companychallenges/api/models"
)

// PostgresEventLog appends analytics events to the analytics_events table.
// Foreign keys on the table reject events for unknown clients or challenges.
type PostgresEventLog struct {
	db *sql.DB
}

func NewPostgresEventLog(db *sql.DB) *PostgresEventLog {
	return &PostgresEventLog{db: db}
}

func (s *PostgresEventLog) InsertEvent(ctx context.Context, ev models.AnalyticsEvent) error {
	var metadata any
	if len(ev.Metadata) > 0 {
		metadata = string(ev.Metadata)
	}

	query := `
		INSERT INTO analytics_events (
			id, event_type, client_id, challenge_id, assignment_id, sprint_id, session_id, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		ev.ID,
		string(ev.EventType),
		ev.ClientID,
		ev.ChallengeID,
		nullIfEmpty(ev.AssignmentID),
		nullIfEmpty(ev.SprintID),
		ev.SessionID,
		metadata,
		ev.CreatedAt.UTC(),
	)
	if err != nil {
		if database.IsPGCode(err, database.CodeForeignKeyViolation) || database.IsPGCode(err, database.CodeInvalidText) {
			return fmt.Errorf("insert analytics event: %w", ErrInvalidReference)
		}
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

func (s *PostgresEventLog) ListEvents(ctx context.Context, f models.EventFilter) ([]models.AnalyticsEvent, error) {
	tail, args := buildEventQuery(f, dollarPlaceholder)
	query := `
		SELECT id, event_type, client_id, challenge_id, assignment_id, sprint_id, session_id, metadata, created_at
		FROM analytics_events` + tail

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analytics events: %w", err)
	}
	defer rows.Close()

	var events []models.AnalyticsEvent
	for rows.Next() {
		var (
			ev        models.AnalyticsEvent
			eventType string
			metadata  []byte
		)
		if err := rows.Scan(
			&ev.ID,
			&eventType,
			&ev.ClientID,
			&ev.ChallengeID,
			&ev.AssignmentID,
			&ev.SprintID,
			&ev.SessionID,
			&metadata,
			&ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan analytics event: %w", err)
		}
		ev.EventType = models.EventType(eventType)
		if len(metadata) > 0 {
			ev.Metadata = metadata
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analytics events: %w", err)
	}
	return events, nil
}
