package store

import (
	"context"
	"fmt"
	"log/slog"

	"companychallenges/api/database"
	"companychallenges/api/models"
)

// ClickHouseEventLog keeps the analytics event log in ClickHouse. Unlike the
// Postgres log it cannot enforce references to clients or challenges.
type ClickHouseEventLog struct {
	DB *database.ClickHouseClient
}

func NewClickHouseEventLog(chClient *database.ClickHouseClient) *ClickHouseEventLog {
	return &ClickHouseEventLog{DB: chClient}
}

// EnsureSchema creates the analytics_events table when it is missing.
func (s *ClickHouseEventLog) EnsureSchema(ctx context.Context) error {
	err := s.DB.Conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analytics_events (
			id String,
			event_type LowCardinality(String),
			client_id String,
			challenge_id String,
			assignment_id Nullable(String),
			sprint_id Nullable(String),
			session_id String,
			metadata Nullable(String),
			created_at DateTime64(3, 'UTC')
		) ENGINE = MergeTree
		ORDER BY (challenge_id, created_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to create analytics_events table: %w", err)
	}
	return nil
}

func (s *ClickHouseEventLog) InsertEvent(ctx context.Context, ev models.AnalyticsEvent) error {
	return s.InsertEvents(ctx, []models.AnalyticsEvent{ev})
}

// InsertEvents writes events in a single batch.
func (s *ClickHouseEventLog) InsertEvents(ctx context.Context, events []models.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			id, event_type, client_id, challenge_id, assignment_id, sprint_id, session_id, metadata, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, ev := range events {
		var metadata *string
		if len(ev.Metadata) > 0 {
			m := string(ev.Metadata)
			metadata = &m
		}
		err := batch.Append(
			ev.ID,
			string(ev.EventType),
			ev.ClientID,
			ev.ChallengeID,
			emptyToNil(ev.AssignmentID),
			emptyToNil(ev.SprintID),
			ev.SessionID,
			metadata,
			ev.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to append event %s: %w", ev.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	slog.Debug("inserted analytics events", "count", len(events))
	return nil
}

func (s *ClickHouseEventLog) ListEvents(ctx context.Context, f models.EventFilter) ([]models.AnalyticsEvent, error) {
	tail, args := buildEventQuery(f, questionPlaceholder)
	query := `
		SELECT id, event_type, client_id, challenge_id, assignment_id, sprint_id, session_id, metadata, created_at
		FROM analytics_events` + tail

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics events: %w", err)
	}
	defer rows.Close()

	var events []models.AnalyticsEvent
	for rows.Next() {
		var (
			ev        models.AnalyticsEvent
			eventType string
			metadata  *string
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
			return nil, fmt.Errorf("failed to scan analytics event: %w", err)
		}
		ev.EventType = models.EventType(eventType)
		if metadata != nil {
			ev.Metadata = []byte(*metadata)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during analytics events query: %w", err)
	}
	return events, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
