// Package analytics records visitor events and aggregates them for the admin dashboard.
package analytics

import (
	"context"

	"companychallenges/api/models"
	"companychallenges/api/store"
)

// EventLog is the append-only analytics event log.
type EventLog interface {
	InsertEvent(ctx context.Context, ev models.AnalyticsEvent) error
	ListEvents(ctx context.Context, f models.EventFilter) ([]models.AnalyticsEvent, error)
}

// Directory is the read side of the content store the aggregator joins against.
type Directory interface {
	ListChallenges(ctx context.Context, f store.ChallengeFilter) ([]models.Challenge, error)
	ListUsages(ctx context.Context, challengeID string) ([]models.AssignmentUsage, error)
	LookupNames(ctx context.Context, challengeIDs, assignmentIDs, clientIDs []string) (models.NameIndex, error)
	ListClients(ctx context.Context, limit int) ([]models.Client, error)
	ListAssignments(ctx context.Context, limit int) ([]models.Assignment, error)
	CountClients(ctx context.Context) (int, error)
	CountActiveChallenges(ctx context.Context) (int, error)
	CountAssignments(ctx context.Context) (int, error)
}

var (
	_ EventLog  = (*store.PostgresEventLog)(nil)
	_ EventLog  = (*store.ClickHouseEventLog)(nil)
	_ Directory = (*store.ContentStore)(nil)
)
