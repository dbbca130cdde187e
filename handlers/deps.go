package handlers

import (
	"context"

	"companychallenges/api/models"
	"companychallenges/api/store"
)

// PublicContent is what the public pages read.
type PublicContent interface {
	GetChallengeBySlug(ctx context.Context, slug string) (*models.Challenge, error)
	GetChallenge(ctx context.Context, id string) (*models.Challenge, error)
	GetAssignmentBySlug(ctx context.Context, slug string) (*models.Assignment, error)
	ListUsages(ctx context.Context, challengeID string) ([]models.AssignmentUsage, error)
	ListUsagesByAssignment(ctx context.Context, assignmentID string) ([]models.AssignmentUsage, error)
	ListLabels(ctx context.Context, challengeID string) ([]models.ChallengeLabel, error)
}

// AdminContent is the full content store used by the admin endpoints.
type AdminContent interface {
	PublicContent

	ListClients(ctx context.Context, limit int) ([]models.Client, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
	CreateClient(ctx context.Context, req models.ClientRequest) (*models.Client, error)
	UpdateClient(ctx context.Context, id string, req models.ClientRequest) (*models.Client, error)
	DeleteClient(ctx context.Context, id string) error

	ListChallenges(ctx context.Context, f store.ChallengeFilter) ([]models.Challenge, error)
	CreateChallenge(ctx context.Context, slug string, req models.ChallengeRequest) (*models.Challenge, error)
	UpdateChallenge(ctx context.Context, id, slug string, req models.ChallengeRequest) (*models.Challenge, error)
	ArchiveChallenge(ctx context.Context, id string) error

	AddUsage(ctx context.Context, challengeID string, req models.UsageRequest) (*models.AssignmentUsage, error)
	RemoveUsage(ctx context.Context, challengeID, usageID string) error
	ListSprints(ctx context.Context, challengeID string) ([]models.Sprint, error)
	CreateSprint(ctx context.Context, challengeID string, req models.SprintRequest) (*models.Sprint, error)

	SetLabels(ctx context.Context, challengeID string, labels []models.LabelInput) error
	DeleteLabel(ctx context.Context, challengeID, key string) error
	DeleteAllLabels(ctx context.Context, challengeID string) error

	ListAssignments(ctx context.Context, limit int) ([]models.Assignment, error)
	GetAssignment(ctx context.Context, id string) (*models.Assignment, error)
	CreateAssignment(ctx context.Context, slug string, req models.AssignmentRequest, passwordHash *string) (*models.Assignment, error)
	UpdateAssignment(ctx context.Context, id, slug string, req models.AssignmentRequest, passwordHash *string, clearPassword bool) (*models.Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// Reporter is the admin analytics read side.
type Reporter interface {
	OverviewStats(ctx context.Context, rng *models.DateRange) (models.OverviewStats, error)
	ChallengeStats(ctx context.Context, rng *models.DateRange) ([]models.ChallengeStats, error)
	AssignmentStats(ctx context.Context, challengeID string, rng *models.DateRange) ([]models.AssignmentStats, error)
	DailyViewCounts(ctx context.Context, challengeID string, days int) ([]models.DailyCount, error)
	ExportCSV(ctx context.Context, challengeID string, rng *models.DateRange) (string, error)
	DashboardStats(ctx context.Context) (models.DashboardStats, error)
	RecentActivity(ctx context.Context, limit int) ([]models.RecentActivity, error)
}

// TableProber checks that a table can be read.
type TableProber interface {
	ProbeTable(ctx context.Context, table string) error
}

type AdminFinder interface {
	GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

var (
	_ AdminContent = (*store.ContentStore)(nil)
	_ TableProber  = (*store.ContentStore)(nil)
	_ AdminFinder  = (*store.AdminStore)(nil)
)
