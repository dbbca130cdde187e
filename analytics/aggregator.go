package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"companychallenges/api/models"
	"companychallenges/api/store"
)

const (
	// MaxExportRows caps one CSV export; larger result sets are truncated.
	MaxExportRows = 10_000
	// MaxDays bounds the daily chart window.
	MaxDays = 3650

	unknownClient = "Unknown"
	dayLayout     = "2006-01-02"
)

// Aggregator derives dashboard numbers by folding raw event rows in memory.
// Every method returns a usable zero value alongside any error.
type Aggregator struct {
	events EventLog
	dir    Directory
	now    func() time.Time
}

func NewAggregator(events EventLog, dir Directory) *Aggregator {
	return &Aggregator{events: events, dir: dir, now: time.Now}
}

func rangeFilter(f *models.EventFilter, rng *models.DateRange) {
	if rng == nil {
		return
	}
	from, to := rng.From, rng.To
	f.From, f.To = &from, &to
}

func uniqueSessions(events []models.AnalyticsEvent) int {
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		seen[ev.SessionID] = struct{}{}
	}
	return len(seen)
}

func (a *Aggregator) OverviewStats(ctx context.Context, rng *models.DateRange) (models.OverviewStats, error) {
	var f models.EventFilter
	rangeFilter(&f, rng)

	events, err := a.events.ListEvents(ctx, f)
	if err != nil {
		return models.OverviewStats{}, fmt.Errorf("overview stats: %w", err)
	}

	var stats models.OverviewStats
	for _, ev := range events {
		switch ev.EventType {
		case models.EventChallengeView:
			stats.TotalChallengeViews++
		case models.EventAssignmentView:
			stats.TotalAssignmentViews++
		case models.EventMediaPlay:
			stats.TotalMediaPlays++
		case models.EventAssignmentComplete:
			stats.TotalCompletions++
		}
	}
	stats.UniqueSessions = uniqueSessions(events)
	return stats, nil
}

// ChallengeStats reports every active challenge; only the events are
// restricted to rng. Results are ordered by challenge views, highest first.
func (a *Aggregator) ChallengeStats(ctx context.Context, rng *models.DateRange) ([]models.ChallengeStats, error) {
	challenges, err := a.dir.ListChallenges(ctx, store.ChallengeFilter{})
	if err != nil {
		return []models.ChallengeStats{}, fmt.Errorf("challenge stats: %w", err)
	}

	var f models.EventFilter
	rangeFilter(&f, rng)
	events, err := a.events.ListEvents(ctx, f)
	if err != nil {
		return []models.ChallengeStats{}, fmt.Errorf("challenge stats: %w", err)
	}

	byChallenge := make(map[string][]models.AnalyticsEvent)
	for _, ev := range events {
		byChallenge[ev.ChallengeID] = append(byChallenge[ev.ChallengeID], ev)
	}

	stats := make([]models.ChallengeStats, 0, len(challenges))
	for _, ch := range challenges {
		own := byChallenge[ch.ID]
		s := models.ChallengeStats{
			ChallengeID:    ch.ID,
			ChallengeName:  ch.DisplayName(),
			ClientName:     unknownClient,
			UniqueSessions: uniqueSessions(own),
		}
		if ch.Client != nil && ch.Client.Name != "" {
			s.ClientName = ch.Client.Name
		}
		for _, ev := range own {
			switch ev.EventType {
			case models.EventChallengeView:
				s.TotalViews++
			case models.EventAssignmentView:
				s.AssignmentViews++
			case models.EventMediaPlay:
				s.MediaPlays++
			case models.EventAssignmentComplete:
				s.Completions++
			}
		}
		stats = append(stats, s)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalViews > stats[j].TotalViews
	})
	return stats, nil
}

// AssignmentStats reports each assignment placed in the challenge, in position order.
func (a *Aggregator) AssignmentStats(ctx context.Context, challengeID string, rng *models.DateRange) ([]models.AssignmentStats, error) {
	usages, err := a.dir.ListUsages(ctx, challengeID)
	if err != nil {
		return []models.AssignmentStats{}, fmt.Errorf("assignment stats: %w", err)
	}

	f := models.EventFilter{ChallengeID: challengeID, WithAssignment: true}
	rangeFilter(&f, rng)
	events, err := a.events.ListEvents(ctx, f)
	if err != nil {
		return []models.AssignmentStats{}, fmt.Errorf("assignment stats: %w", err)
	}

	byAssignment := make(map[string][]models.AnalyticsEvent)
	for _, ev := range events {
		if ev.AssignmentID == nil {
			continue
		}
		byAssignment[*ev.AssignmentID] = append(byAssignment[*ev.AssignmentID], ev)
	}

	stats := make([]models.AssignmentStats, 0, len(usages))
	for _, u := range usages {
		if u.Assignment == nil {
			continue
		}
		own := byAssignment[u.Assignment.ID]
		s := models.AssignmentStats{
			AssignmentID:    u.Assignment.ID,
			AssignmentTitle: u.Assignment.DisplayTitle(),
			UniqueSessions:  uniqueSessions(own),
		}
		for _, ev := range own {
			switch ev.EventType {
			case models.EventAssignmentView:
				s.Views++
			case models.EventMediaPlay:
				s.MediaPlays++
			case models.EventAssignmentComplete:
				s.Completions++
			case models.EventPasswordAttempt:
				s.PasswordAttempts++
				if ev.PasswordSucceeded() {
					s.PasswordSuccesses++
				}
			}
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// DailyViewCounts buckets challenge and assignment views by UTC day over
// [today-days, today]. It always yields days+1 buckets, oldest first.
func (a *Aggregator) DailyViewCounts(ctx context.Context, challengeID string, days int) ([]models.DailyCount, error) {
	if days < 0 {
		days = 0
	}
	if days > MaxDays {
		days = MaxDays
	}

	now := a.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -days)

	counts := make([]models.DailyCount, days+1)
	sessions := make([]map[string]struct{}, days+1)
	index := make(map[string]int, days+1)
	for i := range counts {
		key := start.AddDate(0, 0, i).Format(dayLayout)
		counts[i] = models.DailyCount{Date: key}
		sessions[i] = map[string]struct{}{}
		index[key] = i
	}

	f := models.EventFilter{
		ChallengeID: challengeID,
		EventTypes:  []models.EventType{models.EventChallengeView, models.EventAssignmentView},
		From:        &start,
		To:          &now,
	}
	events, err := a.events.ListEvents(ctx, f)
	if err != nil {
		return counts, fmt.Errorf("daily view counts: %w", err)
	}

	for _, ev := range events {
		i, ok := index[ev.CreatedAt.UTC().Format(dayLayout)]
		if !ok {
			continue
		}
		counts[i].Views++
		sessions[i][ev.SessionID] = struct{}{}
	}
	for i := range counts {
		counts[i].UniqueSessions = len(sessions[i])
	}
	return counts, nil
}

// DashboardStats runs the headline counts concurrently.
func (a *Aggregator) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats

	now := a.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := a.dir.CountClients(gctx)
		stats.TotalClients = n
		return err
	})
	g.Go(func() error {
		n, err := a.dir.CountActiveChallenges(gctx)
		stats.ActiveChallenges = n
		return err
	})
	g.Go(func() error {
		n, err := a.dir.CountAssignments(gctx)
		stats.TotalAssignments = n
		return err
	})
	g.Go(func() error {
		events, err := a.events.ListEvents(gctx, models.EventFilter{
			EventTypes: []models.EventType{models.EventChallengeView},
			From:       &monthStart,
		})
		stats.ThisMonthViews = len(events)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

// RecentActivity merges the newest clients, challenges and assignments.
func (a *Aggregator) RecentActivity(ctx context.Context, limit int) ([]models.RecentActivity, error) {
	if limit <= 0 {
		limit = 5
	}

	var (
		clients     []models.Client
		challenges  []models.Challenge
		assignments []models.Assignment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		clients, err = a.dir.ListClients(gctx, limit)
		return err
	})
	g.Go(func() (err error) {
		challenges, err = a.dir.ListChallenges(gctx, store.ChallengeFilter{IncludeArchived: true, Limit: limit})
		return err
	})
	g.Go(func() (err error) {
		assignments, err = a.dir.ListAssignments(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return []models.RecentActivity{}, fmt.Errorf("recent activity: %w", err)
	}

	activities := make([]models.RecentActivity, 0, len(clients)+len(challenges)+len(assignments))
	for _, c := range clients {
		activities = append(activities, models.RecentActivity{
			ID:        "client-" + c.ID,
			Type:      models.ActivityClientCreated,
			Title:     fmt.Sprintf("Client %q created", c.Name),
			Timestamp: c.CreatedAt,
		})
	}
	for _, c := range challenges {
		act := models.RecentActivity{
			ID:        "challenge-" + c.ID,
			Type:      models.ActivityChallengeCreated,
			Title:     fmt.Sprintf("Challenge %q created", c.InternalName),
			Timestamp: c.CreatedAt,
		}
		if c.IsArchived {
			act.Type = models.ActivityChallengeArchived
			act.Title = fmt.Sprintf("Challenge %q archived", c.InternalName)
			act.Timestamp = c.UpdatedAt
		}
		activities = append(activities, act)
	}
	for _, as := range assignments {
		activities = append(activities, models.RecentActivity{
			ID:        "assignment-" + as.ID,
			Type:      models.ActivityAssignmentCreated,
			Title:     fmt.Sprintf("Assignment %q created", as.InternalTitle),
			Timestamp: as.CreatedAt,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

