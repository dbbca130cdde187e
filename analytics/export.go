package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"companychallenges/api/models"
)

var csvHeader = []string{"Date", "Event Type", "Client", "Challenge", "Assignment", "Session ID"}

// exportRow is one event joined to its display names. Missing joins are empty strings.
type exportRow struct {
	CreatedAt  time.Time
	EventType  models.EventType
	Client     string
	Challenge  string
	Assignment string
	SessionID  string
}

// ExportCSV renders events newest first, at most MaxExportRows of them.
// Every field is quoted; embedded quotes are doubled.
func (a *Aggregator) ExportCSV(ctx context.Context, challengeID string, rng *models.DateRange) (string, error) {
	f := models.EventFilter{ChallengeID: challengeID, NewestFirst: true, Limit: MaxExportRows}
	rangeFilter(&f, rng)

	events, err := a.events.ListEvents(ctx, f)
	if err != nil {
		return "", fmt.Errorf("export csv: %w", err)
	}

	challengeIDs, assignmentIDs, clientIDs := collectIDs(events)
	names, err := a.dir.LookupNames(ctx, challengeIDs, assignmentIDs, clientIDs)
	if err != nil {
		return "", fmt.Errorf("export csv: %w", err)
	}

	rows := make([]exportRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, project(ev, names))
	}
	return renderCSV(rows), nil
}

func collectIDs(events []models.AnalyticsEvent) (challengeIDs, assignmentIDs, clientIDs []string) {
	seen := map[string]struct{}{}
	add := func(dst *[]string, prefix, id string) {
		if id == "" {
			return
		}
		key := prefix + id
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		*dst = append(*dst, id)
	}
	for _, ev := range events {
		add(&challengeIDs, "ch:", ev.ChallengeID)
		add(&clientIDs, "cl:", ev.ClientID)
		if ev.AssignmentID != nil {
			add(&assignmentIDs, "as:", *ev.AssignmentID)
		}
	}
	return challengeIDs, assignmentIDs, clientIDs
}

// project resolves an event's ids to single display names.
func project(ev models.AnalyticsEvent, names models.NameIndex) exportRow {
	row := exportRow{
		CreatedAt: ev.CreatedAt,
		EventType: ev.EventType,
		SessionID: ev.SessionID,
	}
	if c, ok := names.Clients[ev.ClientID]; ok {
		row.Client = c.Name
	}
	if ch, ok := names.Challenges[ev.ChallengeID]; ok {
		row.Challenge = ch.DisplayName()
	}
	if ev.AssignmentID != nil {
		if as, ok := names.Assignments[*ev.AssignmentID]; ok {
			row.Assignment = as.DisplayTitle()
		}
	}
	return row
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

func renderCSV(rows []exportRow) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(csvHeader, ","))
	for _, r := range rows {
		fields := []string{
			quote(r.CreatedAt.UTC().Format(time.RFC3339)),
			quote(string(r.EventType)),
			quote(r.Client),
			quote(r.Challenge),
			quote(r.Assignment),
			quote(r.SessionID),
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}
