package analytics

import (
	"context"
	"errors"
	"sort"
	"sync"

	"companychallenges/api/models"
	"companychallenges/api/store"
)

var errBackend = errors.New("backend unavailable")

// memLog is an in-memory EventLog honouring EventFilter.
type memLog struct {
	mu        sync.Mutex
	events    []models.AnalyticsEvent
	insertErr error
	listErr   error
}

func (m *memLog) InsertEvent(_ context.Context, ev models.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *memLog) ListEvents(_ context.Context, f models.EventFilter) ([]models.AnalyticsEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	var out []models.AnalyticsEvent
	for _, ev := range m.events {
		if f.ChallengeID != "" && ev.ChallengeID != f.ChallengeID {
			continue
		}
		if len(f.EventTypes) > 0 && !containsType(f.EventTypes, ev.EventType) {
			continue
		}
		if f.From != nil && ev.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && ev.CreatedAt.After(*f.To) {
			continue
		}
		if f.WithAssignment && ev.AssignmentID == nil {
			continue
		}
		out = append(out, ev)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if f.NewestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memLog) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func containsType(types []models.EventType, t models.EventType) bool {
	for _, et := range types {
		if et == t {
			return true
		}
	}
	return false
}

// fakeDirectory serves fixed content records.
type fakeDirectory struct {
	clients     []models.Client
	challenges  []models.Challenge
	assignments []models.Assignment
	usages      map[string][]models.AssignmentUsage
	err         error
}

func (d *fakeDirectory) ListChallenges(_ context.Context, f store.ChallengeFilter) ([]models.Challenge, error) {
	if d.err != nil {
		return nil, d.err
	}
	var out []models.Challenge
	for _, c := range d.challenges {
		if c.IsArchived && !f.IncludeArchived {
			continue
		}
		if f.ClientID != "" && c.ClientID != f.ClientID {
			continue
		}
		out = append(out, c)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (d *fakeDirectory) ListUsages(_ context.Context, challengeID string) ([]models.AssignmentUsage, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.usages[challengeID], nil
}

func (d *fakeDirectory) LookupNames(_ context.Context, challengeIDs, assignmentIDs, clientIDs []string) (models.NameIndex, error) {
	idx := models.NameIndex{
		Challenges:  map[string]models.Challenge{},
		Assignments: map[string]models.Assignment{},
		Clients:     map[string]models.Client{},
	}
	if d.err != nil {
		return idx, d.err
	}
	for _, c := range d.challenges {
		idx.Challenges[c.ID] = c
	}
	for _, a := range d.assignments {
		idx.Assignments[a.ID] = a
	}
	for _, c := range d.clients {
		idx.Clients[c.ID] = c
	}
	return idx, nil
}

func (d *fakeDirectory) ListClients(_ context.Context, limit int) ([]models.Client, error) {
	if d.err != nil {
		return nil, d.err
	}
	return head(d.clients, limit), nil
}

func (d *fakeDirectory) ListAssignments(_ context.Context, limit int) ([]models.Assignment, error) {
	if d.err != nil {
		return nil, d.err
	}
	return head(d.assignments, limit), nil
}

func (d *fakeDirectory) CountClients(context.Context) (int, error) {
	return len(d.clients), d.err
}

func (d *fakeDirectory) CountActiveChallenges(context.Context) (int, error) {
	n := 0
	for _, c := range d.challenges {
		if !c.IsArchived {
			n++
		}
	}
	return n, d.err
}

func (d *fakeDirectory) CountAssignments(context.Context) (int, error) {
	return len(d.assignments), d.err
}

func head[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func strPtr(s string) *string { return &s }
