package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"companychallenges/api/access"
	"companychallenges/api/analytics"
	"companychallenges/api/models"
	"companychallenges/api/store"
	"companychallenges/api/utils"
)

var (
	testSecret = []byte("test-secret-key-32-characters!!!")
	errBackend = errors.New("backend unavailable")
)

func init() {
	gin.SetMode(gin.TestMode)
}

func strPtr(s string) *string { return &s }

// memContent is an in-memory AdminContent.
type memContent struct {
	mu          sync.Mutex
	seq         int
	clients     map[string]*models.Client
	challenges  map[string]*models.Challenge
	assignments map[string]*models.Assignment
	usages      []models.AssignmentUsage
	labels      map[string][]models.ChallengeLabel
	labelsErr   error
	probeErr    map[string]error

	// slugLookups counts GetChallengeBySlug and GetAssignmentBySlug calls.
	slugLookups int
}

func newMemContent() *memContent {
	return &memContent{
		clients:     map[string]*models.Client{},
		challenges:  map[string]*models.Challenge{},
		assignments: map[string]*models.Assignment{},
		labels:      map[string][]models.ChallengeLabel{},
		probeErr:    map[string]error{},
	}
}

func (m *memContent) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-new-%d", prefix, m.seq)
}

func (m *memContent) GetChallengeBySlug(_ context.Context, slug string) (*models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slugLookups++
	for _, ch := range m.challenges {
		if ch.Slug == slug {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memContent) GetChallenge(_ context.Context, id string) (*models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.challenges[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *ch
	return &cp, nil
}

func (m *memContent) GetAssignmentBySlug(_ context.Context, slug string) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slugLookups++
	for _, a := range m.assignments {
		if a.Slug == slug {
			cp := *a
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memContent) usagesWhere(match func(models.AssignmentUsage) bool) []models.AssignmentUsage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AssignmentUsage{}
	for _, u := range m.usages {
		if !match(u) {
			continue
		}
		u.Assignment = m.assignments[u.AssignmentID]
		out = append(out, u)
	}
	return out
}

func (m *memContent) ListUsages(_ context.Context, challengeID string) ([]models.AssignmentUsage, error) {
	return m.usagesWhere(func(u models.AssignmentUsage) bool { return u.ChallengeID == challengeID }), nil
}

func (m *memContent) ListUsagesByAssignment(_ context.Context, assignmentID string) ([]models.AssignmentUsage, error) {
	return m.usagesWhere(func(u models.AssignmentUsage) bool { return u.AssignmentID == assignmentID }), nil
}

func (m *memContent) ListLabels(_ context.Context, challengeID string) ([]models.ChallengeLabel, error) {
	if m.labelsErr != nil {
		return nil, m.labelsErr
	}
	return m.labels[challengeID], nil
}

func (m *memContent) ListClients(context.Context, int) ([]models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Client{}
	for _, cl := range m.clients {
		out = append(out, *cl)
	}
	return out, nil
}

func (m *memContent) GetClient(_ context.Context, id string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl, ok := m.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cl, nil
}

func (m *memContent) CreateClient(_ context.Context, req models.ClientRequest) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl := &models.Client{ID: m.nextID("cl"), Name: req.Name, LogoURL: req.LogoURL}
	m.clients[cl.ID] = cl
	return cl, nil
}

func (m *memContent) UpdateClient(_ context.Context, id string, req models.ClientRequest) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl, ok := m.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cl.Name, cl.LogoURL = req.Name, req.LogoURL
	return cl, nil
}

func (m *memContent) DeleteClient(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.clients, id)
	return nil
}

func (m *memContent) ListChallenges(_ context.Context, f store.ChallengeFilter) ([]models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Challenge{}
	for _, ch := range m.challenges {
		if f.ClientID != "" && ch.ClientID != f.ClientID {
			continue
		}
		if ch.IsArchived && !f.IncludeArchived {
			continue
		}
		out = append(out, *ch)
	}
	return out, nil
}

func (m *memContent) slugTaken(slug string) bool {
	for _, ch := range m.challenges {
		if ch.Slug == slug {
			return true
		}
	}
	for _, a := range m.assignments {
		if a.Slug == slug {
			return true
		}
	}
	return false
}

func (m *memContent) CreateChallenge(_ context.Context, slug string, req models.ChallengeRequest) (*models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[req.ClientID]; !ok {
		return nil, store.ErrInvalidReference
	}
	if m.slugTaken(slug) {
		return nil, store.ErrSlugTaken
	}
	ch := &models.Challenge{ID: m.nextID("ch"), ClientID: req.ClientID, Slug: slug, InternalName: req.InternalName, PublicTitle: req.PublicTitle}
	m.challenges[ch.ID] = ch
	return ch, nil
}

func (m *memContent) UpdateChallenge(_ context.Context, id, slug string, req models.ChallengeRequest) (*models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.challenges[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	ch.Slug, ch.InternalName, ch.PublicTitle = slug, req.InternalName, req.PublicTitle
	return ch, nil
}

func (m *memContent) ArchiveChallenge(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.challenges[id]
	if !ok {
		return store.ErrNotFound
	}
	ch.IsArchived = true
	return nil
}

func (m *memContent) AddUsage(_ context.Context, challengeID string, req models.UsageRequest) (*models.AssignmentUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.AssignmentUsage{ID: m.nextID("u"), ChallengeID: challengeID, AssignmentID: req.AssignmentID, SprintID: req.SprintID, ReleaseAt: req.ReleaseAt}
	m.usages = append(m.usages, u)
	return &u, nil
}

func (m *memContent) RemoveUsage(_ context.Context, challengeID, usageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.usages {
		if u.ID == usageID && u.ChallengeID == challengeID {
			m.usages = append(m.usages[:i], m.usages[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memContent) ListSprints(context.Context, string) ([]models.Sprint, error) {
	return []models.Sprint{}, nil
}

func (m *memContent) CreateSprint(_ context.Context, challengeID string, req models.SprintRequest) (*models.Sprint, error) {
	return &models.Sprint{ID: "sp-1", ChallengeID: challengeID, Name: req.Name, Position: req.Position}, nil
}

func (m *memContent) SetLabels(_ context.Context, challengeID string, labels []models.LabelInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChallengeLabel, 0, len(labels))
	for _, l := range labels {
		out = append(out, models.ChallengeLabel{ChallengeID: challengeID, Key: l.Key, Value: l.Value})
	}
	m.labels[challengeID] = out
	return nil
}

func (m *memContent) DeleteLabel(_ context.Context, challengeID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.labels[challengeID][:0]
	for _, l := range m.labels[challengeID] {
		if l.Key != key {
			kept = append(kept, l)
		}
	}
	m.labels[challengeID] = kept
	return nil
}

func (m *memContent) DeleteAllLabels(_ context.Context, challengeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.labels, challengeID)
	return nil
}

func (m *memContent) ListAssignments(context.Context, int) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Assignment{}
	for _, a := range m.assignments {
		out = append(out, *a)
	}
	return out, nil
}

func (m *memContent) GetAssignment(_ context.Context, id string) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memContent) CreateAssignment(_ context.Context, slug string, req models.AssignmentRequest, passwordHash *string) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(slug) {
		return nil, store.ErrSlugTaken
	}
	a := &models.Assignment{ID: m.nextID("a"), Slug: slug, InternalTitle: req.InternalTitle, PasswordHash: passwordHash}
	m.assignments[a.ID] = a
	return a, nil
}

func (m *memContent) UpdateAssignment(_ context.Context, id, slug string, req models.AssignmentRequest, passwordHash *string, clearPassword bool) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a.Slug, a.InternalTitle = slug, req.InternalTitle
	switch {
	case clearPassword:
		a.PasswordHash = nil
	case passwordHash != nil:
		a.PasswordHash = passwordHash
	}
	return a, nil
}

func (m *memContent) DeleteAssignment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.assignments, id)
	return nil
}

func (m *memContent) ProbeTable(_ context.Context, table string) error {
	return m.probeErr[table]
}

// eventSink is an EventLog that keeps every inserted event.
type eventSink struct {
	mu     sync.Mutex
	events []models.AnalyticsEvent
}

func (s *eventSink) InsertEvent(_ context.Context, ev models.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *eventSink) ListEvents(context.Context, models.EventFilter) ([]models.AnalyticsEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AnalyticsEvent(nil), s.events...), nil
}

func (s *eventSink) ofType(t models.EventType) []models.AnalyticsEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AnalyticsEvent
	for _, ev := range s.events {
		if ev.EventType == t {
			out = append(out, ev)
		}
	}
	return out
}

// stubReporter returns canned reports, or err for every call when set.
type stubReporter struct {
	err      error
	overview models.OverviewStats
	csv      string

	dailyChallenge string
}

func (s *stubReporter) OverviewStats(context.Context, *models.DateRange) (models.OverviewStats, error) {
	if s.err != nil {
		return models.OverviewStats{}, s.err
	}
	return s.overview, nil
}

func (s *stubReporter) ChallengeStats(context.Context, *models.DateRange) ([]models.ChallengeStats, error) {
	if s.err != nil {
		return []models.ChallengeStats{}, s.err
	}
	return []models.ChallengeStats{{ChallengeID: "ch-1", TotalViews: s.overview.TotalChallengeViews}}, nil
}

func (s *stubReporter) AssignmentStats(context.Context, string, *models.DateRange) ([]models.AssignmentStats, error) {
	return nil, s.err
}

func (s *stubReporter) DailyViewCounts(_ context.Context, challengeID string, days int) ([]models.DailyCount, error) {
	s.dailyChallenge = challengeID
	return make([]models.DailyCount, days+1), s.err
}

func (s *stubReporter) ExportCSV(context.Context, string, *models.DateRange) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.csv, nil
}

func (s *stubReporter) DashboardStats(context.Context) (models.DashboardStats, error) {
	return models.DashboardStats{}, s.err
}

func (s *stubReporter) RecentActivity(context.Context, int) ([]models.RecentActivity, error) {
	return nil, s.err
}

type stubLimiter struct {
	result access.LimitResult
	err    error
}

func (l stubLimiter) Allow(context.Context, string, string) (access.LimitResult, error) {
	return l.result, l.err
}

type stubAdmins map[string]*models.AdminUser

func (s stubAdmins) GetAdminByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	u, ok := s[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse"
	sessionCookie     = "sess-1"
)

// testApp wires the router against in-memory backends.
type testApp struct {
	router   *gin.Engine
	content  *memContent
	events   *eventSink
	reports  *stubReporter
	public   *PublicHandlers
	adminJWT string
}

// seedContent creates one client with a challenge holding an open and a
// password protected assignment.
func seedContent(t *testing.T) *memContent {
	t.Helper()
	m := newMemContent()
	m.clients["cl-1"] = &models.Client{ID: "cl-1", Name: "Acme"}
	m.challenges["ch-1"] = &models.Challenge{ID: "ch-1", ClientID: "cl-1", Slug: "spring-challenge", InternalName: "Spring"}
	m.challenges["ch-old"] = &models.Challenge{ID: "ch-old", ClientID: "cl-1", Slug: "old-challenge", InternalName: "Old", IsArchived: true}

	hash, err := access.HashPassword("Secret")
	require.NoError(t, err)
	m.assignments["a-1"] = &models.Assignment{ID: "a-1", Slug: "intro", InternalTitle: "Intro", Instructions: strPtr("Read **this**")}
	m.assignments["a-2"] = &models.Assignment{ID: "a-2", Slug: "locked-task", InternalTitle: "Locked", Content: strPtr("hidden"), PasswordHash: &hash}
	m.assignments["a-3"] = &models.Assignment{ID: "a-3", Slug: "loose", InternalTitle: "Unplaced"}
	m.usages = []models.AssignmentUsage{
		{ID: "u-1", ChallengeID: "ch-1", AssignmentID: "a-1", Position: 1},
		{ID: "u-2", ChallengeID: "ch-1", AssignmentID: "a-2", Position: 2},
	}
	return m
}

func newTestApp(t *testing.T, limiter access.Limiter) *testApp {
	t.Helper()
	content := seedContent(t)
	events := &eventSink{}
	reports := &stubReporter{overview: models.OverviewStats{TotalChallengeViews: 3}, csv: "a,b\n1,2"}

	hashed, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	admins := stubAdmins{testAdminEmail: {ID: 1, Email: testAdminEmail, HashedPassword: hashed}}

	recorder := analytics.NewRecorder(events).WithScopeCheck(content)
	gate := access.NewGate(testSecret, time.Hour, false)
	health := NewHealthHandlers(content, HealthConfig{EventStore: "postgres"})
	public := NewPublicHandlers(content, recorder, gate, limiter)

	router := NewRouter(RouterDeps{
		Public:    public,
		Track:     NewTrackHandlers(recorder),
		Labels:    NewLabelHandlers(content),
		Auth:      NewAuthHandlers(admins, testSecret, false),
		Admin:     NewAdminHandlers(content),
		Analytics: NewAnalyticsHandlers(reports, health),
		Health:    health,
		JWTSecret: testSecret,
	})

	token, err := utils.GenerateAdminJWT(testSecret, admins[testAdminEmail])
	require.NoError(t, err)

	return &testApp{router: router, content: content, events: events, reports: reports, public: public, adminJWT: token}
}

func (app *testApp) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: utils.SessionCookieName, Value: sessionCookie})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func (app *testApp) admin(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+app.adminJWT)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
