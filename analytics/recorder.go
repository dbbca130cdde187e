package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"companychallenges/api/models"
	"companychallenges/api/store"
)

const defaultWriteTimeout = 5 * time.Second

// ErrInvalidEvent wraps every shape violation reported by TrackParams.Validate.
var ErrInvalidEvent = errors.New("invalid event")

// ScopeResolver loads the challenge an event claims to belong to.
type ScopeResolver interface {
	GetChallenge(ctx context.Context, id string) (*models.Challenge, error)
}

// Scope identifies where an event happened.
type Scope struct {
	ClientID     string
	ChallengeID  string
	AssignmentID string
	SprintID     string
}

// TrackParams describe one event to record.
type TrackParams struct {
	EventType models.EventType
	Scope
	Metadata map[string]any
}

// Validate checks the fields event_type demands. Only challenge_view is
// recorded without an assignment, and password_attempt needs metadata.success.
func (p TrackParams) Validate() error {
	if !p.EventType.Valid() {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, p.EventType)
	}
	if p.ClientID == "" || p.ChallengeID == "" {
		return fmt.Errorf("%w: client_id and challenge_id are required", ErrInvalidEvent)
	}
	if p.EventType == models.EventChallengeView {
		if p.AssignmentID != "" {
			return fmt.Errorf("%w: challenge_view cannot carry assignment_id", ErrInvalidEvent)
		}
		return nil
	}
	if p.AssignmentID == "" {
		return fmt.Errorf("%w: %s requires assignment_id", ErrInvalidEvent, p.EventType)
	}
	if p.EventType == models.EventPasswordAttempt {
		if _, ok := p.Metadata["success"].(bool); !ok {
			return fmt.Errorf("%w: password_attempt requires boolean metadata.success", ErrInvalidEvent)
		}
	}
	return nil
}

// MediaPlayMeta is attached to media_play events.
type MediaPlayMeta struct {
	MediaType string
	Duration  *float64
}

// Recorder appends analytics events. Writes are attempted once; a failed
// write is logged and dropped.
type Recorder struct {
	events  EventLog
	scopes  ScopeResolver
	now     func() time.Time
	timeout time.Duration
}

func NewRecorder(events EventLog) *Recorder {
	return &Recorder{
		events:  events,
		now:     time.Now,
		timeout: defaultWriteTimeout,
	}
}

// WithScopeCheck makes Track confirm that the challenge exists and belongs
// to the event's client before writing.
func (r *Recorder) WithScopeCheck(scopes ScopeResolver) *Recorder {
	r.scopes = scopes
	return r
}

// Track inserts one event row for sessionID.
func (r *Recorder) Track(ctx context.Context, sessionID string, p TrackParams) models.TrackResult {
	if err := p.Validate(); err != nil {
		return models.TrackResult{Error: err.Error()}
	}

	ev := models.AnalyticsEvent{
		ID:           uuid.NewString(),
		EventType:    p.EventType,
		ClientID:     p.ClientID,
		ChallengeID:  p.ChallengeID,
		AssignmentID: optional(p.AssignmentID),
		SprintID:     optional(p.SprintID),
		SessionID:    sessionID,
		CreatedAt:    r.now().UTC(),
	}
	if p.Metadata != nil {
		raw, err := json.Marshal(p.Metadata)
		if err != nil {
			slog.Error("analytics metadata not encodable", "event_type", p.EventType, "error", err)
			return models.TrackResult{Error: "invalid metadata"}
		}
		ev.Metadata = raw
	}

	writeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if res, ok := r.checkScope(writeCtx, p.Scope); !ok {
		return res
	}
	if err := r.events.InsertEvent(writeCtx, ev); err != nil {
		slog.Error("analytics tracking failed",
			"event_type", ev.EventType,
			"challenge_id", ev.ChallengeID,
			"session_id", sessionID,
			"error", err,
		)
		msg := "failed to track event"
		if errors.Is(err, store.ErrInvalidReference) {
			msg = "unknown client or challenge"
		}
		return models.TrackResult{Error: msg}
	}
	return models.TrackResult{Success: true}
}

func (r *Recorder) checkScope(ctx context.Context, s Scope) (models.TrackResult, bool) {
	if r.scopes == nil {
		return models.TrackResult{}, true
	}
	ch, err := r.scopes.GetChallenge(ctx, s.ChallengeID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		slog.Error("analytics scope lookup failed", "challenge_id", s.ChallengeID, "error", err)
		return models.TrackResult{Error: "failed to track event"}, false
	case ch.ClientID == s.ClientID:
		return models.TrackResult{}, true
	}
	slog.Debug("analytics event rejected", "client_id", s.ClientID, "challenge_id", s.ChallengeID)
	return models.TrackResult{Error: "unknown client or challenge"}, false
}

func (r *Recorder) TrackChallengeView(ctx context.Context, sessionID string, s Scope) models.TrackResult {
	s.AssignmentID, s.SprintID = "", ""
	return r.Track(ctx, sessionID, TrackParams{EventType: models.EventChallengeView, Scope: s})
}

func (r *Recorder) TrackAssignmentView(ctx context.Context, sessionID string, s Scope) models.TrackResult {
	return r.Track(ctx, sessionID, TrackParams{EventType: models.EventAssignmentView, Scope: s})
}

func (r *Recorder) TrackAssignmentComplete(ctx context.Context, sessionID string, s Scope) models.TrackResult {
	return r.Track(ctx, sessionID, TrackParams{EventType: models.EventAssignmentComplete, Scope: s})
}

func (r *Recorder) TrackMediaPlay(ctx context.Context, sessionID string, s Scope, meta MediaPlayMeta) models.TrackResult {
	metadata := map[string]any{}
	if meta.MediaType != "" {
		metadata["mediaType"] = meta.MediaType
	}
	if meta.Duration != nil {
		metadata["duration"] = *meta.Duration
	}
	if len(metadata) == 0 {
		metadata = nil
	}
	return r.Track(ctx, sessionID, TrackParams{EventType: models.EventMediaPlay, Scope: s, Metadata: metadata})
}

// TrackPasswordAttempt always records metadata.success.
func (r *Recorder) TrackPasswordAttempt(ctx context.Context, sessionID string, s Scope, success bool) models.TrackResult {
	return r.Track(ctx, sessionID, TrackParams{
		EventType: models.EventPasswordAttempt,
		Scope:     s,
		Metadata:  map[string]any{"success": success},
	})
}

func (r *Recorder) TrackQuizResponse(ctx context.Context, sessionID string, s Scope, questionID string, response any) models.TrackResult {
	return r.Track(ctx, sessionID, TrackParams{
		EventType: models.EventQuizResponse,
		Scope:     s,
		Metadata:  map[string]any{"questionId": questionID, "response": response},
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
