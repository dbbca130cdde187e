package models

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventChallengeView      EventType = "challenge_view"
	EventAssignmentView     EventType = "assignment_view"
	EventAssignmentComplete EventType = "assignment_complete"
	EventMediaPlay          EventType = "media_play"
	EventPasswordAttempt    EventType = "password_attempt"
	EventQuizResponse       EventType = "quiz_response"
)

var EventTypes = []EventType{
	EventChallengeView,
	EventAssignmentView,
	EventAssignmentComplete,
	EventMediaPlay,
	EventPasswordAttempt,
	EventQuizResponse,
}

func (t EventType) Valid() bool {
	for _, et := range EventTypes {
		if t == et {
			return true
		}
	}
	return false
}

// AnalyticsEvent is one row of the append-only event log.
type AnalyticsEvent struct {
	ID           string          `json:"id"`
	EventType    EventType       `json:"event_type"`
	ClientID     string          `json:"client_id"`
	ChallengeID  string          `json:"challenge_id"`
	AssignmentID *string         `json:"assignment_id"`
	SprintID     *string         `json:"sprint_id"`
	SessionID    string          `json:"session_id"`
	Metadata     json.RawMessage `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PasswordSucceeded reports metadata.success for password_attempt events.
func (e AnalyticsEvent) PasswordSucceeded() bool {
	if len(e.Metadata) == 0 {
		return false
	}
	var meta struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(e.Metadata, &meta); err != nil {
		return false
	}
	return meta.Success
}

// EventFilter narrows an event log read. Zero values mean "no filter".
type EventFilter struct {
	ChallengeID    string
	EventTypes     []EventType
	From           *time.Time
	To             *time.Time
	WithAssignment bool
	NewestFirst    bool
	Limit          int
}

// TrackEventRequest is the body of POST /api/track. Password attempts are
// recorded by the unlock endpoint and cannot be submitted here.
type TrackEventRequest struct {
	EventType    EventType      `json:"event_type" binding:"required,oneof=challenge_view assignment_view assignment_complete media_play quiz_response"`
	ClientID     string         `json:"client_id" binding:"required"`
	ChallengeID  string         `json:"challenge_id" binding:"required"`
	AssignmentID string         `json:"assignment_id"`
	SprintID     string         `json:"sprint_id"`
	Metadata     map[string]any `json:"metadata"`
}

type TrackResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
