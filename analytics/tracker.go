package analytics

import (
	"context"
	"sync/atomic"

	"companychallenges/api/models"
)

// PageTracker belongs to a single rendered page. Its guards make the view
// and the first media play count once for that page, however often they fire.
type PageTracker struct {
	recorder  *Recorder
	sessionID string
	viewType  models.EventType
	scope     Scope

	viewed atomic.Bool
	played atomic.Bool
}

// NewPageTracker binds a tracker to one page. viewType is challenge_view or
// assignment_view.
func (r *Recorder) NewPageTracker(sessionID string, viewType models.EventType, scope Scope) *PageTracker {
	return &PageTracker{
		recorder:  r,
		sessionID: sessionID,
		viewType:  viewType,
		scope:     scope,
	}
}

// TrackViewOnce records the page view on the first call only. The second
// return value reports whether this call attempted the write.
func (t *PageTracker) TrackViewOnce(ctx context.Context) (models.TrackResult, bool) {
	if !t.viewed.CompareAndSwap(false, true) {
		return models.TrackResult{Success: true}, false
	}
	if t.viewType == models.EventChallengeView {
		return t.recorder.TrackChallengeView(ctx, t.sessionID, t.scope), true
	}
	return t.recorder.Track(ctx, t.sessionID, TrackParams{EventType: t.viewType, Scope: t.scope}), true
}

func (t *PageTracker) TrackMediaPlayOnce(ctx context.Context, meta MediaPlayMeta) (models.TrackResult, bool) {
	if !t.played.CompareAndSwap(false, true) {
		return models.TrackResult{Success: true}, false
	}
	return t.recorder.TrackMediaPlay(ctx, t.sessionID, t.scope, meta), true
}
