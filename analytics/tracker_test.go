package analytics

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companychallenges/api/models"
)

func TestPageTracker_TrackViewOnce(t *testing.T) {
	events := &memLog{}
	tracker := NewRecorder(events).NewPageTracker("s-1", models.EventAssignmentView, testScope)
	ctx := context.Background()

	res, recorded := tracker.TrackViewOnce(ctx)
	assert.True(t, res.Success)
	assert.True(t, recorded)

	res, recorded = tracker.TrackViewOnce(ctx)
	assert.True(t, res.Success)
	assert.False(t, recorded)

	require.Equal(t, 1, events.len())
	assert.Equal(t, models.EventAssignmentView, events.events[0].EventType)
	require.NotNil(t, events.events[0].AssignmentID)
	assert.Equal(t, "as-1", *events.events[0].AssignmentID)
}

func TestPageTracker_ConcurrentViewsRecordOnce(t *testing.T) {
	events := &memLog{}
	tracker := NewRecorder(events).NewPageTracker("s-1", models.EventChallengeView, testScope)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.TrackViewOnce(context.Background())
		}()
	}
	wg.Wait()

	require.Equal(t, 1, events.len())
	assert.Equal(t, models.EventChallengeView, events.events[0].EventType)
	assert.Nil(t, events.events[0].AssignmentID)
}

func TestPageTracker_TrackMediaPlayOnce(t *testing.T) {
	events := &memLog{}
	tracker := NewRecorder(events).NewPageTracker("s-1", models.EventAssignmentView, testScope)
	ctx := context.Background()

	_, first := tracker.TrackMediaPlayOnce(ctx, MediaPlayMeta{MediaType: "vimeo"})
	_, second := tracker.TrackMediaPlayOnce(ctx, MediaPlayMeta{MediaType: "vimeo"})

	assert.True(t, first)
	assert.False(t, second)
	require.Equal(t, 1, events.len())
	assert.Equal(t, models.EventMediaPlay, events.events[0].EventType)
}

func TestPageTracker_GuardsAreIndependent(t *testing.T) {
	events := &memLog{}
	tracker := NewRecorder(events).NewPageTracker("s-1", models.EventAssignmentView, testScope)
	ctx := context.Background()

	tracker.TrackViewOnce(ctx)
	tracker.TrackMediaPlayOnce(ctx, MediaPlayMeta{})
	tracker.TrackViewOnce(ctx)
	tracker.TrackMediaPlayOnce(ctx, MediaPlayMeta{})

	assert.Equal(t, 2, events.len())
}

func TestPageTracker_SeparateMountsTrackSeparately(t *testing.T) {
	events := &memLog{}
	rec := NewRecorder(events)
	ctx := context.Background()

	rec.NewPageTracker("s-1", models.EventChallengeView, testScope).TrackViewOnce(ctx)
	rec.NewPageTracker("s-1", models.EventChallengeView, testScope).TrackViewOnce(ctx)

	assert.Equal(t, 2, events.len())
}
