package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"companychallenges/api/analytics"
	"companychallenges/api/middleware"
	"companychallenges/api/models"
)

// maxBatchEvents bounds one batch tracking request.
const maxBatchEvents = 50

type TrackHandlers struct {
	Recorder *analytics.Recorder
}

func NewTrackHandlers(recorder *analytics.Recorder) *TrackHandlers {
	return &TrackHandlers{Recorder: recorder}
}

func paramsOf(req models.TrackEventRequest) analytics.TrackParams {
	return analytics.TrackParams{
		EventType: req.EventType,
		Scope: analytics.Scope{
			ClientID:     req.ClientID,
			ChallengeID:  req.ChallengeID,
			AssignmentID: req.AssignmentID,
			SprintID:     req.SprintID,
		},
		Metadata: req.Metadata,
	}
}

// TrackEvent records one event for the caller's session. Storage failures
// are reported in the body with a 200 status; callers do not wait on them.
func (h *TrackHandlers) TrackEvent(c *gin.Context) {
	var req models.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	params := paramsOf(req)
	if err := params.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event", "details": err.Error()})
		return
	}

	res := h.Recorder.Track(c.Request.Context(), middleware.SessionID(c), params)
	c.JSON(http.StatusOK, res)
}

// TrackBatch records several events in order, one result per event. Each
// event is validated on its own so one bad entry does not reject the batch.
func (h *TrackHandlers) TrackBatch(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	var reqs []models.TrackEventRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		slog.Debug("invalid batch tracking body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(reqs) > maxBatchEvents {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Too many events in one request"})
		return
	}

	sessionID := middleware.SessionID(c)
	results := make([]models.TrackResult, 0, len(reqs))
	for _, req := range reqs {
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			results = append(results, models.TrackResult{Error: "invalid event"})
			continue
		}
		results = append(results, h.Recorder.Track(c.Request.Context(), sessionID, paramsOf(req)))
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
