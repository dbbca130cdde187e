package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"companychallenges/api/database"
	"companychallenges/api/models"
)

type LabelReader interface {
	ListLabels(ctx context.Context, challengeID string) ([]models.ChallengeLabel, error)
}

type LabelHandlers struct {
	Labels LabelReader
}

func NewLabelHandlers(labels LabelReader) *LabelHandlers {
	return &LabelHandlers{Labels: labels}
}

// GetLabels always answers 200; any failure yields an empty list so pages
// fall back to default labels.
func (h *LabelHandlers) GetLabels(c *gin.Context) {
	challengeID := c.Param("challengeId")

	labels, err := h.Labels.ListLabels(c.Request.Context(), challengeID)
	if err != nil {
		if database.IsPGCode(err, database.CodeUndefinedTable) {
			slog.Debug("challenge_labels table missing", "challenge_id", challengeID)
		} else {
			slog.Error("failed to fetch labels", "challenge_id", challengeID, "error", err)
		}
		labels = nil
	}
	if labels == nil {
		labels = []models.ChallengeLabel{}
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}
