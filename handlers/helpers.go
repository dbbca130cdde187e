package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"companychallenges/api/models"
	"companychallenges/api/store"
)

// dateLayout is the yyyy-mm-dd form accepted for from/to query parameters.
const dateLayout = "2006-01-02"

// parseDateRange reads from/to (inclusive dates) or days, falling back to
// defaultDays. It returns nil for an unbounded range.
func parseDateRange(c *gin.Context, now time.Time, defaultDays int) (*models.DateRange, error) {
	from, to := c.Query("from"), c.Query("to")
	if from != "" || to != "" {
		rng := &models.DateRange{From: time.Unix(0, 0).UTC(), To: now.UTC()}
		if from != "" {
			t, err := time.Parse(dateLayout, from)
			if err != nil {
				return nil, errors.New("from must be YYYY-MM-DD")
			}
			rng.From = t
		}
		if to != "" {
			t, err := time.Parse(dateLayout, to)
			if err != nil {
				return nil, errors.New("to must be YYYY-MM-DD")
			}
			rng.To = t.Add(24*time.Hour - time.Nanosecond)
		}
		return rng, nil
	}

	days, err := parseDays(c.Query("days"), defaultDays)
	if err != nil {
		return nil, err
	}
	if days == 0 {
		return nil, nil
	}
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
	return &models.DateRange{From: start, To: now}, nil
}

// parseDays accepts 0 (all time) or a positive day count.
func parseDays(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, errors.New("days must be a non-negative integer")
	}
	return days, nil
}

// respondStoreError maps store sentinels to HTTP errors.
func respondStoreError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, store.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Slug is already in use"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Record already exists"})
	case errors.Is(err, store.ErrInvalidReference):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Referenced record does not exist"})
	default:
		slog.Error(op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
