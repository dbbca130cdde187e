package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"companychallenges/api/models"
)

const (
	defaultOverviewDays = 30
	defaultDailyDays    = 30
	dashboardActivity   = 5
)

// AnalyticsHandlers serve the admin reports. Read failures are logged and
// rendered as zero values so the dashboard still loads.
type AnalyticsHandlers struct {
	Reports Reporter
	Health  *HealthHandlers
	now     func() time.Time
}

func NewAnalyticsHandlers(reports Reporter, health *HealthHandlers) *AnalyticsHandlers {
	return &AnalyticsHandlers{Reports: reports, Health: health, now: time.Now}
}

// Overview defaults to the last 30 days; days=0 means all time.
func (h *AnalyticsHandlers) Overview(c *gin.Context) {
	rng, err := parseDateRange(c, h.now(), defaultOverviewDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	overview, err := h.Reports.OverviewStats(ctx, rng)
	if err != nil {
		slog.Warn("overview stats unavailable", "error", err)
	}
	challenges, err := h.Reports.ChallengeStats(ctx, rng)
	if err != nil {
		slog.Warn("challenge stats unavailable", "error", err)
	}
	if challenges == nil {
		challenges = []models.ChallengeStats{}
	}

	c.JSON(http.StatusOK, gin.H{
		"range":      rng,
		"overview":   overview,
		"challenges": challenges,
	})
}

func (h *AnalyticsHandlers) Challenge(c *gin.Context) {
	rng, err := parseDateRange(c, h.now(), 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")

	stats, err := h.Reports.AssignmentStats(c.Request.Context(), id, rng)
	if err != nil {
		slog.Warn("assignment stats unavailable", "challenge_id", id, "error", err)
	}
	if stats == nil {
		stats = []models.AssignmentStats{}
	}
	c.JSON(http.StatusOK, gin.H{"challengeId": id, "assignments": stats})
}

// Daily counts views per day for one challenge, or site-wide without challenge_id.
func (h *AnalyticsHandlers) Daily(c *gin.Context) {
	challengeID := c.Query("challenge_id")
	days, err := parseDays(c.Query("days"), defaultDailyDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	counts, err := h.Reports.DailyViewCounts(c.Request.Context(), challengeID, days)
	if err != nil {
		slog.Warn("daily view counts unavailable", "challenge_id", challengeID, "error", err)
	}
	if counts == nil {
		counts = []models.DailyCount{}
	}
	c.JSON(http.StatusOK, gin.H{"challengeId": challengeID, "days": counts})
}

// Export streams the event log as a CSV attachment. A failed read still
// downloads, as an empty file.
func (h *AnalyticsHandlers) Export(c *gin.Context) {
	rng, err := parseDateRange(c, h.now(), 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	challengeID := c.Query("challenge_id")

	body, err := h.Reports.ExportCSV(c.Request.Context(), challengeID, rng)
	if err != nil {
		slog.Error("csv export failed", "challenge_id", challengeID, "error", err)
		body = ""
	}

	name := fmt.Sprintf("analytics-%s.csv", h.now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

// Dashboard is the admin landing payload.
func (h *AnalyticsHandlers) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.Reports.DashboardStats(ctx)
	if err != nil {
		slog.Warn("dashboard stats unavailable", "error", err)
	}
	activity, err := h.Reports.RecentActivity(ctx, dashboardActivity)
	if err != nil {
		slog.Warn("recent activity unavailable", "error", err)
	}
	if activity == nil {
		activity = []models.RecentActivity{}
	}

	resp := gin.H{
		"stats":          stats,
		"recentActivity": activity,
	}
	if h.Health != nil {
		resp["health"] = h.Health.Report(ctx)
	}
	c.JSON(http.StatusOK, resp)
}
