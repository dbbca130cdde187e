package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"companychallenges/api/access"
	"companychallenges/api/analytics"
	"companychallenges/api/composer"
	"companychallenges/api/middleware"
	"companychallenges/api/models"
	"companychallenges/api/store"
	"companychallenges/api/utils"
)

type PublicHandlers struct {
	Content  PublicContent
	Recorder *analytics.Recorder
	Gate     *access.Gate
	Limiter  access.Limiter
	now      func() time.Time
}

func NewPublicHandlers(content PublicContent, recorder *analytics.Recorder, gate *access.Gate, limiter access.Limiter) *PublicHandlers {
	if limiter == nil {
		limiter = access.NoLimit{}
	}
	return &PublicHandlers{
		Content:  content,
		Recorder: recorder,
		Gate:     gate,
		Limiter:  limiter,
		now:      time.Now,
	}
}

func (h *PublicHandlers) Challenge(c *gin.Context) {
	slug := c.Param("slug")
	ch, err := h.Content.GetChallengeBySlug(c.Request.Context(), slug)
	if err != nil || ch.IsArchived {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			slog.Error("failed to load challenge", "slug", slug, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load challenge"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Challenge not found"})
		return
	}
	h.renderChallenge(c, ch)
}

func (h *PublicHandlers) Assignment(c *gin.Context) {
	a, ok := h.loadAssignment(c, c.Param("slug"))
	if !ok {
		return
	}
	h.renderAssignment(c, a)
}

// Legacy serves /{slug} from the old platform: a challenge slug first, then
// an assignment slug. Reserved first segments never match.
func (h *PublicHandlers) Legacy(c *gin.Context) {
	slug := strings.Trim(c.Request.URL.Path, "/")
	if c.Request.Method != http.MethodGet || slug == "" || strings.Contains(slug, "/") ||
		utils.IsReservedPath(slug) || !utils.IsValidSlug(slug) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	ch, err := h.Content.GetChallengeBySlug(c.Request.Context(), slug)
	switch {
	case err == nil && !ch.IsArchived:
		h.renderChallenge(c, ch)
		return
	case err != nil && !errors.Is(err, store.ErrNotFound):
		slog.Error("legacy slug challenge lookup", "slug", slug, "error", err)
	}

	if a, err := h.Content.GetAssignmentBySlug(c.Request.Context(), slug); err == nil {
		h.renderAssignment(c, a)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

func (h *PublicHandlers) renderChallenge(c *gin.Context, ch *models.Challenge) {
	ctx := c.Request.Context()

	usages, err := h.Content.ListUsages(ctx, ch.ID)
	if err != nil {
		slog.Error("failed to load challenge assignments", "challenge_id", ch.ID, "error", err)
		usages = nil
	}
	labels, err := h.Content.ListLabels(ctx, ch.ID)
	if err != nil {
		slog.Warn("failed to load challenge labels", "challenge_id", ch.ID, "error", err)
		labels = nil
	}

	page := composer.ComposeChallengePage(ch, usages, labels, h.now())

	tracker := h.Recorder.NewPageTracker(middleware.SessionID(c), models.EventChallengeView, analytics.Scope{
		ClientID:    ch.ClientID,
		ChallengeID: ch.ID,
	})
	tracker.TrackViewOnce(ctx)

	c.JSON(http.StatusOK, page)
}

// resolveNav places the assignment in the challenge named by ?from=, or in
// its first placement. It returns nil when the assignment is used nowhere.
func (h *PublicHandlers) resolveNav(ctx context.Context, a *models.Assignment, fromSlug string) *composer.NavContext {
	usages, err := h.Content.ListUsagesByAssignment(ctx, a.ID)
	if err != nil {
		slog.Warn("failed to load assignment placements", "assignment_id", a.ID, "error", err)
		return nil
	}
	if len(usages) == 0 {
		return nil
	}

	var (
		ch    *models.Challenge
		usage *models.AssignmentUsage
	)
	if fromSlug != "" {
		if from, err := h.Content.GetChallengeBySlug(ctx, fromSlug); err == nil && !from.IsArchived {
			for i := range usages {
				if usages[i].ChallengeID == from.ID {
					ch, usage = from, &usages[i]
					break
				}
			}
		}
	}
	if usage == nil {
		for i := range usages {
			candidate, err := h.Content.GetChallenge(ctx, usages[i].ChallengeID)
			if err == nil && !candidate.IsArchived {
				ch, usage = candidate, &usages[i]
				break
			}
		}
	}
	if usage == nil {
		return nil
	}

	siblings, err := h.Content.ListUsages(ctx, ch.ID)
	if err != nil {
		slog.Warn("failed to load sibling assignments", "challenge_id", ch.ID, "error", err)
		siblings = []models.AssignmentUsage{*usage}
	}
	return composer.ResolveNav(ch, *usage, siblings, h.now())
}

func (h *PublicHandlers) loadAssignment(c *gin.Context, slug string) (*models.Assignment, bool) {
	a, err := h.Content.GetAssignmentBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
			return nil, false
		}
		slog.Error("failed to load assignment", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load assignment"})
		return nil, false
	}
	return a, true
}

func (h *PublicHandlers) renderAssignment(c *gin.Context, a *models.Assignment) {
	nav := h.resolveNav(c.Request.Context(), a, c.Query("from"))
	unlocked := h.Gate.HasAccess(c.Request, a)
	h.respondAssignment(c, a, nav, unlocked)
}

func (h *PublicHandlers) respondAssignment(c *gin.Context, a *models.Assignment, nav *composer.NavContext, unlocked bool) {
	page := composer.ComposeAssignmentPage(a, nav, unlocked, h.now())
	if page.Trackable() {
		tracker := h.Recorder.NewPageTracker(middleware.SessionID(c), models.EventAssignmentView, scopeOf(nav, a))
		tracker.TrackViewOnce(c.Request.Context())
	}
	c.JSON(http.StatusOK, page)
}

func scopeOf(nav *composer.NavContext, a *models.Assignment) analytics.Scope {
	s := analytics.Scope{
		ClientID:     nav.ClientID,
		ChallengeID:  nav.ChallengeID,
		AssignmentID: a.ID,
	}
	if nav.SprintID != nil {
		s.SprintID = *nav.SprintID
	}
	return s
}

func strconvSeconds(d time.Duration) string {
	return strconv.Itoa(int(d.Round(time.Second) / time.Second))
}

// Unlock checks a password guess. Every checked guess inside a challenge is
// recorded as a password_attempt; throttled guesses are not checked.
func (h *PublicHandlers) Unlock(c *gin.Context) {
	var req models.UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	a, ok := h.loadAssignment(c, c.Param("slug"))
	if !ok {
		return
	}
	ctx := c.Request.Context()
	nav := h.resolveNav(ctx, a, c.Query("from"))

	if !a.RequiresPassword() {
		h.respondAssignment(c, a, nav, true)
		return
	}

	sessionID := middleware.SessionID(c)
	limit, err := h.Limiter.Allow(ctx, a.ID, sessionID)
	if err != nil {
		slog.Warn("password attempt limiter unavailable", "assignment_id", a.ID, "error", err)
	} else if !limit.Allowed {
		if limit.RetryAfter > 0 {
			c.Header("Retry-After", strconvSeconds(limit.RetryAfter))
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts, try again later"})
		return
	}

	success := access.CheckPassword(*a.PasswordHash, req.Password)
	if nav != nil {
		h.Recorder.TrackPasswordAttempt(ctx, sessionID, scopeOf(nav, a), success)
	}
	if !success {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password"})
		return
	}

	cookie, err := h.Gate.IssueGrant(a.ID)
	if err != nil {
		slog.Error("failed to issue access grant", "assignment_id", a.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlock assignment"})
		return
	}
	http.SetCookie(c.Writer, cookie)
	h.respondAssignment(c, a, nav, true)
}
