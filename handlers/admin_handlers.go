package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"companychallenges/api/access"
	"companychallenges/api/models"
	"companychallenges/api/store"
	"companychallenges/api/utils"
)

// AdminHandlers expose content management as JSON endpoints.
type AdminHandlers struct {
	Content AdminContent
}

func NewAdminHandlers(content AdminContent) *AdminHandlers {
	return &AdminHandlers{Content: content}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}
	return true
}

// resolveSlug validates a requested slug or generates one.
func resolveSlug(c *gin.Context, requested string) (string, bool) {
	if requested == "" {
		slug, err := utils.GenerateSlug()
		if err != nil {
			slog.Error("failed to generate slug", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate slug"})
			return "", false
		}
		return slug, true
	}
	if !utils.IsValidSlug(requested) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slug may only contain letters, digits and dashes"})
		return "", false
	}
	if utils.IsReservedPath(requested) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slug is reserved"})
		return "", false
	}
	return requested, true
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// Clients

func (h *AdminHandlers) ListClients(c *gin.Context) {
	clients, err := h.Content.ListClients(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondStoreError(c, "list clients", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// GetClient returns the client with all of its challenges, archived included.
func (h *AdminHandlers) GetClient(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	client, err := h.Content.GetClient(ctx, id)
	if err != nil {
		respondStoreError(c, "get client", err)
		return
	}
	challenges, err := h.Content.ListChallenges(ctx, store.ChallengeFilter{ClientID: id, IncludeArchived: true})
	if err != nil {
		respondStoreError(c, "list client challenges", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client, "challenges": challenges})
}

func (h *AdminHandlers) CreateClient(c *gin.Context) {
	var req models.ClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.Content.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondStoreError(c, "create client", err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *AdminHandlers) UpdateClient(c *gin.Context) {
	var req models.ClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.Content.UpdateClient(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondStoreError(c, "update client", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *AdminHandlers) DeleteClient(c *gin.Context) {
	if err := h.Content.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, "delete client", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Challenges

func (h *AdminHandlers) ListChallenges(c *gin.Context) {
	f := store.ChallengeFilter{
		ClientID:        c.Query("client_id"),
		IncludeArchived: c.Query("archived") == "true",
		Limit:           queryLimit(c),
	}
	challenges, err := h.Content.ListChallenges(c.Request.Context(), f)
	if err != nil {
		respondStoreError(c, "list challenges", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenges": challenges})
}

// GetChallenge returns the challenge with its assignments, sprints and labels.
func (h *AdminHandlers) GetChallenge(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	ch, err := h.Content.GetChallenge(ctx, id)
	if err != nil {
		respondStoreError(c, "get challenge", err)
		return
	}
	usages, err := h.Content.ListUsages(ctx, id)
	if err != nil {
		respondStoreError(c, "list usages", err)
		return
	}
	sprints, err := h.Content.ListSprints(ctx, id)
	if err != nil {
		respondStoreError(c, "list sprints", err)
		return
	}
	labels, err := h.Content.ListLabels(ctx, id)
	if err != nil {
		slog.Warn("failed to load labels for admin", "challenge_id", id, "error", err)
		labels = []models.ChallengeLabel{}
	}

	c.JSON(http.StatusOK, gin.H{
		"challenge": ch,
		"usages":    usages,
		"sprints":   sprints,
		"labels":    labels,
	})
}

func (h *AdminHandlers) CreateChallenge(c *gin.Context) {
	var req models.ChallengeRequest
	if !bindJSON(c, &req) {
		return
	}
	slug, ok := resolveSlug(c, req.Slug)
	if !ok {
		return
	}
	ch, err := h.Content.CreateChallenge(c.Request.Context(), slug, req)
	if err != nil {
		respondStoreError(c, "create challenge", err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

func (h *AdminHandlers) UpdateChallenge(c *gin.Context) {
	var req models.ChallengeRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	slug := req.Slug
	if slug == "" {
		current, err := h.Content.GetChallenge(ctx, id)
		if err != nil {
			respondStoreError(c, "get challenge", err)
			return
		}
		slug = current.Slug
	} else if _, ok := resolveSlug(c, slug); !ok {
		return
	}

	ch, err := h.Content.UpdateChallenge(ctx, id, slug, req)
	if err != nil {
		respondStoreError(c, "update challenge", err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *AdminHandlers) ArchiveChallenge(c *gin.Context) {
	if err := h.Content.ArchiveChallenge(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, "archive challenge", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Challenge archived"})
}

func (h *AdminHandlers) AddUsage(c *gin.Context) {
	var req models.UsageRequest
	if !bindJSON(c, &req) {
		return
	}
	usage, err := h.Content.AddUsage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondStoreError(c, "add usage", err)
		return
	}
	c.JSON(http.StatusCreated, usage)
}

func (h *AdminHandlers) RemoveUsage(c *gin.Context) {
	if err := h.Content.RemoveUsage(c.Request.Context(), c.Param("id"), c.Param("usageId")); err != nil {
		respondStoreError(c, "remove usage", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandlers) ListSprints(c *gin.Context) {
	sprints, err := h.Content.ListSprints(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, "list sprints", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sprints": sprints})
}

func (h *AdminHandlers) CreateSprint(c *gin.Context) {
	var req models.SprintRequest
	if !bindJSON(c, &req) {
		return
	}
	sprint, err := h.Content.CreateSprint(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondStoreError(c, "create sprint", err)
		return
	}
	c.JSON(http.StatusCreated, sprint)
}

// Labels

func (h *AdminHandlers) SetLabels(c *gin.Context) {
	var req models.LabelsRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := h.Content.SetLabels(ctx, id, req.Labels); err != nil {
		respondStoreError(c, "set labels", err)
		return
	}
	labels, err := h.Content.ListLabels(ctx, id)
	if err != nil {
		respondStoreError(c, "list labels", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

// DeleteLabels removes one label when :key is present, otherwise all of them.
func (h *AdminHandlers) DeleteLabels(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var err error
	if key := c.Param("key"); key != "" {
		err = h.Content.DeleteLabel(ctx, id, key)
	} else {
		err = h.Content.DeleteAllLabels(ctx, id)
	}
	if err != nil {
		respondStoreError(c, "delete labels", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Assignments

func (h *AdminHandlers) ListAssignments(c *gin.Context) {
	assignments, err := h.Content.ListAssignments(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondStoreError(c, "list assignments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// GetAssignment returns the assignment and the challenges it is placed in.
func (h *AdminHandlers) GetAssignment(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	a, err := h.Content.GetAssignment(ctx, id)
	if err != nil {
		respondStoreError(c, "get assignment", err)
		return
	}
	usages, err := h.Content.ListUsagesByAssignment(ctx, id)
	if err != nil {
		respondStoreError(c, "list assignment usages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assignment":        a,
		"requires_password": a.RequiresPassword(),
		"usages":            usages,
	})
}

func hashRequested(c *gin.Context, password string) (*string, bool) {
	if password == "" {
		return nil, true
	}
	hash, err := access.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password"})
		return nil, false
	}
	return &hash, true
}

func (h *AdminHandlers) CreateAssignment(c *gin.Context) {
	var req models.AssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	slug, ok := resolveSlug(c, req.Slug)
	if !ok {
		return
	}
	hash, ok := hashRequested(c, req.Password)
	if !ok {
		return
	}

	a, err := h.Content.CreateAssignment(c.Request.Context(), slug, req, hash)
	if err != nil {
		respondStoreError(c, "create assignment", err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AdminHandlers) UpdateAssignment(c *gin.Context) {
	var req models.AssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	slug := req.Slug
	if slug == "" {
		current, err := h.Content.GetAssignment(ctx, id)
		if err != nil {
			respondStoreError(c, "get assignment", err)
			return
		}
		slug = current.Slug
	} else if _, ok := resolveSlug(c, slug); !ok {
		return
	}

	var hash *string
	if !req.RemovePassword {
		var ok bool
		if hash, ok = hashRequested(c, req.Password); !ok {
			return
		}
	}

	a, err := h.Content.UpdateAssignment(ctx, id, slug, req, hash, req.RemovePassword)
	if err != nil {
		respondStoreError(c, "update assignment", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AdminHandlers) DeleteAssignment(c *gin.Context) {
	if err := h.Content.DeleteAssignment(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, "delete assignment", err)
		return
	}
	c.Status(http.StatusNoContent)
}
