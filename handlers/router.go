package handlers

import (
	"github.com/gin-gonic/gin"

	"companychallenges/api/middleware"
)

// RouterDeps bundles everything NewRouter mounts.
type RouterDeps struct {
	Public    *PublicHandlers
	Track     *TrackHandlers
	Labels    *LabelHandlers
	Auth      *AuthHandlers
	Admin     *AdminHandlers
	Analytics *AnalyticsHandlers
	Health    *HealthHandlers

	JWTSecret      []byte
	FrontendOrigin string
	SecureCookies  bool
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(d.FrontendOrigin))
	r.Use(middleware.AnalyticsSession(d.SecureCookies))

	r.GET("/health", d.Health.Live)

	r.GET("/c/:slug", d.Public.Challenge)
	r.GET("/a/:slug", d.Public.Assignment)
	r.POST("/a/:slug/unlock", d.Public.Unlock)

	api := r.Group("/api")
	{
		api.POST("/track", d.Track.TrackEvent)
		api.POST("/track/batch", d.Track.TrackBatch)
		api.GET("/labels/:challengeId", d.Labels.GetLabels)
	}

	r.POST("/admin/login", d.Auth.Login)
	r.POST("/admin/logout", d.Auth.Logout)

	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired(d.JWTSecret))
	{
		admin.GET("", d.Analytics.Dashboard)
		admin.GET("/health", d.Health.Admin)

		admin.GET("/clients", d.Admin.ListClients)
		admin.POST("/clients", d.Admin.CreateClient)
		admin.GET("/clients/:id", d.Admin.GetClient)
		admin.PUT("/clients/:id", d.Admin.UpdateClient)
		admin.DELETE("/clients/:id", d.Admin.DeleteClient)

		admin.GET("/challenges", d.Admin.ListChallenges)
		admin.POST("/challenges", d.Admin.CreateChallenge)
		admin.GET("/challenges/:id", d.Admin.GetChallenge)
		admin.PUT("/challenges/:id", d.Admin.UpdateChallenge)
		admin.POST("/challenges/:id/archive", d.Admin.ArchiveChallenge)
		admin.POST("/challenges/:id/usages", d.Admin.AddUsage)
		admin.DELETE("/challenges/:id/usages/:usageId", d.Admin.RemoveUsage)
		admin.PUT("/challenges/:id/labels", d.Admin.SetLabels)
		admin.DELETE("/challenges/:id/labels", d.Admin.DeleteLabels)
		admin.DELETE("/challenges/:id/labels/:key", d.Admin.DeleteLabels)
		admin.GET("/challenges/:id/sprints", d.Admin.ListSprints)
		admin.POST("/challenges/:id/sprints", d.Admin.CreateSprint)

		admin.GET("/assignments", d.Admin.ListAssignments)
		admin.POST("/assignments", d.Admin.CreateAssignment)
		admin.GET("/assignments/:id", d.Admin.GetAssignment)
		admin.PUT("/assignments/:id", d.Admin.UpdateAssignment)
		admin.DELETE("/assignments/:id", d.Admin.DeleteAssignment)

		admin.GET("/analytics", d.Analytics.Overview)
		admin.GET("/analytics/challenges/:id", d.Analytics.Challenge)
		admin.GET("/analytics/daily", d.Analytics.Daily)
		admin.GET("/analytics/export.csv", d.Analytics.Export)
	}

	r.NoRoute(d.Public.Legacy)
	return r
}
