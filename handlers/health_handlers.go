package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// probedTables are checked by the admin health report.
var probedTables = []string{"clients", "challenges", "assignments", "analytics_events", "challenge_labels"}

// HealthConfig lists the configuration flags shown in the health report.
type HealthConfig struct {
	EventStore       string `json:"event_store"`
	Limiter          bool   `json:"password_limiter"`
	AdminConfigured  bool   `json:"admin_configured"`
	SecureCookies    bool   `json:"secure_cookies"`
	FrontendOrigin   string `json:"frontend_origin"`
	AccessGrantHours int    `json:"access_grant_hours"`
}

type TableStatus struct {
	Table string `json:"table"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type HealthReport struct {
	Healthy bool          `json:"healthy"`
	Config  HealthConfig  `json:"config"`
	Tables  []TableStatus `json:"tables"`
}

type HealthHandlers struct {
	Prober TableProber
	Config HealthConfig
}

func NewHealthHandlers(prober TableProber, cfg HealthConfig) *HealthHandlers {
	return &HealthHandlers{Prober: prober, Config: cfg}
}

// Report probes every table. The analytics table is skipped when events live
// in ClickHouse.
func (h *HealthHandlers) Report(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	report := HealthReport{Healthy: true, Config: h.Config, Tables: make([]TableStatus, 0, len(probedTables))}
	for _, table := range probedTables {
		if table == "analytics_events" && h.Config.EventStore != "" && h.Config.EventStore != "postgres" {
			continue
		}
		status := TableStatus{Table: table, OK: true}
		if err := h.Prober.ProbeTable(ctx, table); err != nil {
			status.OK = false
			status.Error = err.Error()
			report.Healthy = false
		}
		report.Tables = append(report.Tables, status)
	}
	return report
}

// Live is the unauthenticated liveness probe.
func (h *HealthHandlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandlers) Admin(c *gin.Context) {
	report := h.Report(c.Request.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
