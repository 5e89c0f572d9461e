package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/internal/interfaces/http/response"
	"teamsync.backend/pkg/logger"
)

// OrganizerService computes the organizer analytics views.
type OrganizerService interface {
	Dashboard(ctx context.Context) (*entities.Dashboard, error)
	Unassigned(ctx context.Context) (*entities.UnassignedList, error)
	SkillDistribution(ctx context.Context) (*entities.SkillDistribution, error)
	TeamAnalytics(ctx context.Context) (*entities.TeamAnalytics, error)
}

// AutomationRunner runs every sweeper task once.
type AutomationRunner interface {
	RunAll(ctx context.Context) *entities.AutomationReport
}

// OrganizerHandler handles organizer-only endpoints
type OrganizerHandler struct {
	organizer  OrganizerService
	automation AutomationRunner
}

// NewOrganizerHandler creates a new organizer handler
func NewOrganizerHandler(organizer OrganizerService, automation AutomationRunner) *OrganizerHandler {
	return &OrganizerHandler{organizer: organizer, automation: automation}
}

// Dashboard returns event totals, alerts and distributions
// GET /api/v1/organizer/dashboard
func (h *OrganizerHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.organizer.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dashboard)
}

// Unassigned lists teamless participants still looking for a team
// GET /api/v1/organizer/unassigned
func (h *OrganizerHandler) Unassigned(c *gin.Context) {
	list, err := h.organizer.Unassigned(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// SkillDistribution returns role shares, the skill heatmap and shortages
// GET /api/v1/organizer/skill-distribution
func (h *OrganizerHandler) SkillDistribution(c *gin.Context) {
	dist, err := h.organizer.SkillDistribution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dist)
}

// TeamAnalytics returns per-team stats with averages
// GET /api/v1/organizer/team-analytics
func (h *OrganizerHandler) TeamAnalytics(c *gin.Context) {
	analytics, err := h.organizer.TeamAnalytics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, analytics)
}

// RunAutomation triggers one sweep and reports each task
// POST /api/v1/organizer/automation/run
func (h *OrganizerHandler) RunAutomation(c *gin.Context) {
	report := h.automation.RunAll(c.Request.Context())

	status := http.StatusOK
	if failed := report.Failed(); failed > 0 {
		logger.Warn(c.Request.Context(), "Manual automation run had failures", zap.Int("failed", failed))
		status = http.StatusMultiStatus
	}
	response.Success(c, status, gin.H{
		"message": "Automation run finished",
		"report":  report,
	})
}
