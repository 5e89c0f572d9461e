package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/internal/interfaces/http/response"
)

// AssistantService is the generative helper with deterministic fallbacks.
type AssistantService interface {
	Health(ctx context.Context) entities.AssistantHealth
	ImproveBio(ctx context.Context, participantID uuid.UUID, input *entities.ImproveBioInput) (string, error)
	SuggestSkills(ctx context.Context, participantID uuid.UUID, input *entities.SuggestSkillsInput) ([]string, error)
	AnalyzeCompatibility(ctx context.Context, participantID, teamID uuid.UUID) (*entities.Compatibility, error)
	GenerateTeamDescription(ctx context.Context, teamID, actorID uuid.UUID) (string, error)
	RecommendTeams(ctx context.Context, participantID uuid.UUID) ([]entities.TeamRecommendation, error)
}

// AssistantHandler handles /ai endpoints
type AssistantHandler struct {
	assistant AssistantService
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(assistant AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Health reports whether the generative backend answers
// GET /api/v1/ai/health
func (h *AssistantHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, h.assistant.Health(c.Request.Context()))
}

// ImproveBio rewrites a profile bio
// POST /api/v1/ai/improve-bio
func (h *AssistantHandler) ImproveBio(c *gin.Context) {
	var input entities.ImproveBioInput
	if !bindJSON(c, &input) {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	bio, err := h.assistant.ImproveBio(c.Request.Context(), participantID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"improvedBio": bio})
}

// SuggestSkills proposes skills for a role
// POST /api/v1/ai/suggest-skills
func (h *AssistantHandler) SuggestSkills(c *gin.Context) {
	var input entities.SuggestSkillsInput
	if !bindJSON(c, &input) {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	skills, err := h.assistant.SuggestSkills(c.Request.Context(), participantID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"suggestedSkills": skills})
}

// Compatibility scores the caller against a team
// GET /api/v1/ai/compatibility/:teamId
func (h *AssistantHandler) Compatibility(c *gin.Context) {
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	result, err := h.assistant.AnalyzeCompatibility(c.Request.Context(), participantID, teamID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GenerateTeamDescription writes and saves a description for the caller's team
// POST /api/v1/ai/generate-team-description
func (h *AssistantHandler) GenerateTeamDescription(c *gin.Context) {
	var input entities.TeamDescriptionInput
	if !bindJSON(c, &input) {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	description, err := h.assistant.GenerateTeamDescription(c.Request.Context(), input.TeamID, participantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"description": description})
}

// RecommendTeams ranks open teams for the caller
// GET /api/v1/ai/recommend-teams
func (h *AssistantHandler) RecommendTeams(c *gin.Context) {
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	recommendations, err := h.assistant.RecommendTeams(c.Request.Context(), participantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"recommendations": recommendations})
}
