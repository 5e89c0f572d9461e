package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"teamsync.backend/internal/domain/entities"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/internal/interfaces/http/response"
	"teamsync.backend/pkg/utils"
)

// ParticipantService is the identity store glue used by the HTTP layer.
type ParticipantService interface {
	GetMe(ctx context.Context, id uuid.UUID) (*entities.Participant, error)
	GetParticipant(ctx context.Context, id, viewerID uuid.UUID) (*entities.Participant, error)
	Discover(ctx context.Context, q entities.DiscoverQuery) ([]*entities.Participant, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.ProfileUpdate) (*entities.Participant, error)
	SetAvailability(ctx context.Context, id uuid.UUID, status entities.AvailabilityStatus) (*entities.Availability, error)
	SkillGap(ctx context.Context, participantID, teamID uuid.UUID) (*entities.SkillGap, error)
}

// InviteLister lists the invites addressed to a participant.
type InviteLister interface {
	ListMyInvites(ctx context.Context, participantID uuid.UUID) ([]*entities.InviteView, error)
}

// ParticipantHandler handles profile, discovery and inbox endpoints
type ParticipantHandler struct {
	participants ParticipantService
	invites      InviteLister
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(participants ParticipantService, invites InviteLister) *ParticipantHandler {
	return &ParticipantHandler{participants: participants, invites: invites}
}

type discoverParams struct {
	utils.PaginationParams
	Search          string   `form:"search"`
	Role            string   `form:"role"`
	Skills          []string `form:"skills"`
	SoftSkills      []string `form:"softSkills"`
	ExperienceLevel string   `form:"experienceLevel"`
	Availability    string   `form:"availability"`
}

// GetMe returns the caller's own profile
// GET /api/v1/me
func (h *ParticipantHandler) GetMe(c *gin.Context) {
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	p, err := h.participants.GetMe(c.Request.Context(), participantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"participant": p})
}

// Discover searches participants
// GET /api/v1/participants
func (h *ParticipantHandler) Discover(c *gin.Context) {
	var params discoverParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}
	paging := utils.GetPaginationParams(params.Page, params.Limit)

	found, err := h.participants.Discover(c.Request.Context(), entities.DiscoverQuery{
		Search:          strings.TrimSpace(params.Search),
		Role:            params.Role,
		Skills:          splitList(params.Skills),
		SoftSkills:      splitList(params.SoftSkills),
		ExperienceLevel: params.ExperienceLevel,
		Availability:    params.Availability,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"participants": page(found, paging),
		"meta":         utils.CalculateMeta(int64(len(found)), paging.Page, paging.Limit),
	})
}

// GetParticipant returns a profile and counts the view
// GET /api/v1/participants/:id
func (h *ParticipantHandler) GetParticipant(c *gin.Context) {
	id, ok := pathID(c, "id", "participant")
	if !ok {
		return
	}
	viewerID, ok := currentParticipant(c)
	if !ok {
		return
	}

	p, err := h.participants.GetParticipant(c.Request.Context(), id, viewerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"participant": p})
}

// UpdateProfile edits the caller's profile
// PUT /api/v1/participants/profile
func (h *ParticipantHandler) UpdateProfile(c *gin.Context) {
	var input entities.ProfileUpdate
	if !bindJSON(c, &input) {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	p, err := h.participants.UpdateProfile(c.Request.Context(), participantID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":     "Profile updated",
		"participant": p,
	})
}

// SetAvailability toggles the caller between Available and Not Available
// PATCH /api/v1/participants/availability
func (h *ParticipantHandler) SetAvailability(c *gin.Context) {
	var input struct {
		Status entities.AvailabilityStatus `json:"status" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	availability, err := h.participants.SetAvailability(c.Request.Context(), participantID, input.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":      "Availability updated",
		"availability": availability,
	})
}

// SkillGap compares a participant with a team's roster
// GET /api/v1/participants/:id/skill-gap/:teamId
func (h *ParticipantHandler) SkillGap(c *gin.Context) {
	id, ok := pathID(c, "id", "participant")
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId", "team")
	if !ok {
		return
	}

	gap, err := h.participants.SkillGap(c.Request.Context(), id, teamID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gap)
}

// MyInvites lists pending invites addressed to the caller
// GET /api/v1/participants/me/invites
func (h *ParticipantHandler) MyInvites(c *gin.Context) {
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	invites, err := h.invites.ListMyInvites(c.Request.Context(), participantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"invites": invites})
}

// splitList accepts both repeated query keys and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
