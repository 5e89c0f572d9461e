package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"teamsync.backend/internal/domain/entities"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/internal/interfaces/http/middleware"
	"teamsync.backend/internal/interfaces/http/response"
	"teamsync.backend/pkg/utils"
)

// MembershipService is the state machine behind every roster change.
type MembershipService interface {
	CreateTeam(ctx context.Context, leaderID uuid.UUID, input *entities.CreateTeamInput) (*entities.Team, error)
	SendInvite(ctx context.Context, teamID, actorID uuid.UUID, input *entities.SendInviteInput) (*entities.Invite, error)
	RespondToInvite(ctx context.Context, teamID, inviteID, responderID uuid.UUID, action entities.InviteAction) (*entities.Team, error)
	SendJoinRequest(ctx context.Context, teamID, requesterID uuid.UUID, input *entities.JoinRequestInput) (*entities.JoinRequest, error)
	RespondToJoinRequest(ctx context.Context, teamID, requestID, actorID uuid.UUID, action entities.JoinRequestAction) (*entities.Team, error)
	LeaveTeam(ctx context.Context, teamID, participantID uuid.UUID) error
}

// TeamService serves team reads and leader edits.
type TeamService interface {
	ListTeams(ctx context.Context) ([]*entities.TeamView, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*entities.TeamView, error)
	GetBalanceScore(ctx context.Context, id uuid.UUID) (*entities.BalanceScoreResult, error)
	GetTeamCard(ctx context.Context, id uuid.UUID) (*entities.TeamCardView, error)
	UpdateTeam(ctx context.Context, id, actorID uuid.UUID, patch *entities.TeamUpdate) (*entities.TeamView, error)
	UpdateMeetingLink(ctx context.Context, id, actorID uuid.UUID, input *entities.MeetingLinkInput) (string, error)
}

// TeamHandler handles team endpoints
type TeamHandler struct {
	membership MembershipService
	teams      TeamService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(membership MembershipService, teams TeamService) *TeamHandler {
	return &TeamHandler{membership: membership, teams: teams}
}

// currentParticipant reads the authenticated caller or writes a 401.
func currentParticipant(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetParticipantID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Participant not authenticated"))
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses a uuid path parameter or writes a 400.
func pathID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.Error(c, domainerrors.Validation("Invalid "+label+" ID"))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return false
	}
	return true
}

// ListTeams lists the newest teams
// GET /api/v1/teams
func (h *TeamHandler) ListTeams(c *gin.Context) {
	var params utils.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}
	params = utils.GetPaginationParams(params.Page, params.Limit)

	teams, err := h.teams.ListTeams(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"teams": page(teams, params),
		"meta":  utils.CalculateMeta(int64(len(teams)), params.Page, params.Limit),
	})
}

// GetTeam gets a team with its roster and pending traffic
// GET /api/v1/teams/:id
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, ok := pathID(c, "id", "team")
	if !ok {
		return
	}

	team, err := h.teams.GetTeam(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"team": team})
}

// CreateTeam creates a team led by the caller
// POST /api/v1/teams
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var input entities.CreateTeamInput
	if !bindJSON(c, &input) {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	team, err := h.membership.CreateTeam(c.Request.Context(), participantID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Team created",
		"team":    team,
	})
}

// UpdateTeam edits name, description, looking-for and capacity
// PUT /api/v1/teams/:id
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	id, ok := pathID(c, "id", "team")
	if !ok {
		return
	}
	var patch entities.TeamUpdate
	if !bindJSON(c, &patch) {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	team, err := h.teams.UpdateTeam(c.Request.Context(), id, participantID, &patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Team updated",
		"team":    team,
	})
}

// SendInvite invites a participant to the team
// POST /api/v1/teams/:id/invite
func (h *TeamHandler) SendInvite(c *gin.Context) {
	id, ok := pathID(c, "id", "team")
	if !ok {
		return
	}
	var input entities.SendInviteInput
	if !bindJSON(c, &input) {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	invite, err := h.membership.SendInvite(c.Request.Context(), id, participantID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Invite sent",
		"invite":  invite,
	})
}

// AcceptInvite joins the team through a pending invite
// POST /api/v1/teams/:id/accept/:inviteId
func (h *TeamHandler) AcceptInvite(c *gin.Context) {
	h.respondToInvite(c, entities.InviteActionAccept, "Invite accepted")
}

// DeclineInvite declines a pending invite
// POST /api/v1/teams/:id/decline/:inviteId
func (h *TeamHandler) DeclineInvite(c *gin.Context) {
	h.respondToInvite(c, entities.InviteActionDecline, "Invite declined")
}

func (h *TeamHandler) respondToInvite(c *gin.Context, action entities.InviteAction, message string) {
	teamID, ok := pathID(c, "id", "team")
	if !ok {
		return
	}
	inviteID, ok := pathID(c, "inviteId", "invite")
	if !ok {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	team, err := h.membership.RespondToInvite(c.Request.Context(), teamID, inviteID, participantID, action)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{"message": message}
	if team != nil {
		body["team"] = team
	}
	response.Success(c, http.StatusOK, body)
}

// SendJoinRequest asks to join the team
// POST /api/v1/teams/:id/join-request
func (h *TeamHandler) SendJoinRequest(c *gin.Context) {
	id, ok := pathID(c, "id", "team")
	if !ok {
		return
	}
	var input entities.JoinRequestInput
	if c.Request.ContentLength != 0 && !bindJSON(c, &input) {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	request, err := h.membership.SendJoinRequest(c.Request.Context(), id, participantID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Join request sent",
		"request": request,
	})
}

// ApproveJoinRequest admits the requester
// POST /api/v1/teams/:id/join-request/:requestId/approve
func (h *TeamHandler) ApproveJoinRequest(c *gin.Context) {
	h.respondToJoinRequest(c, entities.JoinRequestActionApprove, "Join request approved")
}

// RejectJoinRequest turns the requester down
// POST /api/v1/teams/:id/join-request/:requestId/reject
func (h *TeamHandler) RejectJoinRequest(c *gin.Context) {
	h.respondToJoinRequest(c, entities.JoinRequestActionReject, "Join request rejected")
}

func (h *TeamHandler) respondToJoinRequest(c *gin.Context, action entities.JoinRequestAction, message string) {
	teamID, ok := pathID(c, "id", "team")
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId", "request")
	if !ok {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	team, err := h.membership.RespondToJoinRequest(c.Request.Context(), teamID, requestID, participantID, action)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{"message": message}
	if team != nil {
		body["team"] = team
	}
	response.Success(c, http.StatusOK, body)
}

// LeaveTeam removes the caller from the team
// POST /api/v1/teams/:id/leave
func (h *TeamHandler) LeaveTeam(c *gin.Context) {
	id, ok := pathID(c, "id", "team")
	if !ok {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	if err := h.membership.LeaveTeam(c.Request.Context(), id, participantID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Left team"})
}

// GetBalanceScore recomputes the team's balance score
// GET /api/v1/teams/:id/balance-score
func (h *TeamHandler) GetBalanceScore(c *gin.Context) {
	id, ok := pathID(c, "id", "team")
	if !ok {
		return
	}

	result, err := h.teams.GetBalanceScore(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetTeamCard builds the shareable team card
// GET /api/v1/teams/:id/card
func (h *TeamHandler) GetTeamCard(c *gin.Context) {
	id, ok := pathID(c, "id", "team")
	if !ok {
		return
	}

	card, err := h.teams.GetTeamCard(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"card": card})
}

// UpdateMeetingLink sets the team's meeting link
// PATCH /api/v1/teams/:id/meeting-link
func (h *TeamHandler) UpdateMeetingLink(c *gin.Context) {
	id, ok := pathID(c, "id", "team")
	if !ok {
		return
	}
	var input entities.MeetingLinkInput
	if !bindJSON(c, &input) {
		return
	}
	participantID, ok := currentParticipant(c)
	if !ok {
		return
	}

	link, err := h.teams.UpdateMeetingLink(c.Request.Context(), id, participantID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":     "Meeting link updated",
		"meetingLink": link,
	})
}

// page slices an already bounded listing.
func page[T any](items []T, params utils.PaginationParams) []T {
	start := params.CalculateOffset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+params.Limit, len(items))
	return items[start:end]
}
