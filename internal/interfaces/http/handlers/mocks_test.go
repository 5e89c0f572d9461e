package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/internal/interfaces/http/middleware"
)

// newRouter returns a test engine that authenticates every request as caller.
// uuid.Nil leaves the request anonymous.
func newRouter(caller uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if caller != uuid.Nil {
			c.Set(middleware.ParticipantIDKey, caller)
		}
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type MockMembershipService struct{ mock.Mock }

func (m *MockMembershipService) CreateTeam(ctx context.Context, leaderID uuid.UUID, input *entities.CreateTeamInput) (*entities.Team, error) {
	args := m.Called(ctx, leaderID, input)
	team, _ := args.Get(0).(*entities.Team)
	return team, args.Error(1)
}

func (m *MockMembershipService) SendInvite(ctx context.Context, teamID, actorID uuid.UUID, input *entities.SendInviteInput) (*entities.Invite, error) {
	args := m.Called(ctx, teamID, actorID, input)
	invite, _ := args.Get(0).(*entities.Invite)
	return invite, args.Error(1)
}

func (m *MockMembershipService) RespondToInvite(ctx context.Context, teamID, inviteID, responderID uuid.UUID, action entities.InviteAction) (*entities.Team, error) {
	args := m.Called(ctx, teamID, inviteID, responderID, action)
	team, _ := args.Get(0).(*entities.Team)
	return team, args.Error(1)
}

func (m *MockMembershipService) SendJoinRequest(ctx context.Context, teamID, requesterID uuid.UUID, input *entities.JoinRequestInput) (*entities.JoinRequest, error) {
	args := m.Called(ctx, teamID, requesterID, input)
	request, _ := args.Get(0).(*entities.JoinRequest)
	return request, args.Error(1)
}

func (m *MockMembershipService) RespondToJoinRequest(ctx context.Context, teamID, requestID, actorID uuid.UUID, action entities.JoinRequestAction) (*entities.Team, error) {
	args := m.Called(ctx, teamID, requestID, actorID, action)
	team, _ := args.Get(0).(*entities.Team)
	return team, args.Error(1)
}

func (m *MockMembershipService) LeaveTeam(ctx context.Context, teamID, participantID uuid.UUID) error {
	return m.Called(ctx, teamID, participantID).Error(0)
}

type MockTeamService struct{ mock.Mock }

func (m *MockTeamService) ListTeams(ctx context.Context) ([]*entities.TeamView, error) {
	args := m.Called(ctx)
	teams, _ := args.Get(0).([]*entities.TeamView)
	return teams, args.Error(1)
}

func (m *MockTeamService) GetTeam(ctx context.Context, id uuid.UUID) (*entities.TeamView, error) {
	args := m.Called(ctx, id)
	team, _ := args.Get(0).(*entities.TeamView)
	return team, args.Error(1)
}

func (m *MockTeamService) GetBalanceScore(ctx context.Context, id uuid.UUID) (*entities.BalanceScoreResult, error) {
	args := m.Called(ctx, id)
	result, _ := args.Get(0).(*entities.BalanceScoreResult)
	return result, args.Error(1)
}

func (m *MockTeamService) GetTeamCard(ctx context.Context, id uuid.UUID) (*entities.TeamCardView, error) {
	args := m.Called(ctx, id)
	card, _ := args.Get(0).(*entities.TeamCardView)
	return card, args.Error(1)
}

func (m *MockTeamService) UpdateTeam(ctx context.Context, id, actorID uuid.UUID, patch *entities.TeamUpdate) (*entities.TeamView, error) {
	args := m.Called(ctx, id, actorID, patch)
	team, _ := args.Get(0).(*entities.TeamView)
	return team, args.Error(1)
}

func (m *MockTeamService) UpdateMeetingLink(ctx context.Context, id, actorID uuid.UUID, input *entities.MeetingLinkInput) (string, error) {
	args := m.Called(ctx, id, actorID, input)
	return args.String(0), args.Error(1)
}

func (m *MockTeamService) ListMyInvites(ctx context.Context, participantID uuid.UUID) ([]*entities.InviteView, error) {
	args := m.Called(ctx, participantID)
	invites, _ := args.Get(0).([]*entities.InviteView)
	return invites, args.Error(1)
}

type MockParticipantService struct{ mock.Mock }

func (m *MockParticipantService) GetMe(ctx context.Context, id uuid.UUID) (*entities.Participant, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entities.Participant)
	return p, args.Error(1)
}

func (m *MockParticipantService) GetParticipant(ctx context.Context, id, viewerID uuid.UUID) (*entities.Participant, error) {
	args := m.Called(ctx, id, viewerID)
	p, _ := args.Get(0).(*entities.Participant)
	return p, args.Error(1)
}

func (m *MockParticipantService) Discover(ctx context.Context, q entities.DiscoverQuery) ([]*entities.Participant, error) {
	args := m.Called(ctx, q)
	found, _ := args.Get(0).([]*entities.Participant)
	return found, args.Error(1)
}

func (m *MockParticipantService) UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.ProfileUpdate) (*entities.Participant, error) {
	args := m.Called(ctx, id, input)
	p, _ := args.Get(0).(*entities.Participant)
	return p, args.Error(1)
}

func (m *MockParticipantService) SetAvailability(ctx context.Context, id uuid.UUID, status entities.AvailabilityStatus) (*entities.Availability, error) {
	args := m.Called(ctx, id, status)
	a, _ := args.Get(0).(*entities.Availability)
	return a, args.Error(1)
}

func (m *MockParticipantService) SkillGap(ctx context.Context, participantID, teamID uuid.UUID) (*entities.SkillGap, error) {
	args := m.Called(ctx, participantID, teamID)
	gap, _ := args.Get(0).(*entities.SkillGap)
	return gap, args.Error(1)
}

type MockOrganizerService struct{ mock.Mock }

func (m *MockOrganizerService) Dashboard(ctx context.Context) (*entities.Dashboard, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(*entities.Dashboard)
	return d, args.Error(1)
}

func (m *MockOrganizerService) Unassigned(ctx context.Context) (*entities.UnassignedList, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).(*entities.UnassignedList)
	return l, args.Error(1)
}

func (m *MockOrganizerService) SkillDistribution(ctx context.Context) (*entities.SkillDistribution, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(*entities.SkillDistribution)
	return d, args.Error(1)
}

func (m *MockOrganizerService) TeamAnalytics(ctx context.Context) (*entities.TeamAnalytics, error) {
	args := m.Called(ctx)
	a, _ := args.Get(0).(*entities.TeamAnalytics)
	return a, args.Error(1)
}

type MockAutomationRunner struct{ mock.Mock }

func (m *MockAutomationRunner) RunAll(ctx context.Context) *entities.AutomationReport {
	report, _ := m.Called(ctx).Get(0).(*entities.AutomationReport)
	return report
}

type MockAssistantService struct{ mock.Mock }

func (m *MockAssistantService) Health(ctx context.Context) entities.AssistantHealth {
	return m.Called(ctx).Get(0).(entities.AssistantHealth)
}

func (m *MockAssistantService) ImproveBio(ctx context.Context, participantID uuid.UUID, input *entities.ImproveBioInput) (string, error) {
	args := m.Called(ctx, participantID, input)
	return args.String(0), args.Error(1)
}

func (m *MockAssistantService) SuggestSkills(ctx context.Context, participantID uuid.UUID, input *entities.SuggestSkillsInput) ([]string, error) {
	args := m.Called(ctx, participantID, input)
	skills, _ := args.Get(0).([]string)
	return skills, args.Error(1)
}

func (m *MockAssistantService) AnalyzeCompatibility(ctx context.Context, participantID, teamID uuid.UUID) (*entities.Compatibility, error) {
	args := m.Called(ctx, participantID, teamID)
	c, _ := args.Get(0).(*entities.Compatibility)
	return c, args.Error(1)
}

func (m *MockAssistantService) GenerateTeamDescription(ctx context.Context, teamID, actorID uuid.UUID) (string, error) {
	args := m.Called(ctx, teamID, actorID)
	return args.String(0), args.Error(1)
}

func (m *MockAssistantService) RecommendTeams(ctx context.Context, participantID uuid.UUID) ([]entities.TeamRecommendation, error) {
	args := m.Called(ctx, participantID)
	recs, _ := args.Get(0).([]entities.TeamRecommendation)
	return recs, args.Error(1)
}
