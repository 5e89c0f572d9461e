package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// InviteAction is the recipient's answer to an invite.
type InviteAction string

const (
	InviteActionAccept  InviteAction = "accept"
	InviteActionDecline InviteAction = "decline"
)

// JoinRequestAction is the leader's answer to a join request.
type JoinRequestAction string

const (
	JoinRequestActionApprove JoinRequestAction = "approve"
	JoinRequestActionReject  JoinRequestAction = "reject"
)

// CreateTeamInput is the payload for creating a team. MaxMembers 0 means the default.
type CreateTeamInput struct {
	Name        string       `json:"name" validate:"required,max=100"`
	Description string       `json:"description" validate:"max=1000"`
	MaxMembers  int          `json:"maxMembers" validate:"omitempty,min=2,max=6"`
	LookingFor  []LookingFor `json:"lookingFor" validate:"max=10"`
}

type SendInviteInput struct {
	ParticipantID uuid.UUID `json:"participantId" validate:"required"`
	Role          string    `json:"role" validate:"max=32"`
	Message       string    `json:"message" validate:"max=500"`
}

type JoinRequestInput struct {
	Message string `json:"message" validate:"max=500"`
}

type MeetingLinkInput struct {
	MeetingLink string `json:"meetingLink" validate:"omitempty,url,max=500"`
}

// ParticipantSummary is the part of a participant shown on team pages.
type ParticipantSummary struct {
	ID              uuid.UUID          `json:"id"`
	Name            string             `json:"name"`
	RolePreference  RolePreference     `json:"rolePreference"`
	ExperienceLevel ExperienceLevel    `json:"experienceLevel"`
	TechnicalSkills []string           `json:"technicalSkills"`
	SoftSkills      []SoftSkill        `json:"softSkills"`
	Availability    AvailabilityStatus `json:"availability"`
	GithubURL       null.String        `json:"githubUrl"`
	LinkedInURL     null.String        `json:"linkedinUrl"`
	PortfolioURL    null.String        `json:"portfolioUrl"`
}

func SummaryOf(p *Participant) *ParticipantSummary {
	if p == nil {
		return nil
	}
	return &ParticipantSummary{
		ID:              p.ID,
		Name:            p.Name,
		RolePreference:  p.RolePreference,
		ExperienceLevel: p.ExperienceLevel,
		TechnicalSkills: p.TechnicalSkills,
		SoftSkills:      p.SoftSkills,
		Availability:    p.Availability.Status,
		GithubURL:       p.GithubURL,
		LinkedInURL:     p.LinkedInURL,
		PortfolioURL:    p.PortfolioURL,
	}
}

type MemberView struct {
	TeamMember
	Participant *ParticipantSummary `json:"participant"`
}

type InviteView struct {
	Invite
	Participant *ParticipantSummary `json:"participant,omitempty"`
	TeamName    string              `json:"teamName,omitempty"`
	Inviter     *ParticipantSummary `json:"inviter,omitempty"`
}

type JoinRequestView struct {
	JoinRequest
	Participant *ParticipantSummary `json:"participant"`
}

// TeamView is a team with its participant references resolved.
type TeamView struct {
	ID               uuid.UUID           `json:"id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	Leader           *ParticipantSummary `json:"leader"`
	Members          []MemberView        `json:"members"`
	MaxMembers       int                 `json:"maxMembers"`
	LookingFor       []LookingFor        `json:"lookingFor"`
	Invites          []InviteView        `json:"pendingInvites,omitempty"`
	JoinRequests     []JoinRequestView   `json:"joinRequests,omitempty"`
	BalanceScore     int                 `json:"balanceScore"`
	BalanceBreakdown BalanceBreakdown    `json:"balanceBreakdown"`
	MeetingLink      string              `json:"meetingLink"`
	TeamCard         TeamCard            `json:"teamCard"`
	IsComplete       bool                `json:"isComplete"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// BalanceScoreResult is the recomputed score with its display grade.
type BalanceScoreResult struct {
	BalanceScore int              `json:"balanceScore"`
	Breakdown    BalanceBreakdown `json:"breakdown"`
	Grade        string           `json:"grade"`
}

type CardPerson struct {
	Name string         `json:"name"`
	Role RolePreference `json:"role"`
}

type CardSkills struct {
	Technical []string         `json:"technical"`
	Soft      []SoftSkill      `json:"soft"`
	Roles     []RolePreference `json:"roles"`
}

// TeamCardView is the shareable team summary.
type TeamCardView struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	MemberCount  int          `json:"memberCount"`
	Leader       CardPerson   `json:"leader"`
	Members      []CardPerson `json:"members"`
	Skills       CardSkills   `json:"skills"`
	BalanceScore int          `json:"balanceScore"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// SkillGap compares a participant against a team roster.
type SkillGap struct {
	Score              int         `json:"score"`
	MatchingSkills     []string    `json:"matchingSkills"`
	NewSkills          []string    `json:"newSkills"`
	MatchingSoftSkills []SoftSkill `json:"matchingSoftSkills"`
	NewSoftSkills      []SoftSkill `json:"newSoftSkills"`
	RoleMatch          bool        `json:"roleMatch"`
	Recommendation     string      `json:"recommendation"`
}
