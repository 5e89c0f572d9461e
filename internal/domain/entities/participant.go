package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// RolePreference is the role a participant wants to play in a team.
type RolePreference string

const (
	RoleDeveloper      RolePreference = "Developer"
	RoleDesigner       RolePreference = "Designer"
	RoleMLAI           RolePreference = "ML/AI"
	RoleProductManager RolePreference = "Product Manager"
	RoleOpenToAny      RolePreference = "Open to Any"
)

// AllRoles lists every role preference in display order.
var AllRoles = []RolePreference{RoleDeveloper, RoleDesigner, RoleMLAI, RoleProductManager, RoleOpenToAny}

func (r RolePreference) Valid() bool {
	for _, v := range AllRoles {
		if r == v {
			return true
		}
	}
	return false
}

// SoftSkill is one of the fixed non-technical skills.
type SoftSkill string

const (
	SoftSkillPitching         SoftSkill = "Pitching"
	SoftSkillDocumentation    SoftSkill = "Documentation"
	SoftSkillLeadership       SoftSkill = "Leadership"
	SoftSkillUIUXThinking     SoftSkill = "UI/UX Thinking"
	SoftSkillTeamCoordination SoftSkill = "Team Coordination"
	SoftSkillResearch         SoftSkill = "Research"
)

var AllSoftSkills = []SoftSkill{
	SoftSkillPitching, SoftSkillDocumentation, SoftSkillLeadership,
	SoftSkillUIUXThinking, SoftSkillTeamCoordination, SoftSkillResearch,
}

func (s SoftSkill) Valid() bool {
	for _, v := range AllSoftSkills {
		if s == v {
			return true
		}
	}
	return false
}

// ExperienceLevel is the self-declared seniority of a participant.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "Beginner"
	ExperienceIntermediate ExperienceLevel = "Intermediate"
	ExperienceAdvanced     ExperienceLevel = "Advanced"
	ExperienceExpert       ExperienceLevel = "Expert"
)

var AllExperienceLevels = []ExperienceLevel{ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced, ExperienceExpert}

func (e ExperienceLevel) Valid() bool {
	for _, v := range AllExperienceLevels {
		if e == v {
			return true
		}
	}
	return false
}

// AvailabilityStatus tells whether a participant can be recruited.
type AvailabilityStatus string

const (
	AvailabilityAvailable    AvailabilityStatus = "Available"
	AvailabilityNotAvailable AvailabilityStatus = "Not Available"
	AvailabilityInTeam       AvailabilityStatus = "In Team"
)

func (a AvailabilityStatus) Valid() bool {
	return a == AvailabilityAvailable || a == AvailabilityNotAvailable || a == AvailabilityInTeam
}

// Availability is the participant's recruitability plus when it last changed.
type Availability struct {
	Status      AvailabilityStatus `json:"status"`
	LastUpdated time.Time          `json:"lastUpdated"`
}

// VisibilityBoost marks participants the sweeper promotes in discovery.
type VisibilityBoost struct {
	IsBoost     bool        `json:"isBoost"`
	BoostReason null.String `json:"boostReason"`
	BoostDate   null.Time   `json:"boostDate"`
}

// Participant is a registered hackathon attendee.
type Participant struct {
	ID              uuid.UUID       `json:"id"`
	Email           string          `json:"email,omitempty"`
	Name            string          `json:"name"`
	Bio             string          `json:"bio"`
	GithubURL       null.String     `json:"githubUrl"`
	LinkedInURL     null.String     `json:"linkedinUrl"`
	PortfolioURL    null.String     `json:"portfolioUrl"`
	TechnicalSkills []string        `json:"technicalSkills"`
	SoftSkills      []SoftSkill     `json:"softSkills"`
	Interests       []string        `json:"interests"`
	RolePreference  RolePreference  `json:"rolePreference"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	Availability    Availability    `json:"availability"`
	TeamID          *uuid.UUID      `json:"teamId"`
	VisibilityBoost VisibilityBoost `json:"visibilityBoost"`
	InvitesReceived int             `json:"invitesReceived"`
	ProfileViews    int             `json:"profileViews"`
	ProfileLocked   bool            `json:"profileLocked"`
	LastActive      time.Time       `json:"lastActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// HasTeam reports whether the participant currently belongs to a team.
func (p *Participant) HasTeam() bool {
	return p.TeamID != nil && *p.TeamID != uuid.Nil
}

// IsAvailable reports whether the participant may be invited or request to join.
func (p *Participant) IsAvailable() bool {
	return p.Availability.Status == AvailabilityAvailable
}

// Public returns a copy safe to show to other participants.
func (p *Participant) Public() *Participant {
	cp := *p
	cp.Email = ""
	return &cp
}

// SoftSkillStrings converts soft skills to plain strings.
func SoftSkillStrings(in []SoftSkill) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

// ToSoftSkills converts plain strings to soft skills without validation.
func ToSoftSkills(in []string) []SoftSkill {
	out := make([]SoftSkill, len(in))
	for i, s := range in {
		out[i] = SoftSkill(s)
	}
	return out
}

// ParticipantFilter narrows participant discovery. Empty fields do not filter.
type ParticipantFilter struct {
	Search          string
	Role            RolePreference
	Skills          []string
	SoftSkills      []SoftSkill
	ExperienceLevel ExperienceLevel
	Availability    []AvailabilityStatus
	Limit           int
}

// ProfileUpdate carries editable profile fields; nil fields stay untouched.
type ProfileUpdate struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Bio             *string          `json:"bio" validate:"omitempty,max=500"`
	GithubURL       *string          `json:"githubUrl" validate:"omitempty,url"`
	LinkedInURL     *string          `json:"linkedinUrl" validate:"omitempty,url"`
	PortfolioURL    *string          `json:"portfolioUrl" validate:"omitempty,url"`
	TechnicalSkills []string         `json:"technicalSkills" validate:"omitempty,max=50,dive,min=1,max=50"`
	SoftSkills      []SoftSkill      `json:"softSkills" validate:"omitempty,max=6"`
	Interests       []string         `json:"interests" validate:"omitempty,max=30,dive,min=1,max=50"`
	RolePreference  *RolePreference  `json:"rolePreference"`
	ExperienceLevel *ExperienceLevel `json:"experienceLevel"`
}

// DiscoverQuery is the raw discovery request. Availability "all" disables the
// availability filter; empty means Available and Not Available.
type DiscoverQuery struct {
	Search          string
	Role            string
	Skills          []string
	SoftSkills      []string
	ExperienceLevel string
	Availability    string
}

// AvailabilityAll disables the discovery availability filter.
const AvailabilityAll = "all"
