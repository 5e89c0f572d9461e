package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMaxMembers = 4
	MinTeamSize       = 2
	MaxTeamSize       = 6
)

// Priority ranks a lookingFor entry.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// LookingFor describes a role the team is recruiting for.
type LookingFor struct {
	Role     RolePreference `json:"role"`
	Skills   []string       `json:"skills"`
	Priority Priority       `json:"priority"`
}

// TeamMember is a non-leader roster entry.
type TeamMember struct {
	ParticipantID uuid.UUID `json:"participantId"`
	Role          string    `json:"role"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// Invite is a leader-to-participant offer to join.
type Invite struct {
	ID          uuid.UUID    `json:"id"`
	TeamID      uuid.UUID    `json:"teamId"`
	ToID        uuid.UUID    `json:"to"`
	FromID      uuid.UUID    `json:"from"`
	Role        string       `json:"role"`
	Message     string       `json:"message"`
	Status      InviteStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	RespondedAt *time.Time   `json:"respondedAt,omitempty"`
}

// IsExpired reports whether a pending invite is past its expiry at now.
func (i *Invite) IsExpired(now time.Time) bool {
	return i.Status == InviteStatusPending && now.After(i.ExpiresAt)
}

// JoinRequest is a participant-to-team request to join.
type JoinRequest struct {
	ID          uuid.UUID         `json:"id"`
	TeamID      uuid.UUID         `json:"teamId"`
	FromID      uuid.UUID         `json:"from"`
	Message     string            `json:"message"`
	Status      JoinRequestStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	RespondedAt *time.Time        `json:"respondedAt,omitempty"`
}

// BalanceBreakdown holds the three rounded components of the balance score.
type BalanceBreakdown struct {
	RoleDiversity     int `json:"roleDiversity"`
	SkillSpread       int `json:"skillSpread"`
	SoftSkillCoverage int `json:"softSkillCoverage"`
}

// TeamCard is the generated shareable summary of a team.
type TeamCard struct {
	Generated     bool       `json:"generated"`
	LastGenerated *time.Time `json:"lastGenerated,omitempty"`
	Summary       string     `json:"summary"`
}

// Team is the aggregate of roster, invites and join requests.
type Team struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	LeaderID         uuid.UUID        `json:"leader"`
	Members          []TeamMember     `json:"members"`
	MaxMembers       int              `json:"maxMembers"`
	LookingFor       []LookingFor     `json:"lookingFor"`
	Invites          []Invite         `json:"pendingInvites"`
	JoinRequests     []JoinRequest    `json:"joinRequests"`
	BalanceScore     int              `json:"balanceScore"`
	BalanceBreakdown BalanceBreakdown `json:"balanceBreakdown"`
	MeetingLink      string           `json:"meetingLink"`
	TeamCard         TeamCard         `json:"teamCard"`
	IsComplete       bool             `json:"isComplete"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Occupied counts the leader plus members.
func (t *Team) Occupied() int {
	return 1 + len(t.Members)
}

// IsFull reports whether no slot is left.
func (t *Team) IsFull() bool {
	return t.Occupied() >= t.MaxMembers
}

// HasMember reports whether id is the leader or a member.
func (t *Team) HasMember(id uuid.UUID) bool {
	if t.LeaderID == id {
		return true
	}
	for _, m := range t.Members {
		if m.ParticipantID == id {
			return true
		}
	}
	return false
}

// RosterIDs returns the leader id followed by member ids in join order.
func (t *Team) RosterIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, t.Occupied())
	ids = append(ids, t.LeaderID)
	for _, m := range t.Members {
		ids = append(ids, m.ParticipantID)
	}
	return ids
}

// FindInvite returns the invite with id, or nil.
func (t *Team) FindInvite(id uuid.UUID) *Invite {
	for i := range t.Invites {
		if t.Invites[i].ID == id {
			return &t.Invites[i]
		}
	}
	return nil
}

// FindJoinRequest returns the join request with id, or nil.
func (t *Team) FindJoinRequest(id uuid.UUID) *JoinRequest {
	for i := range t.JoinRequests {
		if t.JoinRequests[i].ID == id {
			return &t.JoinRequests[i]
		}
	}
	return nil
}

// PendingInviteFor returns the pending invite addressed to participant, or nil.
func (t *Team) PendingInviteFor(participant uuid.UUID) *Invite {
	for i := range t.Invites {
		if t.Invites[i].ToID == participant && t.Invites[i].Status == InviteStatusPending {
			return &t.Invites[i]
		}
	}
	return nil
}

// PendingRequestFrom returns the pending join request sent by participant, or nil.
func (t *Team) PendingRequestFrom(participant uuid.UUID) *JoinRequest {
	for i := range t.JoinRequests {
		if t.JoinRequests[i].FromID == participant && t.JoinRequests[i].Status == JoinRequestStatusPending {
			return &t.JoinRequests[i]
		}
	}
	return nil
}

// TeamUpdate is the leader-editable subset of a team; nil fields stay untouched.
type TeamUpdate struct {
	Name        *string       `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string       `json:"description" validate:"omitempty,max=1000"`
	LookingFor  *[]LookingFor `json:"lookingFor"`
	MaxMembers  *int          `json:"maxMembers" validate:"omitempty,min=2,max=6"`
}
