package models

import (
	"time"

	"github.com/google/uuid"
)

// LookingFor is stored as a JSON document on the team row.
type LookingFor struct {
	Role     string   `json:"role"`
	Skills   []string `json:"skills"`
	Priority string   `json:"priority"`
}

type Team struct {
	ID                uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Name              string       `gorm:"type:varchar(100);not null"`
	Description       string       `gorm:"type:varchar(1000);not null;default:''"`
	LeaderID          uuid.UUID    `gorm:"type:uuid;not null;index"`
	MaxMembers        int          `gorm:"not null;default:4"`
	LookingFor        []LookingFor `gorm:"serializer:json;type:jsonb"`
	BalanceScore      int          `gorm:"not null;default:0"`
	RoleDiversity     int          `gorm:"not null;default:0"`
	SkillSpread       int          `gorm:"not null;default:0"`
	SoftSkillCoverage int          `gorm:"not null;default:0"`
	MeetingLink       string       `gorm:"type:text;not null;default:''"`
	CardGenerated     bool         `gorm:"not null;default:false"`
	CardLastGenerated *time.Time
	CardSummary       string    `gorm:"type:text;not null;default:''"`
	IsComplete        bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time `gorm:"index"`
	UpdatedAt         time.Time
}

// TeamMember is a non-leader roster row. A participant can hold one row at most.
type TeamMember struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ParticipantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Role          string    `gorm:"type:varchar(32)"`
	JoinedAt      time.Time
}

// TeamInvite is unique per (team, participant) while Pending.
type TeamInvite struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_team_invites_pending,where:status = 'Pending'"`
	ParticipantID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_team_invites_pending,where:status = 'Pending'"`
	InvitedBy     uuid.UUID `gorm:"type:uuid;not null"`
	Role          string    `gorm:"type:varchar(32)"`
	Message       string    `gorm:"type:varchar(500);not null;default:''"`
	Status        string    `gorm:"type:varchar(16);not null;index"`
	SentAt        time.Time
	ExpiresAt     time.Time `gorm:"index"`
	RespondedAt   *time.Time
}

// TeamJoinRequest is unique per (team, participant) while Pending.
type TeamJoinRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_team_join_requests_pending,where:status = 'Pending'"`
	ParticipantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_join_requests_pending,where:status = 'Pending'"`
	Message       string    `gorm:"type:varchar(500);not null;default:''"`
	Status        string    `gorm:"type:varchar(16);not null"`
	RequestedAt   time.Time
	RespondedAt   *time.Time
}
