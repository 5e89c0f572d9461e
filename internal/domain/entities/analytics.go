package entities

import (
	"time"

	"github.com/google/uuid"
)

type DashboardOverview struct {
	TotalParticipants     int `json:"totalParticipants"`
	AvailableParticipants int `json:"availableParticipants"`
	ParticipantsInTeams   int `json:"participantsInTeams"`
	TotalTeams            int `json:"totalTeams"`
	SoloParticipantsCount int `json:"soloParticipantsCount"`
}

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type RoleCount struct {
	Role  RolePreference `json:"role"`
	Count int            `json:"count"`
}

type ExperienceCount struct {
	Level ExperienceLevel `json:"level"`
	Count int             `json:"count"`
}

type Distributions struct {
	Skills     []SkillCount      `json:"skills"`
	Roles      []RoleCount       `json:"roles"`
	SoftSkills []SkillCount      `json:"softSkills"`
	Experience []ExperienceCount `json:"experience"`
}

// SoloParticipant is a teamless participant as shown to organizers.
type SoloParticipant struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Role       RolePreference  `json:"role"`
	Skills     []string        `json:"skills"`
	SoftSkills []SoftSkill     `json:"softSkills,omitempty"`
	Experience ExperienceLevel `json:"experience,omitempty"`
	DaysSolo   int             `json:"daysSolo"`
	Boosted    bool            `json:"boosted"`
}

type RecentTeam struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	MemberCount  int       `json:"memberCount"`
	BalanceScore int       `json:"balanceScore"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Dashboard struct {
	Overview      DashboardOverview `json:"overview"`
	Distributions Distributions     `json:"distributions"`
	Alerts        struct {
		SoloParticipants []SoloParticipant `json:"soloParticipants"`
	} `json:"alerts"`
	RecentTeams []RecentTeam `json:"recentTeams"`
}

type UnassignedList struct {
	Unassigned []SoloParticipant `json:"unassigned"`
	Total      int               `json:"total"`
}

type RoleShare struct {
	Role       RolePreference `json:"role"`
	Count      int            `json:"count"`
	Percentage float64        `json:"percentage"`
}

type SkillShare struct {
	Skill      string  `json:"skill"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SkillDistribution reports role and skill shares across all participants.
// Shortages lists the roles held by less than 15% of participants.
type SkillDistribution struct {
	RoleDistribution  []RoleShare  `json:"roleDistribution"`
	SkillHeatmap      []SkillShare `json:"skillHeatmap"`
	Shortages         []RoleShare  `json:"shortages"`
	TotalParticipants int          `json:"totalParticipants"`
}

type TeamStats struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	MemberCount      int              `json:"memberCount"`
	MaxMembers       int              `json:"maxMembers"`
	IsFull           bool             `json:"isFull"`
	BalanceScore     int              `json:"balanceScore"`
	BalanceBreakdown BalanceBreakdown `json:"balanceBreakdown"`
	Roles            []RolePreference `json:"roles"`
	TotalSkills      int              `json:"totalSkills"`
	CreatedAt        time.Time        `json:"createdAt"`
}

type TeamAnalyticsSummary struct {
	TotalTeams          int     `json:"totalTeams"`
	AverageBalanceScore int     `json:"averageBalanceScore"`
	AverageTeamSize     float64 `json:"averageTeamSize"`
	FullTeams           int     `json:"fullTeams"`
}

type TeamAnalytics struct {
	Teams   []TeamStats          `json:"teams"`
	Summary TeamAnalyticsSummary `json:"summary"`
}
