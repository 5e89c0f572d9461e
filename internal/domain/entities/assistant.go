package entities

import "github.com/google/uuid"

type ImproveBioInput struct {
	Bio    string         `json:"bio" validate:"max=500"`
	Skills []string       `json:"skills" validate:"max=20"`
	Role   RolePreference `json:"role"`
}

type SuggestSkillsInput struct {
	Role          RolePreference `json:"role"`
	CurrentSkills []string       `json:"currentSkills" validate:"max=20"`
}

type TeamDescriptionInput struct {
	TeamID uuid.UUID `json:"teamId" validate:"required"`
}

// Compatibility is a free-form fit assessment between a participant and a team.
type Compatibility struct {
	Score    int    `json:"score"`
	Analysis string `json:"analysis"`
}

type TeamRecommendation struct {
	TeamID       uuid.UUID `json:"teamId"`
	TeamName     string    `json:"teamName"`
	OpenSpots    int       `json:"openSpots"`
	BalanceScore int       `json:"balanceScore"`
	Score        int       `json:"score"`
	Reason       string    `json:"reason"`
}

type AssistantHealth struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}
