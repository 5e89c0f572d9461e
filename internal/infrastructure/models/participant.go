package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Participant struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Email                 string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name                  string         `gorm:"type:varchar(100);not null"`
	Bio                   string         `gorm:"type:varchar(500);not null;default:''"`
	GithubURL             *string        `gorm:"type:text"`
	LinkedInURL           *string        `gorm:"column:linkedin_url;type:text"`
	PortfolioURL          *string        `gorm:"type:text"`
	TechnicalSkills       pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	SoftSkills            pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Interests             pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	RolePreference        string         `gorm:"type:varchar(32)"`
	ExperienceLevel       string         `gorm:"type:varchar(32)"`
	AvailabilityStatus    string         `gorm:"type:varchar(20);not null;default:'Available';index"`
	AvailabilityUpdatedAt time.Time
	TeamID                *uuid.UUID `gorm:"type:uuid;index"`
	IsBoosted             bool       `gorm:"not null;default:false"`
	BoostReason           *string    `gorm:"type:varchar(120)"`
	BoostDate             *time.Time
	InvitesReceived       int  `gorm:"not null;default:0"`
	ProfileViews          int  `gorm:"not null;default:0"`
	ProfileLocked         bool `gorm:"not null;default:false"`
	LastActive            time.Time
	CreatedAt             time.Time `gorm:"index"`
	UpdatedAt             time.Time
}
