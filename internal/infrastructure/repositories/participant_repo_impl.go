package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"teamsync.backend/internal/domain/entities"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/internal/infrastructure/models"
)

type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *entities.Participant) error {
	m := r.toModel(p)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Participant, error) {
	var m models.Participant
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrParticipantNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *ParticipantRepository) GetByEmail(ctx context.Context, email string) (*entities.Participant, error) {
	var m models.Participant
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := GetDB(ctx, r.db).Where("email = ?", normalized).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrParticipantNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByIDs returns the participants found, in no particular order. Missing ids are skipped.
func (r *ParticipantRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Participant, error) {
	if len(ids) == 0 {
		return []*entities.Participant{}, nil
	}
	var ms []models.Participant
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// Search applies column filters in SQL and any-of skill filters in memory,
// so the query stays portable across drivers.
func (r *ParticipantRepository) Search(ctx context.Context, filter entities.ParticipantFilter) ([]*entities.Participant, error) {
	query := GetDB(ctx, r.db).Model(&models.Participant{})

	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(bio) LIKE ?", like, like)
	}
	if filter.Role != "" {
		query = query.Where("role_preference = ?", string(filter.Role))
	}
	if filter.ExperienceLevel != "" {
		query = query.Where("experience_level = ?", string(filter.ExperienceLevel))
	}
	if len(filter.Availability) > 0 {
		statuses := make([]string, len(filter.Availability))
		for i, s := range filter.Availability {
			statuses[i] = string(s)
		}
		query = query.Where("availability_status IN ?", statuses)
	}

	var ms []models.Participant
	if err := query.Order("is_boosted DESC, created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}

	out := make([]*entities.Participant, 0, len(ms))
	for i := range ms {
		if !containsAny(ms[i].TechnicalSkills, filter.Skills) {
			continue
		}
		if !containsAny(ms[i].SoftSkills, entities.SoftSkillStrings(filter.SoftSkills)) {
			continue
		}
		out = append(out, r.toEntity(&ms[i]))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *ParticipantRepository) List(ctx context.Context) ([]*entities.Participant, error) {
	var ms []models.Participant
	if err := GetDB(ctx, r.db).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *ParticipantRepository) UpdateProfile(ctx context.Context, p *entities.Participant) error {
	updates := map[string]interface{}{
		"name":             p.Name,
		"bio":              p.Bio,
		"github_url":       p.GithubURL.Ptr(),
		"linkedin_url":     p.LinkedInURL.Ptr(),
		"portfolio_url":    p.PortfolioURL.Ptr(),
		"technical_skills": stringArray(p.TechnicalSkills),
		"soft_skills":      stringArray(entities.SoftSkillStrings(p.SoftSkills)),
		"interests":        stringArray(p.Interests),
		"role_preference":  string(p.RolePreference),
		"experience_level": string(p.ExperienceLevel),
		"last_active":      p.LastActive,
	}
	return r.update(ctx, p.ID, updates)
}

func (r *ParticipantRepository) UpdateMembership(ctx context.Context, id uuid.UUID, teamID *uuid.UUID, status entities.AvailabilityStatus, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"team_id":                 teamID,
		"availability_status":     string(status),
		"availability_updated_at": at,
	})
}

func (r *ParticipantRepository) UpdateAvailability(ctx context.Context, id uuid.UUID, status entities.AvailabilityStatus, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"availability_status":     string(status),
		"availability_updated_at": at,
	})
}

func (r *ParticipantRepository) IncrementInvitesReceived(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, map[string]interface{}{
		"invites_received": gorm.Expr("invites_received + ?", 1),
	})
}

func (r *ParticipantRepository) IncrementProfileViews(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, map[string]interface{}{
		"profile_views": gorm.Expr("profile_views + ?", 1),
	})
}

func (r *ParticipantRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{"last_active": at})
}

// BoostSolo flags every available, teamless, unboosted participant created at
// or before createdBefore.
func (r *ParticipantRepository) BoostSolo(ctx context.Context, createdBefore, now time.Time, reason string) (int64, error) {
	result := GetDB(ctx, r.db).
		Model(&models.Participant{}).
		Where("availability_status = ? AND team_id IS NULL AND is_boosted = ? AND created_at <= ?",
			string(entities.AvailabilityAvailable), false, createdBefore).
		Updates(map[string]interface{}{
			"is_boosted":   true,
			"boost_reason": reason,
			"boost_date":   now,
		})
	return result.RowsAffected, result.Error
}

func (r *ParticipantRepository) LockAllProfiles(ctx context.Context) (int64, error) {
	result := GetDB(ctx, r.db).
		Model(&models.Participant{}).
		Where("profile_locked = ?", false).
		Update("profile_locked", true)
	return result.RowsAffected, result.Error
}

func (r *ParticipantRepository) DisableAvailable(ctx context.Context, now time.Time) (int64, error) {
	result := GetDB(ctx, r.db).
		Model(&models.Participant{}).
		Where("availability_status = ?", string(entities.AvailabilityAvailable)).
		Updates(map[string]interface{}{
			"availability_status":     string(entities.AvailabilityNotAvailable),
			"availability_updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *ParticipantRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := GetDB(ctx, r.db).
		Model(&models.Participant{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrParticipantNotFound
	}
	return nil
}

func (r *ParticipantRepository) toEntities(ms []models.Participant) []*entities.Participant {
	items := make([]*entities.Participant, 0, len(ms))
	for i := range ms {
		items = append(items, r.toEntity(&ms[i]))
	}
	return items
}

func (r *ParticipantRepository) toEntity(m *models.Participant) *entities.Participant {
	return &entities.Participant{
		ID:              m.ID,
		Email:           m.Email,
		Name:            m.Name,
		Bio:             m.Bio,
		GithubURL:       null.StringFromPtr(m.GithubURL),
		LinkedInURL:     null.StringFromPtr(m.LinkedInURL),
		PortfolioURL:    null.StringFromPtr(m.PortfolioURL),
		TechnicalSkills: []string(m.TechnicalSkills),
		SoftSkills:      entities.ToSoftSkills(m.SoftSkills),
		Interests:       []string(m.Interests),
		RolePreference:  entities.RolePreference(m.RolePreference),
		ExperienceLevel: entities.ExperienceLevel(m.ExperienceLevel),
		Availability: entities.Availability{
			Status:      entities.AvailabilityStatus(m.AvailabilityStatus),
			LastUpdated: m.AvailabilityUpdatedAt,
		},
		TeamID: m.TeamID,
		VisibilityBoost: entities.VisibilityBoost{
			IsBoost:     m.IsBoosted,
			BoostReason: null.StringFromPtr(m.BoostReason),
			BoostDate:   null.TimeFromPtr(m.BoostDate),
		},
		InvitesReceived: m.InvitesReceived,
		ProfileViews:    m.ProfileViews,
		ProfileLocked:   m.ProfileLocked,
		LastActive:      m.LastActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (r *ParticipantRepository) toModel(e *entities.Participant) *models.Participant {
	return &models.Participant{
		ID:                    e.ID,
		Email:                 strings.ToLower(strings.TrimSpace(e.Email)),
		Name:                  e.Name,
		Bio:                   e.Bio,
		GithubURL:             e.GithubURL.Ptr(),
		LinkedInURL:           e.LinkedInURL.Ptr(),
		PortfolioURL:          e.PortfolioURL.Ptr(),
		TechnicalSkills:       stringArray(e.TechnicalSkills),
		SoftSkills:            stringArray(entities.SoftSkillStrings(e.SoftSkills)),
		Interests:             stringArray(e.Interests),
		RolePreference:        string(e.RolePreference),
		ExperienceLevel:       string(e.ExperienceLevel),
		AvailabilityStatus:    string(e.Availability.Status),
		AvailabilityUpdatedAt: e.Availability.LastUpdated,
		TeamID:                e.TeamID,
		IsBoosted:             e.VisibilityBoost.IsBoost,
		BoostReason:           e.VisibilityBoost.BoostReason.Ptr(),
		BoostDate:             e.VisibilityBoost.BoostDate.Ptr(),
		InvitesReceived:       e.InvitesReceived,
		ProfileViews:          e.ProfileViews,
		ProfileLocked:         e.ProfileLocked,
		LastActive:            e.LastActive,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}

// stringArray never returns nil so the column is written as '{}' rather than NULL.
func stringArray(in []string) pq.StringArray {
	if in == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(in)
}

func containsAny(have []string, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
