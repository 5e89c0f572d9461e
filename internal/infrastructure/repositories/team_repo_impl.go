package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"teamsync.backend/internal/domain/entities"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/internal/infrastructure/models"
	"teamsync.backend/pkg/utils"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, team *entities.Team) error {
	m := r.toModel(team)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	team.CreatedAt = m.CreatedAt
	team.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID loads the aggregate. Under WithLock the team row is locked first,
// which serializes concurrent membership changes on the same team.
func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Team, error) {
	db := GetDB(ctx, r.db)

	var m models.Team
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrTeamNotFound
		}
		return nil, err
	}

	teams, err := r.hydrate(ctx, []models.Team{m})
	if err != nil {
		return nil, err
	}
	return teams[0], nil
}

// List returns the newest teams first.
func (r *TeamRepository) List(ctx context.Context, limit int) ([]*entities.Team, error) {
	var ms []models.Team
	query := GetDB(ctx, r.db).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, ms)
}

func (r *TeamRepository) ListAll(ctx context.Context) ([]*entities.Team, error) {
	return r.List(ctx, 0)
}

// ListOpen returns teams that still have a free slot, newest first.
func (r *TeamRepository) ListOpen(ctx context.Context, limit int) ([]*entities.Team, error) {
	var ms []models.Team
	query := GetDB(ctx, r.db).Where("is_complete = ?", false).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, ms)
}

// UpdateDetails writes the leader-editable fields. A struct update is used so
// the lookingFor serializer applies.
func (r *TeamRepository) UpdateDetails(ctx context.Context, team *entities.Team) error {
	result := GetDB(ctx, r.db).
		Model(&models.Team{}).
		Where("id = ?", team.ID).
		Select("name", "description", "looking_for", "max_members", "meeting_link", "is_complete").
		Updates(&models.Team{
			Name:        team.Name,
			Description: team.Description,
			LookingFor:  toLookingForModels(team.LookingFor),
			MaxMembers:  team.MaxMembers,
			MeetingLink: team.MeetingLink,
			IsComplete:  team.IsComplete,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTeamNotFound
	}
	return nil
}

func (r *TeamRepository) SaveScore(ctx context.Context, id uuid.UUID, score int, breakdown entities.BalanceBreakdown, isComplete bool) error {
	return r.updateTeam(ctx, id, map[string]interface{}{
		"balance_score":       score,
		"role_diversity":      breakdown.RoleDiversity,
		"skill_spread":        breakdown.SkillSpread,
		"soft_skill_coverage": breakdown.SoftSkillCoverage,
		"is_complete":         isComplete,
	})
}

func (r *TeamRepository) SaveCard(ctx context.Context, id uuid.UUID, card entities.TeamCard) error {
	return r.updateTeam(ctx, id, map[string]interface{}{
		"card_generated":      card.Generated,
		"card_last_generated": card.LastGenerated,
		"card_summary":        card.Summary,
	})
}

func (r *TeamRepository) AddMember(ctx context.Context, teamID uuid.UUID, member entities.TeamMember) error {
	return GetDB(ctx, r.db).Create(&models.TeamMember{
		ID:            utils.GenerateUUIDv7(),
		TeamID:        teamID,
		ParticipantID: member.ParticipantID,
		Role:          member.Role,
		JoinedAt:      member.JoinedAt,
	}).Error
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, participantID uuid.UUID) error {
	result := GetDB(ctx, r.db).
		Where("team_id = ? AND participant_id = ?", teamID, participantID).
		Delete(&models.TeamMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotInTeam
	}
	return nil
}

func (r *TeamRepository) AddInvite(ctx context.Context, invite *entities.Invite) error {
	return GetDB(ctx, r.db).Create(&models.TeamInvite{
		ID:            invite.ID,
		TeamID:        invite.TeamID,
		ParticipantID: invite.ToID,
		InvitedBy:     invite.FromID,
		Role:          invite.Role,
		Message:       invite.Message,
		Status:        string(invite.Status),
		SentAt:        invite.CreatedAt,
		ExpiresAt:     invite.ExpiresAt,
	}).Error
}

// UpdateInviteStatus moves a Pending invite to status. A non-pending invite is
// left untouched and reported as ErrInviteNotPending.
func (r *TeamRepository) UpdateInviteStatus(ctx context.Context, inviteID uuid.UUID, status entities.InviteStatus, at time.Time) error {
	result := GetDB(ctx, r.db).
		Model(&models.TeamInvite{}).
		Where("id = ? AND status = ?", inviteID, string(entities.InviteStatusPending)).
		Updates(map[string]interface{}{
			"status":       string(status),
			"responded_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInviteNotPending
	}
	return nil
}

// ExpireInvites flips every Pending invite whose expiry is before now.
func (r *TeamRepository) ExpireInvites(ctx context.Context, now time.Time) (int64, error) {
	result := GetDB(ctx, r.db).
		Model(&models.TeamInvite{}).
		Where("status = ? AND expires_at < ?", string(entities.InviteStatusPending), now).
		Update("status", string(entities.InviteStatusExpired))
	return result.RowsAffected, result.Error
}

func (r *TeamRepository) ListPendingInvitesFor(ctx context.Context, participantID uuid.UUID) ([]*entities.Invite, error) {
	var ms []models.TeamInvite
	if err := GetDB(ctx, r.db).
		Where("participant_id = ? AND status = ?", participantID, string(entities.InviteStatusPending)).
		Order("sent_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Invite, 0, len(ms))
	for i := range ms {
		inv := inviteToEntity(&ms[i])
		out = append(out, &inv)
	}
	return out, nil
}

func (r *TeamRepository) AddJoinRequest(ctx context.Context, request *entities.JoinRequest) error {
	return GetDB(ctx, r.db).Create(&models.TeamJoinRequest{
		ID:            request.ID,
		TeamID:        request.TeamID,
		ParticipantID: request.FromID,
		Message:       request.Message,
		Status:        string(request.Status),
		RequestedAt:   request.CreatedAt,
	}).Error
}

func (r *TeamRepository) UpdateJoinRequestStatus(ctx context.Context, requestID uuid.UUID, status entities.JoinRequestStatus, at time.Time) error {
	result := GetDB(ctx, r.db).
		Model(&models.TeamJoinRequest{}).
		Where("id = ? AND status = ?", requestID, string(entities.JoinRequestStatusPending)).
		Updates(map[string]interface{}{
			"status":       string(status),
			"responded_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRequestNotPending
	}
	return nil
}

func (r *TeamRepository) updateTeam(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := GetDB(ctx, r.db).
		Model(&models.Team{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTeamNotFound
	}
	return nil
}

// hydrate loads the child rows of ms with one query per child table.
func (r *TeamRepository) hydrate(ctx context.Context, ms []models.Team) ([]*entities.Team, error) {
	if len(ms) == 0 {
		return []*entities.Team{}, nil
	}
	ids := make([]uuid.UUID, len(ms))
	for i := range ms {
		ids[i] = ms[i].ID
	}
	db := GetDB(ctx, r.db)

	var members []models.TeamMember
	if err := db.Where("team_id IN ?", ids).Order("joined_at ASC, id ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	var invites []models.TeamInvite
	if err := db.Where("team_id IN ?", ids).Order("sent_at ASC, id ASC").Find(&invites).Error; err != nil {
		return nil, err
	}
	var requests []models.TeamJoinRequest
	if err := db.Where("team_id IN ?", ids).Order("requested_at ASC, id ASC").Find(&requests).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*entities.Team, len(ms))
	out := make([]*entities.Team, 0, len(ms))
	for i := range ms {
		t := r.toEntity(&ms[i])
		byID[t.ID] = t
		out = append(out, t)
	}
	for i := range members {
		if t, ok := byID[members[i].TeamID]; ok {
			t.Members = append(t.Members, entities.TeamMember{
				ParticipantID: members[i].ParticipantID,
				Role:          members[i].Role,
				JoinedAt:      members[i].JoinedAt,
			})
		}
	}
	for i := range invites {
		if t, ok := byID[invites[i].TeamID]; ok {
			t.Invites = append(t.Invites, inviteToEntity(&invites[i]))
		}
	}
	for i := range requests {
		if t, ok := byID[requests[i].TeamID]; ok {
			t.JoinRequests = append(t.JoinRequests, entities.JoinRequest{
				ID:          requests[i].ID,
				TeamID:      requests[i].TeamID,
				FromID:      requests[i].ParticipantID,
				Message:     requests[i].Message,
				Status:      entities.JoinRequestStatus(requests[i].Status),
				CreatedAt:   requests[i].RequestedAt,
				RespondedAt: requests[i].RespondedAt,
			})
		}
	}
	return out, nil
}

func inviteToEntity(m *models.TeamInvite) entities.Invite {
	return entities.Invite{
		ID:          m.ID,
		TeamID:      m.TeamID,
		ToID:        m.ParticipantID,
		FromID:      m.InvitedBy,
		Role:        m.Role,
		Message:     m.Message,
		Status:      entities.InviteStatus(m.Status),
		CreatedAt:   m.SentAt,
		ExpiresAt:   m.ExpiresAt,
		RespondedAt: m.RespondedAt,
	}
}

func (r *TeamRepository) toEntity(m *models.Team) *entities.Team {
	lookingFor := make([]entities.LookingFor, 0, len(m.LookingFor))
	for _, lf := range m.LookingFor {
		lookingFor = append(lookingFor, entities.LookingFor{
			Role:     entities.RolePreference(lf.Role),
			Skills:   lf.Skills,
			Priority: entities.Priority(lf.Priority),
		})
	}
	return &entities.Team{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		LeaderID:     m.LeaderID,
		Members:      []entities.TeamMember{},
		MaxMembers:   m.MaxMembers,
		LookingFor:   lookingFor,
		Invites:      []entities.Invite{},
		JoinRequests: []entities.JoinRequest{},
		BalanceScore: m.BalanceScore,
		BalanceBreakdown: entities.BalanceBreakdown{
			RoleDiversity:     m.RoleDiversity,
			SkillSpread:       m.SkillSpread,
			SoftSkillCoverage: m.SoftSkillCoverage,
		},
		MeetingLink: m.MeetingLink,
		TeamCard: entities.TeamCard{
			Generated:     m.CardGenerated,
			LastGenerated: m.CardLastGenerated,
			Summary:       m.CardSummary,
		},
		IsComplete: m.IsComplete,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (r *TeamRepository) toModel(e *entities.Team) *models.Team {
	return &models.Team{
		ID:                e.ID,
		Name:              e.Name,
		Description:       e.Description,
		LeaderID:          e.LeaderID,
		MaxMembers:        e.MaxMembers,
		LookingFor:        toLookingForModels(e.LookingFor),
		BalanceScore:      e.BalanceScore,
		RoleDiversity:     e.BalanceBreakdown.RoleDiversity,
		SkillSpread:       e.BalanceBreakdown.SkillSpread,
		SoftSkillCoverage: e.BalanceBreakdown.SoftSkillCoverage,
		MeetingLink:       e.MeetingLink,
		CardGenerated:     e.TeamCard.Generated,
		CardLastGenerated: e.TeamCard.LastGenerated,
		CardSummary:       e.TeamCard.Summary,
		IsComplete:        e.IsComplete,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func toLookingForModels(in []entities.LookingFor) []models.LookingFor {
	out := make([]models.LookingFor, 0, len(in))
	for _, lf := range in {
		skills := lf.Skills
		if skills == nil {
			skills = []string{}
		}
		out = append(out, models.LookingFor{
			Role:     string(lf.Role),
			Skills:   skills,
			Priority: string(lf.Priority),
		})
	}
	return out
}
