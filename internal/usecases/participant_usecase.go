package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"teamsync.backend/internal/domain/entities"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/internal/domain/repositories"
	"teamsync.backend/pkg/clock"
	"teamsync.backend/pkg/logger"
	"teamsync.backend/pkg/utils"
)

const discoverLimit = 50

// ParticipantUsecase is the identity store glue: provisioning, profile reads
// and edits, discovery and availability.
type ParticipantUsecase struct {
	participantRepo repositories.ParticipantRepository
	teamRepo        repositories.TeamRepository
	uow             repositories.UnitOfWork
	clock           clock.Clock
	deadline        time.Time
}

// NewParticipantUsecase wires the usecase. A zero deadline never locks profiles.
func NewParticipantUsecase(
	participantRepo repositories.ParticipantRepository,
	teamRepo repositories.TeamRepository,
	uow repositories.UnitOfWork,
	clk clock.Clock,
	deadline time.Time,
) *ParticipantUsecase {
	if clk == nil {
		clk = clock.Real{}
	}
	return &ParticipantUsecase{
		participantRepo: participantRepo,
		teamRepo:        teamRepo,
		uow:             uow,
		clock:           clk,
		deadline:        deadline,
	}
}

// Provision finds the participant registered under email or creates one with
// a placeholder name taken from the local part.
func (u *ParticipantUsecase) Provision(ctx context.Context, email string) (*entities.Participant, bool, error) {
	normalized, err := utils.NormalizeEmail(email)
	if err != nil {
		return nil, false, domainerrors.Validation("email must be a valid email")
	}

	existing, err := u.participantRepo.GetByEmail(ctx, normalized)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domainerrors.ErrParticipantNotFound) {
		return nil, false, err
	}

	now := u.clock.Now()
	p := &entities.Participant{
		ID:              utils.GenerateUUIDv7(),
		Email:           normalized,
		Name:            strings.SplitN(normalized, "@", 2)[0],
		TechnicalSkills: []string{},
		SoftSkills:      []entities.SoftSkill{},
		Interests:       []string{},
		RolePreference:  entities.RoleOpenToAny,
		ExperienceLevel: entities.ExperienceIntermediate,
		Availability:    entities.Availability{Status: entities.AvailabilityAvailable, LastUpdated: now},
		LastActive:      now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := u.participantRepo.Create(ctx, p); err != nil {
		return nil, false, err
	}

	logger.Info(ctx, "Participant provisioned", zap.String("participant_id", p.ID.String()))
	return p, true, nil
}

// GetMe returns the caller's own profile and records activity.
func (u *ParticipantUsecase) GetMe(ctx context.Context, id uuid.UUID) (*entities.Participant, error) {
	p, err := u.participantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := u.clock.Now()
	if err := u.participantRepo.Touch(ctx, id, now); err != nil {
		logger.Warn(ctx, "Failed to record activity", zap.String("participant_id", id.String()), zap.Error(err))
	} else {
		p.LastActive = now
	}
	return p, nil
}

// GetParticipant returns a profile. Views by others are counted and never
// include the email address.
func (u *ParticipantUsecase) GetParticipant(ctx context.Context, id, viewerID uuid.UUID) (*entities.Participant, error) {
	p, err := u.participantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if id == viewerID {
		return p, nil
	}

	if err := u.participantRepo.IncrementProfileViews(ctx, id); err != nil {
		return nil, err
	}
	p.ProfileViews++
	return p.Public(), nil
}

// Discover searches participants, boosted first then newest, without emails.
func (u *ParticipantUsecase) Discover(ctx context.Context, q entities.DiscoverQuery) ([]*entities.Participant, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}

	found, err := u.participantRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Participant, 0, len(found))
	for _, p := range found {
		out = append(out, p.Public())
	}
	return out, nil
}

// UpdateProfile applies a profile patch unless editing is locked.
func (u *ParticipantUsecase) UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.ProfileUpdate) (*entities.Participant, error) {
	if input == nil {
		return nil, domainerrors.Validation("request body is required")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	if err := validateProfileEnums(input); err != nil {
		return nil, err
	}

	var updated *entities.Participant
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		p, err := u.participantRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return err
		}
		now := u.clock.Now()
		if p.ProfileLocked || u.pastDeadline(now) {
			return domainerrors.ErrProfileLocked
		}

		if err := applyProfile(p, input); err != nil {
			return err
		}
		p.LastActive = now
		if err := u.participantRepo.UpdateProfile(txCtx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Profile updated", zap.String("participant_id", id.String()))
	return updated, nil
}

// SetAvailability lets a teamless participant toggle between Available and
// Not Available. In Team is reserved for membership changes.
func (u *ParticipantUsecase) SetAvailability(ctx context.Context, id uuid.UUID, status entities.AvailabilityStatus) (*entities.Availability, error) {
	if status != entities.AvailabilityAvailable && status != entities.AvailabilityNotAvailable {
		return nil, domainerrors.Validation("status must be Available or Not Available")
	}

	var availability entities.Availability
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		p, err := u.participantRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return err
		}
		if p.HasTeam() {
			return domainerrors.ErrAlreadyInTeam
		}
		availability = entities.Availability{Status: status, LastUpdated: u.clock.Now()}
		return u.participantRepo.UpdateAvailability(txCtx, id, status, availability.LastUpdated)
	})
	if err != nil {
		return nil, err
	}
	return &availability, nil
}

// SkillGap compares what a participant would add to a team's roster.
func (u *ParticipantUsecase) SkillGap(ctx context.Context, participantID, teamID uuid.UUID) (*entities.SkillGap, error) {
	p, err := u.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	team, err := u.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	roster, err := loadRoster(ctx, u.participantRepo, team)
	if err != nil {
		return nil, err
	}
	return computeSkillGap(p, roster), nil
}

func (u *ParticipantUsecase) pastDeadline(now time.Time) bool {
	return !u.deadline.IsZero() && now.After(u.deadline)
}

func computeSkillGap(p *entities.Participant, roster []*entities.Participant) *entities.SkillGap {
	skills := aggregateSkills(roster)
	teamTech := make(map[string]bool, len(skills.Technical))
	for _, s := range skills.Technical {
		teamTech[s] = true
	}
	teamSoft := make(map[entities.SoftSkill]bool, len(skills.Soft))
	for _, s := range skills.Soft {
		teamSoft[s] = true
	}

	gap := &entities.SkillGap{
		MatchingSkills:     []string{},
		NewSkills:          []string{},
		MatchingSoftSkills: []entities.SoftSkill{},
		NewSoftSkills:      []entities.SoftSkill{},
	}
	seen := map[string]bool{}
	for _, s := range p.TechnicalSkills {
		if seen[s] {
			continue
		}
		seen[s] = true
		if teamTech[s] {
			gap.MatchingSkills = append(gap.MatchingSkills, s)
		} else {
			gap.NewSkills = append(gap.NewSkills, s)
		}
	}
	seenSoft := map[entities.SoftSkill]bool{}
	for _, s := range p.SoftSkills {
		if seenSoft[s] {
			continue
		}
		seenSoft[s] = true
		if teamSoft[s] {
			gap.MatchingSoftSkills = append(gap.MatchingSoftSkills, s)
		} else {
			gap.NewSoftSkills = append(gap.NewSoftSkills, s)
		}
	}
	for _, r := range skills.Roles {
		if r == p.RolePreference {
			gap.RoleMatch = true
		}
	}

	raw := 10*len(gap.NewSkills) + 5*len(gap.MatchingSkills) + 8*len(gap.NewSoftSkills)
	if !gap.RoleMatch {
		raw += 15
	}
	gap.Score = min(raw, 100)
	switch {
	case raw > 50:
		gap.Recommendation = "High compatibility"
	case raw > 25:
		gap.Recommendation = "Good fit"
	default:
		gap.Recommendation = "Some overlap"
	}
	return gap
}

func buildFilter(q entities.DiscoverQuery) (entities.ParticipantFilter, error) {
	filter := entities.ParticipantFilter{
		Search: strings.TrimSpace(q.Search),
		Skills: splitValues(q.Skills),
		Limit:  discoverLimit,
	}

	if q.Role != "" {
		role := entities.RolePreference(q.Role)
		if !role.Valid() {
			return filter, domainerrors.Validation("rolePreference is invalid")
		}
		filter.Role = role
	}
	if q.ExperienceLevel != "" {
		level := entities.ExperienceLevel(q.ExperienceLevel)
		if !level.Valid() {
			return filter, domainerrors.Validation("experienceLevel is invalid")
		}
		filter.ExperienceLevel = level
	}
	for _, s := range splitValues(q.SoftSkills) {
		filter.SoftSkills = append(filter.SoftSkills, entities.SoftSkill(s))
	}

	switch q.Availability {
	case entities.AvailabilityAll:
	case "":
		filter.Availability = []entities.AvailabilityStatus{entities.AvailabilityAvailable, entities.AvailabilityNotAvailable}
	default:
		status := entities.AvailabilityStatus(q.Availability)
		if !status.Valid() {
			return filter, domainerrors.Validation("availability is invalid")
		}
		filter.Availability = []entities.AvailabilityStatus{status}
	}
	return filter, nil
}

// splitValues flattens comma-separated values and drops blanks.
func splitValues(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validateProfileEnums(in *entities.ProfileUpdate) error {
	if in.RolePreference != nil && !in.RolePreference.Valid() {
		return domainerrors.Validation("rolePreference is invalid")
	}
	if in.ExperienceLevel != nil && !in.ExperienceLevel.Valid() {
		return domainerrors.Validation("experienceLevel is invalid")
	}
	for _, s := range in.SoftSkills {
		if !s.Valid() {
			return domainerrors.Validation("softSkills contains an invalid value: " + string(s))
		}
	}
	return nil
}

func applyProfile(p *entities.Participant, in *entities.ProfileUpdate) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domainerrors.Validation("name is required")
		}
		p.Name = name
	}
	if in.Bio != nil {
		p.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.GithubURL != nil {
		p.GithubURL = optionalString(*in.GithubURL)
	}
	if in.LinkedInURL != nil {
		p.LinkedInURL = optionalString(*in.LinkedInURL)
	}
	if in.PortfolioURL != nil {
		p.PortfolioURL = optionalString(*in.PortfolioURL)
	}
	if in.TechnicalSkills != nil {
		p.TechnicalSkills = dedupe(in.TechnicalSkills)
	}
	if in.SoftSkills != nil {
		p.SoftSkills = entities.ToSoftSkills(dedupe(entities.SoftSkillStrings(in.SoftSkills)))
	}
	if in.Interests != nil {
		p.Interests = dedupe(in.Interests)
	}
	if in.RolePreference != nil {
		p.RolePreference = *in.RolePreference
	}
	if in.ExperienceLevel != nil {
		p.ExperienceLevel = *in.ExperienceLevel
	}
	return nil
}

func optionalString(v string) null.String {
	v = strings.TrimSpace(v)
	return null.NewString(v, v != "")
}

// dedupe trims values and keeps the first occurrence of each.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
