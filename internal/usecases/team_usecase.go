package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"teamsync.backend/internal/domain/entities"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/internal/domain/repositories"
	"teamsync.backend/internal/domain/scoring"
	"teamsync.backend/pkg/clock"
	"teamsync.backend/pkg/logger"
	"teamsync.backend/pkg/utils"
)

const teamListLimit = 50

// TeamUsecase serves team reads and the leader edits that do not touch the roster.
type TeamUsecase struct {
	teamRepo        repositories.TeamRepository
	participantRepo repositories.ParticipantRepository
	guard           guard
	uow             repositories.UnitOfWork
	clock           clock.Clock
}

func NewTeamUsecase(
	teamRepo repositories.TeamRepository,
	participantRepo repositories.ParticipantRepository,
	uow repositories.UnitOfWork,
	locker repositories.TeamLocker,
	clk clock.Clock,
) *TeamUsecase {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TeamUsecase{
		teamRepo:        teamRepo,
		participantRepo: participantRepo,
		guard:           guard{uow: uow, locker: locker},
		uow:             uow,
		clock:           clk,
	}
}

// ListTeams returns the newest teams with leader and member summaries.
func (u *TeamUsecase) ListTeams(ctx context.Context) ([]*entities.TeamView, error) {
	teams, err := u.teamRepo.List(ctx, teamListLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(teams)*entities.DefaultMaxMembers)
	for _, t := range teams {
		ids = append(ids, t.RosterIDs()...)
	}
	byID, err := loadParticipants(ctx, u.participantRepo, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*entities.TeamView, 0, len(teams))
	for _, t := range teams {
		views = append(views, buildTeamView(t, byID, false))
	}
	return views, nil
}

// GetTeam returns the team with every participant reference resolved,
// including invites and join requests.
func (u *TeamUsecase) GetTeam(ctx context.Context, id uuid.UUID) (*entities.TeamView, error) {
	team, err := u.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := team.RosterIDs()
	for _, inv := range team.Invites {
		ids = append(ids, inv.ToID)
	}
	for _, req := range team.JoinRequests {
		ids = append(ids, req.FromID)
	}
	byID, err := loadParticipants(ctx, u.participantRepo, ids)
	if err != nil {
		return nil, err
	}
	return buildTeamView(team, byID, true), nil
}

// GetBalanceScore recomputes and stores the score from the current roster.
func (u *TeamUsecase) GetBalanceScore(ctx context.Context, id uuid.UUID) (*entities.BalanceScoreResult, error) {
	var result *entities.BalanceScoreResult
	err := u.guard.run(ctx, teamKey(id), func(txCtx context.Context) error {
		team, err := u.teamRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return err
		}
		score, err := rescore(txCtx, u.teamRepo, u.participantRepo, team)
		if err != nil {
			return err
		}
		result = &entities.BalanceScoreResult{
			BalanceScore: score.Total,
			Breakdown:    team.BalanceBreakdown,
			Grade:        scoring.Grade(score.Total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetTeamCard aggregates the roster into a shareable card and records that it
// was generated.
func (u *TeamUsecase) GetTeamCard(ctx context.Context, id uuid.UUID) (*entities.TeamCardView, error) {
	team, err := u.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	roster, err := loadRoster(ctx, u.participantRepo, team)
	if err != nil {
		return nil, err
	}

	card := &entities.TeamCardView{
		Name:         team.Name,
		Description:  team.Description,
		MemberCount:  len(roster),
		Members:      []entities.CardPerson{},
		Skills:       aggregateSkills(roster),
		BalanceScore: team.BalanceScore,
		CreatedAt:    team.CreatedAt,
	}
	for i, p := range roster {
		person := entities.CardPerson{Name: p.Name, Role: p.RolePreference}
		if i == 0 && p.ID == team.LeaderID {
			card.Leader = person
			continue
		}
		card.Members = append(card.Members, person)
	}

	now := u.clock.Now()
	summary := fmt.Sprintf("%s - %d members with %d technical skills", team.Name, card.MemberCount, len(card.Skills.Technical))
	if err := u.teamRepo.SaveCard(ctx, team.ID, entities.TeamCard{Generated: true, LastGenerated: &now, Summary: summary}); err != nil {
		return nil, err
	}
	return card, nil
}

// UpdateTeam applies a leader patch. Shrinking maxMembers below the current
// roster fails with ErrCapacityBelowRoster.
func (u *TeamUsecase) UpdateTeam(ctx context.Context, id, actorID uuid.UUID, patch *entities.TeamUpdate) (*entities.TeamView, error) {
	if patch == nil {
		return nil, domainerrors.Validation("request body is required")
	}
	if err := utils.ValidateStruct(patch); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	if patch.LookingFor != nil {
		if err := validateLookingFor(*patch.LookingFor); err != nil {
			return nil, err
		}
		if len(*patch.LookingFor) > 10 {
			return nil, domainerrors.Validation("lookingFor must contain at most 10 entries")
		}
	}

	err := u.guard.run(ctx, teamKey(id), func(txCtx context.Context) error {
		team, err := u.teamRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return err
		}
		if team.LeaderID != actorID {
			return domainerrors.ErrNotLeader
		}

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return domainerrors.Validation("name cannot be empty")
			}
			team.Name = name
		}
		if patch.Description != nil {
			team.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.LookingFor != nil {
			team.LookingFor = normalizeLookingFor(*patch.LookingFor)
		}
		if patch.MaxMembers != nil {
			if *patch.MaxMembers < team.Occupied() {
				return domainerrors.ErrCapacityBelowRoster
			}
			team.MaxMembers = *patch.MaxMembers
		}
		team.IsComplete = team.IsFull()
		return u.teamRepo.UpdateDetails(txCtx, team)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Team updated", zap.String("team_id", id.String()))
	return u.GetTeam(ctx, id)
}

// UpdateMeetingLink sets or clears the team's meeting link.
func (u *TeamUsecase) UpdateMeetingLink(ctx context.Context, id, actorID uuid.UUID, input *entities.MeetingLinkInput) (string, error) {
	if input == nil {
		input = &entities.MeetingLinkInput{}
	}
	input.MeetingLink = strings.TrimSpace(input.MeetingLink)
	if err := utils.ValidateStruct(input); err != nil {
		return "", domainerrors.Validation(err.Error())
	}

	err := u.guard.run(ctx, teamKey(id), func(txCtx context.Context) error {
		team, err := u.teamRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return err
		}
		if team.LeaderID != actorID {
			return domainerrors.ErrNotLeader
		}
		team.MeetingLink = input.MeetingLink
		return u.teamRepo.UpdateDetails(txCtx, team)
	})
	if err != nil {
		return "", err
	}
	return input.MeetingLink, nil
}

// ListMyInvites returns the caller's pending invites that have not yet expired,
// oldest first, with team name and inviter resolved.
func (u *TeamUsecase) ListMyInvites(ctx context.Context, participantID uuid.UUID) ([]*entities.InviteView, error) {
	invites, err := u.teamRepo.ListPendingInvitesFor(ctx, participantID)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	live := make([]*entities.Invite, 0, len(invites))
	inviterIDs := make([]uuid.UUID, 0, len(invites))
	for _, inv := range invites {
		if inv.IsExpired(now) {
			continue
		}
		live = append(live, inv)
		inviterIDs = append(inviterIDs, inv.FromID)
	}

	inviters, err := loadParticipants(ctx, u.participantRepo, inviterIDs)
	if err != nil {
		return nil, err
	}

	teamNames := make(map[uuid.UUID]string)
	views := make([]*entities.InviteView, 0, len(live))
	for _, inv := range live {
		name, ok := teamNames[inv.TeamID]
		if !ok {
			team, err := u.teamRepo.GetByID(ctx, inv.TeamID)
			if err != nil {
				return nil, err
			}
			name = team.Name
			teamNames[inv.TeamID] = name
		}
		views = append(views, &entities.InviteView{
			Invite:   *inv,
			TeamName: name,
			Inviter:  entities.SummaryOf(inviters[inv.FromID]),
		})
	}
	return views, nil
}

func buildTeamView(t *entities.Team, byID map[uuid.UUID]*entities.Participant, full bool) *entities.TeamView {
	view := &entities.TeamView{
		ID:               t.ID,
		Name:             t.Name,
		Description:      t.Description,
		Leader:           entities.SummaryOf(byID[t.LeaderID]),
		Members:          make([]entities.MemberView, 0, len(t.Members)),
		MaxMembers:       t.MaxMembers,
		LookingFor:       t.LookingFor,
		BalanceScore:     t.BalanceScore,
		BalanceBreakdown: t.BalanceBreakdown,
		MeetingLink:      t.MeetingLink,
		TeamCard:         t.TeamCard,
		IsComplete:       t.IsComplete,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	if view.LookingFor == nil {
		view.LookingFor = []entities.LookingFor{}
	}
	for _, m := range t.Members {
		view.Members = append(view.Members, entities.MemberView{TeamMember: m, Participant: entities.SummaryOf(byID[m.ParticipantID])})
	}
	if !full {
		return view
	}

	view.Invites = make([]entities.InviteView, 0, len(t.Invites))
	for _, inv := range t.Invites {
		view.Invites = append(view.Invites, entities.InviteView{Invite: inv, Participant: entities.SummaryOf(byID[inv.ToID])})
	}
	view.JoinRequests = make([]entities.JoinRequestView, 0, len(t.JoinRequests))
	for _, req := range t.JoinRequests {
		view.JoinRequests = append(view.JoinRequests, entities.JoinRequestView{JoinRequest: req, Participant: entities.SummaryOf(byID[req.FromID])})
	}
	return view
}

// aggregateSkills collects distinct skills and roles in first-seen order.
func aggregateSkills(roster []*entities.Participant) entities.CardSkills {
	out := entities.CardSkills{
		Technical: []string{},
		Soft:      []entities.SoftSkill{},
		Roles:     []entities.RolePreference{},
	}
	seenTech := map[string]bool{}
	seenSoft := map[entities.SoftSkill]bool{}
	seenRole := map[entities.RolePreference]bool{}
	for _, p := range roster {
		for _, s := range p.TechnicalSkills {
			if !seenTech[s] {
				seenTech[s] = true
				out.Technical = append(out.Technical, s)
			}
		}
		for _, s := range p.SoftSkills {
			if !seenSoft[s] {
				seenSoft[s] = true
				out.Soft = append(out.Soft, s)
			}
		}
		if !seenRole[p.RolePreference] {
			seenRole[p.RolePreference] = true
			out.Roles = append(out.Roles, p.RolePreference)
		}
	}
	return out
}
