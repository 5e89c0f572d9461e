package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"teamsync.backend/internal/domain/entities"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/internal/domain/repositories"
	"teamsync.backend/pkg/clock"
	"teamsync.backend/pkg/logger"
	"teamsync.backend/pkg/utils"
)

const DefaultInviteTTL = 48 * time.Hour

// Membership operation names used for metrics and logs.
const (
	OpCreateTeam       = "create_team"
	OpSendInvite       = "send_invite"
	OpRespondInvite    = "respond_invite"
	OpSendJoinRequest  = "send_join_request"
	OpRespondJoinReq   = "respond_join_request"
	OpLeaveTeam        = "leave_team"
	OpExpireOldInvites = "expire_old_invites"
	outcomeOK          = "ok"
)

// MembershipUsecase is the only writer of team rosters, invite and join
// request statuses, and participant team references. Every mutation on an
// existing team holds the team lock and re-reads the team and participants
// with row locks inside one transaction.
type MembershipUsecase struct {
	teamRepo        repositories.TeamRepository
	participantRepo repositories.ParticipantRepository
	guard           guard
	uow             repositories.UnitOfWork
	clock           clock.Clock
	notifier        InviteNotifier
	metrics         Metrics
	inviteTTL       time.Duration
}

func NewMembershipUsecase(
	teamRepo repositories.TeamRepository,
	participantRepo repositories.ParticipantRepository,
	uow repositories.UnitOfWork,
	locker repositories.TeamLocker,
	clk clock.Clock,
	notifier InviteNotifier,
	metrics Metrics,
	inviteTTL time.Duration,
) *MembershipUsecase {
	if clk == nil {
		clk = clock.Real{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if inviteTTL <= 0 {
		inviteTTL = DefaultInviteTTL
	}
	return &MembershipUsecase{
		teamRepo:        teamRepo,
		participantRepo: participantRepo,
		guard:           guard{uow: uow, locker: locker},
		uow:             uow,
		clock:           clk,
		notifier:        notifier,
		metrics:         metrics,
		inviteTTL:       inviteTTL,
	}
}

// CreateTeam makes leaderID the leader of a new team.
func (u *MembershipUsecase) CreateTeam(ctx context.Context, leaderID uuid.UUID, input *entities.CreateTeamInput) (team *entities.Team, err error) {
	defer func() { u.record(OpCreateTeam, err) }()

	if err := validateCreateTeam(input); err != nil {
		return nil, err
	}

	err = u.guard.run(ctx, participantKey(leaderID), func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		leader, err := u.participantRepo.GetByID(lockCtx, leaderID)
		if err != nil {
			return err
		}
		if leader.HasTeam() {
			return domainerrors.ErrAlreadyInTeam
		}

		now := u.clock.Now()
		maxMembers := input.MaxMembers
		if maxMembers == 0 {
			maxMembers = entities.DefaultMaxMembers
		}
		team = &entities.Team{
			ID:           utils.GenerateUUIDv7(),
			Name:         strings.TrimSpace(input.Name),
			Description:  strings.TrimSpace(input.Description),
			LeaderID:     leader.ID,
			Members:      []entities.TeamMember{},
			MaxMembers:   maxMembers,
			LookingFor:   normalizeLookingFor(input.LookingFor),
			Invites:      []entities.Invite{},
			JoinRequests: []entities.JoinRequest{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := u.teamRepo.Create(txCtx, team); err != nil {
			return err
		}
		if err := u.participantRepo.UpdateMembership(txCtx, leader.ID, &team.ID, entities.AvailabilityInTeam, now); err != nil {
			return err
		}
		_, err = rescore(txCtx, u.teamRepo, u.participantRepo, team)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Team created", zap.String("team_id", team.ID.String()), zap.String("leader_id", leaderID.String()))
	return team, nil
}

// SendInvite lets the leader invite an available, teamless participant.
func (u *MembershipUsecase) SendInvite(ctx context.Context, teamID, actorID uuid.UUID, input *entities.SendInviteInput) (invite *entities.Invite, err error) {
	defer func() { u.record(OpSendInvite, err) }()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	var notification entities.InviteNotification
	err = u.guard.run(ctx, teamKey(teamID), func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		team, err := u.teamRepo.GetByID(lockCtx, teamID)
		if err != nil {
			return err
		}
		if team.LeaderID != actorID {
			return domainerrors.ErrNotLeader
		}
		if team.IsFull() {
			return domainerrors.ErrTeamFull
		}

		target, err := u.participantRepo.GetByID(lockCtx, input.ParticipantID)
		if err != nil {
			return err
		}
		if target.HasTeam() {
			return domainerrors.ErrTargetAlreadyInTeam
		}
		if !target.IsAvailable() {
			return domainerrors.ErrTargetUnavailable
		}

		now := u.clock.Now()
		if existing := team.PendingInviteFor(target.ID); existing != nil {
			if !existing.IsExpired(now) {
				return domainerrors.ErrDuplicateInvite
			}
			// a stale pending invite is expired in place so it no longer blocks
			if err := u.teamRepo.UpdateInviteStatus(txCtx, existing.ID, entities.InviteStatusExpired, now); err != nil {
				return err
			}
		}

		role := strings.TrimSpace(input.Role)
		if role == "" {
			role = string(target.RolePreference)
		}
		invite = &entities.Invite{
			ID:        utils.GenerateUUIDv7(),
			TeamID:    team.ID,
			ToID:      target.ID,
			FromID:    actorID,
			Role:      role,
			Message:   strings.TrimSpace(input.Message),
			Status:    entities.InviteStatusPending,
			CreatedAt: now,
			ExpiresAt: now.Add(u.inviteTTL),
		}
		if err := u.teamRepo.AddInvite(txCtx, invite); err != nil {
			return err
		}
		if err := u.participantRepo.IncrementInvitesReceived(txCtx, target.ID); err != nil {
			return err
		}

		inviter, err := u.participantRepo.GetByID(txCtx, actorID)
		if err != nil {
			return err
		}
		notification = entities.InviteNotification{
			ToEmail:     target.Email,
			ToName:      target.Name,
			TeamName:    team.Name,
			InviterName: inviter.Name,
			Role:        role,
			Message:     invite.Message,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if nerr := u.notifier.NotifyInvite(ctx, notification); nerr != nil {
		logger.Warn(ctx, "Failed to send invite notification",
			zap.String("invite_id", invite.ID.String()),
			zap.Error(nerr),
		)
	}
	logger.Info(ctx, "Invite sent", zap.String("team_id", teamID.String()), zap.String("invite_id", invite.ID.String()))
	return invite, nil
}

// RespondToInvite accepts or declines an invite on behalf of its recipient.
// A pending invite found past its expiry is marked Expired and committed even
// though the call fails with ErrInviteExpired.
func (u *MembershipUsecase) RespondToInvite(ctx context.Context, teamID, inviteID, responderID uuid.UUID, action entities.InviteAction) (team *entities.Team, err error) {
	defer func() { u.record(OpRespondInvite, err) }()

	if action != entities.InviteActionAccept && action != entities.InviteActionDecline {
		return nil, domainerrors.Validation("action must be accept or decline")
	}

	var outcome error
	err = u.guard.run(ctx, teamKey(teamID), func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		t, err := u.teamRepo.GetByID(lockCtx, teamID)
		if err != nil {
			return err
		}
		invite := t.FindInvite(inviteID)
		if invite == nil {
			return domainerrors.ErrInviteNotFound
		}
		if invite.ToID != responderID {
			return domainerrors.ErrNotRecipient
		}
		if invite.Status != entities.InviteStatusPending {
			return domainerrors.ErrInviteNotPending
		}

		now := u.clock.Now()
		if invite.IsExpired(now) {
			if err := u.setInviteStatus(txCtx, invite, entities.InviteStatusExpired, now); err != nil {
				return err
			}
			outcome = domainerrors.ErrInviteExpired
			return nil
		}

		if action == entities.InviteActionDecline {
			team = t
			return u.setInviteStatus(txCtx, invite, entities.InviteStatusDeclined, now)
		}

		if t.IsFull() {
			return domainerrors.ErrTeamFull
		}
		responder, err := u.participantRepo.GetByID(lockCtx, responderID)
		if err != nil {
			return err
		}
		if responder.HasTeam() {
			return domainerrors.ErrAlreadyInTeam
		}

		role := invite.Role
		if role == "" {
			role = string(responder.RolePreference)
		}
		if err := u.addMember(txCtx, t, responder, role, now); err != nil {
			return err
		}
		if err := u.setInviteStatus(txCtx, invite, entities.InviteStatusAccepted, now); err != nil {
			return err
		}
		if _, err := rescore(txCtx, u.teamRepo, u.participantRepo, t); err != nil {
			return err
		}
		team = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}

	logger.Info(ctx, "Invite answered",
		zap.String("team_id", teamID.String()),
		zap.String("invite_id", inviteID.String()),
		zap.String("action", string(action)),
	)
	return team, nil
}

// SendJoinRequest files a pending request from requesterID to join the team.
func (u *MembershipUsecase) SendJoinRequest(ctx context.Context, teamID, requesterID uuid.UUID, input *entities.JoinRequestInput) (request *entities.JoinRequest, err error) {
	defer func() { u.record(OpSendJoinRequest, err) }()

	if input == nil {
		input = &entities.JoinRequestInput{}
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	err = u.guard.run(ctx, teamKey(teamID), func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		team, err := u.teamRepo.GetByID(lockCtx, teamID)
		if err != nil {
			return err
		}
		if team.IsFull() {
			return domainerrors.ErrTeamFull
		}

		requester, err := u.participantRepo.GetByID(lockCtx, requesterID)
		if err != nil {
			return err
		}
		if requester.HasTeam() {
			return domainerrors.ErrAlreadyInTeam
		}
		if !requester.IsAvailable() {
			return domainerrors.ErrRequesterUnavailable
		}
		if team.PendingRequestFrom(requesterID) != nil {
			return domainerrors.ErrDuplicateRequest
		}

		request = &entities.JoinRequest{
			ID:        utils.GenerateUUIDv7(),
			TeamID:    team.ID,
			FromID:    requesterID,
			Message:   strings.TrimSpace(input.Message),
			Status:    entities.JoinRequestStatusPending,
			CreatedAt: u.clock.Now(),
		}
		return u.teamRepo.AddJoinRequest(txCtx, request)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Join request sent", zap.String("team_id", teamID.String()), zap.String("request_id", request.ID.String()))
	return request, nil
}

// RespondToJoinRequest lets the leader approve or reject a pending request.
// Approving a requester who already joined elsewhere rejects the request and
// approving one who is already on this roster approves it; both commit and
// still return their error.
func (u *MembershipUsecase) RespondToJoinRequest(ctx context.Context, teamID, requestID, actorID uuid.UUID, action entities.JoinRequestAction) (team *entities.Team, err error) {
	defer func() { u.record(OpRespondJoinReq, err) }()

	if action != entities.JoinRequestActionApprove && action != entities.JoinRequestActionReject {
		return nil, domainerrors.Validation("action must be approve or reject")
	}

	var outcome error
	err = u.guard.run(ctx, teamKey(teamID), func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		t, err := u.teamRepo.GetByID(lockCtx, teamID)
		if err != nil {
			return err
		}
		if t.LeaderID != actorID {
			return domainerrors.ErrNotLeader
		}
		request := t.FindJoinRequest(requestID)
		if request == nil {
			return domainerrors.ErrRequestNotFound
		}
		if request.Status != entities.JoinRequestStatusPending {
			return domainerrors.ErrRequestNotPending
		}

		now := u.clock.Now()
		if action == entities.JoinRequestActionReject {
			team = t
			return u.setRequestStatus(txCtx, request, entities.JoinRequestStatusRejected, now)
		}

		if t.IsFull() {
			return domainerrors.ErrTeamFull
		}
		requester, err := u.participantRepo.GetByID(lockCtx, request.FromID)
		if err != nil {
			return err
		}

		if t.HasMember(requester.ID) {
			if err := u.setRequestStatus(txCtx, request, entities.JoinRequestStatusApproved, now); err != nil {
				return err
			}
			if requester.TeamID == nil || *requester.TeamID != t.ID {
				if err := u.participantRepo.UpdateMembership(txCtx, requester.ID, &t.ID, entities.AvailabilityInTeam, now); err != nil {
					return err
				}
			}
			outcome = domainerrors.ErrAlreadyMember
			return nil
		}
		if requester.HasTeam() {
			if err := u.setRequestStatus(txCtx, request, entities.JoinRequestStatusRejected, now); err != nil {
				return err
			}
			outcome = domainerrors.ErrTargetAlreadyInTeam
			return nil
		}

		if err := u.addMember(txCtx, t, requester, string(requester.RolePreference), now); err != nil {
			return err
		}
		if err := u.setRequestStatus(txCtx, request, entities.JoinRequestStatusApproved, now); err != nil {
			return err
		}
		if _, err := rescore(txCtx, u.teamRepo, u.participantRepo, t); err != nil {
			return err
		}
		team = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}

	logger.Info(ctx, "Join request answered",
		zap.String("team_id", teamID.String()),
		zap.String("request_id", requestID.String()),
		zap.String("action", string(action)),
	)
	return team, nil
}

// LeaveTeam removes a non-leader member and makes them available again.
func (u *MembershipUsecase) LeaveTeam(ctx context.Context, teamID, participantID uuid.UUID) (err error) {
	defer func() { u.record(OpLeaveTeam, err) }()

	err = u.guard.run(ctx, teamKey(teamID), func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		team, err := u.teamRepo.GetByID(lockCtx, teamID)
		if err != nil {
			return err
		}
		if team.LeaderID == participantID {
			return domainerrors.ErrLeaderCannotLeave
		}
		if !team.HasMember(participantID) {
			return domainerrors.ErrNotInTeam
		}

		now := u.clock.Now()
		if err := u.teamRepo.RemoveMember(txCtx, team.ID, participantID); err != nil {
			return err
		}
		if err := u.participantRepo.UpdateMembership(txCtx, participantID, nil, entities.AvailabilityAvailable, now); err != nil {
			return err
		}

		members := team.Members[:0]
		for _, m := range team.Members {
			if m.ParticipantID != participantID {
				members = append(members, m)
			}
		}
		team.Members = members
		_, err = rescore(txCtx, u.teamRepo, u.participantRepo, team)
		return err
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "Participant left team", zap.String("team_id", teamID.String()), zap.String("participant_id", participantID.String()))
	return nil
}

// ExpireOldInvites marks every pending invite past its expiry as Expired.
// Running it again without the clock moving changes nothing.
func (u *MembershipUsecase) ExpireOldInvites(ctx context.Context) (n int64, err error) {
	defer func() { u.record(OpExpireOldInvites, err) }()
	return u.teamRepo.ExpireInvites(ctx, u.clock.Now())
}

func (u *MembershipUsecase) addMember(ctx context.Context, team *entities.Team, p *entities.Participant, role string, now time.Time) error {
	member := entities.TeamMember{ParticipantID: p.ID, Role: role, JoinedAt: now}
	if err := u.teamRepo.AddMember(ctx, team.ID, member); err != nil {
		return err
	}
	if err := u.participantRepo.UpdateMembership(ctx, p.ID, &team.ID, entities.AvailabilityInTeam, now); err != nil {
		return err
	}
	team.Members = append(team.Members, member)
	return nil
}

func (u *MembershipUsecase) setInviteStatus(ctx context.Context, invite *entities.Invite, status entities.InviteStatus, now time.Time) error {
	if !invite.Status.CanTransitionTo(status) {
		return domainerrors.ErrInviteNotPending
	}
	if err := u.teamRepo.UpdateInviteStatus(ctx, invite.ID, status, now); err != nil {
		return err
	}
	invite.Status = status
	invite.RespondedAt = &now
	return nil
}

func (u *MembershipUsecase) setRequestStatus(ctx context.Context, request *entities.JoinRequest, status entities.JoinRequestStatus, now time.Time) error {
	if !request.Status.CanTransitionTo(status) {
		return domainerrors.ErrRequestNotPending
	}
	if err := u.teamRepo.UpdateJoinRequestStatus(ctx, request.ID, status, now); err != nil {
		return err
	}
	request.Status = status
	request.RespondedAt = &now
	return nil
}

func (u *MembershipUsecase) record(operation string, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = domainerrors.CodeOf(err)
	}
	u.metrics.MembershipTransition(operation, outcome)
}

func validateCreateTeam(input *entities.CreateTeamInput) error {
	if input == nil {
		return domainerrors.Validation("request body is required")
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return domainerrors.Validation(err.Error())
	}
	return validateLookingFor(input.LookingFor)
}

func validateLookingFor(entries []entities.LookingFor) error {
	for _, lf := range entries {
		if !lf.Role.Valid() {
			return domainerrors.Validation("lookingFor role is invalid: " + string(lf.Role))
		}
		if lf.Priority != "" && !lf.Priority.Valid() {
			return domainerrors.Validation("lookingFor priority must be High, Medium or Low")
		}
	}
	return nil
}

func normalizeLookingFor(entries []entities.LookingFor) []entities.LookingFor {
	out := make([]entities.LookingFor, 0, len(entries))
	for _, lf := range entries {
		if lf.Priority == "" {
			lf.Priority = entities.PriorityMedium
		}
		skills := make([]string, 0, len(lf.Skills))
		for _, s := range lf.Skills {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
		lf.Skills = skills
		out = append(out, lf)
	}
	return out
}
