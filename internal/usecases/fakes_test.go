package usecases_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"teamsync.backend/internal/domain/entities"
	domainerrors "teamsync.backend/internal/domain/errors"
)

// memStore is an in-memory implementation of the team and participant
// repositories plus a unit of work. Transactions are serialized and roll back
// to a snapshot when fn fails.
type memStore struct {
	mu           sync.Mutex
	txMu         sync.Mutex
	teams        map[uuid.UUID]*entities.Team
	participants map[uuid.UUID]*entities.Participant

	failSaveScore error
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		teams:        make(map[uuid.UUID]*entities.Team),
		participants: make(map[uuid.UUID]*entities.Participant),
	}
}

func (s *memStore) Teams() *memTeamRepo               { return &memTeamRepo{s} }
func (s *memStore) Participants() *memParticipantRepo { return &memParticipantRepo{s} }

func (s *memStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	teams, participants := s.snapshot()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.mu.Lock()
		s.teams, s.participants = teams, participants
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) WithLock(ctx context.Context) context.Context { return ctx }

func (s *memStore) snapshot() (map[uuid.UUID]*entities.Team, map[uuid.UUID]*entities.Participant) {
	teams := make(map[uuid.UUID]*entities.Team, len(s.teams))
	for id, t := range s.teams {
		teams[id] = cloneTeam(t)
	}
	participants := make(map[uuid.UUID]*entities.Participant, len(s.participants))
	for id, p := range s.participants {
		participants[id] = cloneParticipant(p)
	}
	return teams, participants
}

// team returns a copy of the stored team for assertions.
func (s *memStore) team(id uuid.UUID) *entities.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.teams[id]; ok {
		return cloneTeam(t)
	}
	return nil
}

func (s *memStore) participant(id uuid.UUID) *entities.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.participants[id]; ok {
		return cloneParticipant(p)
	}
	return nil
}

func (s *memStore) putParticipant(p *entities.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = cloneParticipant(p)
}

func (s *memStore) putTeam(t *entities.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.ID] = cloneTeam(t)
}

func cloneTeam(t *entities.Team) *entities.Team {
	cp := *t
	cp.Members = append([]entities.TeamMember{}, t.Members...)
	cp.Invites = append([]entities.Invite{}, t.Invites...)
	cp.JoinRequests = append([]entities.JoinRequest{}, t.JoinRequests...)
	cp.LookingFor = make([]entities.LookingFor, len(t.LookingFor))
	for i, lf := range t.LookingFor {
		lf.Skills = append([]string{}, lf.Skills...)
		cp.LookingFor[i] = lf
	}
	return &cp
}

func cloneParticipant(p *entities.Participant) *entities.Participant {
	cp := *p
	cp.TechnicalSkills = append([]string{}, p.TechnicalSkills...)
	cp.SoftSkills = append([]entities.SoftSkill{}, p.SoftSkills...)
	cp.Interests = append([]string{}, p.Interests...)
	if p.TeamID != nil {
		id := *p.TeamID
		cp.TeamID = &id
	}
	return &cp
}

type memTeamRepo struct{ s *memStore }

func (r *memTeamRepo) Create(_ context.Context, team *entities.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.teams[team.ID] = cloneTeam(team)
	return nil
}

func (r *memTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, domainerrors.ErrTeamNotFound
	}
	return cloneTeam(t), nil
}

func (r *memTeamRepo) sorted(keep func(*entities.Team) bool, limit int) []*entities.Team {
	out := make([]*entities.Team, 0, len(r.s.teams))
	for _, t := range r.s.teams {
		if keep(t) {
			out = append(out, cloneTeam(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *memTeamRepo) List(_ context.Context, limit int) ([]*entities.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(*entities.Team) bool { return true }, limit), nil
}

func (r *memTeamRepo) ListAll(ctx context.Context) ([]*entities.Team, error) {
	return r.List(ctx, 0)
}

func (r *memTeamRepo) ListOpen(_ context.Context, limit int) ([]*entities.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(t *entities.Team) bool { return !t.IsComplete }, limit), nil
}

func (r *memTeamRepo) UpdateDetails(_ context.Context, team *entities.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[team.ID]
	if !ok {
		return domainerrors.ErrTeamNotFound
	}
	t.Name = team.Name
	t.Description = team.Description
	t.LookingFor = cloneTeam(team).LookingFor
	t.MaxMembers = team.MaxMembers
	t.MeetingLink = team.MeetingLink
	t.IsComplete = team.IsComplete
	return nil
}

func (r *memTeamRepo) SaveScore(_ context.Context, id uuid.UUID, score int, breakdown entities.BalanceBreakdown, isComplete bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failSaveScore != nil {
		return r.s.failSaveScore
	}
	t, ok := r.s.teams[id]
	if !ok {
		return domainerrors.ErrTeamNotFound
	}
	t.BalanceScore = score
	t.BalanceBreakdown = breakdown
	t.IsComplete = isComplete
	return nil
}

func (r *memTeamRepo) SaveCard(_ context.Context, id uuid.UUID, card entities.TeamCard) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return domainerrors.ErrTeamNotFound
	}
	t.TeamCard = card
	return nil
}

func (r *memTeamRepo) AddMember(_ context.Context, teamID uuid.UUID, member entities.TeamMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[teamID]
	if !ok {
		return domainerrors.ErrTeamNotFound
	}
	for _, other := range r.s.teams {
		for _, m := range other.Members {
			if m.ParticipantID == member.ParticipantID {
				return domainerrors.ErrAlreadyInTeam
			}
		}
	}
	t.Members = append(t.Members, member)
	return nil
}

func (r *memTeamRepo) RemoveMember(_ context.Context, teamID, participantID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[teamID]
	if !ok {
		return domainerrors.ErrTeamNotFound
	}
	for i, m := range t.Members {
		if m.ParticipantID == participantID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return nil
		}
	}
	return domainerrors.ErrNotInTeam
}

func (r *memTeamRepo) AddInvite(_ context.Context, invite *entities.Invite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[invite.TeamID]
	if !ok {
		return domainerrors.ErrTeamNotFound
	}
	if t.PendingInviteFor(invite.ToID) != nil {
		return domainerrors.ErrDuplicateInvite
	}
	t.Invites = append(t.Invites, *invite)
	return nil
}

func (r *memTeamRepo) UpdateInviteStatus(_ context.Context, inviteID uuid.UUID, status entities.InviteStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.teams {
		if inv := t.FindInvite(inviteID); inv != nil {
			if inv.Status != entities.InviteStatusPending {
				return domainerrors.ErrInviteNotPending
			}
			inv.Status = status
			inv.RespondedAt = &at
			return nil
		}
	}
	return domainerrors.ErrInviteNotPending
}

func (r *memTeamRepo) ExpireInvites(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.teams {
		for i := range t.Invites {
			if t.Invites[i].IsExpired(now) {
				t.Invites[i].Status = entities.InviteStatusExpired
				at := now
				t.Invites[i].RespondedAt = &at
				n++
			}
		}
	}
	return n, nil
}

func (r *memTeamRepo) ListPendingInvitesFor(_ context.Context, participantID uuid.UUID) ([]*entities.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entities.Invite{}
	for _, t := range r.s.teams {
		for _, inv := range t.Invites {
			if inv.ToID == participantID && inv.Status == entities.InviteStatusPending {
				cp := inv
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memTeamRepo) AddJoinRequest(_ context.Context, request *entities.JoinRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[request.TeamID]
	if !ok {
		return domainerrors.ErrTeamNotFound
	}
	if t.PendingRequestFrom(request.FromID) != nil {
		return domainerrors.ErrDuplicateRequest
	}
	t.JoinRequests = append(t.JoinRequests, *request)
	return nil
}

func (r *memTeamRepo) UpdateJoinRequestStatus(_ context.Context, requestID uuid.UUID, status entities.JoinRequestStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.teams {
		if req := t.FindJoinRequest(requestID); req != nil {
			if req.Status != entities.JoinRequestStatusPending {
				return domainerrors.ErrRequestNotPending
			}
			req.Status = status
			req.RespondedAt = &at
			return nil
		}
	}
	return domainerrors.ErrRequestNotPending
}

type memParticipantRepo struct{ s *memStore }

func (r *memParticipantRepo) Create(_ context.Context, p *entities.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.participants {
		if other.Email == p.Email {
			return domainerrors.ErrInvalidInput
		}
	}
	r.s.participants[p.ID] = cloneParticipant(p)
	return nil
}

func (r *memParticipantRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return nil, domainerrors.ErrParticipantNotFound
	}
	return cloneParticipant(p), nil
}

func (r *memParticipantRepo) GetByEmail(_ context.Context, email string) (*entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.Email == email {
			return cloneParticipant(p), nil
		}
	}
	return nil, domainerrors.ErrParticipantNotFound
}

func (r *memParticipantRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Participant, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.participants[id]; ok {
			out = append(out, cloneParticipant(p))
		}
	}
	return out, nil
}

func (r *memParticipantRepo) Search(_ context.Context, filter entities.ParticipantFilter) ([]*entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entities.Participant{}
	for _, p := range r.s.participants {
		if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Bio), term) {
			continue
		}
		if filter.Role != "" && p.RolePreference != filter.Role {
			continue
		}
		if filter.ExperienceLevel != "" && p.ExperienceLevel != filter.ExperienceLevel {
			continue
		}
		if len(filter.Availability) > 0 && !containsStatus(filter.Availability, p.Availability.Status) {
			continue
		}
		if len(filter.Skills) > 0 && !anyShared(p.TechnicalSkills, filter.Skills) {
			continue
		}
		if len(filter.SoftSkills) > 0 && !anyShared(entities.SoftSkillStrings(p.SoftSkills), entities.SoftSkillStrings(filter.SoftSkills)) {
			continue
		}
		out = append(out, cloneParticipant(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VisibilityBoost.IsBoost != out[j].VisibilityBoost.IsBoost {
			return out[i].VisibilityBoost.IsBoost
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memParticipantRepo) List(_ context.Context) ([]*entities.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Participant, 0, len(r.s.participants))
	for _, p := range r.s.participants {
		out = append(out, cloneParticipant(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memParticipantRepo) with(id uuid.UUID, fn func(p *entities.Participant)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return domainerrors.ErrParticipantNotFound
	}
	fn(p)
	return nil
}

func (r *memParticipantRepo) UpdateProfile(_ context.Context, in *entities.Participant) error {
	cp := cloneParticipant(in)
	return r.with(in.ID, func(p *entities.Participant) {
		p.Name = cp.Name
		p.Bio = cp.Bio
		p.GithubURL = cp.GithubURL
		p.LinkedInURL = cp.LinkedInURL
		p.PortfolioURL = cp.PortfolioURL
		p.TechnicalSkills = cp.TechnicalSkills
		p.SoftSkills = cp.SoftSkills
		p.Interests = cp.Interests
		p.RolePreference = cp.RolePreference
		p.ExperienceLevel = cp.ExperienceLevel
		p.LastActive = cp.LastActive
	})
}

func (r *memParticipantRepo) UpdateMembership(_ context.Context, id uuid.UUID, teamID *uuid.UUID, status entities.AvailabilityStatus, at time.Time) error {
	return r.with(id, func(p *entities.Participant) {
		if teamID == nil {
			p.TeamID = nil
		} else {
			tid := *teamID
			p.TeamID = &tid
		}
		p.Availability = entities.Availability{Status: status, LastUpdated: at}
	})
}

func (r *memParticipantRepo) UpdateAvailability(_ context.Context, id uuid.UUID, status entities.AvailabilityStatus, at time.Time) error {
	return r.with(id, func(p *entities.Participant) {
		p.Availability = entities.Availability{Status: status, LastUpdated: at}
	})
}

func (r *memParticipantRepo) IncrementInvitesReceived(_ context.Context, id uuid.UUID) error {
	return r.with(id, func(p *entities.Participant) { p.InvitesReceived++ })
}

func (r *memParticipantRepo) IncrementProfileViews(_ context.Context, id uuid.UUID) error {
	return r.with(id, func(p *entities.Participant) { p.ProfileViews++ })
}

func (r *memParticipantRepo) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.with(id, func(p *entities.Participant) { p.LastActive = at })
}

func (r *memParticipantRepo) BoostSolo(_ context.Context, createdBefore, now time.Time, reason string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.participants {
		if p.IsAvailable() && !p.HasTeam() && !p.VisibilityBoost.IsBoost && !p.CreatedAt.After(createdBefore) {
			p.VisibilityBoost.IsBoost = true
			p.VisibilityBoost.BoostReason.SetValid(reason)
			p.VisibilityBoost.BoostDate.SetValid(now)
			n++
		}
	}
	return n, nil
}

func (r *memParticipantRepo) LockAllProfiles(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.participants {
		if !p.ProfileLocked {
			p.ProfileLocked = true
			n++
		}
	}
	return n, nil
}

func (r *memParticipantRepo) DisableAvailable(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.participants {
		if p.Availability.Status == entities.AvailabilityAvailable {
			p.Availability = entities.Availability{Status: entities.AvailabilityNotAvailable, LastUpdated: now}
			n++
		}
	}
	return n, nil
}

func containsStatus(list []entities.AvailabilityStatus, s entities.AvailabilityStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func anyShared(have, want []string) bool {
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

// recordingNotifier captures invite notifications.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []entities.InviteNotification
	err  error
}

func (n *recordingNotifier) NotifyInvite(_ context.Context, invite entities.InviteNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, invite)
	return n.err
}

// recordingMetrics captures membership and automation outcomes.
type recordingMetrics struct {
	mu          sync.Mutex
	transitions []string
	tasks       map[string]int64
	taskErrors  map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{tasks: map[string]int64{}, taskErrors: map[string]int{}}
}

func (m *recordingMetrics) MembershipTransition(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, operation+":"+outcome)
}

func (m *recordingMetrics) AutomationTask(task string, affected int64, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task] += affected
	if err != nil {
		m.taskErrors[task]++
	}
}
