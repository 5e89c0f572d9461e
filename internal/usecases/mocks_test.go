package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"teamsync.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	return ctx
}

// Mock TeamLocker
type MockTeamLocker struct {
	mock.Mock
}

func (m *MockTeamLocker) Lock(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// Mock TeamRepository
type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) Create(ctx context.Context, team *entities.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Team), args.Error(1)
}

func (m *MockTeamRepository) List(ctx context.Context, limit int) ([]*entities.Team, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Team), args.Error(1)
}

func (m *MockTeamRepository) ListAll(ctx context.Context) ([]*entities.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Team), args.Error(1)
}

func (m *MockTeamRepository) ListOpen(ctx context.Context, limit int) ([]*entities.Team, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Team), args.Error(1)
}

func (m *MockTeamRepository) UpdateDetails(ctx context.Context, team *entities.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) SaveScore(ctx context.Context, id uuid.UUID, score int, breakdown entities.BalanceBreakdown, isComplete bool) error {
	args := m.Called(ctx, id, score, breakdown, isComplete)
	return args.Error(0)
}

func (m *MockTeamRepository) SaveCard(ctx context.Context, id uuid.UUID, card entities.TeamCard) error {
	args := m.Called(ctx, id, card)
	return args.Error(0)
}

func (m *MockTeamRepository) AddMember(ctx context.Context, teamID uuid.UUID, member entities.TeamMember) error {
	args := m.Called(ctx, teamID, member)
	return args.Error(0)
}

func (m *MockTeamRepository) RemoveMember(ctx context.Context, teamID, participantID uuid.UUID) error {
	args := m.Called(ctx, teamID, participantID)
	return args.Error(0)
}

func (m *MockTeamRepository) AddInvite(ctx context.Context, invite *entities.Invite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockTeamRepository) UpdateInviteStatus(ctx context.Context, inviteID uuid.UUID, status entities.InviteStatus, at time.Time) error {
	args := m.Called(ctx, inviteID, status, at)
	return args.Error(0)
}

func (m *MockTeamRepository) ExpireInvites(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTeamRepository) ListPendingInvitesFor(ctx context.Context, participantID uuid.UUID) ([]*entities.Invite, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Invite), args.Error(1)
}

func (m *MockTeamRepository) AddJoinRequest(ctx context.Context, request *entities.JoinRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockTeamRepository) UpdateJoinRequestStatus(ctx context.Context, requestID uuid.UUID, status entities.JoinRequestStatus, at time.Time) error {
	args := m.Called(ctx, requestID, status, at)
	return args.Error(0)
}

// Mock ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Create(ctx context.Context, p *entities.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetByEmail(ctx context.Context, email string) (*entities.Participant, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Participant, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) Search(ctx context.Context, filter entities.ParticipantFilter) ([]*entities.Participant, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) List(ctx context.Context) ([]*entities.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) UpdateProfile(ctx context.Context, p *entities.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockParticipantRepository) UpdateMembership(ctx context.Context, id uuid.UUID, teamID *uuid.UUID, status entities.AvailabilityStatus, at time.Time) error {
	args := m.Called(ctx, id, teamID, status, at)
	return args.Error(0)
}

func (m *MockParticipantRepository) UpdateAvailability(ctx context.Context, id uuid.UUID, status entities.AvailabilityStatus, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}

func (m *MockParticipantRepository) IncrementInvitesReceived(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockParticipantRepository) IncrementProfileViews(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockParticipantRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockParticipantRepository) BoostSolo(ctx context.Context, createdBefore, now time.Time, reason string) (int64, error) {
	args := m.Called(ctx, createdBefore, now, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParticipantRepository) LockAllProfiles(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParticipantRepository) DisableAvailable(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// Mock GenerativeClient
type MockGenerativeClient struct {
	mock.Mock
}

func (m *MockGenerativeClient) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
