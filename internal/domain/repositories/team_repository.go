package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"teamsync.backend/internal/domain/entities"
)

// TeamRepository persists the team aggregate. GetByID loads members, invites
// and join requests in insertion order.
type TeamRepository interface {
	Create(ctx context.Context, team *entities.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Team, error)
	List(ctx context.Context, limit int) ([]*entities.Team, error)
	ListAll(ctx context.Context) ([]*entities.Team, error)
	ListOpen(ctx context.Context, limit int) ([]*entities.Team, error)
	UpdateDetails(ctx context.Context, team *entities.Team) error
	SaveScore(ctx context.Context, id uuid.UUID, score int, breakdown entities.BalanceBreakdown, isComplete bool) error
	SaveCard(ctx context.Context, id uuid.UUID, card entities.TeamCard) error

	AddMember(ctx context.Context, teamID uuid.UUID, member entities.TeamMember) error
	RemoveMember(ctx context.Context, teamID, participantID uuid.UUID) error

	AddInvite(ctx context.Context, invite *entities.Invite) error
	UpdateInviteStatus(ctx context.Context, inviteID uuid.UUID, status entities.InviteStatus, at time.Time) error
	ExpireInvites(ctx context.Context, now time.Time) (int64, error)
	ListPendingInvitesFor(ctx context.Context, participantID uuid.UUID) ([]*entities.Invite, error)

	AddJoinRequest(ctx context.Context, request *entities.JoinRequest) error
	UpdateJoinRequestStatus(ctx context.Context, requestID uuid.UUID, status entities.JoinRequestStatus, at time.Time) error
}
