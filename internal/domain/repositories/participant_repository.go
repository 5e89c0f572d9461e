package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"teamsync.backend/internal/domain/entities"
)

// ParticipantRepository is the identity store. Field-level updates are
// single-statement patches so concurrent writers never overwrite unrelated fields.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *entities.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Participant, error)
	GetByEmail(ctx context.Context, email string) (*entities.Participant, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Participant, error)
	Search(ctx context.Context, filter entities.ParticipantFilter) ([]*entities.Participant, error)
	List(ctx context.Context) ([]*entities.Participant, error)

	UpdateProfile(ctx context.Context, participant *entities.Participant) error
	UpdateMembership(ctx context.Context, id uuid.UUID, teamID *uuid.UUID, status entities.AvailabilityStatus, at time.Time) error
	UpdateAvailability(ctx context.Context, id uuid.UUID, status entities.AvailabilityStatus, at time.Time) error
	IncrementInvitesReceived(ctx context.Context, id uuid.UUID) error
	IncrementProfileViews(ctx context.Context, id uuid.UUID) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error

	BoostSolo(ctx context.Context, createdBefore, now time.Time, reason string) (int64, error)
	LockAllProfiles(ctx context.Context) (int64, error)
	DisableAvailable(ctx context.Context, now time.Time) (int64, error)
}
