package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/internal/domain/repositories"
	"teamsync.backend/internal/domain/scoring"
)

// loadParticipants fetches ids in one query and indexes them by id.
func loadParticipants(ctx context.Context, repo repositories.ParticipantRepository, ids []uuid.UUID) (map[uuid.UUID]*entities.Participant, error) {
	ps, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entities.Participant, len(ps))
	for _, p := range ps {
		byID[p.ID] = p
	}
	return byID, nil
}

// loadRoster returns the leader followed by members in join order. Participants
// that no longer exist are skipped.
func loadRoster(ctx context.Context, repo repositories.ParticipantRepository, team *entities.Team) ([]*entities.Participant, error) {
	ids := team.RosterIDs()
	byID, err := loadParticipants(ctx, repo, ids)
	if err != nil {
		return nil, err
	}
	roster := make([]*entities.Participant, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			roster = append(roster, p)
		}
	}
	return roster, nil
}

func rosterEntries(roster []*entities.Participant) []scoring.RosterEntry {
	entries := make([]scoring.RosterEntry, 0, len(roster))
	for _, p := range roster {
		entries = append(entries, scoring.RosterEntry{
			Role:            string(p.RolePreference),
			TechnicalSkills: p.TechnicalSkills,
			SoftSkills:      entities.SoftSkillStrings(p.SoftSkills),
		})
	}
	return entries
}

// rescore recomputes the balance score from the stored roster and persists it
// together with the completeness flag.
func rescore(ctx context.Context, teams repositories.TeamRepository, participants repositories.ParticipantRepository, team *entities.Team) (scoring.Score, error) {
	roster, err := loadRoster(ctx, participants, team)
	if err != nil {
		return scoring.Score{}, fmt.Errorf("failed to load roster: %w", err)
	}

	score := scoring.Compute(rosterEntries(roster))
	team.BalanceScore = score.Total
	team.BalanceBreakdown = entities.BalanceBreakdown{
		RoleDiversity:     score.Breakdown.RoleDiversity,
		SkillSpread:       score.Breakdown.SkillSpread,
		SoftSkillCoverage: score.Breakdown.SoftSkillCoverage,
	}
	team.IsComplete = team.IsFull()

	if err := teams.SaveScore(ctx, team.ID, team.BalanceScore, team.BalanceBreakdown, team.IsComplete); err != nil {
		return scoring.Score{}, fmt.Errorf("failed to save balance score: %w", err)
	}
	return score, nil
}

// guard serializes work on one key across processes and runs it in a transaction.
type guard struct {
	uow    repositories.UnitOfWork
	locker repositories.TeamLocker
}

func (g guard) run(ctx context.Context, key string, fn func(txCtx context.Context) error) error {
	unlock, err := g.locker.Lock(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	defer unlock()
	return g.uow.Do(ctx, fn)
}

func teamKey(id uuid.UUID) string        { return "team:" + id.String() }
func participantKey(id uuid.UUID) string { return "participant:" + id.String() }
