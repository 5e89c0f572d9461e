package usecases

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/internal/domain/repositories"
	"teamsync.backend/pkg/clock"
)

const (
	dashboardSkillLimit = 20
	heatmapSkillLimit   = 30
	recentTeamLimit     = 10
	shortageThreshold   = 15.0
	day                 = 24 * time.Hour
)

// OrganizerUsecase computes read-only event analytics. The whole event fits in
// memory, so aggregates are folded from one participant scan and one team scan.
type OrganizerUsecase struct {
	participantRepo repositories.ParticipantRepository
	teamRepo        repositories.TeamRepository
	clock           clock.Clock
	soloAfter       time.Duration
}

func NewOrganizerUsecase(
	participantRepo repositories.ParticipantRepository,
	teamRepo repositories.TeamRepository,
	clk clock.Clock,
	soloAfter time.Duration,
) *OrganizerUsecase {
	if clk == nil {
		clk = clock.Real{}
	}
	if soloAfter <= 0 {
		soloAfter = DefaultSoloBoostAfter
	}
	return &OrganizerUsecase{
		participantRepo: participantRepo,
		teamRepo:        teamRepo,
		clock:           clk,
		soloAfter:       soloAfter,
	}
}

func (u *OrganizerUsecase) Dashboard(ctx context.Context) (*entities.Dashboard, error) {
	participants, err := u.participantRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := u.teamRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	cutoff := now.Add(-u.soloAfter)
	out := &entities.Dashboard{}
	out.Alerts.SoloParticipants = []entities.SoloParticipant{}

	roles := map[entities.RolePreference]int{}
	levels := map[entities.ExperienceLevel]int{}
	skills := map[string]int{}
	soft := map[string]int{}
	for _, p := range participants {
		switch {
		case p.HasTeam():
			out.Overview.ParticipantsInTeams++
		case p.IsAvailable():
			out.Overview.AvailableParticipants++
			if p.CreatedAt.Before(cutoff) {
				out.Alerts.SoloParticipants = append(out.Alerts.SoloParticipants, entities.SoloParticipant{
					ID:       p.ID,
					Name:     p.Name,
					Role:     p.RolePreference,
					Skills:   p.TechnicalSkills,
					DaysSolo: daysSince(p.CreatedAt, now),
					Boosted:  p.VisibilityBoost.IsBoost,
				})
			}
		}
		roles[p.RolePreference]++
		levels[p.ExperienceLevel]++
		for _, s := range p.TechnicalSkills {
			skills[s]++
		}
		for _, s := range p.SoftSkills {
			soft[string(s)]++
		}
	}

	out.Overview.TotalParticipants = len(participants)
	out.Overview.TotalTeams = len(teams)
	out.Overview.SoloParticipantsCount = len(out.Alerts.SoloParticipants)

	out.Distributions.Skills = rankSkills(skills, dashboardSkillLimit)
	out.Distributions.SoftSkills = rankSkills(soft, 0)
	for _, k := range rankKeys(roles, 0) {
		out.Distributions.Roles = append(out.Distributions.Roles, entities.RoleCount{Role: k, Count: roles[k]})
	}
	for _, k := range rankKeys(levels, 0) {
		out.Distributions.Experience = append(out.Distributions.Experience, entities.ExperienceCount{Level: k, Count: levels[k]})
	}

	out.RecentTeams = make([]entities.RecentTeam, 0, min(len(teams), recentTeamLimit))
	for _, t := range teams[:min(len(teams), recentTeamLimit)] {
		out.RecentTeams = append(out.RecentTeams, entities.RecentTeam{
			ID:           t.ID,
			Name:         t.Name,
			MemberCount:  t.Occupied(),
			BalanceScore: t.BalanceScore,
			CreatedAt:    t.CreatedAt,
		})
	}
	return out, nil
}

// Unassigned lists teamless participants that have not opted out, boosted
// ones first and then the longest waiting.
func (u *OrganizerUsecase) Unassigned(ctx context.Context) (*entities.UnassignedList, error) {
	participants, err := u.participantRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	pool := make([]*entities.Participant, 0, len(participants))
	for _, p := range participants {
		if !p.HasTeam() && p.Availability.Status != entities.AvailabilityNotAvailable {
			pool = append(pool, p)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].VisibilityBoost.IsBoost != pool[j].VisibilityBoost.IsBoost {
			return pool[i].VisibilityBoost.IsBoost
		}
		return pool[i].CreatedAt.Before(pool[j].CreatedAt)
	})

	list := &entities.UnassignedList{Unassigned: make([]entities.SoloParticipant, 0, len(pool)), Total: len(pool)}
	for _, p := range pool {
		list.Unassigned = append(list.Unassigned, entities.SoloParticipant{
			ID:         p.ID,
			Name:       p.Name,
			Role:       p.RolePreference,
			Skills:     p.TechnicalSkills,
			SoftSkills: p.SoftSkills,
			Experience: p.ExperienceLevel,
			DaysSolo:   daysSince(p.CreatedAt, now),
			Boosted:    p.VisibilityBoost.IsBoost,
		})
	}
	return list, nil
}

func (u *OrganizerUsecase) SkillDistribution(ctx context.Context) (*entities.SkillDistribution, error) {
	participants, err := u.participantRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	total := len(participants)
	roles := map[entities.RolePreference]int{}
	skills := map[string]int{}
	for _, p := range participants {
		roles[p.RolePreference]++
		for _, s := range p.TechnicalSkills {
			skills[s]++
		}
	}

	out := &entities.SkillDistribution{
		RoleDistribution:  []entities.RoleShare{},
		SkillHeatmap:      []entities.SkillShare{},
		Shortages:         []entities.RoleShare{},
		TotalParticipants: total,
	}
	for _, k := range rankKeys(roles, 0) {
		raw := percentage(roles[k], total)
		share := entities.RoleShare{Role: k, Count: roles[k], Percentage: roundTenth(raw)}
		out.RoleDistribution = append(out.RoleDistribution, share)
		if raw < shortageThreshold {
			out.Shortages = append(out.Shortages, share)
		}
	}
	for _, s := range rankSkills(skills, heatmapSkillLimit) {
		out.SkillHeatmap = append(out.SkillHeatmap, entities.SkillShare{
			Skill:      s.Skill,
			Count:      s.Count,
			Percentage: roundTenth(percentage(s.Count, total)),
		})
	}
	return out, nil
}

func (u *OrganizerUsecase) TeamAnalytics(ctx context.Context) (*entities.TeamAnalytics, error) {
	teams, err := u.teamRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	participants, err := u.participantRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entities.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	out := &entities.TeamAnalytics{Teams: make([]entities.TeamStats, 0, len(teams))}
	var scoreSum, sizeSum int
	for _, t := range teams {
		stats := entities.TeamStats{
			ID:               t.ID,
			Name:             t.Name,
			MemberCount:      t.Occupied(),
			MaxMembers:       t.MaxMembers,
			IsFull:           t.IsFull(),
			BalanceScore:     t.BalanceScore,
			BalanceBreakdown: t.BalanceBreakdown,
			Roles:            make([]entities.RolePreference, 0, t.Occupied()),
			CreatedAt:        t.CreatedAt,
		}
		unique := map[string]struct{}{}
		for _, id := range t.RosterIDs() {
			p, ok := byID[id]
			if !ok {
				continue
			}
			stats.Roles = append(stats.Roles, p.RolePreference)
			for _, s := range p.TechnicalSkills {
				unique[s] = struct{}{}
			}
		}
		stats.TotalSkills = len(unique)

		scoreSum += stats.BalanceScore
		sizeSum += stats.MemberCount
		if stats.IsFull {
			out.Summary.FullTeams++
		}
		out.Teams = append(out.Teams, stats)
	}

	out.Summary.TotalTeams = len(teams)
	if n := len(teams); n > 0 {
		out.Summary.AverageBalanceScore = int(math.Round(float64(scoreSum) / float64(n)))
		out.Summary.AverageTeamSize = roundTenth(float64(sizeSum) / float64(n))
	}
	return out, nil
}

func rankSkills(counts map[string]int, limit int) []entities.SkillCount {
	keys := rankKeys(counts, limit)
	out := make([]entities.SkillCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, entities.SkillCount{Skill: k, Count: counts[k]})
	}
	return out
}

// rankKeys orders keys by descending count, ties broken alphabetically.
func rankKeys[K ~string](counts map[K]int, limit int) []K {
	keys := make([]K, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func daysSince(t, now time.Time) int {
	return int(now.Sub(t) / day)
}
