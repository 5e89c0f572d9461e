package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"teamsync.backend/internal/domain/entities"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/internal/domain/repositories"
	"teamsync.backend/pkg/logger"
	"teamsync.backend/pkg/utils"
)

const (
	maxSuggestedSkills       = 5
	maxDescriptionLength     = 1000
	recommendationCandidates = 5
	openTeamScanLimit        = 50

	fallbackCompatibilityScore = 70
	fallbackCompatibilityText  = "AI analysis temporarily unavailable. Manual review recommended."
	unparsedCompatibilityScore = 75
	assistantOperational       = "AI service operational"
)

var errAssistantDisabled = errors.New("generative client not configured")

var fallbackSkills = map[entities.RolePreference][]string{
	entities.RoleDeveloper:      {"Git", "REST APIs", "Testing", "Docker", "CI/CD"},
	entities.RoleDesigner:       {"Prototyping", "User Research", "Design Systems", "Responsive Design", "Accessibility"},
	entities.RoleMLAI:           {"Deep Learning", "Data Preprocessing", "Model Deployment", "Feature Engineering", "Computer Vision"},
	entities.RoleProductManager: {"User Stories", "Roadmapping", "Stakeholder Management", "Analytics", "MVP Development"},
	entities.RoleOpenToAny:      {"Communication", "Problem Solving", "Collaboration", "Time Management", "Adaptability"},
}

// AssistantUsecase wraps the generative client. Every operation degrades to a
// deterministic answer when the client fails, so callers never see its errors.
type AssistantUsecase struct {
	client          GenerativeClient
	teamRepo        repositories.TeamRepository
	participantRepo repositories.ParticipantRepository
	uow             repositories.UnitOfWork
	guard           guard
}

func NewAssistantUsecase(
	client GenerativeClient,
	teamRepo repositories.TeamRepository,
	participantRepo repositories.ParticipantRepository,
	uow repositories.UnitOfWork,
	locker repositories.TeamLocker,
) *AssistantUsecase {
	if client == nil {
		client = disabledClient{}
	}
	return &AssistantUsecase{
		client:          client,
		teamRepo:        teamRepo,
		participantRepo: participantRepo,
		uow:             uow,
		guard:           guard{uow: uow, locker: locker},
	}
}

type disabledClient struct{}

func (disabledClient) Generate(context.Context, string) (string, error) {
	return "", errAssistantDisabled
}

func (u *AssistantUsecase) Health(ctx context.Context) entities.AssistantHealth {
	if _, err := u.client.Generate(ctx, "Hello"); err != nil {
		return entities.AssistantHealth{Available: false, Message: err.Error()}
	}
	return entities.AssistantHealth{Available: true, Message: assistantOperational}
}

// ImproveBio rewrites the bio sent by the caller. Missing skills and role fall
// back to the caller's stored profile.
func (u *AssistantUsecase) ImproveBio(ctx context.Context, participantID uuid.UUID, input *entities.ImproveBioInput) (string, error) {
	if input == nil {
		input = &entities.ImproveBioInput{}
	}
	if err := utils.ValidateStruct(input); err != nil {
		return "", domainerrors.Validation(err.Error())
	}
	p, err := u.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return "", err
	}

	bio := strings.TrimSpace(input.Bio)
	role := input.Role
	if role == "" {
		role = p.RolePreference
	}
	if role == "" {
		role = entities.RoleDeveloper
	}
	skills := input.Skills
	if skills == nil {
		skills = p.TechnicalSkills
	}

	current := bio
	if current == "" {
		current = "No bio yet"
	}
	prompt := fmt.Sprintf(`Improve this hackathon participant profile bio. Make it engaging and professional:

Current Bio: %s
Role: %s
Skills: %s

Generate an improved bio (max 100 words) that highlights their strengths for team formation.`,
		current, role, strings.Join(skills, ", "))

	text, err := u.client.Generate(ctx, prompt)
	if err != nil || text == "" {
		u.fallback(ctx, "improve_bio", err)
		return fallbackBio(bio, role, skills), nil
	}
	return text, nil
}

func fallbackBio(bio string, role entities.RolePreference, skills []string) string {
	top := func(none string) string {
		if len(skills) == 0 {
			return none
		}
		return strings.Join(skills[:min(len(skills), 3)], ", ")
	}
	bio = strings.TrimRight(bio, ".")

	switch {
	case utf8.RuneCountInString(bio) > 10:
		return fmt.Sprintf("%s. I specialize in %s with expertise in %s. Passionate about collaborative problem-solving and delivering high-quality solutions in fast-paced environments.",
			bio, role, top("modern technologies"))
	case bio != "":
		return fmt.Sprintf("%s. As a %s, I bring strong expertise in %s, with a proven track record in delivering innovative solutions. I'm passionate about leveraging technology to solve complex problems and thrive in collaborative, fast-paced environments. Always eager to learn and contribute to impactful projects.",
			bio, role, top("cutting-edge technologies"))
	default:
		return fmt.Sprintf("Experienced %s with strong skills in %s. Passionate about innovation, teamwork, and building impactful solutions. Proven ability to deliver high-quality results in collaborative environments. Excited to contribute technical expertise and creative problem-solving to challenging projects.",
			role, top("software development"))
	}
}

// SuggestSkills returns up to five complementary skills for a role.
func (u *AssistantUsecase) SuggestSkills(ctx context.Context, participantID uuid.UUID, input *entities.SuggestSkillsInput) ([]string, error) {
	if input == nil {
		input = &entities.SuggestSkillsInput{}
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	p, err := u.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = p.RolePreference
	}
	current := input.CurrentSkills
	if current == nil {
		current = p.TechnicalSkills
	}

	prompt := fmt.Sprintf(`For a hackathon participant with role "%s" who has these skills: %s.

Suggest 3-5 complementary technical skills they should consider adding. Return only skill names, comma-separated.`,
		role, strings.Join(current, ", "))

	text, err := u.client.Generate(ctx, prompt)
	if err == nil {
		if skills := splitSkills(text); len(skills) > 0 {
			return skills, nil
		}
	}
	u.fallback(ctx, "suggest_skills", err)
	return fallbackSkillsFor(role), nil
}

func splitSkills(text string) []string {
	out := make([]string, 0, maxSuggestedSkills)
	for _, s := range strings.Split(text, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
		if len(out) == maxSuggestedSkills {
			break
		}
	}
	return out
}

func fallbackSkillsFor(role entities.RolePreference) []string {
	skills, ok := fallbackSkills[role]
	if !ok {
		skills = fallbackSkills[entities.RoleOpenToAny]
	}
	return append([]string(nil), skills...)
}

// AnalyzeCompatibility asks for a score and short analysis of how the
// participant would fit the team.
func (u *AssistantUsecase) AnalyzeCompatibility(ctx context.Context, participantID, teamID uuid.UUID) (*entities.Compatibility, error) {
	p, err := u.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	team, err := u.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	bio := p.Bio
	if bio == "" {
		bio = "Not provided"
	}
	prompt := fmt.Sprintf(`Analyze team compatibility:

Participant Profile:
- Role: %s
- Technical Skills: %s
- Soft Skills: %s
- Experience: %s
- Bio: %s

Team Profile:
- Name: %s
- Current Size: %d/%d
- Balance Score: %d/100

Provide a brief compatibility analysis (2-3 sentences) and a compatibility score (0-100).
Format: {"score": number, "analysis": "text"}`,
		p.RolePreference, strings.Join(p.TechnicalSkills, ", "),
		strings.Join(entities.SoftSkillStrings(p.SoftSkills), ", "), p.ExperienceLevel, bio,
		team.Name, team.Occupied(), team.MaxMembers, team.BalanceScore)

	text, err := u.client.Generate(ctx, prompt)
	if err != nil {
		u.fallback(ctx, "analyze_compatibility", err)
		return &entities.Compatibility{Score: fallbackCompatibilityScore, Analysis: fallbackCompatibilityText}, nil
	}

	var parsed entities.Compatibility
	if raw, ok := enclosed(text, '{', '}'); ok && json.Unmarshal([]byte(raw), &parsed) == nil && parsed.Analysis != "" {
		parsed.Score = clampScore(parsed.Score)
		return &parsed, nil
	}
	return &entities.Compatibility{Score: unparsedCompatibilityScore, Analysis: text}, nil
}

// GenerateTeamDescription writes a new description for the caller's team. Only
// the leader may do this; the text is stored through the team detail update.
func (u *AssistantUsecase) GenerateTeamDescription(ctx context.Context, teamID, actorID uuid.UUID) (string, error) {
	team, err := u.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return "", err
	}
	if team.LeaderID != actorID {
		return "", domainerrors.ErrNotLeader
	}
	roster, err := loadRoster(ctx, u.participantRepo, team)
	if err != nil {
		return "", err
	}

	summaries := make([]string, 0, len(roster))
	for _, p := range roster {
		summaries = append(summaries, fmt.Sprintf("%s with %s", p.RolePreference, strings.Join(p.TechnicalSkills[:min(len(p.TechnicalSkills), 3)], ", ")))
	}
	prompt := fmt.Sprintf(`Generate a compelling team description for a hackathon team:

Team Name: %s
Members: %s

Create a brief, exciting description (2-3 sentences) that showcases the team's strengths.`,
		team.Name, strings.Join(summaries, "; "))

	description, err := u.client.Generate(ctx, prompt)
	if err != nil || description == "" {
		u.fallback(ctx, "team_description", err)
		description = fmt.Sprintf("%s - A diverse team ready to innovate and build amazing solutions.", team.Name)
	}
	description = truncateRunes(description, maxDescriptionLength)

	err = u.guard.run(ctx, teamKey(teamID), func(txCtx context.Context) error {
		current, err := u.teamRepo.GetByID(u.uow.WithLock(txCtx), teamID)
		if err != nil {
			return err
		}
		if current.LeaderID != actorID {
			return domainerrors.ErrNotLeader
		}
		current.Description = description
		return u.teamRepo.UpdateDetails(txCtx, current)
	})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "Team description generated", zap.String("team_id", teamID.String()))
	return description, nil
}

type rankedTeam struct {
	TeamID string `json:"teamId"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// RecommendTeams ranks open teams the participant could join.
func (u *AssistantUsecase) RecommendTeams(ctx context.Context, participantID uuid.UUID) ([]entities.TeamRecommendation, error) {
	p, err := u.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	teams, err := u.teamRepo.ListOpen(ctx, openTeamScanLimit)
	if err != nil {
		return nil, err
	}
	open := make([]*entities.Team, 0, len(teams))
	for _, t := range teams {
		if !t.IsFull() && !t.HasMember(participantID) {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		return []entities.TeamRecommendation{}, nil
	}

	type teamInfo struct {
		ID           uuid.UUID `json:"id"`
		Name         string    `json:"name"`
		Size         int       `json:"size"`
		MaxMembers   int       `json:"maxMembers"`
		BalanceScore int       `json:"balanceScore"`
	}
	candidates := open[:min(len(open), recommendationCandidates)]
	infos := make([]teamInfo, 0, len(candidates))
	for _, t := range candidates {
		infos = append(infos, teamInfo{ID: t.ID, Name: t.Name, Size: t.Occupied(), MaxMembers: t.MaxMembers, BalanceScore: t.BalanceScore})
	}
	listing, _ := json.MarshalIndent(infos, "", "  ")

	prompt := fmt.Sprintf(`Recommend the best team for this participant:

Participant:
- Role: %s
- Skills: %s
- Experience: %s

Available Teams:
%s

Rank the teams by compatibility and provide a compatibility score (0-100) and explain briefly why each matches.
Format: [{"teamId": "id", "score": number, "reason": "text"}]`,
		p.RolePreference, strings.Join(p.TechnicalSkills, ", "), p.ExperienceLevel, listing)

	text, err := u.client.Generate(ctx, prompt)
	if err == nil {
		if recs := parseRecommendations(text, candidates); len(recs) > 0 {
			return recs, nil
		}
	}
	u.fallback(ctx, "recommend_teams", err)
	return fallbackRecommendations(open), nil
}

func parseRecommendations(text string, candidates []*entities.Team) []entities.TeamRecommendation {
	raw, ok := enclosed(text, '[', ']')
	if !ok {
		return nil
	}
	var ranked []rankedTeam
	if err := json.Unmarshal([]byte(raw), &ranked); err != nil {
		return nil
	}

	byID := make(map[uuid.UUID]*entities.Team, len(candidates))
	for _, t := range candidates {
		byID[t.ID] = t
	}
	out := make([]entities.TeamRecommendation, 0, len(ranked))
	for _, r := range ranked {
		id, err := uuid.Parse(r.TeamID)
		if err != nil {
			continue
		}
		t, ok := byID[id]
		if !ok {
			continue
		}
		delete(byID, id)
		rec := recommendationFor(t)
		rec.Score = clampScore(r.Score)
		rec.Reason = r.Reason
		out = append(out, rec)
	}
	return out
}

func fallbackRecommendations(open []*entities.Team) []entities.TeamRecommendation {
	out := make([]entities.TeamRecommendation, 0, len(open))
	for i, t := range open {
		rec := recommendationFor(t)
		rec.Score = max(50, 90-10*i)
		rec.Reason = fmt.Sprintf("This team is looking for members and has %d open spots.", rec.OpenSpots)
		out = append(out, rec)
	}
	return out
}

func recommendationFor(t *entities.Team) entities.TeamRecommendation {
	return entities.TeamRecommendation{
		TeamID:       t.ID,
		TeamName:     t.Name,
		OpenSpots:    t.MaxMembers - t.Occupied(),
		BalanceScore: t.BalanceScore,
	}
}

func (u *AssistantUsecase) fallback(ctx context.Context, op string, err error) {
	if err == nil {
		err = errors.New("unusable response")
	}
	logger.Warn(ctx, "Assistant fell back to default answer", zap.String("operation", op), zap.Error(err))
}

// enclosed returns the text from the first opening byte to the last closing byte.
func enclosed(text string, first, last byte) (string, bool) {
	start := strings.IndexByte(text, first)
	end := strings.LastIndexByte(text, last)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func clampScore(v int) int {
	return max(0, min(v, 100))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
