// Package scoring computes the team balance score from a roster snapshot.
package scoring

import "math"

const (
	roleWeight      = 35.0
	skillWeight     = 40.0
	softSkillWeight = 25.0

	roleFullMarks      = 4.0
	skillFullMarks     = 10.0
	softSkillFullMarks = 6.0
)

// Grade labels.
const (
	GradeExcellent        = "Excellent"
	GradeGood             = "Good"
	GradeFair             = "Fair"
	GradeNeedsImprovement = "Needs Improvement"
)

// RosterEntry is the slice of a participant the score depends on.
type RosterEntry struct {
	Role            string
	TechnicalSkills []string
	SoftSkills      []string
}

// Breakdown holds each component rounded on its own.
type Breakdown struct {
	RoleDiversity     int `json:"roleDiversity"`
	SkillSpread       int `json:"skillSpread"`
	SoftSkillCoverage int `json:"softSkillCoverage"`
}

// Score is the composite result. Total is rounded from the unrounded sum, so it
// may differ by one from the sum of the breakdown.
type Score struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

// Compute scores a roster. Values are compared as exact strings and empty
// strings are ignored.
func Compute(roster []RosterEntry) Score {
	roles := make(map[string]struct{})
	skills := make(map[string]struct{})
	softSkills := make(map[string]struct{})

	for _, e := range roster {
		addNonEmpty(roles, e.Role)
		for _, s := range e.TechnicalSkills {
			addNonEmpty(skills, s)
		}
		for _, s := range e.SoftSkills {
			addNonEmpty(softSkills, s)
		}
	}

	roleDiversity := capped(len(roles), roleFullMarks, roleWeight)
	skillSpread := capped(len(skills), skillFullMarks, skillWeight)
	softCoverage := capped(len(softSkills), softSkillFullMarks, softSkillWeight)

	return Score{
		Total: int(math.Round(roleDiversity + skillSpread + softCoverage)),
		Breakdown: Breakdown{
			RoleDiversity:     int(math.Round(roleDiversity)),
			SkillSpread:       int(math.Round(skillSpread)),
			SoftSkillCoverage: int(math.Round(softCoverage)),
		},
	}
}

// Grade maps a total to its display band.
func Grade(total int) string {
	switch {
	case total >= 80:
		return GradeExcellent
	case total >= 60:
		return GradeGood
	case total >= 40:
		return GradeFair
	default:
		return GradeNeedsImprovement
	}
}

func capped(distinct int, fullMarks, weight float64) float64 {
	return math.Min(float64(distinct)/fullMarks*weight, weight)
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}
