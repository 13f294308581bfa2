// Package matching implements the heuristic match-scoring engine.
//
// The engine is a pure function over a user profile and a job posting: no
// I/O, no clock, no randomness. Given the same inputs it always produces the
// same 0–100 score and explanation, which is what makes it trivially
// testable and safe to recompute at any time (the persisted score for a
// (user, job) pair is simply overwritten).
//
// The final score is a weighted combination of three sub-scores:
//
//	skills    40% — fraction of the user's skills found in the requirements text
//	location  30% — preferred location appears in the job location
//	seniority 30% — education level vs. role-level keywords in the title
package matching

import (
	"math"
	"strings"

	"github.com/alternagen/api/internal/model"
)

// Sub-score weights. They sum to 1, so the final score stays in [0,100]
// by construction.
const (
	skillsWeight    = 0.4
	locationWeight  = 0.3
	seniorityWeight = 0.3
)

// neutralScore is used when one side of a comparison has no data — we don't
// reward or punish an unknown.
const neutralScore = 50

// Keyword classes for the seniority heuristic. The product targets French
// students, so role and education keywords follow French job-posting
// conventions (alternance/stage postings are junior roles, Bac+5/master
// profiles are senior-level).
var (
	juniorRoleWords  = []string{"junior", "alternance", "stage"}
	seniorRoleWords  = []string{"senior", "manager", "lead"}
	juniorLevelWords = []string{"bac+3", "bac+4"}
	seniorLevelWords = []string{"bac+5", "master"}
)

// Result is the outcome of scoring one profile against one job.
type Result struct {
	Score       int    `json:"score"` // 0..100
	Explanation string `json:"explanation"`
}

// Score computes the weighted match score and its explanation.
func Score(profile *model.Profile, job *model.Job) Result {
	skills := SkillsScore(profile.Skills, job.Requirements)
	location := LocationScore(profile.PreferredLocations, job.Location)
	seniority := SeniorityScore(profile.EducationLevel, job.Title)

	final := int(math.Round(
		float64(skills)*skillsWeight +
			float64(location)*locationWeight +
			float64(seniority)*seniorityWeight,
	))

	return Result{
		Score:       final,
		Explanation: explain(final, skills, location, seniority, profile, job),
	}
}

// SkillsScore returns the percentage of the user's skills whose lowercase
// form appears as a substring of the job's requirements text. No
// requirements text or no skills means 0 — an absent signal is a miss here,
// not a neutral, because skills carry the largest weight.
func SkillsScore(userSkills []string, jobRequirements string) int {
	if jobRequirements == "" || len(userSkills) == 0 {
		return 0
	}

	reqLower := strings.ToLower(jobRequirements)
	matched := 0
	for _, skill := range userSkills {
		if strings.Contains(reqLower, strings.ToLower(skill)) {
			matched++
		}
	}

	return int(math.Round(float64(matched) / float64(len(userSkills)) * 100))
}

// LocationScore returns 100 if any preferred location is a substring of the
// job location (case-insensitive), 0 if both sides have data but none match,
// and 50 (neutral) when either side is missing.
func LocationScore(preferredLocations []string, jobLocation string) int {
	if jobLocation == "" || len(preferredLocations) == 0 {
		return neutralScore
	}

	jobLoc := strings.ToLower(jobLocation)
	for _, loc := range preferredLocations {
		if strings.Contains(jobLoc, strings.ToLower(loc)) {
			return 100
		}
	}

	return 0
}

// SeniorityScore classifies the job title and the education level into
// junior-like / senior-like classes and compares them: matching classes
// score 100, opposite classes 30 (a mismatch, but not impossible), anything
// else — including missing data or an unclassifiable title — is neutral.
func SeniorityScore(educationLevel, jobTitle string) int {
	if educationLevel == "" || jobTitle == "" {
		return neutralScore
	}

	title := strings.ToLower(jobTitle)
	level := strings.ToLower(educationLevel)

	juniorRole := containsAny(title, juniorRoleWords)
	seniorRole := containsAny(title, seniorRoleWords)
	juniorLevel := containsAny(level, juniorLevelWords)
	seniorLevel := containsAny(level, seniorLevelWords)

	switch {
	case (juniorRole && juniorLevel) || (seniorRole && seniorLevel):
		return 100
	case (juniorRole && seniorLevel) || (seniorRole && juniorLevel):
		return 30
	default:
		return neutralScore
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Explanation band phrases. The overall phrase is keyed on the final score,
// then one clause is appended per sub-score band.
const (
	phraseExcellent = "Excellent match!"
	phraseGood      = "Good match."
	phrasePartial   = "Partial match."
)

func explain(final, skills, location, seniority int, profile *model.Profile, job *model.Job) string {
	parts := make([]string, 0, 4)

	switch {
	case final >= 70:
		parts = append(parts, phraseExcellent)
	case final >= 50:
		parts = append(parts, phraseGood)
	default:
		parts = append(parts, phrasePartial)
	}

	switch {
	case skills >= 70:
		parts = append(parts, "Your skills align well with the requirements.")
	case skills >= 40:
		parts = append(parts, "Some of your skills match the requirements.")
	default:
		parts = append(parts, "Limited skills overlap.")
	}

	switch location {
	case 100:
		parts = append(parts, "Location matches your preferences ("+job.Location+").")
	case 0:
		parts = append(parts, "Location ("+job.Location+") is outside your preferred areas.")
	}

	switch {
	case seniority >= 70:
		parts = append(parts, "Role level fits your education ("+profile.EducationLevel+").")
	case seniority < 50:
		parts = append(parts, "Role level may not align with your experience.")
	}

	return strings.Join(parts, " ")
}
