// Package testutil holds canned generator payloads shared by package tests.
package testutil

import (
	"encoding/json"
	"fmt"

	"hireforge/internal/types"
)

// PlaceholderSkill is the coding-challenge slot used by the fixtures.
const PlaceholderSkill = "[Placeholder: Short coding challenge related to Node.js]"

// JobDescription returns a complete posting with one placeholder and a salary band.
func JobDescription() types.JobDescription {
	return types.JobDescription{
		Title:            "מפתח/ת Backend",
		AboutUs:          "סטארטאפ צומח בתחום הפינטק",
		SellingPoints:    []string{"השפעה אמיתית", "צוות מוביל", "טכנולוגיה מתקדמת"},
		Summary:          "הובל/י את פיתוח שירותי הליבה",
		Responsibilities: []string{"פתח/י שירותי API", "נהל/י מסדי נתונים"},
		HardSkills:       []string{"Node.js", "PostgreSQL", PlaceholderSkill},
		NiceToHaves:      []string{"Kubernetes"},
		SoftSkills:       []string{"תקשורת בין-אישית"},
		Offerings:        []string{"קרן השתלמות", "עבודה היברידית"},
		Salary:           &types.SalaryRange{Min: 25000, Max: 35000, Currency: "ILS"},
	}
}

type rawQuestion struct {
	Question    string                 `json:"question"`
	TargetSkill string                 `json:"targetSkill"`
	Category    types.QuestionCategory `json:"type"`
}

// Distribution returns categories honoring the 10/5/3/3 split.
func Distribution() []types.QuestionCategory {
	var out []types.QuestionCategory
	for i := 0; i < 6; i++ {
		out = append(out, types.CategoryHardSkill)
	}
	for i := 0; i < 4; i++ {
		out = append(out, types.CategorySoftSkill)
	}
	for i := 0; i < 5; i++ {
		out = append(out, types.CategoryConflictResolution)
	}
	for i := 0; i < 3; i++ {
		out = append(out, types.CategoryProblemSolving)
	}
	for i := 0; i < 3; i++ {
		out = append(out, types.CategoryDEI)
	}
	return out
}

// Questions returns a batch with the given categories and sequential ids.
func Questions(categories []types.QuestionCategory) []types.InterviewQuestion {
	out := make([]types.InterviewQuestion, len(categories))
	for i, c := range categories {
		out[i] = types.InterviewQuestion{
			ID:          fmt.Sprintf("q-%d", i),
			Question:    fmt.Sprintf("ספר/י על מקרה %d", i+1),
			TargetSkill: "Node.js",
			Category:    c,
		}
	}
	return out
}

// JobAssetsJSON renders a generator body for a base generation with the given
// categories. The body carries no question ids, as the generator never does.
func JobAssetsJSON(jd types.JobDescription, categories []types.QuestionCategory) string {
	questions := make([]rawQuestion, len(categories))
	for i, c := range categories {
		questions[i] = rawQuestion{
			Question:    fmt.Sprintf("ספר/י על מקרה %d", i+1),
			TargetSkill: "Node.js",
			Category:    c,
		}
	}
	return mustJSON(map[string]any{
		"jobDescription":     jd,
		"interviewQuestions": questions,
	})
}

// ValidJobAssetsJSON is a compliant base generation body.
func ValidJobAssetsJSON() string {
	return JobAssetsJSON(JobDescription(), Distribution())
}

// Profiles returns one profile per type.
func Profiles() []types.CandidateProfile {
	out := make([]types.CandidateProfile, len(types.ProfileTypes))
	for i, p := range types.ProfileTypes {
		out[i] = types.CandidateProfile{
			ID:              fmt.Sprintf("p-%d", i),
			Type:            p,
			Description:     "תיאור",
			KeySellingPoint: "הוק",
			RedFlag:         "נקודת תורפה",
		}
	}
	return out
}

// ProfilesJSON renders a generator body for the given profile types.
func ProfilesJSON(profileTypes ...types.ProfileType) string {
	out := make([]map[string]string, len(profileTypes))
	for i, p := range profileTypes {
		out[i] = map[string]string{
			"type":            string(p),
			"description":     "תיאור",
			"keySellingPoint": "הוק",
			"redFlag":         "נקודת תורפה",
		}
	}
	return mustJSON(out)
}

// ValidProfilesJSON is a compliant profile generation body.
func ValidProfilesJSON() string {
	return ProfilesJSON(types.ProfileTypes...)
}

// AdvancedAssets returns a compliant eight-part toolkit.
func AdvancedAssets() types.AdvancedAssets {
	return types.AdvancedAssets{
		OutreachMessage: types.OutreachMessage{Headline: "בוא/י לבנות איתנו", Content: "שלום, ..."},
		KPIs: []types.KPI{
			{Timeframe: "90 Days", Goal: "למידה"},
			{Timeframe: "6 Months", Goal: "מסירה"},
			{Timeframe: "12 Months", Goal: "השפעה"},
		},
		BiasAnalysis: []types.BiasItem{
			{OriginalText: "צעיר ודינמי", BiasType: "גיל", Suggestion: "אנרגטי"},
			{OriginalText: "נינג'ה", BiasType: "מגדר", Suggestion: "מומחה"},
			{OriginalText: "דובר עברית כשפת אם", BiasType: "מוצא", Suggestion: "עברית ברמה גבוהה"},
		},
		HiringChallenge: types.HiringChallenge{
			Objective:          "בנה/י API",
			Deliverables:       []string{"קוד", "מסמך תכנון"},
			Duration:           "3-4 שעות",
			EvaluationCriteria: []string{"איכות קוד"},
		},
		ScreeningQuestions: []types.ScreeningQuestion{
			{Category: "Compensation", Question: "מה ציפיות השכר?"},
			{Category: "Availability", Question: "מתי תוכל/י להתחיל?"},
			{Category: "Motivation", Question: "למה אצלנו?"},
			{Category: "Hard Skill", Question: "כמה שנים ב-Node.js?"},
			{Category: "Hard Skill", Question: "ניסיון עם PostgreSQL?"},
		},
		OnboardingPlan: types.OnboardingPlan{Week1: []string{"הכרת הצוות"}, Day30Milestone: "פיצ'ר ראשון"},
		CompAnalysis: types.CompAnalysis{
			CompetitiveAdvantages: []string{"גמישות", "למידה"},
			NegotiationTactic:     "הדגש/י את מסלול הצמיחה",
		},
		Stakeholders: []types.Stakeholder{
			{Role: "CTO", CollaborationGoal: "ארכיטקטורה"},
			{Role: "Product", CollaborationGoal: "תעדוף"},
			{Role: "QA", CollaborationGoal: "איכות"},
		},
	}
}

// ValidAdvancedAssetsJSON is a compliant advanced generation body.
func ValidAdvancedAssetsJSON() string {
	return mustJSON(AdvancedAssets())
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
