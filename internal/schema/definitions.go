package schema

import (
	"hireforge/internal/types"

	"google.golang.org/genai"
)

// Fixed arities the generator is asked to honor.
const (
	InterviewQuestionCount = 21
	CandidateProfileCount  = 3
	KPICount               = 3
	ScreeningQuestionCount = 5
	StakeholderCount       = 3
)

func stringSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func stringList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: stringSchema()}
}

func enumSchema[T ~string](values []T) *genai.Schema {
	enum := make([]string, len(values))
	for i, v := range values {
		enum[i] = string(v)
	}
	return &genai.Schema{Type: genai.TypeString, Format: "enum", Enum: enum}
}

func exactly(n int64) *int64 {
	return &n
}

func objectOf(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func listOf(item *genai.Schema, count int64) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeArray, Items: item}
	if count > 0 {
		s.MinItems = exactly(count)
		s.MaxItems = exactly(count)
	}
	return s
}

// jobDescriptionSchema declares the ten-part posting. Salary is optional but
// complete when present.
func jobDescriptionSchema() *genai.Schema {
	salary := objectOf(map[string]*genai.Schema{
		"min":      {Type: genai.TypeNumber},
		"max":      {Type: genai.TypeNumber},
		"currency": stringSchema(),
	}, "min", "max", "currency")
	salary.Nullable = genai.Ptr(true)

	return objectOf(map[string]*genai.Schema{
		"title":            stringSchema(),
		"aboutUs":          stringSchema(),
		"keySellingPoints": stringList(),
		"summary":          stringSchema(),
		"responsibilities": stringList(),
		"hardSkills":       stringList(),
		"niceToHaves":      stringList(),
		"softSkills":       stringList(),
		"whatWeOffer":      stringList(),
		"salary":           salary,
	}, "title", "aboutUs", "keySellingPoints", "summary", "responsibilities",
		"hardSkills", "niceToHaves", "softSkills", "whatWeOffer")
}

// JobAssetsSchema is the response shape of a base generation.
func JobAssetsSchema() *genai.Schema {
	question := objectOf(map[string]*genai.Schema{
		"question":    stringSchema(),
		"targetSkill": stringSchema(),
		"type":        enumSchema(types.QuestionCategories),
	}, "question", "targetSkill", "type")

	return objectOf(map[string]*genai.Schema{
		"jobDescription":     jobDescriptionSchema(),
		"interviewQuestions": listOf(question, InterviewQuestionCount),
	}, "jobDescription", "interviewQuestions")
}

// CandidateProfilesSchema is the response shape of a profile generation.
func CandidateProfilesSchema() *genai.Schema {
	profile := objectOf(map[string]*genai.Schema{
		"type":            enumSchema(types.ProfileTypes),
		"description":     stringSchema(),
		"keySellingPoint": stringSchema(),
		"redFlag":         stringSchema(),
	}, "type", "description", "keySellingPoint", "redFlag")

	return listOf(profile, CandidateProfileCount)
}

// AdvancedAssetsSchema is the response shape of the eight-part toolkit.
func AdvancedAssetsSchema() *genai.Schema {
	return objectOf(map[string]*genai.Schema{
		"outreachMessage": objectOf(map[string]*genai.Schema{
			"headline": stringSchema(),
			"content":  stringSchema(),
		}, "headline", "content"),
		"successMetrics": listOf(objectOf(map[string]*genai.Schema{
			"timeframe": stringSchema(),
			"goal":      stringSchema(),
		}, "timeframe", "goal"), KPICount),
		"biasAnalysis": listOf(objectOf(map[string]*genai.Schema{
			"originalText": stringSchema(),
			"biasType":     stringSchema(),
			"suggestion":   stringSchema(),
		}, "originalText", "biasType", "suggestion"), 0),
		"hiringChallenge": objectOf(map[string]*genai.Schema{
			"objective":          stringSchema(),
			"deliverables":       stringList(),
			"duration":           stringSchema(),
			"evaluationCriteria": stringList(),
		}, "objective", "deliverables", "duration", "evaluationCriteria"),
		"screeningQuestions": listOf(objectOf(map[string]*genai.Schema{
			"category": stringSchema(),
			"question": stringSchema(),
		}, "category", "question"), ScreeningQuestionCount),
		"onboardingPlan": objectOf(map[string]*genai.Schema{
			"week1":          stringList(),
			"day30Milestone": stringSchema(),
		}, "week1", "day30Milestone"),
		"compAnalysis": objectOf(map[string]*genai.Schema{
			"competitiveAdvantages": stringList(),
			"negotiationTactic":     stringSchema(),
		}, "competitiveAdvantages", "negotiationTactic"),
		"stakeholderMap": listOf(objectOf(map[string]*genai.Schema{
			"role":              stringSchema(),
			"collaborationGoal": stringSchema(),
		}, "role", "collaborationGoal"), StakeholderCount),
	}, "outreachMessage", "successMetrics", "biasAnalysis", "hiringChallenge",
		"screeningQuestions", "onboardingPlan", "compAnalysis", "stakeholderMap")
}
