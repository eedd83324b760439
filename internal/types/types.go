package types

import (
	"regexp"
	"strings"
)

// Task identifies one kind of generation request.
type Task string

const (
	TaskJobAssets         Task = "job_assets"
	TaskCandidateProfiles Task = "candidate_profiles"
	TaskAdvancedAssets    Task = "advanced_assets"
	TaskSpeech            Task = "speech"
	TaskChat              Task = "chat"
)

// GenerationTasks lists the tasks that produce structured session artifacts.
var GenerationTasks = []Task{TaskJobAssets, TaskCandidateProfiles, TaskAdvancedAssets}

// ImageAttachment is an optional image supplied alongside the raw notes
type ImageAttachment struct {
	MIMEType string `json:"mimeType" validate:"required"`
	Data     []byte `json:"data" validate:"required"`
}

// GenerateJobAssetsInput represents the input for a base generation
type GenerateJobAssetsInput struct {
	Notes string           `json:"notes"`
	Image *ImageAttachment `json:"image,omitempty"`
}

// SalaryRange is the numeric salary band extracted from the notes
type SalaryRange struct {
	Min      float64 `json:"min" validate:"gte=0"`
	Max      float64 `json:"max" validate:"gtefield=Min"`
	Currency string  `json:"currency" validate:"required"`
}

// Midpoint returns the middle of the band.
func (s SalaryRange) Midpoint() float64 {
	return (s.Min + s.Max) / 2
}

// JobDescription is the polished ten-part job posting
type JobDescription struct {
	Title            string       `json:"title" validate:"required"`
	AboutUs          string       `json:"aboutUs" validate:"required"`
	SellingPoints    []string     `json:"keySellingPoints" validate:"required,min=1,dive,required"`
	Summary          string       `json:"summary" validate:"required"`
	Responsibilities []string     `json:"responsibilities" validate:"required,min=1,dive,required"`
	HardSkills       []string     `json:"hardSkills" validate:"required,min=1,dive,required"`
	NiceToHaves      []string     `json:"niceToHaves" validate:"required,dive,required"`
	SoftSkills       []string     `json:"softSkills" validate:"required,dive,required"`
	Offerings        []string     `json:"whatWeOffer" validate:"required,dive,required"`
	Salary           *SalaryRange `json:"salary,omitempty" validate:"omitempty"`
}

// PlaceholderPattern matches the coding-challenge slot embedded in hard skills.
var PlaceholderPattern = regexp.MustCompile(`(?i)\[\s*placeholder\b[^\]]*\]`)

// IsPlaceholder reports whether a hard-skill entry is the coding-challenge slot.
func IsPlaceholder(skill string) bool {
	return PlaceholderPattern.MatchString(skill)
}

// PlaceholderSkills returns the hard-skill entries carrying the placeholder marker.
func (jd *JobDescription) PlaceholderSkills() []string {
	var out []string
	for _, skill := range jd.HardSkills {
		if IsPlaceholder(skill) {
			out = append(out, skill)
		}
	}
	return out
}

// QuestionCategory is the machine token for an interview question category.
type QuestionCategory string

const (
	CategoryHardSkill          QuestionCategory = "Hard Skill"
	CategorySoftSkill          QuestionCategory = "Soft Skill"
	CategoryProblemSolving     QuestionCategory = "Problem Solving"
	CategoryConflictResolution QuestionCategory = "Conflict Resolution"
	CategoryDEI                QuestionCategory = "DEI"
)

// QuestionCategories is the closed set of category tokens, in display order.
var QuestionCategories = []QuestionCategory{
	CategoryHardSkill,
	CategorySoftSkill,
	CategoryProblemSolving,
	CategoryConflictResolution,
	CategoryDEI,
}

// Valid reports whether c belongs to the closed set.
func (c QuestionCategory) Valid() bool {
	for _, known := range QuestionCategories {
		if c == known {
			return true
		}
	}
	return false
}

// InterviewQuestion is one behavioral (STAR) interview question
type InterviewQuestion struct {
	ID          string           `json:"id" validate:"required"`
	Question    string           `json:"question" validate:"required"`
	TargetSkill string           `json:"targetSkill" validate:"required"`
	Category    QuestionCategory `json:"type" validate:"required,question_category"`
}

// ProfileType is the machine token for a candidate persona.
type ProfileType string

const (
	ProfileHighPotentialJunior ProfileType = "High-Potential Junior"
	ProfileCoreMidLevel        ProfileType = "Core Mid-Level"
	ProfileVeteranSpecialist   ProfileType = "Veteran Specialist"
)

// ProfileTypes is the closed set of profile tokens, in display order.
var ProfileTypes = []ProfileType{
	ProfileHighPotentialJunior,
	ProfileCoreMidLevel,
	ProfileVeteranSpecialist,
}

// Valid reports whether p belongs to the closed set.
func (p ProfileType) Valid() bool {
	for _, known := range ProfileTypes {
		if p == known {
			return true
		}
	}
	return false
}

// CandidateProfile is one ideal-candidate persona
type CandidateProfile struct {
	ID              string      `json:"id" validate:"required"`
	Type            ProfileType `json:"type" validate:"required,profile_type"`
	Description     string      `json:"description" validate:"required"`
	KeySellingPoint string      `json:"keySellingPoint" validate:"required"`
	RedFlag         string      `json:"redFlag" validate:"required"`
}

// OutreachMessage is the short recruiter cold message
type OutreachMessage struct {
	Headline string `json:"headline" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// KPI is a success metric for one horizon
type KPI struct {
	Timeframe string `json:"timeframe" validate:"required"`
	Goal      string `json:"goal" validate:"required"`
}

// BiasItem is a phrase flagged by the bias analysis
type BiasItem struct {
	OriginalText string `json:"originalText" validate:"required"`
	BiasType     string `json:"biasType" validate:"required"`
	Suggestion   string `json:"suggestion" validate:"required"`
}

// HiringChallenge is the take-home assignment
type HiringChallenge struct {
	Objective          string   `json:"objective" validate:"required"`
	Deliverables       []string `json:"deliverables" validate:"required,min=1,dive,required"`
	Duration           string   `json:"duration" validate:"required"`
	EvaluationCriteria []string `json:"evaluationCriteria" validate:"required,min=1,dive,required"`
}

// ScreeningQuestion is a phone-screen question
type ScreeningQuestion struct {
	Category string `json:"category" validate:"required"`
	Question string `json:"question" validate:"required"`
}

// OnboardingPlan covers the first thirty days
type OnboardingPlan struct {
	Week1          []string `json:"week1" validate:"required,min=1,dive,required"`
	Day30Milestone string   `json:"day30Milestone" validate:"required"`
}

// CompAnalysis covers non-monetary advantages and negotiation
type CompAnalysis struct {
	CompetitiveAdvantages []string `json:"competitiveAdvantages" validate:"required,min=1,dive,required"`
	NegotiationTactic     string   `json:"negotiationTactic" validate:"required"`
}

// Stakeholder is one key collaborator of the role
type Stakeholder struct {
	Role              string `json:"role" validate:"required"`
	CollaborationGoal string `json:"collaborationGoal" validate:"required"`
}

// AdvancedAssets is the eight-part recruitment toolkit
type AdvancedAssets struct {
	OutreachMessage    OutreachMessage     `json:"outreachMessage"`
	KPIs               []KPI               `json:"successMetrics" validate:"required,min=1,dive"`
	BiasAnalysis       []BiasItem          `json:"biasAnalysis" validate:"required,dive"`
	HiringChallenge    HiringChallenge     `json:"hiringChallenge"`
	ScreeningQuestions []ScreeningQuestion `json:"screeningQuestions" validate:"required,min=1,dive"`
	OnboardingPlan     OnboardingPlan      `json:"onboardingPlan"`
	CompAnalysis       CompAnalysis        `json:"compAnalysis"`
	Stakeholders       []Stakeholder       `json:"stakeholderMap" validate:"required,min=1,dive"`
}

// JobAssets is the atomic result of a base generation
type JobAssets struct {
	JobDescription     JobDescription      `json:"jobDescription"`
	InterviewQuestions []InterviewQuestion `json:"interviewQuestions"`
}

// Speech is synthesized audio for a single question
type Speech struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// SplitLines turns edited multi-line text into list items, dropping blank lines.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
