// Package validation enforces the semantic contract of generated artifacts
// once they have passed structural schema validation.
package validation

import (
	"fmt"
	"strings"
	"sync"

	appErrors "hireforge/internal/errors"
	"hireforge/internal/types"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("question_category", func(fl validator.FieldLevel) bool {
			return types.QuestionCategory(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("profile_type", func(fl validator.FieldLevel) bool {
			return types.ProfileType(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Required question counts per bucket of a 21-question batch.
const (
	GeneralQuestions     = 10
	ConflictQuestions    = 5
	ProblemSolvingCount  = 3
	DEIQuestions         = 3
	TotalQuestionsWanted = GeneralQuestions + ConflictQuestions + ProblemSolvingCount + DEIQuestions
)

// Distribution counts questions per contract bucket. Hard and soft skill
// questions share the general bucket.
type Distribution struct {
	General            int `json:"general"`
	ConflictResolution int `json:"conflictResolution"`
	ProblemSolving     int `json:"problemSolving"`
	DEI                int `json:"dei"`
}

// Total is the number of questions counted.
func (d Distribution) Total() int {
	return d.General + d.ConflictResolution + d.ProblemSolving + d.DEI
}

// Compliant reports whether d is exactly 10/5/3/3.
func (d Distribution) Compliant() bool {
	return d.General == GeneralQuestions &&
		d.ConflictResolution == ConflictQuestions &&
		d.ProblemSolving == ProblemSolvingCount &&
		d.DEI == DEIQuestions
}

func (d Distribution) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", d.General, d.ConflictResolution, d.ProblemSolving, d.DEI)
}

// CountDistribution buckets a question batch.
func CountDistribution(questions []types.InterviewQuestion) Distribution {
	var d Distribution
	for _, q := range questions {
		switch q.Category {
		case types.CategoryHardSkill, types.CategorySoftSkill:
			d.General++
		case types.CategoryConflictResolution:
			d.ConflictResolution++
		case types.CategoryProblemSolving:
			d.ProblemSolving++
		case types.CategoryDEI:
			d.DEI++
		}
	}
	return d
}

// Violation is one broken contract rule.
type Violation struct {
	Rule    string `json:"rule"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ContractError collects the violations found in one artifact.
type ContractError struct {
	Violations []Violation
}

func (e *ContractError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "contract violated: " + strings.Join(parts, "; ")
}

// Strictness selects which soft rules are fatal. Soft rules are the ones the
// generator is asked to honor but that do not affect typing: the question
// distribution and the single placeholder.
type Strictness struct {
	Distribution bool
	Placeholder  bool
}

// Strict makes every rule fatal.
var Strict = Strictness{Distribution: true, Placeholder: true}

// Result lists the soft violations that were tolerated.
type Result struct {
	Warnings []Violation
}

func structViolations(v any) []Violation {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var out []Violation
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			out = append(out, Violation{
				Rule:    fe.Tag(),
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		return out
	}
	return []Violation{{Rule: "struct", Field: "(root)", Message: err.Error()}}
}

func uniqueIDs[T any](items []T, id func(T) string, field string) []Violation {
	seen := make(map[string]struct{}, len(items))
	var out []Violation
	for i, item := range items {
		key := id(item)
		if _, dup := seen[key]; dup {
			out = append(out, Violation{
				Rule:    "unique_id",
				Field:   fmt.Sprintf("%s[%d].id", field, i),
				Message: fmt.Sprintf("duplicate id %q", key),
			})
		}
		seen[key] = struct{}{}
	}
	return out
}

func finish(task types.Task, fatal []Violation, warnings []Violation) (Result, error) {
	res := Result{Warnings: warnings}
	if len(fatal) == 0 {
		return res, nil
	}
	return res, appErrors.NewSchemaError(appErrors.ErrCodeContractViolation,
		"generated artifact violates the generation contract", &ContractError{Violations: fatal}).
		WithContext("task", string(task)).
		WithContext("violations", len(fatal))
}

// JobAssets checks a job description and its question batch.
func JobAssets(jd types.JobDescription, questions []types.InterviewQuestion, strictness Strictness) (Result, error) {
	var fatal, warnings []Violation
	soft := func(strict bool, v Violation) {
		if strict {
			fatal = append(fatal, v)
		} else {
			warnings = append(warnings, v)
		}
	}

	fatal = append(fatal, structViolations(jd)...)

	if n := len(jd.PlaceholderSkills()); n != 1 {
		soft(strictness.Placeholder, Violation{
			Rule:    "one_placeholder",
			Field:   "JobDescription.HardSkills",
			Message: fmt.Sprintf("expected exactly one placeholder entry, found %d", n),
		})
	}

	for i := range questions {
		for _, v := range structViolations(questions[i]) {
			v.Field = fmt.Sprintf("interviewQuestions[%d].%s", i, strings.TrimPrefix(v.Field, "InterviewQuestion."))
			fatal = append(fatal, v)
		}
	}
	fatal = append(fatal, uniqueIDs(questions, func(q types.InterviewQuestion) string { return q.ID }, "interviewQuestions")...)

	if d := CountDistribution(questions); !d.Compliant() || len(questions) != TotalQuestionsWanted {
		soft(strictness.Distribution, Violation{
			Rule:  "distribution",
			Field: "interviewQuestions",
			Message: fmt.Sprintf("expected %d questions split %d/%d/%d/%d, got %d split %s",
				TotalQuestionsWanted, GeneralQuestions, ConflictQuestions, ProblemSolvingCount, DEIQuestions,
				len(questions), d),
		})
	}

	return finish(types.TaskJobAssets, fatal, warnings)
}

// CandidateProfiles checks that the batch holds exactly one profile per type.
func CandidateProfiles(profiles []types.CandidateProfile) (Result, error) {
	var fatal []Violation

	counts := make(map[types.ProfileType]int, len(types.ProfileTypes))
	for i := range profiles {
		for _, v := range structViolations(profiles[i]) {
			v.Field = fmt.Sprintf("candidateProfiles[%d].%s", i, strings.TrimPrefix(v.Field, "CandidateProfile."))
			fatal = append(fatal, v)
		}
		counts[profiles[i].Type]++
	}
	fatal = append(fatal, uniqueIDs(profiles, func(p types.CandidateProfile) string { return p.ID }, "candidateProfiles")...)

	if len(profiles) != len(types.ProfileTypes) {
		fatal = append(fatal, Violation{
			Rule:    "profile_count",
			Field:   "candidateProfiles",
			Message: fmt.Sprintf("expected %d profiles, got %d", len(types.ProfileTypes), len(profiles)),
		})
	}
	for _, p := range types.ProfileTypes {
		if counts[p] != 1 {
			fatal = append(fatal, Violation{
				Rule:    "one_per_type",
				Field:   "candidateProfiles",
				Message: fmt.Sprintf("expected one %q profile, got %d", p, counts[p]),
			})
		}
	}

	return finish(types.TaskCandidateProfiles, fatal, nil)
}

// AdvancedAssets checks field presence across the eight sub-assets.
func AdvancedAssets(assets types.AdvancedAssets) (Result, error) {
	return finish(types.TaskAdvancedAssets, structViolations(assets), nil)
}

// EditedJobDescription checks a job description written back by a user.
// Only the structural rules apply; the placeholder may have been filled in.
func EditedJobDescription(jd types.JobDescription) error {
	fatal := structViolations(jd)
	if len(fatal) == 0 {
		return nil
	}
	return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
		"edited job description is incomplete", &ContractError{Violations: fatal}).
		WithContext("violations", len(fatal))
}
