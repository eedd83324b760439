// Package session holds the per-session generation state: the artifacts
// generated so far, one in-flight flag per task, and the controller that
// drives the generation client against them.
package session

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	appErrors "hireforge/internal/errors"
	"hireforge/internal/types"
)

// Store holds one SessionAssets aggregate. Base generation resets it and
// bumps the epoch; results computed against an older epoch are refused so
// that a slow sub-generation never lands on a newer job description.
type Store struct {
	mu       sync.RWMutex
	assets   types.SessionAssets
	epoch    uint64
	inFlight map[types.Task]bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{inFlight: make(map[types.Task]bool)}
}

// Epoch returns the current generation epoch.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Reset clears every artifact and returns the new epoch.
func (s *Store) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = types.SessionAssets{}
	s.epoch++
	return s.epoch
}

func (s *Store) checkEpoch(task types.Task, epoch uint64) error {
	if epoch != s.epoch {
		return appErrors.NewConflictError(appErrors.ErrCodeStaleResult,
			"session was reset while the generation was running", nil).
			WithContext("task", string(task))
	}
	return nil
}

func (s *Store) requireJobDescription(task types.Task) error {
	if s.assets.JobDescription == nil {
		return appErrors.NewPreconditionError(appErrors.ErrCodeMissingJobDesc,
			"A job description must be generated first", nil).
			WithContext("task", string(task))
	}
	return nil
}

// SetJobAssets stores the result of a base generation started at epoch.
func (s *Store) SetJobAssets(epoch uint64, assets types.JobAssets) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEpoch(types.TaskJobAssets, epoch); err != nil {
		return err
	}
	jd := cloneJobDescription(assets.JobDescription)
	s.assets.JobDescription = &jd
	s.assets.InterviewQuestions = slices.Clone(assets.InterviewQuestions)
	return nil
}

// AddProfiles stores candidate profiles generated at epoch.
func (s *Store) AddProfiles(epoch uint64, profiles []types.CandidateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEpoch(types.TaskCandidateProfiles, epoch); err != nil {
		return err
	}
	if err := s.requireJobDescription(types.TaskCandidateProfiles); err != nil {
		return err
	}
	s.assets.CandidateProfiles = slices.Clone(profiles)
	return nil
}

// AddAdvanced stores the advanced toolkit generated at epoch.
func (s *Store) AddAdvanced(epoch uint64, assets types.AdvancedAssets) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEpoch(types.TaskAdvancedAssets, epoch); err != nil {
		return err
	}
	if err := s.requireJobDescription(types.TaskAdvancedAssets); err != nil {
		return err
	}
	advanced := cloneAdvanced(assets)
	s.assets.AdvancedAssets = &advanced
	return nil
}

// UpdateJobDescription replaces the job description with a user edit. The
// question batch and sub-artifacts are kept.
func (s *Store) UpdateJobDescription(jd types.JobDescription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireJobDescription(types.TaskJobAssets); err != nil {
		return err
	}
	edited := cloneJobDescription(jd)
	s.assets.JobDescription = &edited
	return nil
}

// JobDescription returns a copy of the current job description, or nil.
func (s *Store) JobDescription() *types.JobDescription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.assets.JobDescription == nil {
		return nil
	}
	jd := cloneJobDescription(*s.assets.JobDescription)
	return &jd
}

// Snapshot returns a deep copy of the aggregate.
func (s *Store) Snapshot() types.SessionAssets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAssets(s.assets)
}

// ContextSummary renders the chat context for the current job description,
// or "" before one exists.
func (s *Store) ContextSummary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jd := s.assets.JobDescription
	if jd == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Current Job Title: %s\nSummary: %s\n", jd.Title, jd.Summary)
	return b.String()
}

// Begin marks task as running. The returned release must be called when the
// task finishes. A second Begin for the same task fails until then.
func (s *Store) Begin(task types.Task) (release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[task] {
		return nil, appErrors.NewConflictError(appErrors.ErrCodeTaskInFlight,
			"A generation of this kind is already running", nil).
			WithContext("task", string(task))
	}
	s.inFlight[task] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.inFlight, task)
			s.mu.Unlock()
		})
	}, nil
}

// InFlight reports whether task is running.
func (s *Store) InFlight(task types.Task) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight[task]
}

// Running lists the tasks currently in flight.
func (s *Store) Running() []types.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Task
	for _, task := range []types.Task{types.TaskJobAssets, types.TaskCandidateProfiles, types.TaskAdvancedAssets, types.TaskChat} {
		if s.inFlight[task] {
			out = append(out, task)
		}
	}
	return out
}

// MarshalJSON encodes the aggregate.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Restore replaces the aggregate with a previously encoded one. It counts as
// a reset, so in-flight results of the old state are refused.
func (s *Store) Restore(data []byte) error {
	var assets types.SessionAssets
	if err := json.Unmarshal(data, &assets); err != nil {
		return appErrors.NewParseError(appErrors.ErrCodeInvalidFormat,
			"Saved session is not valid JSON", err)
	}
	if assets.JobDescription == nil && (assets.CandidateProfiles != nil || assets.AdvancedAssets != nil) {
		return appErrors.NewValidationError(appErrors.ErrCodeMissingJobDesc,
			"Saved session has sub-artifacts without a job description", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = assets
	s.epoch++
	return nil
}

func cloneJobDescription(jd types.JobDescription) types.JobDescription {
	out := jd
	out.SellingPoints = slices.Clone(jd.SellingPoints)
	out.Responsibilities = slices.Clone(jd.Responsibilities)
	out.HardSkills = slices.Clone(jd.HardSkills)
	out.NiceToHaves = slices.Clone(jd.NiceToHaves)
	out.SoftSkills = slices.Clone(jd.SoftSkills)
	out.Offerings = slices.Clone(jd.Offerings)
	if jd.Salary != nil {
		salary := *jd.Salary
		out.Salary = &salary
	}
	return out
}

func cloneAdvanced(a types.AdvancedAssets) types.AdvancedAssets {
	out := a
	out.KPIs = slices.Clone(a.KPIs)
	out.BiasAnalysis = slices.Clone(a.BiasAnalysis)
	out.HiringChallenge.Deliverables = slices.Clone(a.HiringChallenge.Deliverables)
	out.HiringChallenge.EvaluationCriteria = slices.Clone(a.HiringChallenge.EvaluationCriteria)
	out.ScreeningQuestions = slices.Clone(a.ScreeningQuestions)
	out.OnboardingPlan.Week1 = slices.Clone(a.OnboardingPlan.Week1)
	out.CompAnalysis.CompetitiveAdvantages = slices.Clone(a.CompAnalysis.CompetitiveAdvantages)
	out.Stakeholders = slices.Clone(a.Stakeholders)
	return out
}

func cloneAssets(a types.SessionAssets) types.SessionAssets {
	out := types.SessionAssets{
		InterviewQuestions: slices.Clone(a.InterviewQuestions),
		CandidateProfiles:  slices.Clone(a.CandidateProfiles),
	}
	if a.JobDescription != nil {
		jd := cloneJobDescription(*a.JobDescription)
		out.JobDescription = &jd
	}
	if a.AdvancedAssets != nil {
		adv := cloneAdvanced(*a.AdvancedAssets)
		out.AdvancedAssets = &adv
	}
	return out
}
