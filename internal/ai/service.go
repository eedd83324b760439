package ai

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"
	"time"

	"hireforge/internal/config"
	appErrors "hireforge/internal/errors"
	"hireforge/internal/types"
	"hireforge/internal/validation"

	"github.com/google/uuid"
)

// Recorder receives the outcome of every generator call. The observability
// package provides the metrics-backed implementation.
type Recorder interface {
	RecordGeneration(ctx context.Context, task types.Task, usage *TokenUsage, duration time.Duration, err error)
}

// Service is the generation client: it validates input, renders prompts,
// calls the provider and enforces the output contract.
type Service struct {
	Provider   AIProvider // Exported for access from server package
	builder    *PromptBuilder
	strictness validation.Strictness
	recorder   Recorder
	logger     *appErrors.Logger
}

// NewService creates the generation client described by cfg.
func NewService(cfg *config.Config, logger *appErrors.Logger) (*Service, error) {
	logger.Debug("Initializing generation service",
		"provider", cfg.AI.Provider,
		"model", cfg.AI.Model,
		"language", cfg.AI.Language,
		"thinking_budget", cfg.AI.ThinkingBudget,
		"timeout", cfg.AI.Timeout,
		"max_retries", cfg.AI.MaxRetries,
		"strict_contract", cfg.AI.StrictContract)

	var provider AIProvider
	switch cfg.AI.Provider {
	case "", "gemini":
		p, err := NewGeminiProvider(cfg, logger)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, appErrors.NewConfigError(appErrors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.AI.Provider), nil)
	}

	return NewServiceWithProvider(provider, NewPromptBuilder(cfg, cfg.AI.Language), StrictnessFor(cfg), logger), nil
}

// NewServiceWithProvider assembles a service from its parts.
func NewServiceWithProvider(provider AIProvider, builder *PromptBuilder, strictness validation.Strictness, logger *appErrors.Logger) *Service {
	if builder == nil {
		builder = NewPromptBuilder(nil, "")
	}
	return &Service{
		Provider:   provider,
		builder:    builder,
		strictness: strictness,
		logger:     logger,
	}
}

// StrictnessFor maps ai.strictContract onto the contract validator.
func StrictnessFor(cfg *config.Config) validation.Strictness {
	if cfg.AI.StrictContract {
		return validation.Strict
	}
	return validation.Strictness{}
}

// SetRecorder installs r as the call outcome sink.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// Language returns the output language code.
func (s *Service) Language() string {
	return s.builder.Language()
}

// GetModelInfo returns information about the generator model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// CircuitBreakerStats reports breaker states when the provider has breakers.
func (s *Service) CircuitBreakerStats() map[string]any {
	if p, ok := s.Provider.(interface{ GetCircuitBreakerStats() map[string]any }); ok {
		return p.GetCircuitBreakerStats()
	}
	return nil
}

// Close releases the provider.
func (s *Service) Close() error {
	return s.Provider.Close()
}

func (s *Service) record(ctx context.Context, task types.Task, start time.Time, usage *TokenUsage, err error) {
	if s.recorder != nil {
		s.recorder.RecordGeneration(ctx, task, usage, time.Since(start), err)
	}
}

// ValidateImage accepts a nil attachment or a non-empty image/* one.
func ValidateImage(image *types.ImageAttachment) error {
	if image == nil {
		return nil
	}
	if len(image.Data) == 0 {
		return appErrors.NewValidationError(appErrors.ErrCodeUnsupportedImage,
			"Image attachment is empty", nil)
	}
	if !strings.HasPrefix(strings.ToLower(image.MIMEType), "image/") {
		return appErrors.NewValidationError(appErrors.ErrCodeUnsupportedImage,
			fmt.Sprintf("Unsupported image type: %q", image.MIMEType), nil)
	}
	return nil
}

func (s *Service) logWarnings(task types.Task, res validation.Result) {
	for _, w := range res.Warnings {
		s.logger.Warn("Generated artifact deviates from contract",
			"task", string(task),
			"rule", w.Rule,
			"field", w.Field,
			"detail", w.Message)
	}
}

// GenerateJobAssets produces the job description and interview questions in
// one call. Either both are returned or neither.
func (s *Service) GenerateJobAssets(ctx context.Context, input types.GenerateJobAssetsInput) (types.JobAssets, error) {
	if strings.TrimSpace(input.Notes) == "" {
		return types.JobAssets{}, appErrors.NewValidationError(appErrors.ErrCodeEmptyNotes,
			"Job notes must not be empty", nil)
	}
	if err := ValidateImage(input.Image); err != nil {
		return types.JobAssets{}, err
	}

	prompt, err := s.builder.BuildJobAssetsPrompt(input)
	if err != nil {
		return types.JobAssets{}, err
	}

	start := time.Now()
	assets, usage, err := s.Provider.JobAssets(ctx, prompt)
	s.record(ctx, types.TaskJobAssets, start, usage, err)
	if err != nil {
		return types.JobAssets{}, err
	}

	for i := range assets.InterviewQuestions {
		assets.InterviewQuestions[i].ID = uuid.NewString()
	}

	res, err := validation.JobAssets(assets.JobDescription, assets.InterviewQuestions, s.strictness)
	if err != nil {
		s.logger.LogError(err, "Rejected generated job assets")
		return types.JobAssets{}, err
	}
	s.logWarnings(types.TaskJobAssets, res)

	s.logger.Info("Generated job assets",
		"title", assets.JobDescription.Title,
		"questions", len(assets.InterviewQuestions),
		"distribution", validation.CountDistribution(assets.InterviewQuestions).String())
	return assets, nil
}

func requireJobDescription(task types.Task, jd *types.JobDescription) error {
	if jd == nil {
		return appErrors.NewPreconditionError(appErrors.ErrCodeMissingJobDesc,
			"A job description must be generated first", nil).
			WithContext("task", string(task))
	}
	return nil
}

// GenerateCandidateProfiles produces the three personas for jd.
func (s *Service) GenerateCandidateProfiles(ctx context.Context, jd *types.JobDescription) ([]types.CandidateProfile, error) {
	if err := requireJobDescription(types.TaskCandidateProfiles, jd); err != nil {
		return nil, err
	}

	prompt, err := s.builder.BuildCandidateProfilesPrompt(*jd)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	profiles, usage, err := s.Provider.CandidateProfiles(ctx, prompt)
	s.record(ctx, types.TaskCandidateProfiles, start, usage, err)
	if err != nil {
		return nil, err
	}

	for i := range profiles {
		profiles[i].ID = uuid.NewString()
	}
	if _, err := validation.CandidateProfiles(profiles); err != nil {
		s.logger.LogError(err, "Rejected generated candidate profiles")
		return nil, err
	}

	s.logger.Info("Generated candidate profiles", "title", jd.Title, "profiles", len(profiles))
	return profiles, nil
}

// GenerateAdvancedAssets produces the eight-part toolkit for jd.
func (s *Service) GenerateAdvancedAssets(ctx context.Context, jd *types.JobDescription) (types.AdvancedAssets, error) {
	if err := requireJobDescription(types.TaskAdvancedAssets, jd); err != nil {
		return types.AdvancedAssets{}, err
	}

	prompt, err := s.builder.BuildAdvancedAssetsPrompt(*jd)
	if err != nil {
		return types.AdvancedAssets{}, err
	}

	start := time.Now()
	assets, usage, err := s.Provider.AdvancedAssets(ctx, prompt)
	s.record(ctx, types.TaskAdvancedAssets, start, usage, err)
	if err != nil {
		return types.AdvancedAssets{}, err
	}

	if _, err := validation.AdvancedAssets(assets); err != nil {
		s.logger.LogError(err, "Rejected generated advanced assets")
		return types.AdvancedAssets{}, err
	}

	s.logger.Info("Generated advanced assets", "title", jd.Title)
	return assets, nil
}

// GenerateSpeech synthesizes text with the configured voice.
func (s *Service) GenerateSpeech(ctx context.Context, text string) (types.Speech, error) {
	if strings.TrimSpace(text) == "" {
		return types.Speech{}, appErrors.NewValidationError(appErrors.ErrCodeEmptyText,
			"Text to synthesize must not be empty", nil)
	}

	start := time.Now()
	speech, usage, err := s.Provider.Speech(ctx, text)
	s.record(ctx, types.TaskSpeech, start, usage, err)
	if err != nil {
		return types.Speech{}, err
	}
	return speech, nil
}

// StreamChatResponse answers message given the prior turns. The returned
// sequence may be ranged over once; a second range yields a single error.
func (s *Service) StreamChatResponse(ctx context.Context, history []types.ChatTurn, message, contextSummary string) iter.Seq2[string, error] {
	var consumed atomic.Bool

	return func(yield func(string, error) bool) {
		if consumed.Swap(true) {
			yield("", appErrors.NewPreconditionError(appErrors.ErrCodeStreamConsumed,
				"Chat response stream was already consumed", nil))
			return
		}

		if strings.TrimSpace(message) == "" {
			yield("", appErrors.NewValidationError(appErrors.ErrCodeEmptyText,
				"Chat message must not be empty", nil))
			return
		}

		prompt, err := s.builder.BuildChatPrompt(history, message, contextSummary)
		if err != nil {
			yield("", err)
			return
		}

		start := time.Now()
		var streamErr error
		defer func() { s.record(ctx, types.TaskChat, start, nil, streamErr) }()

		for delta, err := range s.Provider.StreamChat(ctx, prompt) {
			if err != nil {
				streamErr = err
				yield("", err)
				return
			}
			if !yield(delta, nil) {
				return
			}
		}
	}
}
