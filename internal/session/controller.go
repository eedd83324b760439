package session

import (
	"context"
	"strings"

	"hireforge/internal/ai"
	appErrors "hireforge/internal/errors"
	"hireforge/internal/types"

	"golang.org/x/sync/errgroup"
)

// Controller runs generations for one session and applies their results to
// its Store. Each task kind is single-flight; different kinds may overlap.
type Controller struct {
	store     *Store
	generator ai.Generator
	logger    *appErrors.Logger
}

// NewController binds a generator to store.
func NewController(store *Store, generator ai.Generator, logger *appErrors.Logger) *Controller {
	if store == nil {
		store = NewStore()
	}
	return &Controller{store: store, generator: generator, logger: logger}
}

// Store returns the controlled store.
func (c *Controller) Store() *Store {
	return c.store
}

// GenerateJobAssets clears the session and runs a base generation. Invalid
// input is refused before anything is cleared. On generation failure the
// session stays empty.
func (c *Controller) GenerateJobAssets(ctx context.Context, input types.GenerateJobAssetsInput) (types.JobAssets, error) {
	if strings.TrimSpace(input.Notes) == "" {
		return types.JobAssets{}, appErrors.NewValidationError(appErrors.ErrCodeEmptyNotes,
			"Job notes must not be empty", nil)
	}
	if err := ai.ValidateImage(input.Image); err != nil {
		return types.JobAssets{}, err
	}

	release, err := c.store.Begin(types.TaskJobAssets)
	if err != nil {
		return types.JobAssets{}, err
	}
	defer release()

	epoch := c.store.Reset()
	assets, err := c.generator.GenerateJobAssets(ctx, input)
	if err != nil {
		return types.JobAssets{}, err
	}
	if err := c.store.SetJobAssets(epoch, assets); err != nil {
		return types.JobAssets{}, err
	}
	return assets, nil
}

// GenerateCandidateProfiles adds personas for the current job description.
func (c *Controller) GenerateCandidateProfiles(ctx context.Context) ([]types.CandidateProfile, error) {
	release, err := c.store.Begin(types.TaskCandidateProfiles)
	if err != nil {
		return nil, err
	}
	defer release()

	epoch := c.store.Epoch()
	profiles, err := c.generator.GenerateCandidateProfiles(ctx, c.store.JobDescription())
	if err != nil {
		return nil, err
	}
	if err := c.store.AddProfiles(epoch, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GenerateAdvancedAssets adds the toolkit for the current job description.
func (c *Controller) GenerateAdvancedAssets(ctx context.Context) (types.AdvancedAssets, error) {
	release, err := c.store.Begin(types.TaskAdvancedAssets)
	if err != nil {
		return types.AdvancedAssets{}, err
	}
	defer release()

	epoch := c.store.Epoch()
	assets, err := c.generator.GenerateAdvancedAssets(ctx, c.store.JobDescription())
	if err != nil {
		return types.AdvancedAssets{}, err
	}
	if err := c.store.AddAdvanced(epoch, assets); err != nil {
		return types.AdvancedAssets{}, err
	}
	return assets, nil
}

// GenerateSubAssets runs the profile and toolkit generations concurrently.
// Each result is applied as soon as it succeeds; the first error is returned.
func (c *Controller) GenerateSubAssets(ctx context.Context) (types.SessionAssets, error) {
	if c.store.JobDescription() == nil {
		return c.store.Snapshot(), appErrors.NewPreconditionError(appErrors.ErrCodeMissingJobDesc,
			"A job description must be generated first", nil)
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := c.GenerateCandidateProfiles(ctx)
		if err != nil {
			c.logger.LogError(err, "Candidate profile generation failed")
		}
		return err
	})
	g.Go(func() error {
		_, err := c.GenerateAdvancedAssets(ctx)
		if err != nil {
			c.logger.LogError(err, "Advanced asset generation failed")
		}
		return err
	})
	err := g.Wait()
	return c.store.Snapshot(), err
}

// GenerateSpeech synthesizes text. It does not touch session state.
func (c *Controller) GenerateSpeech(ctx context.Context, text string) (types.Speech, error) {
	return c.generator.GenerateSpeech(ctx, text)
}
