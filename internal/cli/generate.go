package cli

import (
	"context"
	"fmt"

	"hireforge/internal/common"
	"hireforge/internal/errors"
	"hireforge/internal/session"
	"hireforge/internal/types"
	"hireforge/internal/utils"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [notes-file]",
	Short: "Generate a job description and interview guide from recruiter notes",
	Long: `Generate a structured job description and a 21-question behavioral
interview guide from free-form recruiter notes. Use "-" to read the notes
from stdin.

An optional image (a whiteboard photo, a scanned brief) is sent along with
the notes. With --all the candidate profiles and the advanced hiring
toolkit are generated in parallel once the job description exists.

Use --session to save the result for the profiles, advanced and chat
commands.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: formatPreRun(&generateConfig.CommandConfig),
	RunE:    runGenerate,
}

type generateOptions struct {
	common.CommandConfig
	ImageFile   string
	All         bool
	SessionFile string
}

var generateConfig generateOptions

func init() {
	addOutputFlags(generateCmd, &generateConfig.CommandConfig)
	generateCmd.Flags().StringVar(&generateConfig.ImageFile, "image", "", "Image to send along with the notes")
	generateCmd.Flags().BoolVar(&generateConfig.All, "all", false, "Also generate candidate profiles and the advanced toolkit")
	generateCmd.Flags().StringVar(&generateConfig.SessionFile, "session", "", "Save the session to this JSON file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	var image *types.ImageAttachment
	if generateConfig.ImageFile != "" {
		image, err = env.io.Files.ReadImage(generateConfig.ImageFile, env.cfg.App.MaxImageSize)
		if err != nil {
			return err
		}
	}

	store := session.NewStore()
	controller := session.NewController(store, env.generator, env.logger)

	createInput := func(contents []string) (types.GenerateJobAssetsInput, error) {
		if len(contents) != 1 {
			return types.GenerateJobAssetsInput{}, fmt.Errorf("expected 1 notes file, got %d", len(contents))
		}
		if limit := env.cfg.App.MaxFileSize; limit > 0 && int64(len(contents[0])) > limit {
			return types.GenerateJobAssetsInput{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("Notes exceed the %s limit", utils.FormatFileSize(limit)), nil)
		}
		return types.GenerateJobAssetsInput{Notes: contents[0], Image: image}, nil
	}

	logDetails := func(input types.GenerateJobAssetsInput, cc common.CommandConfig) {
		env.logger.Info("Starting job asset generation",
			"notes_chars", len(input.Notes),
			"has_image", input.Image != nil,
			"all", generateConfig.All,
			"language", env.cfg.AI.Language,
			"output_format", cc.OutputFormat)
	}

	// Sub-asset failures keep the base result; they are reported after the
	// session is written.
	var subErr error
	operation := func(ctx context.Context, input types.GenerateJobAssetsInput) (types.SessionAssets, error) {
		if _, err := controller.GenerateJobAssets(ctx, input); err != nil {
			return types.SessionAssets{}, err
		}
		if !generateConfig.All {
			return store.Snapshot(), nil
		}
		assets, err := controller.GenerateSubAssets(ctx)
		if err != nil {
			subErr = err
			env.logger.LogError(err, "Sub-asset generation failed, keeping partial results")
		}
		return assets, nil
	}

	if _, err := common.RunAICommand(cmd.Context(), env.logger, env.io, generateConfig.CommandConfig,
		args, createInput, operation, logDetails); err != nil {
		return fmt.Errorf("failed to generate job assets: %w", err)
	}

	if err := saveSession(env, store, generateConfig.SessionFile); err != nil {
		return err
	}
	if subErr != nil {
		return fmt.Errorf("failed to generate sub-assets: %w", subErr)
	}

	env.logger.Info("Job asset generation completed successfully")
	return nil
}

func saveSession(env *commandEnv, store *session.Store, path string) error {
	if path == "" {
		return nil
	}
	data, err := store.MarshalJSON()
	if err != nil {
		return errors.NewInternalError("SESSION_ENCODE_FAILED", "Failed to encode session", err)
	}
	if err := env.io.Files.WriteFile(path, data); err != nil {
		return err
	}
	env.logger.Info("Session saved", "file", path)
	return nil
}

// loadSession restores a store saved by generate.
func loadSession(env *commandEnv, path string) (*session.Store, error) {
	data, err := env.io.Files.ReadBytes(path, 0)
	if err != nil {
		return nil, err
	}
	store := session.NewStore()
	if err := store.Restore(data); err != nil {
		return nil, err
	}
	return store, nil
}
