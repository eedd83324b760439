package cli

import (
	"context"
	"fmt"

	"hireforge/internal/common"
	"hireforge/internal/session"
	"hireforge/internal/types"

	"github.com/spf13/cobra"
)

type subAssetOptions struct {
	common.CommandConfig
	Update bool
}

var (
	profilesConfig subAssetOptions
	advancedConfig subAssetOptions
)

var profilesCmd = &cobra.Command{
	Use:   "profiles [session-file]",
	Short: "Generate ideal candidate profiles for a saved session",
	Long: `Generate three ideal candidate personas (veteran specialist, high
potential, career pivot) for the job description in a session saved by
"generate --session".`,
	Args:    cobra.ExactArgs(1),
	PreRunE: formatPreRun(&profilesConfig.CommandConfig),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubAsset(cmd, args, profilesConfig, types.TaskCandidateProfiles,
			func(ctx context.Context, c *session.Controller) ([]types.CandidateProfile, error) {
				return c.GenerateCandidateProfiles(ctx)
			})
	},
}

var advancedCmd = &cobra.Command{
	Use:   "advanced [session-file]",
	Short: "Generate the advanced hiring toolkit for a saved session",
	Long: `Generate the advanced hiring toolkit for the job description in a saved
session: outreach message, hiring challenge, screening questions, KPIs,
onboarding plan, compensation analysis, stakeholders and bias analysis.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: formatPreRun(&advancedConfig.CommandConfig),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubAsset(cmd, args, advancedConfig, types.TaskAdvancedAssets,
			func(ctx context.Context, c *session.Controller) (types.AdvancedAssets, error) {
				return c.GenerateAdvancedAssets(ctx)
			})
	},
}

func init() {
	for _, sub := range []struct {
		cmd  *cobra.Command
		opts *subAssetOptions
	}{{profilesCmd, &profilesConfig}, {advancedCmd, &advancedConfig}} {
		addOutputFlags(sub.cmd, &sub.opts.CommandConfig)
		sub.cmd.Flags().BoolVar(&sub.opts.Update, "update", false, "Write the result back into the session file")
	}
}

func runSubAsset[Output any](
	cmd *cobra.Command,
	args []string,
	opts subAssetOptions,
	task types.Task,
	generate func(context.Context, *session.Controller) (Output, error),
) error {
	env, err := newCommandEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	sessionFile := args[0]
	store, err := loadSession(env, sessionFile)
	if err != nil {
		return err
	}
	controller := session.NewController(store, env.generator, env.logger)

	createInput := func([]string) (*session.Controller, error) {
		return controller, nil
	}
	logDetails := func(c *session.Controller, cc common.CommandConfig) {
		title := ""
		if jd := c.Store().JobDescription(); jd != nil {
			title = jd.Title
		}
		env.logger.Info("Starting generation from saved session",
			"task", task,
			"job_title", title,
			"output_format", cc.OutputFormat)
	}

	// The session file is read by loadSession, so no argument files are
	// passed to the runner.
	if _, err := common.RunAICommand(cmd.Context(), env.logger, env.io, opts.CommandConfig,
		nil, createInput, generate, logDetails); err != nil {
		return fmt.Errorf("failed to generate %s: %w", task, err)
	}

	if opts.Update {
		return saveSession(env, store, sessionFile)
	}
	return nil
}
