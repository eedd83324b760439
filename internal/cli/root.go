package cli

import (
	"context"
	"fmt"

	"hireforge/internal/ai"
	"hireforge/internal/common"
	"hireforge/internal/config"
	"hireforge/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// generatorFactory builds the generation client for a command. The returned
// close func releases it.
var generatorFactory = func(cfg *config.Config, logger *errors.Logger) (ai.Generator, func() error, error) {
	svc, err := ai.NewService(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, svc.Close, nil
}

var languageOverride string

var rootCmd = &cobra.Command{
	Use:   "hireforge",
	Short: "Generate recruitment content from recruiter notes",
	Long: `Hireforge turns free-form recruiter notes, optionally with a whiteboard
photo, into a structured job description and a behavioral interview guide.
From a saved session it can then derive ideal candidate profiles and an
advanced hiring toolkit, read text aloud, or chat about the role.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if languageOverride == "" {
			return nil
		}
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cfg.AI.Language = languageOverride
		return nil
	},
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	return rootCmd.ExecuteContext(ctx)
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg, nil
	}
	return nil, errors.NewInternalError("MISSING_CONFIG", "config not found in command context", nil)
}

func getLoggerFromContext(ctx context.Context) (*errors.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger, nil
	}
	return nil, errors.NewInternalError("MISSING_LOGGER", "logger not found in command context", nil)
}

// commandEnv is what every generating command needs: config, logger, a
// generation client and the file and output helpers bound to cmd's streams.
type commandEnv struct {
	cfg       *config.Config
	logger    *errors.Logger
	generator ai.Generator
	io        common.CommandIO
	close     func() error
}

func newCommandEnv(cmd *cobra.Command) (*commandEnv, error) {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}

	generator, closeFn, err := generatorFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	return &commandEnv{
		cfg:       cfg,
		logger:    logger,
		generator: generator,
		io: common.CommandIO{
			Files:  common.NewFileProcessor(logger),
			Output: common.NewOutputHandler(logger, cfg.AI.Language).WithStdout(cmd.OutOrStdout()),
			Stdin:  cmd.InOrStdin(),
		},
		close: closeFn,
	}, nil
}

func (e *commandEnv) Close() {
	if e.close == nil {
		return
	}
	if err := e.close(); err != nil {
		e.logger.Warn("Failed to close generation client", "error", err)
	}
}

// formatPreRun applies the default output format and validates the chosen one.
func formatPreRun(cc *common.CommandConfig) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if cc.OutputFormat == "" {
			cc.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(cc.OutputFormat, cfg.App.SupportedFormats)
	}
}

func addOutputFlags(cmd *cobra.Command, cc *common.CommandConfig) {
	cmd.Flags().StringVarP(&cc.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cc.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&languageOverride, "language", "l", "", "Output language code, e.g. he or en (default from config)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(advancedCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
