package cli

import (
	"context"
	"fmt"
	"strings"

	"hireforge/internal/audio"
	"hireforge/internal/common"
	"hireforge/internal/errors"

	"github.com/spf13/cobra"
)

var speakConfig common.CommandConfig

var speakCmd = &cobra.Command{
	Use:   "speak [text-file]",
	Short: "Read text aloud and save it as a WAV file",
	Long: `Synthesize speech for the text in a file ("-" reads stdin) and write
it as a WAV file. The generator returns raw 24 kHz 16-bit mono PCM, which is
wrapped in a WAV header so it plays in any audio player.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpeak,
}

func init() {
	speakCmd.Flags().StringVarP(&speakConfig.OutputFile, "output", "o", "speech.wav", "Output WAV file")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	createInput := func(contents []string) (string, error) {
		text := strings.TrimSpace(contents[0])
		if text == "" {
			return "", errors.NewValidationError(errors.ErrCodeEmptyText, "Text to synthesize is empty", nil)
		}
		return text, nil
	}

	logDetails := func(text string, cc common.CommandConfig) {
		env.logger.Info("Starting speech synthesis", "text_chars", len(text), "output", cc.OutputFile)
	}

	operation := func(ctx context.Context, text string) ([]byte, error) {
		speech, err := env.generator.GenerateSpeech(ctx, text)
		if err != nil {
			return nil, err
		}
		return audio.SpeechToWAV(speech)
	}

	if _, err := common.RunAICommand(cmd.Context(), env.logger, env.io, speakConfig,
		args, createInput, operation, logDetails); err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}
	return nil
}
