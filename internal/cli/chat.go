package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"hireforge/internal/chat"
	"hireforge/internal/common"
	"hireforge/internal/session"
	"hireforge/internal/types"

	"github.com/spf13/cobra"
)

var (
	chatSessionFile    string
	chatTranscriptFile string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the recruiting assistant",
	Long: `Start an interactive chat with the recruiting assistant. Replies are
streamed as they arrive. With --session the assistant knows the title and
summary of the saved job description.

Commands:
  /reset   start the conversation over
  /exit    leave the chat (also Ctrl-D)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionFile, "session", "", "Session file giving the chat its job context")
	chatCmd.Flags().StringVar(&chatTranscriptFile, "transcript", "", "Write the conversation as JSON to this file on exit")
}

func runChat(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	store := session.NewStore()
	if chatSessionFile != "" {
		if store, err = loadSession(env, chatSessionFile); err != nil {
			return err
		}
	}

	orchestrator := chat.New(env.generator, store, env.cfg.AI.Language, env.logger, chat.WithGate(store))
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s\n\n", orchestrator.Messages()[0].Text)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return writeTranscript(env, orchestrator)
		case "/reset":
			orchestrator.Reset()
			fmt.Fprintf(out, "%s\n\n", orchestrator.Messages()[0].Text)
			continue
		}

		if err := orchestrator.Send(cmd.Context(), line, printEvents(out)); err != nil {
			env.logger.LogError(err, "Chat turn failed")
		}
		if cmd.Context().Err() != nil {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read chat input: %w", err)
	}
	return writeTranscript(env, orchestrator)
}

// printEvents streams assistant text to out. A failure notice either
// replaces the empty reply or follows the partial one as its own message.
func printEvents(out io.Writer) func(chat.Event) {
	return func(e chat.Event) {
		switch e.Kind {
		case chat.EventAppended:
			if e.Message.Role == types.RoleAssistant && e.Message.Local {
				fmt.Fprintf(out, "\n%s", e.Message.Text)
			}
		case chat.EventDelta:
			fmt.Fprint(out, e.Delta)
		case chat.EventReplaced:
			fmt.Fprint(out, e.Message.Text)
		case chat.EventDone:
			fmt.Fprint(out, "\n\n")
		}
	}
}

func writeTranscript(env *commandEnv, o *chat.Orchestrator) error {
	if chatTranscriptFile == "" {
		return nil
	}
	return env.io.Output.HandleOutput(o.Messages(), common.CommandConfig{
		OutputFile:   chatTranscriptFile,
		OutputFormat: "json",
	})
}
