package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hireforge/internal/ai"
	"hireforge/internal/config"
	"hireforge/internal/errors"
	"hireforge/internal/session"
	"hireforge/internal/testutil"
	"hireforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	languageOverride = ""
	generateConfig = generateOptions{}
	profilesConfig = subAssetOptions{}
	advancedConfig = subAssetOptions{}
	speakConfig.OutputFile = "speech.wav"
	chatSessionFile = ""
	chatTranscriptFile = ""
}

func runCLI(t *testing.T, gen *testutil.Generator, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	original := generatorFactory
	generatorFactory = func(*config.Config, *errors.Logger) (ai.Generator, func() error, error) {
		return gen, func() error { return nil }, nil
	}
	t.Cleanup(func() { generatorFactory = original })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := Execute(context.Background(), testutil.Config(), errors.NewDiscardLogger())
	return out.String(), err
}

func writeNotes(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Senior backend engineer, Go, hybrid, 25-35k"), 0600))
	return path
}

func readSession(t *testing.T, path string) types.SessionAssets {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	store := session.NewStore()
	require.NoError(t, store.Restore(data))
	return store.Snapshot()
}

func TestGenerateCommand(t *testing.T) {
	gen := &testutil.Generator{}
	sessionFile := filepath.Join(t.TempDir(), "session.json")

	out, err := runCLI(t, gen, "", "generate", writeNotes(t), "--session", sessionFile)
	require.NoError(t, err)

	var printed types.SessionAssets
	require.NoError(t, json.Unmarshal([]byte(out), &printed))
	require.NotNil(t, printed.JobDescription)
	assert.Equal(t, testutil.JobDescription().Title, printed.JobDescription.Title)
	assert.Len(t, printed.InterviewQuestions, 21)
	assert.Nil(t, printed.CandidateProfiles)

	saved := readSession(t, sessionFile)
	assert.Equal(t, printed.JobDescription.Title, saved.JobDescription.Title)
	assert.Equal(t, 0, gen.Calls(types.TaskCandidateProfiles))
}

func TestGenerateAllCommand(t *testing.T) {
	t.Run("runs both sub-generations", func(t *testing.T) {
		gen := &testutil.Generator{}
		out, err := runCLI(t, gen, "", "generate", writeNotes(t), "--all", "--format", "text", "--language", "en")
		require.NoError(t, err)

		assert.Contains(t, out, "Behavioral interview guide")
		assert.Contains(t, out, "=== Ideal candidate profiles ===")
		assert.Equal(t, 1, gen.Calls(types.TaskCandidateProfiles))
		assert.Equal(t, 1, gen.Calls(types.TaskAdvancedAssets))
	})

	t.Run("partial failure keeps the rest", func(t *testing.T) {
		gen := &testutil.Generator{
			CandidateProfilesFunc: func(context.Context, *types.JobDescription) ([]types.CandidateProfile, error) {
				return nil, errors.NewTransportError(errors.ErrCodeGenerationFailed, "upstream failed", nil)
			},
		}
		sessionFile := filepath.Join(t.TempDir(), "session.json")

		_, err := runCLI(t, gen, "", "generate", writeNotes(t), "--all", "--session", sessionFile)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeGenerationFailed))

		saved := readSession(t, sessionFile)
		assert.NotNil(t, saved.JobDescription)
		assert.NotNil(t, saved.AdvancedAssets)
		assert.Empty(t, saved.CandidateProfiles)
	})
}

func TestGenerateCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		wantType errors.ErrorType
	}{
		{
			name:     "unsupported format",
			args:     func(t *testing.T) []string { return []string{"generate", writeNotes(t), "--format", "xml"} },
			wantType: errors.ErrorTypeValidation,
		},
		{
			name:     "missing notes file",
			args:     func(t *testing.T) []string { return []string{"generate", filepath.Join(t.TempDir(), "nope.txt")} },
			wantType: errors.ErrorTypeValidation,
		},
		{
			name: "image is not an image",
			args: func(t *testing.T) []string {
				img := filepath.Join(t.TempDir(), "board.dat")
				require.NoError(t, os.WriteFile(img, []byte("plain text"), 0600))
				return []string{"generate", writeNotes(t), "--image", img}
			},
			wantType: errors.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &testutil.Generator{}
			_, err := runCLI(t, gen, "", tt.args(t)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, errors.TypeOf(err))
			assert.Equal(t, 0, gen.Calls(types.TaskJobAssets))
		})
	}
}

func TestGenerateWithImage(t *testing.T) {
	var got *types.ImageAttachment
	gen := &testutil.Generator{
		JobAssetsFunc: func(_ context.Context, input types.GenerateJobAssetsInput) (types.JobAssets, error) {
			got = input.Image
			return types.JobAssets{JobDescription: testutil.JobDescription(), InterviewQuestions: testutil.Questions(testutil.Distribution())}, nil
		},
	}
	img := filepath.Join(t.TempDir(), "board.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\nrest"), 0600))

	_, err := runCLI(t, gen, "notes from stdin", "generate", "-", "--image", img)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "image/png", got.MIMEType)
}

func TestSubAssetCommands(t *testing.T) {
	dir := t.TempDir()
	sessionFile := filepath.Join(dir, "session.json")
	_, err := runCLI(t, &testutil.Generator{}, "", "generate", writeNotes(t), "--session", sessionFile)
	require.NoError(t, err)

	out, err := runCLI(t, &testutil.Generator{}, "", "profiles", sessionFile, "--format", "text", "--language", "en", "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "[Veteran Specialist]")
	assert.Len(t, readSession(t, sessionFile).CandidateProfiles, 3)

	toolkit := filepath.Join(dir, "toolkit.md")
	out, err = runCLI(t, &testutil.Generator{}, "", "advanced", sessionFile, "--format", "markdown", "--output", toolkit)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(toolkit)
	require.NoError(t, err)
	assert.Contains(t, string(data), testutil.AdvancedAssets().OutreachMessage.Headline)
	assert.Nil(t, readSession(t, sessionFile).AdvancedAssets, "without --update the session is untouched")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0600))
	_, err = runCLI(t, &testutil.Generator{}, "", "advanced", empty)
	assert.Equal(t, errors.ErrorTypePrecondition, errors.TypeOf(err))
}

func TestSpeakCommand(t *testing.T) {
	gen := &testutil.Generator{}
	target := filepath.Join(t.TempDir(), "out.wav")

	_, err := runCLI(t, gen, "שלום לכולם", "speak", "-", "--output", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Len(t, data, 44+4)

	_, err = runCLI(t, gen, "   ", "speak", "-", "--output", target)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyText))
	assert.Equal(t, 1, gen.Calls(types.TaskSpeech))
}

func TestChatCommand(t *testing.T) {
	dir := t.TempDir()
	sessionFile := filepath.Join(dir, "session.json")
	transcript := filepath.Join(dir, "chat.json")
	_, err := runCLI(t, &testutil.Generator{}, "", "generate", writeNotes(t), "--session", sessionFile)
	require.NoError(t, err)

	gen := &testutil.Generator{}
	out, err := runCLI(t, gen, "hello\n\n/reset\nagain\n/exit\nignored\n",
		"chat", "--session", sessionFile, "--transcript", transcript, "--language", "en")
	require.NoError(t, err)

	assert.Contains(t, out, "Hi! I can help you refine")
	assert.Contains(t, out, "echo: hello\n")
	assert.Contains(t, out, "echo: again\n")
	assert.NotContains(t, out, "ignored")
	assert.Equal(t, 2, gen.Calls(types.TaskChat))
	assert.Empty(t, gen.LastChat.History, "reset clears the replayed history")
	assert.Contains(t, gen.LastChat.Context, testutil.JobDescription().Title)

	data, err := os.ReadFile(transcript)
	require.NoError(t, err)
	var messages []types.ChatMessage
	require.NoError(t, json.Unmarshal(data, &messages))
	require.Len(t, messages, 3)
	assert.True(t, messages[0].Local)
	assert.Equal(t, "echo: again", messages[2].Text)
}

func TestChatCommandFailureNotice(t *testing.T) {
	failure := errors.NewTransportError(errors.ErrCodeGenerationFailed, "down", nil)
	notice := types.NoticeChatFailed.Text("en")

	tests := []struct {
		name   string
		stream iter.Seq2[string, error]
		want   string
	}{
		{
			name:   "nothing delivered",
			stream: testutil.FailingDeltas(failure),
			want:   "> " + notice + "\n\n",
		},
		{
			name:   "partial reply",
			stream: testutil.FailingDeltas(failure, "Partial "),
			want:   "> Partial \n" + notice + "\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &testutil.Generator{
				ChatFunc: func(context.Context, []types.ChatTurn, string, string) iter.Seq2[string, error] {
					return tt.stream
				},
			}

			out, err := runCLI(t, gen, "hello\n", "chat", "--language", "en")
			require.NoError(t, err, "a failed turn does not end the session")
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, &testutil.Generator{}, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hireforge version dev")
}
