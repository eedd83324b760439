package testutil

import (
	"context"
	"iter"
	"sync"

	appErrors "hireforge/internal/errors"
	"hireforge/internal/types"
)

// Generator is a scripted generation client. Unset hooks return the
// compliant fixtures. Calls are counted per task.
type Generator struct {
	JobAssetsFunc         func(ctx context.Context, input types.GenerateJobAssetsInput) (types.JobAssets, error)
	CandidateProfilesFunc func(ctx context.Context, jd *types.JobDescription) ([]types.CandidateProfile, error)
	AdvancedAssetsFunc    func(ctx context.Context, jd *types.JobDescription) (types.AdvancedAssets, error)
	SpeechFunc            func(ctx context.Context, text string) (types.Speech, error)
	ChatFunc              func(ctx context.Context, history []types.ChatTurn, message, contextSummary string) iter.Seq2[string, error]

	mu    sync.Mutex
	calls map[types.Task]int
	// LastChat holds the arguments of the most recent chat call.
	LastChat struct {
		History []types.ChatTurn
		Message string
		Context string
	}
}

func (g *Generator) count(task types.Task) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = make(map[types.Task]int)
	}
	g.calls[task]++
}

// Calls returns how often task was requested.
func (g *Generator) Calls(task types.Task) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[task]
}

func missingJobDescription() error {
	return appErrors.NewPreconditionError(appErrors.ErrCodeMissingJobDesc,
		"A job description must be generated first", nil)
}

func (g *Generator) GenerateJobAssets(ctx context.Context, input types.GenerateJobAssetsInput) (types.JobAssets, error) {
	g.count(types.TaskJobAssets)
	if g.JobAssetsFunc != nil {
		return g.JobAssetsFunc(ctx, input)
	}
	return types.JobAssets{JobDescription: JobDescription(), InterviewQuestions: Questions(Distribution())}, nil
}

func (g *Generator) GenerateCandidateProfiles(ctx context.Context, jd *types.JobDescription) ([]types.CandidateProfile, error) {
	if jd == nil {
		return nil, missingJobDescription()
	}
	g.count(types.TaskCandidateProfiles)
	if g.CandidateProfilesFunc != nil {
		return g.CandidateProfilesFunc(ctx, jd)
	}
	return Profiles(), nil
}

func (g *Generator) GenerateAdvancedAssets(ctx context.Context, jd *types.JobDescription) (types.AdvancedAssets, error) {
	if jd == nil {
		return types.AdvancedAssets{}, missingJobDescription()
	}
	g.count(types.TaskAdvancedAssets)
	if g.AdvancedAssetsFunc != nil {
		return g.AdvancedAssetsFunc(ctx, jd)
	}
	return AdvancedAssets(), nil
}

func (g *Generator) GenerateSpeech(ctx context.Context, text string) (types.Speech, error) {
	g.count(types.TaskSpeech)
	if g.SpeechFunc != nil {
		return g.SpeechFunc(ctx, text)
	}
	return types.Speech{MIMEType: "audio/L16;codec=pcm;rate=24000", Data: []byte{0, 1, 2, 3}}, nil
}

func (g *Generator) StreamChatResponse(ctx context.Context, history []types.ChatTurn, message, contextSummary string) iter.Seq2[string, error] {
	g.count(types.TaskChat)
	g.mu.Lock()
	g.LastChat.History = history
	g.LastChat.Message = message
	g.LastChat.Context = contextSummary
	g.mu.Unlock()
	if g.ChatFunc != nil {
		return g.ChatFunc(ctx, history, message, contextSummary)
	}
	return Deltas("echo: ", message)
}

// Deltas streams the given pieces.
func Deltas(pieces ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range pieces {
			if !yield(p, nil) {
				return
			}
		}
	}
}

// FailingDeltas streams pieces and then fails with err.
func FailingDeltas(err error, pieces ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range pieces {
			if !yield(p, nil) {
				return
			}
		}
		yield("", err)
	}
}
