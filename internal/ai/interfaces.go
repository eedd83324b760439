package ai

import (
	"context"
	"iter"

	"hireforge/internal/types"
)

// AIProvider interface for different generator implementations.
// Structured calls also return token usage; callers can ignore it if not needed.
type AIProvider interface {
	JobAssets(ctx context.Context, prompt Prompt) (types.JobAssets, *TokenUsage, error)
	CandidateProfiles(ctx context.Context, prompt Prompt) ([]types.CandidateProfile, *TokenUsage, error)
	AdvancedAssets(ctx context.Context, prompt Prompt) (types.AdvancedAssets, *TokenUsage, error)
	Speech(ctx context.Context, text string) (types.Speech, *TokenUsage, error)
	StreamChat(ctx context.Context, prompt ChatPrompt) iter.Seq2[string, error]
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// Generator is the generation client consumed by sessions, the CLI and the server.
type Generator interface {
	GenerateJobAssets(ctx context.Context, input types.GenerateJobAssetsInput) (types.JobAssets, error)
	GenerateCandidateProfiles(ctx context.Context, jd *types.JobDescription) ([]types.CandidateProfile, error)
	GenerateAdvancedAssets(ctx context.Context, jd *types.JobDescription) (types.AdvancedAssets, error)
	GenerateSpeech(ctx context.Context, text string) (types.Speech, error)
	StreamChatResponse(ctx context.Context, history []types.ChatTurn, message, contextSummary string) iter.Seq2[string, error]
}

// Ensure Service implements Generator
var _ Generator = (*Service)(nil)
