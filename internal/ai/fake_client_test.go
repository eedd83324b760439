package ai

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"
	"time"

	"hireforge/internal/config"
	appErrors "hireforge/internal/errors"
	"hireforge/internal/testutil"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type reply struct {
	resp *genai.GenerateContentResponse
	err  error
}

type chunk struct {
	text string
	err  error
}

type generateCall struct {
	model    string
	contents []*genai.Content
	cfg      *genai.GenerateContentConfig
}

type streamCall struct {
	model   string
	cfg     *genai.GenerateContentConfig
	history []*genai.Content
	message string
}

// fakeClient replays queued replies. Once the queue is drained the last reply
// repeats.
type fakeClient struct {
	mu          sync.Mutex
	replies     []reply
	streams     [][]chunk
	calls       []generateCall
	streamCalls []streamCall
	model       *genai.Model
	modelErr    error
}

func (f *fakeClient) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, generateCall{model: model, contents: contents, cfg: cfg})
	if len(f.replies) == 0 {
		return nil, errors.New("no reply queued")
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r.resp, r.err
}

func (f *fakeClient) GetModel(_ context.Context, model string) (*genai.Model, error) {
	if f.modelErr != nil {
		return nil, f.modelErr
	}
	if f.model != nil {
		return f.model, nil
	}
	return &genai.Model{Name: model, DisplayName: "Test Model", Version: "001"}, nil
}

func (f *fakeClient) StreamChat(_ context.Context, model string, cfg *genai.GenerateContentConfig, history []*genai.Content, message string) (iter.Seq2[*genai.GenerateContentResponse, error], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamCalls = append(f.streamCalls, streamCall{model: model, cfg: cfg, history: history, message: message})
	if len(f.streams) == 0 {
		return nil, errors.New("no stream queued")
	}
	chunks := f.streams[0]
	if len(f.streams) > 1 {
		f.streams = f.streams[1:]
	}
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range chunks {
			if c.err != nil {
				yield(nil, c.err)
				return
			}
			if !yield(textResponse(c.text), nil) {
				return
			}
		}
	}, nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeClient) lastCall() generateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: string(genai.RoleModel), Parts: []*genai.Part{{Text: text}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 20,
			TotalTokenCount:      30,
		},
	}
}

func audioResponse(data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: string(genai.RoleModel), Parts: []*genai.Part{{
				InlineData: &genai.Blob{MIMEType: "audio/L16;codec=pcm;rate=24000", Data: data},
			}}},
		}},
	}
}

func ok(text string) reply { return reply{resp: textResponse(text)} }

func apiError(code int) reply {
	return reply{err: genai.APIError{Code: code, Message: "upstream says no"}}
}

// fastRetries shortens the backoff for the duration of the test.
func fastRetries(t *testing.T) {
	t.Helper()
	prev := retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = prev })
}

func newTestService(t *testing.T, client *fakeClient, mutate ...func(*config.Config)) *Service {
	t.Helper()
	fastRetries(t)

	cfg := testutil.Config()
	for _, m := range mutate {
		m(cfg)
	}
	logger := appErrors.NewDiscardLogger()
	provider, err := NewProviderWithClient(cfg, client, logger)
	require.NoError(t, err)
	return NewServiceWithProvider(provider, NewPromptBuilder(cfg, cfg.AI.Language), StrictnessFor(cfg), logger)
}
