package chat

import (
	"context"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	appErrors "hireforge/internal/errors"
	"hireforge/internal/testutil"
	"hireforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticContext string

func (s staticContext) ContextSummary() string { return string(s) }

func newOrchestrator(gen *testutil.Generator, lang string) *Orchestrator {
	return New(gen, staticContext("Current Job Title: Dev\nSummary: APIs\n"), lang, appErrors.NewDiscardLogger())
}

func TestWelcomeMessage(t *testing.T) {
	o := newOrchestrator(&testutil.Generator{}, "he")
	msgs := o.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, types.RoleAssistant, msgs[0].Role)
	assert.True(t, msgs[0].Local)
	assert.Equal(t, types.NoticeChatWelcome.Text("he"), msgs[0].Text)
}

func TestSendStreamsIntoPlaceholder(t *testing.T) {
	gen := &testutil.Generator{
		ChatFunc: func(context.Context, []types.ChatTurn, string, string) iter.Seq2[string, error] {
			return testutil.Deltas("שלום", " ", "לך")
		},
	}
	o := newOrchestrator(gen, "he")

	var events []Event
	require.NoError(t, o.Send(context.Background(), "מה שלומך?", func(e Event) { events = append(events, e) }))

	msgs := o.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, types.RoleUser, msgs[1].Role)
	assert.Equal(t, "מה שלומך?", msgs[1].Text)
	assert.Equal(t, types.RoleAssistant, msgs[2].Role)
	assert.Equal(t, "שלום לך", msgs[2].Text)
	assert.Empty(t, o.ActiveID())

	// user appended, placeholder appended, three deltas, done
	require.Len(t, events, 6)
	assert.Equal(t, EventAppended, events[0].Kind)
	assert.Equal(t, EventAppended, events[1].Kind)
	assert.Empty(t, events[1].Message.Text)

	var concatenated strings.Builder
	for _, e := range events[2:5] {
		assert.Equal(t, EventDelta, e.Kind)
		assert.Equal(t, msgs[2].ID, e.Message.ID, "the id is stable across deltas")
		concatenated.WriteString(e.Delta)
	}
	assert.Equal(t, msgs[2].Text, concatenated.String())
	assert.Equal(t, EventDone, events[5].Kind)
	assert.Equal(t, "שלום לך", events[5].Message.Text)

	assert.Equal(t, "Current Job Title: Dev\nSummary: APIs\n", gen.LastChat.Context)
}

func TestSendReplaysOnlyGeneratorTurns(t *testing.T) {
	gen := &testutil.Generator{}
	o := newOrchestrator(gen, "he")

	require.NoError(t, o.Send(context.Background(), "first", nil))
	assert.Empty(t, gen.LastChat.History, "the welcome message is not replayed")

	require.NoError(t, o.Send(context.Background(), "second", nil))
	assert.Equal(t, []types.ChatTurn{
		{Role: types.RoleUser, Text: "first"},
		{Role: types.RoleAssistant, Text: "echo: first"},
	}, gen.LastChat.History)
	assert.Equal(t, "second", gen.LastChat.Message)
}

func TestSendFailureBeforeAnyText(t *testing.T) {
	gen := &testutil.Generator{
		ChatFunc: func(context.Context, []types.ChatTurn, string, string) iter.Seq2[string, error] {
			return testutil.FailingDeltas(appErrors.NewTransportError(appErrors.ErrCodeGenerationFailed, "down", nil))
		},
	}
	o := newOrchestrator(gen, "he")

	err := o.Send(context.Background(), "hi", nil)
	require.Error(t, err)

	msgs := o.Messages()
	require.Len(t, msgs, 3, "the placeholder is replaced, not duplicated")
	assert.Equal(t, "hi", msgs[1].Text)
	assert.Equal(t, types.NoticeChatFailed.Text("he"), msgs[2].Text)
	assert.True(t, msgs[2].Local)
	assert.Empty(t, o.ActiveID())

	// The notice is not replayed on the next turn
	gen.ChatFunc = nil
	require.NoError(t, o.Send(context.Background(), "again", nil))
	assert.Equal(t, []types.ChatTurn{{Role: types.RoleUser, Text: "hi"}}, gen.LastChat.History)
}

func TestSendFailureKeepsPartialText(t *testing.T) {
	gen := &testutil.Generator{
		ChatFunc: func(context.Context, []types.ChatTurn, string, string) iter.Seq2[string, error] {
			return testutil.FailingDeltas(appErrors.NewTransportError(appErrors.ErrCodeGenerationFailed, "down", nil), "The salary ", "range is")
		},
	}
	o := newOrchestrator(gen, "en")

	var kinds []EventKind
	err := o.Send(context.Background(), "salary?", func(e Event) { kinds = append(kinds, e.Kind) })
	require.Error(t, err)

	msgs := o.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "The salary range is", msgs[2].Text)
	assert.False(t, msgs[2].Local)
	assert.Equal(t, types.NoticeChatFailed.Text("en"), msgs[3].Text)
	assert.True(t, msgs[3].Local)
	assert.Equal(t, []EventKind{EventAppended, EventAppended, EventDelta, EventDelta, EventAppended, EventDone}, kinds)
}

func TestSendRejectsEmptyAndConcurrentTurns(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gen := &testutil.Generator{
		ChatFunc: func(ctx context.Context, _ []types.ChatTurn, _ string, _ string) iter.Seq2[string, error] {
			return func(yield func(string, error) bool) {
				close(started)
				<-release
				yield("late", nil)
			}
		},
	}
	o := newOrchestrator(gen, "he")

	err := o.Send(context.Background(), "   ", nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeEmptyText))
	assert.Len(t, o.Messages(), 1)

	done := make(chan error, 1)
	go func() { done <- o.Send(context.Background(), "first", nil) }()
	<-started

	err = o.Send(context.Background(), "second", nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeTaskInFlight))

	close(release)
	require.NoError(t, <-done)
}

func TestAbandonDropsLateDeltas(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var streamCtx context.Context
	gen := &testutil.Generator{
		ChatFunc: func(ctx context.Context, _ []types.ChatTurn, _ string, _ string) iter.Seq2[string, error] {
			streamCtx = ctx
			return func(yield func(string, error) bool) {
				if !yield("early", nil) {
					return
				}
				close(started)
				<-release
				yield(" late", nil)
			}
		},
	}
	o := newOrchestrator(gen, "he")

	done := make(chan error, 1)
	go func() { done <- o.Send(context.Background(), "hi", nil) }()
	<-started

	placeholderID := o.ActiveID()
	require.NotEmpty(t, placeholderID)
	assert.True(t, o.Abandon())
	assert.False(t, o.Abandon())
	assert.Error(t, streamCtx.Err(), "abandoning cancels the stream")

	_, applied := o.ApplyDelta(placeholderID, "x")
	assert.False(t, applied)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("abandoned turn did not return")
	}

	msgs := o.Messages()
	assert.Equal(t, "early", msgs[len(msgs)-1].Text, "delivered text stays, late text is dropped")

	// A new turn can start right away
	gen.ChatFunc = nil
	require.NoError(t, o.Send(context.Background(), "next", nil))
}

func TestApplyDeltaIgnoresUnknownIDs(t *testing.T) {
	o := newOrchestrator(&testutil.Generator{}, "he")
	_, ok := o.ApplyDelta("", "x")
	assert.False(t, ok)
	_, ok = o.ApplyDelta("welcome", "x")
	assert.False(t, ok)
	assert.Equal(t, types.NoticeChatWelcome.Text("he"), o.Messages()[0].Text)
}

func TestReset(t *testing.T) {
	o := newOrchestrator(&testutil.Generator{}, "he")
	require.NoError(t, o.Send(context.Background(), "hi", nil))
	require.Len(t, o.Messages(), 3)

	o.Reset()
	msgs := o.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "welcome", msgs[0].ID)
}

func TestMessagesIsACopy(t *testing.T) {
	o := newOrchestrator(&testutil.Generator{}, "he")
	msgs := o.Messages()
	msgs[0].Text = "changed"
	assert.NotEqual(t, "changed", o.Messages()[0].Text)
}

func TestWithClock(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	o := New(&testutil.Generator{}, nil, "en", appErrors.NewDiscardLogger(), WithClock(func() time.Time { return fixed }))

	var mu sync.Mutex
	var stamps []time.Time
	require.NoError(t, o.Send(context.Background(), "hi", func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		stamps = append(stamps, e.Message.Timestamp)
	}))
	for _, ts := range stamps {
		assert.Equal(t, fixed, ts)
	}
	assert.Equal(t, fixed, o.Messages()[0].Timestamp)
}

type flagGate struct {
	mu      sync.Mutex
	running map[types.Task]bool
}

func (g *flagGate) Begin(task types.Task) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = map[types.Task]bool{}
	}
	if g.running[task] {
		return nil, appErrors.NewConflictError(appErrors.ErrCodeTaskInFlight, "busy", nil)
	}
	g.running[task] = true
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.running, task)
	}, nil
}

func (g *flagGate) Running(task types.Task) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running[task]
}

// blockingStream yields one delta, then waits for release or cancellation.
func blockingStream(started chan<- struct{}, release <-chan struct{}) func(context.Context, []types.ChatTurn, string, string) iter.Seq2[string, error] {
	return func(ctx context.Context, _ []types.ChatTurn, _ string, _ string) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) {
			if !yield("partial", nil) {
				return
			}
			started <- struct{}{}
			select {
			case <-release:
			case <-ctx.Done():
			}
		}
	}
}

func TestGateHoldsChatFlag(t *testing.T) {
	tests := []struct {
		name string
		end  func(o *Orchestrator, release chan struct{})
	}{
		{"stream ends", func(_ *Orchestrator, release chan struct{}) { close(release) }},
		{"turn abandoned", func(o *Orchestrator, _ chan struct{}) { o.Abandon() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			started := make(chan struct{}, 1)
			release := make(chan struct{})
			gate := &flagGate{}
			gen := &testutil.Generator{ChatFunc: blockingStream(started, release)}
			o := New(gen, nil, "en", appErrors.NewDiscardLogger(), WithGate(gate))

			done := make(chan error, 1)
			go func() { done <- o.Send(context.Background(), "hi", nil) }()
			<-started
			assert.True(t, gate.Running(types.TaskChat))

			tt.end(o, release)
			require.NoError(t, <-done)
			assert.False(t, gate.Running(types.TaskChat))

			gen.ChatFunc = nil
			require.NoError(t, o.Send(context.Background(), "again", nil))
			assert.False(t, gate.Running(types.TaskChat))
		})
	}
}

func TestGateRefusal(t *testing.T) {
	gate := &flagGate{}
	_, err := gate.Begin(types.TaskChat)
	require.NoError(t, err)

	gen := &testutil.Generator{}
	o := New(gen, nil, "en", appErrors.NewDiscardLogger(), WithGate(gate))
	err = o.Send(context.Background(), "hi", nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeTaskInFlight))
	assert.Len(t, o.Messages(), 1, "a refused turn leaves the log untouched")
	assert.Equal(t, 0, gen.Calls(types.TaskChat))
}

func TestAbandonTurn(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	defer close(release)
	gen := &testutil.Generator{ChatFunc: blockingStream(started, release)}
	o := newOrchestrator(gen, "en")

	done := make(chan error, 1)
	go func() { done <- o.Send(context.Background(), "hi", nil) }()
	<-started
	active := o.ActiveID()

	assert.False(t, o.AbandonTurn(""))
	assert.False(t, o.AbandonTurn("someone-else"))
	assert.Equal(t, active, o.ActiveID())

	assert.True(t, o.AbandonTurn(active))
	assert.Empty(t, o.ActiveID())
	require.NoError(t, <-done)
	assert.False(t, o.AbandonTurn(active))
}
