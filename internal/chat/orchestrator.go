// Package chat keeps the chat log of one session and drives streamed
// assistant replies into it.
package chat

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	appErrors "hireforge/internal/errors"
	"hireforge/internal/types"

	"github.com/google/uuid"
)

// Streamer produces an assistant reply as text deltas. ai.Generator satisfies it.
type Streamer interface {
	StreamChatResponse(ctx context.Context, history []types.ChatTurn, message, contextSummary string) iter.Seq2[string, error]
}

// ContextSource supplies the session summary embedded in the chat
// instruction. session.Store satisfies it.
type ContextSource interface {
	ContextSummary() string
}

// Gate marks a task kind as running for the whole session. session.Store
// satisfies it.
type Gate interface {
	Begin(task types.Task) (release func(), err error)
}

// EventKind tells observers what changed in the log.
type EventKind string

const (
	// EventAppended carries a message that was added to the log.
	EventAppended EventKind = "appended"
	// EventDelta carries text appended to the active assistant message.
	EventDelta EventKind = "delta"
	// EventReplaced carries a message whose text was replaced.
	EventReplaced EventKind = "replaced"
	// EventDone marks the end of a turn.
	EventDone EventKind = "done"
)

// Event is one change to the log, with the affected message as it is after
// the change.
type Event struct {
	Kind    EventKind         `json:"kind"`
	Message types.ChatMessage `json:"message"`
	Delta   string            `json:"delta,omitempty"`
}

// Orchestrator owns a chat log. At most one turn streams at a time; Abandon
// detaches the running one so that its late deltas are dropped.
type Orchestrator struct {
	streamer Streamer
	context  ContextSource
	language string
	logger   *appErrors.Logger
	now      func() time.Time

	gate Gate

	mu       sync.Mutex
	messages []types.ChatMessage
	activeID string
	cancel   context.CancelFunc
	release  func()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithGate holds the chat flag of gate while a turn streams, so that the
// session reports the chat as running.
func WithGate(gate Gate) Option {
	return func(o *Orchestrator) { o.gate = gate }
}

// New creates an orchestrator whose log starts with the localized welcome.
func New(streamer Streamer, source ContextSource, language string, logger *appErrors.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		streamer: streamer,
		context:  source,
		language: language,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.messages = []types.ChatMessage{{
		ID:        "welcome",
		Role:      types.RoleAssistant,
		Text:      types.NoticeChatWelcome.Text(language),
		Timestamp: o.now(),
		Local:     true,
	}}
	return o
}

// Messages returns a copy of the log.
func (o *Orchestrator) Messages() []types.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.messages)
}

// ActiveID returns the id of the assistant message being streamed, or "".
func (o *Orchestrator) ActiveID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeID
}

// history returns the turns replayed to the generator. Local messages and
// empty placeholders are left out.
func (o *Orchestrator) history() []types.ChatTurn {
	turns := make([]types.ChatTurn, 0, len(o.messages))
	for _, m := range o.messages {
		if m.Local || m.Text == "" {
			continue
		}
		turns = append(turns, types.ChatTurn{Role: m.Role, Text: m.Text})
	}
	return turns
}

func (o *Orchestrator) indexOf(id string) int {
	for i := range o.messages {
		if o.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func emit(observe func(Event), e Event) {
	if observe != nil {
		observe(e)
	}
}

// Send runs one turn: the user message and an empty assistant placeholder
// are appended before the generator is contacted, then deltas fill the
// placeholder in arrival order. observe, if set, sees every change. Send
// returns when the stream ends or the turn is abandoned.
func (o *Orchestrator) Send(ctx context.Context, text string, observe func(Event)) error {
	if strings.TrimSpace(text) == "" {
		return appErrors.NewValidationError(appErrors.ErrCodeEmptyText,
			"Chat message must not be empty", nil)
	}

	o.mu.Lock()
	if o.activeID != "" {
		o.mu.Unlock()
		return appErrors.NewConflictError(appErrors.ErrCodeTaskInFlight,
			"A reply is still being streamed", nil).WithContext("task", string(types.TaskChat))
	}

	var release func()
	if o.gate != nil {
		var err error
		if release, err = o.gate.Begin(types.TaskChat); err != nil {
			o.mu.Unlock()
			return err
		}
	}

	history := o.history()
	userMsg := types.ChatMessage{ID: uuid.NewString(), Role: types.RoleUser, Text: text, Timestamp: o.now()}
	placeholder := types.ChatMessage{ID: uuid.NewString(), Role: types.RoleAssistant, Timestamp: o.now()}
	o.messages = append(o.messages, userMsg, placeholder)
	o.activeID = placeholder.ID
	streamCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.release = release
	o.mu.Unlock()

	defer o.finish(placeholder.ID, observe)

	emit(observe, Event{Kind: EventAppended, Message: userMsg})
	emit(observe, Event{Kind: EventAppended, Message: placeholder})

	var summary string
	if o.context != nil {
		summary = o.context.ContextSummary()
	}

	for delta, err := range o.streamer.StreamChatResponse(streamCtx, history, text, summary) {
		if err != nil {
			o.fail(placeholder.ID, err, observe)
			return err
		}
		msg, ok := o.ApplyDelta(placeholder.ID, delta)
		if !ok {
			// Abandoned; whatever is still in flight belongs to nobody.
			return nil
		}
		emit(observe, Event{Kind: EventDelta, Message: msg, Delta: delta})
	}
	return nil
}

// ApplyDelta appends delta to the message id if it is still the active one.
// It reports false, changing nothing, otherwise.
func (o *Orchestrator) ApplyDelta(id, delta string) (types.ChatMessage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if id == "" || id != o.activeID {
		return types.ChatMessage{}, false
	}
	i := o.indexOf(id)
	if i < 0 {
		return types.ChatMessage{}, false
	}
	o.messages[i].Text += delta
	return o.messages[i], true
}

// fail records a stream failure for id. Delivered text is kept: an empty
// placeholder becomes the failure notice, a partial reply gets the notice
// appended as a separate message.
func (o *Orchestrator) fail(id string, err error, observe func(Event)) {
	o.mu.Lock()
	if id != o.activeID {
		o.mu.Unlock()
		return
	}
	notice := types.NoticeChatFailed.Text(o.language)

	var e Event
	i := o.indexOf(id)
	if i >= 0 && o.messages[i].Text == "" {
		o.messages[i].Text = notice
		o.messages[i].Local = true
		e = Event{Kind: EventReplaced, Message: o.messages[i]}
	} else {
		msg := types.ChatMessage{
			ID:        uuid.NewString(),
			Role:      types.RoleAssistant,
			Text:      notice,
			Timestamp: o.now(),
			Local:     true,
		}
		o.messages = append(o.messages, msg)
		e = Event{Kind: EventAppended, Message: msg}
	}
	o.mu.Unlock()

	o.logger.LogError(err, "Chat turn failed", "message_id", id)
	emit(observe, e)
}

func (o *Orchestrator) finish(id string, observe func(Event)) {
	o.mu.Lock()
	if id != o.activeID {
		o.mu.Unlock()
		return
	}
	o.detachLocked()
	var msg types.ChatMessage
	if i := o.indexOf(id); i >= 0 {
		msg = o.messages[i]
	}
	o.mu.Unlock()

	emit(observe, Event{Kind: EventDone, Message: msg})
}

// detachLocked ends the active turn: its stream is cancelled and the gate
// flag released. o.mu must be held.
func (o *Orchestrator) detachLocked() {
	o.activeID = ""
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	if o.release != nil {
		o.release()
		o.release = nil
	}
}

// Abandon detaches the running turn and cancels its stream. Text delivered so
// far stays in the log. It reports whether a turn was running.
func (o *Orchestrator) Abandon() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.activeID == "" {
		return false
	}
	o.detachLocked()
	return true
}

// AbandonTurn abandons the running turn only if its assistant message is id.
// A turn started by someone else is left alone.
func (o *Orchestrator) AbandonTurn(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if id == "" || o.activeID != id {
		return false
	}
	o.detachLocked()
	return true
}

// Reset abandons any running turn and restarts the log from the welcome message.
func (o *Orchestrator) Reset() {
	o.Abandon()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = o.messages[:1]
}
