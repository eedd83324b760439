package server

import (
	"context"
	"iter"
	"net/http"
	"strings"
	"testing"
	"time"

	"hireforge/internal/chat"
	appErrors "hireforge/internal/errors"
	"hireforge/internal/testutil"
	"hireforge/internal/types"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialChat(t *testing.T, baseURL, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/sessions/" + id + "/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) chatOutbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out chatOutbound
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

// readUntilDone collects event frames up to and including the done event.
func readUntilDone(t *testing.T, conn *websocket.Conn) []chat.Event {
	t.Helper()
	var events []chat.Event
	for {
		out := readFrame(t, conn)
		require.Equal(t, "event", out.Type, "unexpected frame %+v", out)
		events = append(events, *out.Event)
		if out.Event.Kind == chat.EventDone {
			return events
		}
	}
}

func TestChatSocketStreamsTurn(t *testing.T) {
	gen := &testutil.Generator{ChatFunc: func(context.Context, []types.ChatTurn, string, string) iter.Seq2[string, error] {
		return testutil.Deltas("שלום", " לך")
	}}
	_, ts := newTestServer(t, gen, nil)
	id := createSession(t, ts.URL)
	conn := dialChat(t, ts.URL, id)

	history := readFrame(t, conn)
	require.Equal(t, "history", history.Type)
	require.Len(t, history.Messages, 1)
	assert.True(t, history.Messages[0].Local, "welcome message is local")

	require.NoError(t, conn.WriteJSON(chatInbound{Type: "send", Text: "מה שלומך?"}))
	events := readUntilDone(t, conn)

	require.Len(t, events, 5)
	assert.Equal(t, chat.EventAppended, events[0].Kind)
	assert.Equal(t, types.RoleUser, events[0].Message.Role)
	assert.Equal(t, chat.EventAppended, events[1].Kind)
	assert.Empty(t, events[1].Message.Text)
	assert.Equal(t, "שלום", events[2].Delta)
	assert.Equal(t, "שלום לך", events[3].Message.Text)
	assert.Equal(t, "שלום לך", events[4].Message.Text)

	resp := doJSON(t, http.MethodGet, ts.URL+"/sessions/"+id+"/chat/messages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Messages []types.ChatMessage `json:"messages"`
		ActiveID string              `json:"activeId"`
	}](t, resp)
	assert.Len(t, body.Messages, 3)
	assert.Empty(t, body.ActiveID)
}

func TestChatSocketReportsErrors(t *testing.T) {
	gen := &testutil.Generator{ChatFunc: func(context.Context, []types.ChatTurn, string, string) iter.Seq2[string, error] {
		return testutil.FailingDeltas(appErrors.NewTransportError(appErrors.ErrCodeGenerationFailed, "stream broke", nil))
	}}
	_, ts := newTestServer(t, gen, nil)
	conn := dialChat(t, ts.URL, createSession(t, ts.URL))
	readFrame(t, conn)

	t.Run("unknown frame", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(chatInbound{Type: "shout"}))
		out := readFrame(t, conn)
		require.Equal(t, "error", out.Type)
		assert.Equal(t, appErrors.ErrCodeInvalidRequest, out.Error.Code)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(chatInbound{Type: "ping"}))
		assert.Equal(t, "pong", readFrame(t, conn).Type)
	})

	t.Run("empty message", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(chatInbound{Type: "send", Text: "  "}))
		out := readFrame(t, conn)
		require.Equal(t, "error", out.Type)
		assert.Equal(t, appErrors.ErrCodeEmptyText, out.Error.Code)
	})

	t.Run("failed stream", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(chatInbound{Type: "send", Text: "hi"}))
		events := readUntilDone(t, conn)
		replaced := events[len(events)-2]
		assert.Equal(t, chat.EventReplaced, replaced.Kind)
		assert.True(t, replaced.Message.Local)

		out := readFrame(t, conn)
		require.Equal(t, "error", out.Type)
		assert.Equal(t, appErrors.ErrCodeGenerationFailed, out.Error.Code)
	})
}

func TestChatSocketCloseAbandonsTurn(t *testing.T) {
	started := make(chan struct{})
	gen := &testutil.Generator{ChatFunc: func(ctx context.Context, _ []types.ChatTurn, _ string, _ string) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) {
			if !yield("partial", nil) {
				return
			}
			close(started)
			<-ctx.Done()
		}
	}}
	s, ts := newTestServer(t, gen, nil)
	id := createSession(t, ts.URL)
	conn := dialChat(t, ts.URL, id)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(chatInbound{Type: "send", Text: "hi"}))
	<-started

	sess, err := s.Sessions.Get(id)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Chat.ActiveID())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return sess.Chat.ActiveID() == "" }, 2*time.Second, 10*time.Millisecond)

	msgs := sess.Chat.Messages()
	assert.Equal(t, "partial", msgs[len(msgs)-1].Text, "delivered text is kept")
}

func TestChatSocketCloseKeepsOtherSocketsTurn(t *testing.T) {
	started := make(chan struct{})
	gen := &testutil.Generator{ChatFunc: func(ctx context.Context, _ []types.ChatTurn, _ string, _ string) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) {
			if !yield("partial", nil) {
				return
			}
			close(started)
			<-ctx.Done()
		}
	}}
	s, ts := newTestServer(t, gen, nil)
	id := createSession(t, ts.URL)
	sender := dialChat(t, ts.URL, id)
	readFrame(t, sender)
	watcher := dialChat(t, ts.URL, id)
	readFrame(t, watcher)

	require.NoError(t, sender.WriteJSON(chatInbound{Type: "send", Text: "hi"}))
	<-started

	sess, err := s.Sessions.Get(id)
	require.NoError(t, err)
	active := sess.Chat.ActiveID()
	require.NotEmpty(t, active)

	require.NoError(t, watcher.Close())
	assert.Never(t, func() bool { return sess.Chat.ActiveID() != active }, 300*time.Millisecond, 10*time.Millisecond,
		"closing a socket that did not start the turn leaves it running")

	require.NoError(t, sender.Close())
	assert.Eventually(t, func() bool { return sess.Chat.ActiveID() == "" }, 2*time.Second, 10*time.Millisecond)
}

func TestChatSocketUnknownSession(t *testing.T) {
	_, ts := newTestServer(t, &testutil.Generator{}, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/sessions/missing/chat"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatUpgraderOrigins(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{name: "listed origin", allowed: []string{"https://app.example"}, origin: "https://app.example", want: true},
		{name: "unlisted origin", allowed: []string{"https://app.example"}, origin: "https://evil.example", want: false},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://any.example", want: true},
		{name: "no origin header", allowed: []string{"https://app.example"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.Config()
			cfg.Server.WebSocket.AllowedOrigins = tt.allowed
			s := &Server{AppConfig: cfg}

			req, err := http.NewRequest(http.MethodGet, "http://localhost/sessions/x/chat", nil)
			require.NoError(t, err)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, s.chatUpgrader().CheckOrigin(req))
		})
	}
}
