package server

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"hireforge/internal/chat"
	"hireforge/internal/observability"
	"hireforge/internal/types"

	"github.com/gorilla/websocket"
)

const (
	chatWSDefaultWriteWait = 10 * time.Second
	chatWSDefaultPingEvery = 30 * time.Second
	chatWSOutboundBuffer   = 64
)

// chatInbound is a frame sent by the client.
//
//	{"type":"send","text":"..."}   start a turn
//	{"type":"abandon"}             drop the running turn
//	{"type":"ping"}
type chatInbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// chatOutbound is a frame sent to the client. Type is "history", "event",
// "error" or "pong".
type chatOutbound struct {
	Type     string              `json:"type"`
	Messages []types.ChatMessage `json:"messages,omitempty"`
	Event    *chat.Event         `json:"event,omitempty"`
	Error    *ErrorResponse      `json:"error,omitempty"`
}

func (s *Server) chatUpgrader() *websocket.Upgrader {
	allowed := s.AppConfig.Server.WebSocket.AllowedOrigins
	u := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(allowed) > 0 {
		u.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
		}
	}
	return u
}

// chatSocketHandler streams the session chat over a websocket. History is
// sent first; every change to the log afterwards is pushed as an event.
// Closing the socket abandons the running turn if this socket started it.
func (s *Server) chatSocketHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	conn, err := s.chatUpgrader().Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Debug("Chat websocket upgrade failed", "session_id", sess.ID, "error", err.Error())
		return
	}
	defer conn.Close()

	wsCfg := s.AppConfig.Server.WebSocket
	writeWait := wsCfg.WriteTimeout
	if writeWait <= 0 {
		writeWait = chatWSDefaultWriteWait
	}
	pingEvery := wsCfg.PingInterval
	if pingEvery <= 0 {
		pingEvery = chatWSDefaultPingEvery
	}
	pongWait := pingEvery * 10 / 9
	if wsCfg.MaxMessageSize > 0 {
		conn.SetReadLimit(wsCfg.MaxMessageSize)
	}

	// ownTurn is the assistant message of the last turn sent on this socket.
	var ownTurn atomic.Pointer[string]
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	defer func() {
		if id := ownTurn.Load(); id != nil && sess.Chat.AbandonTurn(*id) {
			s.Logger.Debug("Abandoned chat turn of closed socket", "session_id", sess.ID, "message_id", *id)
		}
	}()

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writeCh := make(chan chatOutbound, chatWSOutboundBuffer)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	push := func(out chatOutbound) {
		select {
		case writeCh <- out:
		case <-ctx.Done():
		}
	}

	push(chatOutbound{Type: "history", Messages: sess.Chat.Messages()})
	s.Logger.Debug("Chat websocket connected", "session_id", sess.ID)

	for {
		var in chatInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			s.Logger.Debug("Chat websocket closed", "session_id", sess.ID)
			return
		}

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "send":
			go s.runChatTurn(ctx, sess.ID, sess.Chat, in.Text, &ownTurn, push)
		case "abandon":
			sess.Chat.Abandon()
		case "ping":
			push(chatOutbound{Type: "pong"})
		default:
			push(chatOutbound{Type: "error", Error: &ErrorResponse{
				Error:   "validation",
				Code:    "INVALID_REQUEST",
				Message: "unsupported frame type: " + in.Type,
			}})
		}
	}
}

func (s *Server) runChatTurn(ctx context.Context, sessionID string, o *chat.Orchestrator, text string, own *atomic.Pointer[string], push func(chatOutbound)) {
	err := o.Send(ctx, text, func(e chat.Event) {
		if e.Kind == chat.EventAppended && e.Message.Role == types.RoleAssistant && !e.Message.Local {
			id := e.Message.ID
			own.Store(&id)
		}
		push(chatOutbound{Type: "event", Event: &e})
	})
	if err != nil {
		s.Logger.Debug("Chat turn failed", "session_id", sessionID, "error", err.Error())
		push(chatOutbound{Type: "error", Error: errorResponseFor(err)})
		return
	}
	s.om.RecordBusinessMetric(ctx, observability.EventChatTurn, 1)
}
