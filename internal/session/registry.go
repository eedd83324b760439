package session

import (
	"time"

	"hireforge/internal/ai"
	"hireforge/internal/chat"
	appErrors "hireforge/internal/errors"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Session is one user's working set: generated artifacts plus the chat log.
type Session struct {
	ID         string
	CreatedAt  time.Time
	Controller *Controller
	Chat       *chat.Orchestrator
}

// Store returns the session's artifact store.
func (s *Session) Store() *Store {
	return s.Controller.Store()
}

// Registry keeps the sessions of a server. The least recently used session
// is evicted once maxSessions is reached, and a session idle for longer
// than the TTL expires.
type Registry struct {
	cache     *expirable.LRU[string, *Session]
	generator ai.Generator
	language  string
	logger    *appErrors.Logger

	created func(id string)
	removed func(id string)
}

// NewRegistry creates a registry whose sessions use generator.
func NewRegistry(generator ai.Generator, language string, maxSessions int, idleTTL time.Duration, logger *appErrors.Logger) *Registry {
	r := &Registry{generator: generator, language: language, logger: logger}
	r.cache = expirable.NewLRU[string, *Session](maxSessions, r.onEvict, idleTTL)
	return r
}

func (r *Registry) onEvict(id string, s *Session) {
	if s.Chat.Abandon() {
		r.logger.Debug("Abandoned chat stream of evicted session", "session_id", id)
	}
	r.logger.Debug("Session evicted", "session_id", id)
	if r.removed != nil {
		r.removed(id)
	}
}

// Observe registers callbacks run when a session is created and when one
// is deleted, evicted or expires. Call it before the registry is shared.
func (r *Registry) Observe(created, removed func(id string)) {
	r.created = created
	r.removed = removed
}

// Create starts a new empty session.
func (r *Registry) Create() *Session {
	store := NewStore()
	s := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Controller: NewController(store, r.generator, r.logger),
		Chat:       chat.New(r.generator, store, r.language, r.logger, chat.WithGate(store)),
	}
	r.cache.Add(s.ID, s)
	r.logger.Debug("Session created", "session_id", s.ID, "sessions", r.cache.Len())
	if r.created != nil {
		r.created(s.ID)
	}
	return s
}

// Get returns the session with id and refreshes its idle deadline.
func (r *Registry) Get(id string) (*Session, error) {
	s, ok := r.cache.Get(id)
	if !ok {
		return nil, appErrors.NewNotFoundError(appErrors.ErrCodeSessionNotFound,
			"Session not found or expired", nil).WithContext("session_id", id)
	}
	r.cache.Add(id, s)
	return s, nil
}

// Delete removes a session. It reports whether the session existed.
func (r *Registry) Delete(id string) bool {
	return r.cache.Remove(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.cache.Len()
}
