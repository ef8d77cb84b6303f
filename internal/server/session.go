package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"tendergen/internal/conversation"
	"tendergen/internal/llm"
)

// Session is one user's drafting conversation. All handler work on a session
// runs under its mutex: each user action is one synchronous
// resolve-then-render cycle with no intra-session concurrency.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	State     *conversation.State
	Chat      llm.Chat
	helpCache map[string]string
}

// Lock serializes actions on the session.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// HelpFor returns the cached help line for a field, if any.
func (s *Session) HelpFor(name string) (string, bool) {
	v, ok := s.helpCache[name]
	return v, ok
}

// CacheHelp stores a help line for the rest of the session.
func (s *Session) CacheHelp(name, text string) {
	s.helpCache[name] = text
}

// SessionStore keeps sessions in memory, keyed by an id generated at session
// start. Sessions are isolated from each other and have no persistence
// guarantee beyond process lifetime.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (st *SessionStore) Create(state *conversation.State, chat llm.Chat) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		State:     state,
		Chat:      chat,
		helpCache: make(map[string]string),
	}
	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess
}

func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	return sess, ok
}
