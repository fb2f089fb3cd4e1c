package store

import (
	"context"
	"errors"
	"sync"

	"geonotes/internal/types"
)

const (
	RepositoryBackendMemory = "memory"
	RepositoryBackendBbolt  = "bbolt"
)

var ErrSessionNotFound = errors.New("session not found")

type Repository interface {
	Session() SessionStore
	AppState() AppStateStore
	Backend() string
	Close() error
}

// SessionStore keeps at most one login: the client only ever acts for a
// single user.
type SessionStore interface {
	Load(ctx context.Context) (*types.Session, error)
	Save(ctx context.Context, session *types.Session) error
	Clear(ctx context.Context) error
}

type AppStateStore interface {
	Load(ctx context.Context) (*types.AppState, error)
	Save(ctx context.Context, state *types.AppState) error
}

type memoryRepository struct {
	session  *memorySessionStore
	appState *memoryAppStateStore
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		session:  &memorySessionStore{},
		appState: &memoryAppStateStore{},
	}
}

func (r *memoryRepository) Session() SessionStore   { return r.session }
func (r *memoryRepository) AppState() AppStateStore { return r.appState }
func (r *memoryRepository) Backend() string         { return RepositoryBackendMemory }
func (r *memoryRepository) Close() error            { return nil }

type memorySessionStore struct {
	mu      sync.Mutex
	session *types.Session
}

func (s *memorySessionStore) Load(ctx context.Context) (*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrSessionNotFound
	}
	return cloneSession(s.session), nil
}

func (s *memorySessionStore) Save(ctx context.Context, session *types.Session) error {
	if session == nil {
		return errors.New("session is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = cloneSession(session)
	return nil
}

func (s *memorySessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

type memoryAppStateStore struct {
	mu    sync.Mutex
	state types.AppState
}

func (s *memoryAppStateStore) Load(ctx context.Context) (*types.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAppState(&s.state), nil
}

func (s *memoryAppStateStore) Save(ctx context.Context, state *types.AppState) error {
	if state == nil {
		return errors.New("state is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = *cloneAppState(state)
	return nil
}

func cloneSession(session *types.Session) *types.Session {
	if session == nil {
		return nil
	}
	copy := *session
	if len(session.Cookies) > 0 {
		copy.Cookies = append([]types.Cookie(nil), session.Cookies...)
	}
	return &copy
}

func cloneAppState(state *types.AppState) *types.AppState {
	if state == nil {
		return &types.AppState{}
	}
	copy := *state
	if state.Viewport != nil {
		viewport := *state.Viewport
		copy.Viewport = &viewport
	}
	return &copy
}
