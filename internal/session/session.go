// Package session models the identity/role state of one caller with an
// explicit lifecycle: uninitialized -> resolving -> resolved(identity) or
// resolved(none). Teardown returns it to uninitialized.
package session

import (
	"context"
	"sync"

	"elearning-backend-go/internal/access"
)

type State int

const (
	Uninitialized State = iota
	Resolving
	Resolved
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	default:
		return "uninitialized"
	}
}

// Listener receives the identity after every transition; nil means no identity.
type Listener func(state State, who *access.Identity)

type Session struct {
	mu        sync.RWMutex
	state     State
	who       *access.Identity
	tokenID   string
	listeners []Listener
}

func New() *Session {
	return &Session{}
}

// OnChange registers fn and returns a function that removes it.
func (s *Session) OnChange(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
	idx := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
	}
}

func (s *Session) Begin() {
	s.transition(Resolving, nil, "")
}

// Resolve settles the session. A nil identity is the resolved(none) state.
func (s *Session) Resolve(who *access.Identity, tokenID string) {
	if who != nil {
		copied := *who
		who = &copied
	}
	s.transition(Resolved, who, tokenID)
}

func (s *Session) Teardown() {
	s.transition(Uninitialized, nil, "")
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns the resolved identity, or the zero identity and false.
func (s *Session) Identity() (access.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Resolved || s.who == nil {
		return access.Identity{}, false
	}
	return *s.who, true
}

func (s *Session) TokenID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenID
}

func (s *Session) transition(state State, who *access.Identity, tokenID string) {
	s.mu.Lock()
	s.state = state
	s.who = who
	s.tokenID = tokenID
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		if fn != nil {
			listeners = append(listeners, fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range listeners {
		var snapshot *access.Identity
		if who != nil {
			copied := *who
			snapshot = &copied
		}
		fn(state, snapshot)
	}
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or an uninitialized one.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return New()
}

// Current is a shortcut for FromContext(ctx).Identity().
func Current(ctx context.Context) access.Identity {
	who, _ := FromContext(ctx).Identity()
	return who
}
