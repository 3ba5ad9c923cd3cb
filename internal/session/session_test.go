package session_test

import (
	"context"
	"testing"

	"elearning-backend-go/internal/access"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle(t *testing.T) {
	s := session.New()
	require.Equal(t, session.Uninitialized, s.State())

	s.Begin()
	require.Equal(t, session.Resolving, s.State())
	_, ok := s.Identity()
	assert.False(t, ok, "no identity while resolving")

	who := &access.Identity{ID: "u1", Role: models.RoleStudent}
	s.Resolve(who, "tok-1")
	require.Equal(t, session.Resolved, s.State())
	got, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "tok-1", s.TokenID())

	who.ID = "mutated"
	got, _ = s.Identity()
	assert.Equal(t, "u1", got.ID, "session keeps its own copy")

	s.Teardown()
	assert.Equal(t, session.Uninitialized, s.State())
	_, ok = s.Identity()
	assert.False(t, ok)
	assert.Empty(t, s.TokenID())
}

func TestResolveNone(t *testing.T) {
	s := session.New()
	s.Begin()
	s.Resolve(nil, "")
	assert.Equal(t, session.Resolved, s.State())
	_, ok := s.Identity()
	assert.False(t, ok)
}

func TestOnChange(t *testing.T) {
	s := session.New()
	var states []session.State
	var ids []string
	remove := s.OnChange(func(state session.State, who *access.Identity) {
		states = append(states, state)
		if who != nil {
			ids = append(ids, who.ID)
		} else {
			ids = append(ids, "")
		}
	})

	s.Begin()
	s.Resolve(&access.Identity{ID: "u2", Role: models.RoleInstructor}, "t")
	s.Teardown()
	remove()
	s.Begin()

	assert.Equal(t, []session.State{session.Resolving, session.Resolved, session.Uninitialized}, states)
	assert.Equal(t, []string{"", "u2", ""}, ids)
}

func TestContextHelpers(t *testing.T) {
	assert.False(t, session.Current(context.Background()).Authenticated())

	s := session.New()
	s.Resolve(&access.Identity{ID: "u3", Role: models.RoleStudent}, "")
	ctx := session.WithSession(context.Background(), s)
	assert.Same(t, s, session.FromContext(ctx))
	assert.Equal(t, "u3", session.Current(ctx).ID)
}
