package memstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/store"
	"elearning-backend-go/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentEnrollOnce(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	now := time.Now()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.InsertEnrollment(ctx, models.Enrollment{
				ID: string(rune('a' + i)), StudentID: "s1", CourseID: "c1", EnrolledAt: now,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, store.ErrDuplicate)
	}
	assert.Equal(t, 1, ok)
}

func TestLessonsKeepInsertionOrderOnTies(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"z", "a", "m"} {
		require.NoError(t, s.CreateLesson(ctx, models.Lesson{ID: id, CourseID: "c1", CreatedAt: at}))
	}
	lessons, err := s.ListLessons(ctx, "c1")
	require.NoError(t, err)
	ids := []string{}
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestIdentityEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.CreateIdentity(ctx, models.Identity{ID: "u1", Email: "Ana@Example.com"}))
	assert.ErrorIs(t, s.CreateIdentity(ctx, models.Identity{ID: "u2", Email: "ana@example.com"}), store.ErrDuplicate)
	got, err := s.GetIdentityByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
}
