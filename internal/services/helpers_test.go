package services_test

import (
	"context"
	"testing"
	"time"

	"elearning-backend-go/internal/access"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/services"
	"elearning-backend-go/internal/store/memstore"

	"github.com/stretchr/testify/require"
)

// fakeClock advances by one second on every read so records get distinct
// timestamps in creation order.
type fakeClock struct {
	now time.Time
}

func useFakeClock(t *testing.T) *fakeClock {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	previous := services.Now
	services.Now = func() time.Time {
		clock.now = clock.now.Add(time.Second)
		return clock.now
	}
	t.Cleanup(func() { services.Now = previous })
	return clock
}

func instructor(id string) access.Identity {
	return access.Identity{ID: id, Name: "Instructor " + id, Email: id + "@example.com", Role: models.RoleInstructor}
}

func student(id string) access.Identity {
	return access.Identity{ID: id, Name: "Student " + id, Email: id + "@example.com", Role: models.RoleStudent}
}

func newCourse(t *testing.T, st *memstore.Store, owner access.Identity, title string) models.Course {
	t.Helper()
	course, err := services.CreateCourse(context.Background(), st, owner, services.CourseInput{Title: title, Description: "about " + title})
	require.NoError(t, err)
	return course
}

func newLesson(t *testing.T, st *memstore.Store, owner access.Identity, courseID, title string) models.Lesson {
	t.Helper()
	lesson, err := services.AddLesson(context.Background(), st, owner, courseID, services.LessonInput{
		Title: title,
		Kind:  models.LessonArticle,
		Body:  "text of " + title,
	})
	require.NoError(t, err)
	return lesson
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	svcErr, ok := services.AsServiceError(err)
	require.True(t, ok, "expected a ServiceError, got %v", err)
	require.Equal(t, status, svcErr.Status, svcErr.Message)
}
