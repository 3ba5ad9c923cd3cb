package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"elearning-backend-go/internal/db"
	"elearning-backend-go/internal/migrations"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/store"
	"elearning-backend-go/internal/store/sqlstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.Apply(context.Background(), conn))
	return sqlstore.New(conn)
}

func TestMigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, migrations.Apply(ctx, conn))
	require.NoError(t, migrations.Apply(ctx, conn))

	var count int
	require.NoError(t, conn.Get(&count, `SELECT count(*) FROM schema_migrations`))
	assert.Equal(t, 1, count)
}

func TestIdentityAndProfile(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateIdentity(ctx, models.Identity{ID: "u1", Email: "a@example.com", PasswordHash: "h", CreatedAt: now}))
	err := s.CreateIdentity(ctx, models.Identity{ID: "u2", Email: "a@example.com", PasswordHash: "h", CreatedAt: now})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	got, err := s.GetIdentityByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.True(t, got.CreatedAt.Equal(now))

	_, err = s.GetIdentity(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.CreateProfile(ctx, models.Profile{IdentityID: "u1", Name: "Ana", Email: "a@example.com", Role: models.RoleStudent, CreatedAt: now}))
	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, profile.Role)
}

func TestCoursesAndLessons(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	image := "https://cdn.example.com/a.png"
	course := models.Course{ID: "c1", Slug: "go-basics", Title: "Go Basics", Description: "d", ImageURL: &image,
		OwnerID: "i1", OwnerName: "Ina", CreatedAt: base, UpdatedAt: base}
	require.NoError(t, s.CreateCourse(ctx, course))
	require.NoError(t, s.CreateCourse(ctx, models.Course{ID: "c2", Slug: "later", Title: "Later", OwnerID: "i2",
		CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)}))

	dup := course
	dup.ID = "c3"
	assert.ErrorIs(t, s.CreateCourse(ctx, dup), store.ErrDuplicate)

	exists, err := s.SlugExists(ctx, "go-basics")
	require.NoError(t, err)
	assert.True(t, exists)

	all, err := s.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "c2", all[0].ID, "newest first")

	mine, err := s.ListCoursesByOwner(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].ImageURL)
	assert.Equal(t, image, *mine[0].ImageURL)

	course.Title = "Go Basics 2"
	course.OwnerID = "someone-else"
	course.UpdatedAt = base.Add(2 * time.Hour)
	require.NoError(t, s.UpdateCourse(ctx, course))
	got, err := s.GetCourseBySlug(ctx, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, "Go Basics 2", got.Title)
	assert.Equal(t, "i1", got.OwnerID, "owner is immutable")

	assert.ErrorIs(t, s.UpdateCourse(ctx, models.Course{ID: "nope"}), store.ErrNotFound)

	require.NoError(t, s.CreateLesson(ctx, models.Lesson{ID: "l2", CourseID: "c1", Title: "second", Kind: models.LessonArticle, Body: "x", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.CreateLesson(ctx, models.Lesson{ID: "l1", CourseID: "c1", Title: "first", Kind: models.LessonVideo, Body: "https://youtu.be/dQw4w9WgXcQ", CreatedAt: base}))
	require.NoError(t, s.CreateLesson(ctx, models.Lesson{ID: "l3", CourseID: "c2", Title: "other", Kind: models.LessonArticle, Body: "y", CreatedAt: base}))

	lessons, err := s.ListLessons(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "l1", lessons[0].ID)
	assert.Equal(t, "l2", lessons[1].ID)
	assert.Nil(t, lessons[0].AttachmentURL)

	require.NoError(t, s.DeleteLesson(ctx, "l1"))
	_, err = s.GetLesson(ctx, "l1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteCourse(ctx, "c1"))
	_, err = s.GetCourse(ctx, "c1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	orphans, err := s.ListLessons(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, orphans, 1, "lessons are not cascaded")
}

func TestEnrollmentUniqueness(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := s.FindEnrollment(ctx, "s1", "c1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.InsertEnrollment(ctx, models.Enrollment{ID: "e1", StudentID: "s1", CourseID: "c1", EnrolledAt: now}))
	err = s.InsertEnrollment(ctx, models.Enrollment{ID: "e2", StudentID: "s1", CourseID: "c1", EnrolledAt: now})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	require.NoError(t, s.InsertEnrollment(ctx, models.Enrollment{ID: "e3", StudentID: "s1", CourseID: "c2", EnrolledAt: now.Add(time.Second)}))
	items, err := s.ListEnrollmentsByStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c1", items[0].CourseID)
}

func TestCompletionUpsert(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	id := models.CompletionID("s1", "l1")
	require.NoError(t, s.UpsertCompletion(ctx, models.Completion{ID: id, StudentID: "s1", CourseID: "c1", LessonID: "l1", CompletedAt: first}))
	require.NoError(t, s.UpsertCompletion(ctx, models.Completion{ID: id, StudentID: "s1", CourseID: "c1", LessonID: "l1", CompletedAt: second}))

	items, err := s.ListCompletions(ctx, "s1", "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].CompletedAt.Equal(second))

	got, err := s.GetCompletion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "l1", got.LessonID)
}

func TestRevokedTokens(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	exp := time.Now().Add(time.Hour)

	revoked, err := s.TokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.RevokeToken(ctx, "jti-1", exp))
	require.NoError(t, s.RevokeToken(ctx, "jti-1", exp))
	revoked, err = s.TokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}
