// Package store declares the record stores the services depend on. Concrete
// implementations live in sqlstore (PostgreSQL/SQLite through sqlx) and
// memstore (process memory).
package store

import (
	"context"
	"errors"
	"time"

	"elearning-backend-go/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Identities interface {
	// CreateIdentity returns ErrDuplicate when the email is already registered.
	CreateIdentity(ctx context.Context, identity models.Identity) error
	GetIdentity(ctx context.Context, id string) (models.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (models.Identity, error)
}

type Profiles interface {
	CreateProfile(ctx context.Context, profile models.Profile) error
	GetProfile(ctx context.Context, identityID string) (models.Profile, error)
}

type Courses interface {
	CreateCourse(ctx context.Context, course models.Course) error
	UpdateCourse(ctx context.Context, course models.Course) error
	GetCourse(ctx context.Context, id string) (models.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (models.Course, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListCoursesByOwner(ctx context.Context, ownerID string) ([]models.Course, error)
	DeleteCourse(ctx context.Context, id string) error
}

type Lessons interface {
	CreateLesson(ctx context.Context, lesson models.Lesson) error
	GetLesson(ctx context.Context, id string) (models.Lesson, error)
	// ListLessons returns the lessons of a course ordered by creation time ascending.
	ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error)
	DeleteLesson(ctx context.Context, id string) error
}

type Enrollments interface {
	FindEnrollment(ctx context.Context, studentID, courseID string) (models.Enrollment, error)
	// InsertEnrollment returns ErrDuplicate when the (student, course) pair exists.
	InsertEnrollment(ctx context.Context, enrollment models.Enrollment) error
	ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
}

type Completions interface {
	// UpsertCompletion creates the record or overwrites the one with the same id.
	UpsertCompletion(ctx context.Context, completion models.Completion) error
	GetCompletion(ctx context.Context, id string) (models.Completion, error)
	ListCompletions(ctx context.Context, studentID, courseID string) ([]models.Completion, error)
}

type Tokens interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	TokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Store interface {
	Identities
	Profiles
	Courses
	Lessons
	Enrollments
	Completions
	Tokens
}
