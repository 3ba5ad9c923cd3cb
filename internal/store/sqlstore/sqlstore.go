// Package sqlstore implements store.Store on top of sqlx. Queries are written
// with ? placeholders and rebound for the driver in use, so the same code runs
// against PostgreSQL (pgx) and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/store"

	"github.com/jmoiron/sqlx"
)

type Store struct {
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) CreateIdentity(ctx context.Context, identity models.Identity) error {
	n, err := s.exec(ctx, `
INSERT INTO identities (id, email, password_hash, created_at)
VALUES (?,?,?,?)
ON CONFLICT (email) DO NOTHING
`, identity.ID, identity.Email, identity.PasswordHash, identity.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	if n == 0 {
		return store.ErrDuplicate
	}
	return nil
}

func (s *Store) GetIdentity(ctx context.Context, id string) (models.Identity, error) {
	var identity models.Identity
	err := s.get(ctx, &identity, `SELECT id, email, password_hash, created_at FROM identities WHERE id = ?`, id)
	return identity, err
}

func (s *Store) GetIdentityByEmail(ctx context.Context, email string) (models.Identity, error) {
	var identity models.Identity
	err := s.get(ctx, &identity, `SELECT id, email, password_hash, created_at FROM identities WHERE email = ?`, email)
	return identity, err
}

func (s *Store) CreateProfile(ctx context.Context, profile models.Profile) error {
	n, err := s.exec(ctx, `
INSERT INTO profiles (identity_id, name, email, role, created_at)
VALUES (?,?,?,?,?)
ON CONFLICT (identity_id) DO NOTHING
`, profile.IdentityID, profile.Name, profile.Email, string(profile.Role), profile.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	if n == 0 {
		return store.ErrDuplicate
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, identityID string) (models.Profile, error) {
	var profile models.Profile
	err := s.get(ctx, &profile, `SELECT identity_id, name, email, role, created_at FROM profiles WHERE identity_id = ?`, identityID)
	return profile, err
}

const courseColumns = `id, slug, title, description, image_url, owner_id, owner_name, created_at, updated_at`

func (s *Store) CreateCourse(ctx context.Context, course models.Course) error {
	n, err := s.exec(ctx, `
INSERT INTO courses (`+courseColumns+`)
VALUES (?,?,?,?,?,?,?,?,?)
ON CONFLICT (slug) DO NOTHING
`, course.ID, course.Slug, course.Title, course.Description, course.ImageURL, course.OwnerID, course.OwnerName,
		course.CreatedAt.UTC(), course.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	if n == 0 {
		return store.ErrDuplicate
	}
	return nil
}

// UpdateCourse never touches owner_id: ownership is fixed at creation.
func (s *Store) UpdateCourse(ctx context.Context, course models.Course) error {
	n, err := s.exec(ctx, `
UPDATE courses
SET title = ?, description = ?, image_url = ?, updated_at = ?
WHERE id = ?
`, course.Title, course.Description, course.ImageURL, course.UpdatedAt.UTC(), course.ID)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (models.Course, error) {
	var course models.Course
	err := s.get(ctx, &course, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	return course, err
}

func (s *Store) GetCourseBySlug(ctx context.Context, slug string) (models.Course, error) {
	var course models.Course
	err := s.get(ctx, &course, `SELECT `+courseColumns+` FROM courses WHERE slug = ?`, slug)
	return course, err
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	if err := s.get(ctx, &count, `SELECT count(*) FROM courses WHERE slug = ?`, slug); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	items := []models.Course{}
	err := s.selectAll(ctx, &items, `SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC, id ASC`)
	return items, err
}

func (s *Store) ListCoursesByOwner(ctx context.Context, ownerID string) ([]models.Course, error) {
	items := []models.Course{}
	err := s.selectAll(ctx, &items, `SELECT `+courseColumns+` FROM courses WHERE owner_id = ? ORDER BY created_at DESC, id ASC`, ownerID)
	return items, err
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	_, err := s.exec(ctx, `DELETE FROM courses WHERE id = ?`, id)
	return err
}

const lessonColumns = `id, course_id, title, kind, body, attachment_url, created_at`

func (s *Store) CreateLesson(ctx context.Context, lesson models.Lesson) error {
	_, err := s.exec(ctx, `
INSERT INTO lessons (`+lessonColumns+`)
VALUES (?,?,?,?,?,?,?)
`, lesson.ID, lesson.CourseID, lesson.Title, string(lesson.Kind), lesson.Body, lesson.AttachmentURL, lesson.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

func (s *Store) GetLesson(ctx context.Context, id string) (models.Lesson, error) {
	var lesson models.Lesson
	err := s.get(ctx, &lesson, `SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id)
	return lesson, err
}

func (s *Store) ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	items := []models.Lesson{}
	err := s.selectAll(ctx, &items, `SELECT `+lessonColumns+` FROM lessons WHERE course_id = ? ORDER BY created_at ASC, id ASC`, courseID)
	return items, err
}

func (s *Store) DeleteLesson(ctx context.Context, id string) error {
	_, err := s.exec(ctx, `DELETE FROM lessons WHERE id = ?`, id)
	return err
}

func (s *Store) FindEnrollment(ctx context.Context, studentID, courseID string) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := s.get(ctx, &enrollment, `
SELECT id, student_id, course_id, enrolled_at
FROM enrollments
WHERE student_id = ? AND course_id = ?
`, studentID, courseID)
	return enrollment, err
}

// InsertEnrollment relies on the (student_id, course_id) unique constraint:
// a concurrent duplicate writes no row and is reported as ErrDuplicate.
func (s *Store) InsertEnrollment(ctx context.Context, enrollment models.Enrollment) error {
	n, err := s.exec(ctx, `
INSERT INTO enrollments (id, student_id, course_id, enrolled_at)
VALUES (?,?,?,?)
ON CONFLICT (student_id, course_id) DO NOTHING
`, enrollment.ID, enrollment.StudentID, enrollment.CourseID, enrollment.EnrolledAt.UTC())
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	if n == 0 {
		return store.ErrDuplicate
	}
	return nil
}

func (s *Store) ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	items := []models.Enrollment{}
	err := s.selectAll(ctx, &items, `
SELECT id, student_id, course_id, enrolled_at
FROM enrollments
WHERE student_id = ?
ORDER BY enrolled_at ASC
`, studentID)
	return items, err
}

func (s *Store) UpsertCompletion(ctx context.Context, completion models.Completion) error {
	_, err := s.exec(ctx, `
INSERT INTO completions (id, student_id, course_id, lesson_id, completed_at)
VALUES (?,?,?,?,?)
ON CONFLICT (id) DO UPDATE SET completed_at = excluded.completed_at
`, completion.ID, completion.StudentID, completion.CourseID, completion.LessonID, completion.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert completion: %w", err)
	}
	return nil
}

func (s *Store) GetCompletion(ctx context.Context, id string) (models.Completion, error) {
	var completion models.Completion
	err := s.get(ctx, &completion, `SELECT id, student_id, course_id, lesson_id, completed_at FROM completions WHERE id = ?`, id)
	return completion, err
}

func (s *Store) ListCompletions(ctx context.Context, studentID, courseID string) ([]models.Completion, error) {
	items := []models.Completion{}
	err := s.selectAll(ctx, &items, `
SELECT id, student_id, course_id, lesson_id, completed_at
FROM completions
WHERE student_id = ? AND course_id = ?
ORDER BY completed_at ASC
`, studentID, courseID)
	return items, err
}

func (s *Store) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := s.exec(ctx, `
INSERT INTO revoked_tokens (token_id, expires_at)
VALUES (?,?)
ON CONFLICT (token_id) DO NOTHING
`, tokenID, expiresAt.UTC())
	return err
}

func (s *Store) TokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int
	if err := s.get(ctx, &count, `SELECT count(*) FROM revoked_tokens WHERE token_id = ?`, tokenID); err != nil {
		return false, err
	}
	return count > 0, nil
}
