// Package memstore keeps every record in process memory. It backs tests and
// DATABASE_DRIVER=memory local runs.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/store"
)

type lessonEntry struct {
	lesson models.Lesson
	seq    int64
}

type Store struct {
	mu          sync.RWMutex
	identities  map[string]models.Identity
	profiles    map[string]models.Profile
	courses     map[string]models.Course
	lessons     map[string]lessonEntry
	enrollments map[string]models.Enrollment
	completions map[string]models.Completion
	revoked     map[string]time.Time
	seq         int64
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		identities:  map[string]models.Identity{},
		profiles:    map[string]models.Profile{},
		courses:     map[string]models.Course{},
		lessons:     map[string]lessonEntry{},
		enrollments: map[string]models.Enrollment{},
		completions: map[string]models.Completion{},
		revoked:     map[string]time.Time{},
	}
}

func (s *Store) CreateIdentity(ctx context.Context, identity models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[identity.ID]; ok {
		return store.ErrDuplicate
	}
	for _, existing := range s.identities {
		if strings.EqualFold(existing.Email, identity.Email) {
			return store.ErrDuplicate
		}
	}
	s.identities[identity.ID] = identity
	return nil
}

func (s *Store) GetIdentity(ctx context.Context, id string) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return models.Identity{}, store.ErrNotFound
	}
	return identity, nil
}

func (s *Store) GetIdentityByEmail(ctx context.Context, email string) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, identity := range s.identities {
		if strings.EqualFold(identity.Email, email) {
			return identity, nil
		}
	}
	return models.Identity{}, store.ErrNotFound
}

func (s *Store) CreateProfile(ctx context.Context, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.IdentityID]; ok {
		return store.ErrDuplicate
	}
	s.profiles[profile.IdentityID] = profile
	return nil
}

func (s *Store) GetProfile(ctx context.Context, identityID string) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[identityID]
	if !ok {
		return models.Profile{}, store.ErrNotFound
	}
	return profile, nil
}

func (s *Store) CreateCourse(ctx context.Context, course models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[course.ID]; ok {
		return store.ErrDuplicate
	}
	for _, existing := range s.courses {
		if existing.Slug == course.Slug {
			return store.ErrDuplicate
		}
	}
	s.courses[course.ID] = course
	return nil
}

func (s *Store) UpdateCourse(ctx context.Context, course models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.courses[course.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Title = course.Title
	existing.Description = course.Description
	existing.ImageURL = course.ImageURL
	existing.UpdatedAt = course.UpdatedAt
	s.courses[course.ID] = existing
	return nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[id]
	if !ok {
		return models.Course{}, store.ErrNotFound
	}
	return course, nil
}

func (s *Store) GetCourseBySlug(ctx context.Context, slug string) (models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, course := range s.courses {
		if course.Slug == slug {
			return course, nil
		}
	}
	return models.Course{}, store.ErrNotFound
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.GetCourseBySlug(ctx, slug)
	if err == store.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.filterCourses(func(models.Course) bool { return true }), nil
}

func (s *Store) ListCoursesByOwner(ctx context.Context, ownerID string) ([]models.Course, error) {
	return s.filterCourses(func(c models.Course) bool { return c.OwnerID == ownerID }), nil
}

// newest first, matching the SQL store
func (s *Store) filterCourses(keep func(models.Course) bool) []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := []models.Course{}
	for _, course := range s.courses {
		if keep(course) {
			items = append(items, course)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.courses, id)
	return nil
}

func (s *Store) CreateLesson(ctx context.Context, lesson models.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lessons[lesson.ID]; ok {
		return store.ErrDuplicate
	}
	s.seq++
	s.lessons[lesson.ID] = lessonEntry{lesson: lesson, seq: s.seq}
	return nil
}

func (s *Store) GetLesson(ctx context.Context, id string) (models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.lessons[id]
	if !ok {
		return models.Lesson{}, store.ErrNotFound
	}
	return entry.lesson, nil
}

func (s *Store) ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	s.mu.RLock()
	entries := []lessonEntry{}
	for _, entry := range s.lessons {
		if entry.lesson.CourseID == courseID {
			entries = append(entries, entry)
		}
	}
	s.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.lesson.CreatedAt.Equal(b.lesson.CreatedAt) {
			return a.seq < b.seq
		}
		return a.lesson.CreatedAt.Before(b.lesson.CreatedAt)
	})
	items := make([]models.Lesson, 0, len(entries))
	for _, entry := range entries {
		items = append(items, entry.lesson)
	}
	return items, nil
}

func (s *Store) DeleteLesson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lessons, id)
	return nil
}

func (s *Store) FindEnrollment(ctx context.Context, studentID, courseID string) (models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, enrollment := range s.enrollments {
		if enrollment.StudentID == studentID && enrollment.CourseID == courseID {
			return enrollment, nil
		}
	}
	return models.Enrollment{}, store.ErrNotFound
}

// InsertEnrollment checks and inserts under one lock, so the pair stays unique.
func (s *Store) InsertEnrollment(ctx context.Context, enrollment models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.enrollments {
		if existing.StudentID == enrollment.StudentID && existing.CourseID == enrollment.CourseID {
			return store.ErrDuplicate
		}
	}
	if _, ok := s.enrollments[enrollment.ID]; ok {
		return store.ErrDuplicate
	}
	s.enrollments[enrollment.ID] = enrollment
	return nil
}

func (s *Store) ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := []models.Enrollment{}
	for _, enrollment := range s.enrollments {
		if enrollment.StudentID == studentID {
			items = append(items, enrollment)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].EnrolledAt.Before(items[j].EnrolledAt)
	})
	return items, nil
}

func (s *Store) UpsertCompletion(ctx context.Context, completion models.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions[completion.ID] = completion
	return nil
}

func (s *Store) GetCompletion(ctx context.Context, id string) (models.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	completion, ok := s.completions[id]
	if !ok {
		return models.Completion{}, store.ErrNotFound
	}
	return completion, nil
}

func (s *Store) ListCompletions(ctx context.Context, studentID, courseID string) ([]models.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := []models.Completion{}
	for _, completion := range s.completions {
		if completion.StudentID == studentID && completion.CourseID == courseID {
			items = append(items, completion)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CompletedAt.Before(items[j].CompletedAt)
	})
	return items, nil
}

func (s *Store) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = expiresAt
	return nil
}

func (s *Store) TokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[tokenID]
	return ok, nil
}
