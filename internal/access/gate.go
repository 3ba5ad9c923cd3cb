// Package access holds the authorization predicates for courses, lessons,
// enrollment and completion. Every function is pure: the caller looks up the
// facts (parent course, enrollment) and translates false into a refusal.
package access

import "elearning-backend-go/internal/models"

// Identity is the resolved principal of a session. The zero value is the
// unauthenticated identity.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  models.Role
}

func (i Identity) Authenticated() bool {
	return i.ID != ""
}

func (i Identity) IsInstructor() bool {
	return i.Authenticated() && i.Role == models.RoleInstructor
}

func (i Identity) IsStudent() bool {
	return i.Authenticated() && i.Role == models.RoleStudent
}

// CanManageCourse guards create/update/delete of a course and of its lessons.
func CanManageCourse(who Identity, course models.Course) bool {
	return who.IsInstructor() && course.OwnerID != "" && course.OwnerID == who.ID
}

// CanViewLesson reports whether who may read lesson, which must belong to course.
// enrolled is whether who holds an enrollment for course.
func CanViewLesson(who Identity, lesson models.Lesson, course models.Course, enrolled bool) bool {
	if !who.Authenticated() || lesson.CourseID != course.ID {
		return false
	}
	switch who.Role {
	case models.RoleInstructor:
		return CanManageCourse(who, course)
	case models.RoleStudent:
		return enrolled
	}
	return false
}

// CanViewCourseLessons is CanViewLesson for a course as a whole, used when
// listing lessons before any particular lesson is selected.
func CanViewCourseLessons(who Identity, course models.Course, enrolled bool) bool {
	return CanViewLesson(who, models.Lesson{CourseID: course.ID}, course, enrolled)
}

func CanMarkComplete(who Identity, lesson models.Lesson, course models.Course, enrolled bool) bool {
	return who.IsStudent() && CanViewLesson(who, lesson, course, enrolled)
}

func CanEnroll(who Identity, course models.Course, enrolled bool) bool {
	return who.IsStudent() && course.ID != "" && !enrolled
}
