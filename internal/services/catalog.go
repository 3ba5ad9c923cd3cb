package services

import (
	"context"
	"strings"

	"elearning-backend-go/internal/access"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/store"
)

const (
	TabCatalog   = "catalog"
	TabMyCourses = "my_courses"
)

type CatalogEntry struct {
	Course   models.Course
	Enrolled bool
}

// FilterCatalog keeps the order of courses. The my_courses tab drops courses
// without an enrollment; term matches the title case-insensitively.
func FilterCatalog(courses []models.Course, enrolledCourseIDs []string, tab, term string) []CatalogEntry {
	enrolled := toSet(enrolledCourseIDs)
	needle := strings.ToLower(strings.TrimSpace(term))
	entries := []CatalogEntry{}
	for _, course := range courses {
		isEnrolled := enrolled[course.ID]
		if tab == TabMyCourses && !isEnrolled {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(course.Title), needle) {
			continue
		}
		entries = append(entries, CatalogEntry{Course: course, Enrolled: isEnrolled})
	}
	return entries
}

// Catalog is the student dashboard: every course, or only enrolled ones.
func Catalog(ctx context.Context, st store.Store, who access.Identity, tab, term string) ([]CatalogEntry, error) {
	if !who.IsStudent() {
		return nil, ErrForbidden()
	}
	if tab == "" {
		tab = TabCatalog
	}
	if tab != TabCatalog && tab != TabMyCourses {
		return nil, ErrBadRequest("tab must be one of: catalog my_courses")
	}
	courses, err := st.ListCourses(ctx)
	if err != nil {
		return nil, WrapError(err, "list courses")
	}
	enrollments, err := StudentEnrollments(ctx, st, who)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.CourseID)
	}
	return FilterCatalog(courses, ids, tab, term), nil
}
