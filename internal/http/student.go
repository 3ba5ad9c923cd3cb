package httpapi

import (
	"net/http"

	"elearning-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

// Catalog serves both dashboard tabs: ?tab=catalog (default) or my_courses,
// narrowed by the optional title search ?q=.
func (s *Server) Catalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	entries, err := services.Catalog(r.Context(), s.Store, CurrentIdentity(r), query.Get("tab"), query.Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items := make([]CatalogEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, CatalogEntryDTO{CourseDTO: courseDTO(entry.Course), Enrolled: entry.Enrolled})
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) StudentEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := services.StudentEnrollments(r.Context(), s.Store, CurrentIdentity(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items := make([]EnrollmentDTO, 0, len(enrollments))
	for _, enrollment := range enrollments {
		items = append(items, enrollmentDTO(enrollment))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) Enroll(w http.ResponseWriter, r *http.Request) {
	enrollment, err := services.Enroll(r.Context(), s.Store, CurrentIdentity(r), chi.URLParam(r, "courseId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, enrollmentDTO(enrollment))
}

func (s *Server) MarkComplete(w http.ResponseWriter, r *http.Request) {
	completion, err := services.MarkComplete(r.Context(), s.Store, CurrentIdentity(r), chi.URLParam(r, "courseId"), chi.URLParam(r, "lessonId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, completionDTO(completion))
}

func (s *Server) CourseProgress(w http.ResponseWriter, r *http.Request) {
	report, err := services.CourseProgress(r.Context(), s.Store, CurrentIdentity(r), chi.URLParam(r, "courseId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ProgressReportDTO{
		CourseID:           report.CourseID,
		CompletedLessonIDs: nonNil(report.CompletedLessonIDs),
		Progress:           progressDTO(report.Progress),
	})
}
