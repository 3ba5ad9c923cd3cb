package httpapi

import (
	"net/http"

	"elearning-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

func (s *Server) CourseDetail(w http.ResponseWriter, r *http.Request) {
	course, err := services.GetCourse(r.Context(), s.Store, chi.URLParam(r, "courseId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courseDTO(course))
}

func (s *Server) CourseBySlug(w http.ResponseWriter, r *http.Request) {
	course, err := services.GetCourseBySlug(r.Context(), s.Store, chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courseDTO(course))
}

func (s *Server) Learn(w http.ResponseWriter, r *http.Request) {
	view, err := services.Learn(r.Context(), s.Store, CurrentIdentity(r), chi.URLParam(r, "courseId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, learningDTO(view))
}

func (s *Server) LessonDetail(w http.ResponseWriter, r *http.Request) {
	view, err := services.ViewLesson(r.Context(), s.Store, CurrentIdentity(r), chi.URLParam(r, "courseId"), chi.URLParam(r, "lessonId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, lessonViewDTO(view))
}
