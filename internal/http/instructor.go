package httpapi

import (
	"net/http"

	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

func (s *Server) InstructorCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := services.CoursesByOwner(r.Context(), s.Store, CurrentIdentity(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courseDTOs(courses))
}

// CreateCourse takes JSON, or a multipart form whose optional "image" part
// becomes the cover.
func (s *Server) CreateCourse(w http.ResponseWriter, r *http.Request) {
	who := CurrentIdentity(r)
	if !isMultipart(r) {
		var req services.CourseInput
		if !decodeJSON(w, r, &req) {
			return
		}
		course, err := services.CreateCourse(r.Context(), s.Store, who, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, courseDTO(course))
		return
	}

	if !s.parseMultipart(w, r) {
		return
	}
	req := services.CourseInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		ImageURL:    optionalFormValue(r, "imageUrl"),
	}
	image, found, err := s.formUpload(r, "image", services.UploadImage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var course models.Course
	if found {
		course, err = services.CreateCourseWithImage(r.Context(), s.Store, s.Uploader, who, req, image)
	} else {
		course, err = services.CreateCourse(r.Context(), s.Store, who, req)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, courseDTO(course))
}

func (s *Server) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req services.CourseInput
	if !decodeJSON(w, r, &req) {
		return
	}
	course, err := services.UpdateCourse(r.Context(), s.Store, CurrentIdentity(r), chi.URLParam(r, "courseId"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, courseDTO(course))
}

func (s *Server) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteCourse(r.Context(), s.Store, CurrentIdentity(r), chi.URLParam(r, "courseId")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ManageLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := services.ManageLessons(r.Context(), s.Store, CurrentIdentity(r), chi.URLParam(r, "courseId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, lessonDTOs(lessons))
}

// AddLesson takes JSON, or a multipart form whose optional "attachment" part
// must be a PDF.
func (s *Server) AddLesson(w http.ResponseWriter, r *http.Request) {
	who := CurrentIdentity(r)
	courseID := chi.URLParam(r, "courseId")
	if !isMultipart(r) {
		var req services.LessonInput
		if !decodeJSON(w, r, &req) {
			return
		}
		lesson, err := services.AddLesson(r.Context(), s.Store, who, courseID, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, lessonDTO(lesson))
		return
	}

	if !s.parseMultipart(w, r) {
		return
	}
	req := services.LessonInput{
		Title:         r.FormValue("title"),
		Kind:          models.LessonKind(r.FormValue("kind")),
		Body:          r.FormValue("body"),
		AttachmentURL: optionalFormValue(r, "attachmentUrl"),
	}
	attachment, found, err := s.formUpload(r, "attachment", services.UploadAttachment)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var lesson models.Lesson
	if found {
		lesson, err = services.AddLessonWithAttachment(r.Context(), s.Store, s.Uploader, who, courseID, req, attachment)
	} else {
		lesson, err = services.AddLesson(r.Context(), s.Store, who, courseID, req)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, lessonDTO(lesson))
}

func (s *Server) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	err := services.DeleteLesson(r.Context(), s.Store, CurrentIdentity(r), chi.URLParam(r, "courseId"), chi.URLParam(r, "lessonId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
