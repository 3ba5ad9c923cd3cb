package httpapi

import (
	"time"

	"elearning-backend-go/internal/access"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/services"
)

type ProfileDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type TokenResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    int64       `json:"expiresAt"`
	User         *ProfileDTO `json:"user"`
}

type CourseDTO struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"imageUrl"`
	OwnerID     string    `json:"ownerId"`
	OwnerName   string    `json:"ownerName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type LessonDTO struct {
	ID            string    `json:"id"`
	CourseID      string    `json:"courseId"`
	Title         string    `json:"title"`
	Kind          string    `json:"kind"`
	Body          string    `json:"body"`
	AttachmentURL *string   `json:"attachmentUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LessonViewDTO adds the player fields. Fallback is set when a video link
// cannot be embedded.
type LessonViewDTO struct {
	LessonDTO
	VideoID   string `json:"videoId,omitempty"`
	EmbedURL  string `json:"embedUrl,omitempty"`
	Playable  bool   `json:"playable"`
	Fallback  string `json:"fallback,omitempty"`
	Completed bool   `json:"completed"`
}

type ProgressDTO struct {
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Label     string `json:"label"`
	Percent   int    `json:"percent"`
}

type LearningDTO struct {
	Course             CourseDTO       `json:"course"`
	Lessons            []LessonViewDTO `json:"lessons"`
	ActiveLessonID     string          `json:"activeLessonId,omitempty"`
	CompletedLessonIDs []string        `json:"completedLessonIds"`
	Progress           ProgressDTO     `json:"progress"`
}

type CatalogEntryDTO struct {
	CourseDTO
	Enrolled bool `json:"enrolled"`
}

type EnrollmentDTO struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"studentId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

type CompletionDTO struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	CourseID    string    `json:"courseId"`
	LessonID    string    `json:"lessonId"`
	CompletedAt time.Time `json:"completedAt"`
}

type ProgressReportDTO struct {
	CourseID           string      `json:"courseId"`
	CompletedLessonIDs []string    `json:"completedLessonIds"`
	Progress           ProgressDTO `json:"progress"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

func profileFromIdentity(who access.Identity) *ProfileDTO {
	return &ProfileDTO{ID: who.ID, Name: who.Name, Email: who.Email, Role: string(who.Role)}
}

func profileDTO(profile models.Profile) *ProfileDTO {
	return &ProfileDTO{ID: profile.IdentityID, Name: profile.Name, Email: profile.Email, Role: string(profile.Role)}
}

func tokenResponse(result services.AuthResult) TokenResponse {
	return TokenResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresAt:    result.Tokens.ExpiresAt,
		User:         profileDTO(result.Profile),
	}
}

func courseDTO(course models.Course) CourseDTO {
	return CourseDTO{
		ID:          course.ID,
		Slug:        course.Slug,
		Title:       course.Title,
		Description: course.Description,
		ImageURL:    course.ImageURL,
		OwnerID:     course.OwnerID,
		OwnerName:   course.OwnerName,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}

func courseDTOs(courses []models.Course) []CourseDTO {
	items := make([]CourseDTO, 0, len(courses))
	for _, course := range courses {
		items = append(items, courseDTO(course))
	}
	return items
}

func lessonDTO(lesson models.Lesson) LessonDTO {
	return LessonDTO{
		ID:            lesson.ID,
		CourseID:      lesson.CourseID,
		Title:         lesson.Title,
		Kind:          string(lesson.Kind),
		Body:          lesson.Body,
		AttachmentURL: lesson.AttachmentURL,
		CreatedAt:     lesson.CreatedAt,
	}
}

func lessonDTOs(lessons []models.Lesson) []LessonDTO {
	items := make([]LessonDTO, 0, len(lessons))
	for _, lesson := range lessons {
		items = append(items, lessonDTO(lesson))
	}
	return items
}

func lessonViewDTO(view services.LessonView) LessonViewDTO {
	return LessonViewDTO{
		LessonDTO: lessonDTO(view.Lesson),
		VideoID:   view.VideoID,
		EmbedURL:  view.EmbedURL,
		Playable:  view.Playable,
		Fallback:  view.Fallback,
		Completed: view.Completed,
	}
}

func progressDTO(progress services.Progress) ProgressDTO {
	return ProgressDTO{
		Completed: progress.Completed,
		Total:     progress.Total,
		Label:     progress.String(),
		Percent:   progress.Percent(),
	}
}

func learningDTO(view services.LearningView) LearningDTO {
	lessons := make([]LessonViewDTO, 0, len(view.Lessons))
	for _, lesson := range view.Lessons {
		lessons = append(lessons, lessonViewDTO(lesson))
	}
	return LearningDTO{
		Course:             courseDTO(view.Course),
		Lessons:            lessons,
		ActiveLessonID:     view.ActiveLessonID,
		CompletedLessonIDs: nonNil(view.CompletedLessonIDs),
		Progress:           progressDTO(view.Progress),
	}
}

func enrollmentDTO(enrollment models.Enrollment) EnrollmentDTO {
	return EnrollmentDTO{
		ID:         enrollment.ID,
		StudentID:  enrollment.StudentID,
		CourseID:   enrollment.CourseID,
		EnrolledAt: enrollment.EnrolledAt,
	}
}

func completionDTO(completion models.Completion) CompletionDTO {
	return CompletionDTO{
		ID:          completion.ID,
		StudentID:   completion.StudentID,
		CourseID:    completion.CourseID,
		LessonID:    completion.LessonID,
		CompletedAt: completion.CompletedAt,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
