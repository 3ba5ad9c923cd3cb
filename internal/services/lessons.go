package services

import (
	"context"
	"errors"
	"strings"

	"elearning-backend-go/internal/access"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/store"

	"github.com/google/uuid"
)

const UnplayableVideoMessage = "Invalid video link"

type LessonInput struct {
	Title         string            `json:"title" validate:"required,max=200"`
	Kind          models.LessonKind `json:"kind" validate:"required,oneof=video article"`
	Body          string            `json:"body" validate:"required"`
	AttachmentURL *string           `json:"attachmentUrl" validate:"omitempty,uri"`
}

// LessonView is a lesson plus what a player needs to render it.
type LessonView struct {
	models.Lesson
	VideoID   string
	EmbedURL  string
	Playable  bool
	Fallback  string
	Completed bool
}

// PresentLesson derives the embed data of a video lesson. Articles are always
// playable.
func PresentLesson(lesson models.Lesson, completed bool) LessonView {
	view := LessonView{Lesson: lesson, Completed: completed, Playable: true}
	if lesson.Kind != models.LessonVideo {
		return view
	}
	id, ok := ExtractVideoID(lesson.Body)
	if !ok {
		view.Playable = false
		view.Fallback = UnplayableVideoMessage
		return view
	}
	view.VideoID = id
	view.EmbedURL = EmbedURL(id)
	return view
}

// LearningView is everything the lesson consumption screen shows for a course.
type LearningView struct {
	Course             models.Course
	Lessons            []LessonView
	ActiveLessonID     string
	CompletedLessonIDs []string
	Progress           Progress
}

func AddLesson(ctx context.Context, st store.Store, who access.Identity, courseID string, in LessonInput) (models.Lesson, error) {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return models.Lesson{}, err
	}
	if !access.CanManageCourse(who, course) {
		return models.Lesson{}, ErrForbidden()
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.AttachmentURL = trimOptional(in.AttachmentURL)
	if err := validateInput(in); err != nil {
		return models.Lesson{}, err
	}
	lesson := models.Lesson{
		ID:            uuid.NewString(),
		CourseID:      course.ID,
		Title:         in.Title,
		Kind:          in.Kind,
		Body:          in.Body,
		AttachmentURL: in.AttachmentURL,
		CreatedAt:     Now(),
	}
	if err := st.CreateLesson(ctx, lesson); err != nil {
		return models.Lesson{}, WrapError(err, "create lesson")
	}
	return lesson, nil
}

// AddLessonWithAttachment uploads the PDF once the caller is known to manage
// the course and the lesson input is valid.
func AddLessonWithAttachment(ctx context.Context, st store.Store, up Uploader, who access.Identity, courseID string, in LessonInput, attachment Upload) (models.Lesson, error) {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return models.Lesson{}, err
	}
	if !access.CanManageCourse(who, course) {
		return models.Lesson{}, ErrForbidden()
	}
	in.AttachmentURL = nil
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if err := validateInput(in); err != nil {
		return models.Lesson{}, err
	}
	url, err := UploadMedia(ctx, up, who, attachment)
	if err != nil {
		return models.Lesson{}, err
	}
	in.AttachmentURL = &url
	return AddLesson(ctx, st, who, course.ID, in)
}

func DeleteLesson(ctx context.Context, st store.Store, who access.Identity, courseID, lessonID string) error {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return err
	}
	if !access.CanManageCourse(who, course) {
		return ErrForbidden()
	}
	lesson, err := getLesson(ctx, st, course.ID, lessonID)
	if err != nil {
		return err
	}
	if err := st.DeleteLesson(ctx, lesson.ID); err != nil {
		return WrapError(err, "delete lesson")
	}
	return nil
}

// ManageLessons lists a course's lessons for its owner.
func ManageLessons(ctx context.Context, st store.Store, who access.Identity, courseID string) ([]models.Lesson, error) {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageCourse(who, course) {
		return nil, ErrForbidden()
	}
	return listLessons(ctx, st, course.ID)
}

// Learn builds the consumption view. The first lesson is active; students also
// get their completion markers and progress.
func Learn(ctx context.Context, st store.Store, who access.Identity, courseID string) (LearningView, error) {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return LearningView{}, err
	}
	enrolled, err := IsEnrolled(ctx, st, who, course.ID)
	if err != nil {
		return LearningView{}, err
	}
	if !access.CanViewCourseLessons(who, course, enrolled) {
		return LearningView{}, ErrForbidden()
	}
	lessons, err := listLessons(ctx, st, course.ID)
	if err != nil {
		return LearningView{}, err
	}
	completed := []string{}
	if who.IsStudent() {
		completed, err = completedLessonIDs(ctx, st, who.ID, course.ID)
		if err != nil {
			return LearningView{}, err
		}
	}
	done := toSet(completed)
	view := LearningView{
		Course:             course,
		Lessons:            make([]LessonView, 0, len(lessons)),
		CompletedLessonIDs: completed,
		Progress:           ComputeProgress(lessons, completed),
	}
	for _, lesson := range lessons {
		view.Lessons = append(view.Lessons, PresentLesson(lesson, done[lesson.ID]))
	}
	if len(lessons) > 0 {
		view.ActiveLessonID = lessons[0].ID
	}
	return view, nil
}

func ViewLesson(ctx context.Context, st store.Store, who access.Identity, courseID, lessonID string) (LessonView, error) {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return LessonView{}, err
	}
	lesson, err := getLesson(ctx, st, course.ID, lessonID)
	if err != nil {
		return LessonView{}, err
	}
	enrolled, err := IsEnrolled(ctx, st, who, course.ID)
	if err != nil {
		return LessonView{}, err
	}
	if !access.CanViewLesson(who, lesson, course, enrolled) {
		return LessonView{}, ErrForbidden()
	}
	completed := false
	if who.IsStudent() {
		_, err := st.GetCompletion(ctx, models.CompletionID(who.ID, lesson.ID))
		switch {
		case err == nil:
			completed = true
		case !errors.Is(err, store.ErrNotFound):
			return LessonView{}, WrapError(err, "load completion")
		}
	}
	return PresentLesson(lesson, completed), nil
}

// getLesson treats a lesson of another course as missing.
func getLesson(ctx context.Context, st store.Lessons, courseID, lessonID string) (models.Lesson, error) {
	lesson, err := st.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Lesson{}, ErrNotFound("Lesson not found")
		}
		return models.Lesson{}, WrapError(err, "load lesson")
	}
	if lesson.CourseID != courseID {
		return models.Lesson{}, ErrNotFound("Lesson not found")
	}
	return lesson, nil
}

func listLessons(ctx context.Context, st store.Lessons, courseID string) ([]models.Lesson, error) {
	lessons, err := st.ListLessons(ctx, courseID)
	if err != nil {
		return nil, WrapError(err, "list lessons")
	}
	return lessons, nil
}
