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

type CourseInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,uri"`
}

func (in *CourseInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = trimOptional(in.ImageURL)
}

// CreateCourse stores a new course owned by who. Only instructors may create.
func CreateCourse(ctx context.Context, st store.Store, who access.Identity, in CourseInput) (models.Course, error) {
	if !who.IsInstructor() {
		return models.Course{}, ErrForbidden()
	}
	in.normalize()
	if err := validateInput(in); err != nil {
		return models.Course{}, err
	}
	now := Now()
	course := models.Course{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		OwnerID:     who.ID,
		OwnerName:   who.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// a concurrent create can take the slug between lookup and insert
	for attempt := 0; attempt < 3; attempt++ {
		slug, err := ResolveCourseSlug(ctx, st, in.Title)
		if err != nil {
			return models.Course{}, WrapError(err, "resolve slug")
		}
		course.Slug = slug
		err = st.CreateCourse(ctx, course)
		if err == nil {
			return course, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return models.Course{}, WrapError(err, "create course")
		}
	}
	return models.Course{}, ErrConflict("Course slug is taken, try again")
}

// CreateCourseWithImage validates the course first, uploads the cover and
// only then writes the record. A failed upload leaves nothing behind.
func CreateCourseWithImage(ctx context.Context, st store.Store, up Uploader, who access.Identity, in CourseInput, image Upload) (models.Course, error) {
	if !who.IsInstructor() {
		return models.Course{}, ErrForbidden()
	}
	in.normalize()
	if err := validateInput(in); err != nil {
		return models.Course{}, err
	}
	url, err := UploadMedia(ctx, up, who, image)
	if err != nil {
		return models.Course{}, err
	}
	in.ImageURL = &url
	return CreateCourse(ctx, st, who, in)
}

// UpdateCourse changes title, description and image. The owner never changes.
func UpdateCourse(ctx context.Context, st store.Store, who access.Identity, courseID string, in CourseInput) (models.Course, error) {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return models.Course{}, err
	}
	if !access.CanManageCourse(who, course) {
		return models.Course{}, ErrForbidden()
	}
	in.normalize()
	if err := validateInput(in); err != nil {
		return models.Course{}, err
	}
	course.Title = in.Title
	course.Description = in.Description
	course.ImageURL = in.ImageURL
	course.UpdatedAt = Now()
	if err := st.UpdateCourse(ctx, course); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Course{}, ErrNotFound("Course not found")
		}
		return models.Course{}, WrapError(err, "update course")
	}
	return course, nil
}

// DeleteCourse removes only the course record. Its lessons, enrollments and
// completions stay behind.
func DeleteCourse(ctx context.Context, st store.Store, who access.Identity, courseID string) error {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return err
	}
	if !access.CanManageCourse(who, course) {
		return ErrForbidden()
	}
	if err := st.DeleteCourse(ctx, course.ID); err != nil {
		return WrapError(err, "delete course")
	}
	return nil
}

func GetCourse(ctx context.Context, st store.Courses, courseID string) (models.Course, error) {
	course, err := st.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Course{}, ErrNotFound("Course not found")
		}
		return models.Course{}, WrapError(err, "load course")
	}
	return course, nil
}

func GetCourseBySlug(ctx context.Context, st store.Courses, slug string) (models.Course, error) {
	course, err := st.GetCourseBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Course{}, ErrNotFound("Course not found")
		}
		return models.Course{}, WrapError(err, "load course")
	}
	return course, nil
}

// CoursesByOwner lists the courses who owns, newest first.
func CoursesByOwner(ctx context.Context, st store.Courses, who access.Identity) ([]models.Course, error) {
	if !who.IsInstructor() {
		return nil, ErrForbidden()
	}
	items, err := st.ListCoursesByOwner(ctx, who.ID)
	if err != nil {
		return nil, WrapError(err, "list courses")
	}
	return items, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
