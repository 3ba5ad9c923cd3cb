package services

import (
	"context"
	"errors"

	"elearning-backend-go/internal/access"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/store"

	"github.com/google/uuid"
)

const MsgAlreadyEnrolled = "Already enrolled in this course"

// Enroll moves who from not enrolled to enrolled. There is no way back. The
// pre-check gives a friendly error; the store constraint settles races.
func Enroll(ctx context.Context, st store.Store, who access.Identity, courseID string) (models.Enrollment, error) {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return models.Enrollment{}, err
	}
	enrolled, err := IsEnrolled(ctx, st, who, course.ID)
	if err != nil {
		return models.Enrollment{}, err
	}
	if !access.CanEnroll(who, course, enrolled) {
		if enrolled {
			return models.Enrollment{}, ErrConflict(MsgAlreadyEnrolled)
		}
		return models.Enrollment{}, ErrForbidden()
	}
	enrollment := models.Enrollment{
		ID:         uuid.NewString(),
		StudentID:  who.ID,
		CourseID:   course.ID,
		EnrolledAt: Now(),
	}
	if err := st.InsertEnrollment(ctx, enrollment); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.Enrollment{}, ErrConflict(MsgAlreadyEnrolled)
		}
		return models.Enrollment{}, WrapError(err, "create enrollment")
	}
	return enrollment, nil
}

// StudentEnrollments returns the enrollments of who in enrollment order.
func StudentEnrollments(ctx context.Context, st store.Enrollments, who access.Identity) ([]models.Enrollment, error) {
	if !who.IsStudent() {
		return nil, ErrForbidden()
	}
	items, err := st.ListEnrollmentsByStudent(ctx, who.ID)
	if err != nil {
		return nil, WrapError(err, "list enrollments")
	}
	return items, nil
}

// IsEnrolled is false for anyone who is not a student.
func IsEnrolled(ctx context.Context, st store.Enrollments, who access.Identity, courseID string) (bool, error) {
	if !who.IsStudent() {
		return false, nil
	}
	_, err := st.FindEnrollment(ctx, who.ID, courseID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, WrapError(err, "check enrollment")
}
