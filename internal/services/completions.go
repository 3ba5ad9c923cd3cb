package services

import (
	"context"
	"strconv"

	"elearning-backend-go/internal/access"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/store"
)

// Progress counts completed lessons among the lessons a course has now.
type Progress struct {
	Completed int
	Total     int
}

func (p Progress) String() string {
	return strconv.Itoa(p.Completed) + " / " + strconv.Itoa(p.Total)
}

// Percent rounds down and is 0 for a course without lessons.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Completed * 100 / p.Total
}

// ComputeProgress ignores completions of lessons that no longer exist.
func ComputeProgress(lessons []models.Lesson, completedLessonIDs []string) Progress {
	done := toSet(completedLessonIDs)
	progress := Progress{Total: len(lessons)}
	for _, lesson := range lessons {
		if done[lesson.ID] {
			progress.Completed++
		}
	}
	return progress
}

// MarkComplete writes the completion under its deterministic id, so repeating
// it only refreshes CompletedAt.
func MarkComplete(ctx context.Context, st store.Store, who access.Identity, courseID, lessonID string) (models.Completion, error) {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return models.Completion{}, err
	}
	lesson, err := getLesson(ctx, st, course.ID, lessonID)
	if err != nil {
		return models.Completion{}, err
	}
	enrolled, err := IsEnrolled(ctx, st, who, course.ID)
	if err != nil {
		return models.Completion{}, err
	}
	if !access.CanMarkComplete(who, lesson, course, enrolled) {
		return models.Completion{}, ErrForbidden()
	}
	completion := models.Completion{
		ID:          models.CompletionID(who.ID, lesson.ID),
		StudentID:   who.ID,
		CourseID:    course.ID,
		LessonID:    lesson.ID,
		CompletedAt: Now(),
	}
	if err := st.UpsertCompletion(ctx, completion); err != nil {
		return models.Completion{}, WrapError(err, "save completion")
	}
	return completion, nil
}

// ListCompleted returns the distinct lesson ids studentID completed in courseID.
func ListCompleted(ctx context.Context, st store.Completions, studentID, courseID string) ([]string, error) {
	return completedLessonIDs(ctx, st, studentID, courseID)
}

type ProgressReport struct {
	CourseID           string
	CompletedLessonIDs []string
	Progress           Progress
}

// CourseProgress is the progress of an enrolled student in one course.
func CourseProgress(ctx context.Context, st store.Store, who access.Identity, courseID string) (ProgressReport, error) {
	course, err := GetCourse(ctx, st, courseID)
	if err != nil {
		return ProgressReport{}, err
	}
	enrolled, err := IsEnrolled(ctx, st, who, course.ID)
	if err != nil {
		return ProgressReport{}, err
	}
	if !who.IsStudent() || !access.CanViewCourseLessons(who, course, enrolled) {
		return ProgressReport{}, ErrForbidden()
	}
	lessons, err := listLessons(ctx, st, course.ID)
	if err != nil {
		return ProgressReport{}, err
	}
	completed, err := completedLessonIDs(ctx, st, who.ID, course.ID)
	if err != nil {
		return ProgressReport{}, err
	}
	return ProgressReport{
		CourseID:           course.ID,
		CompletedLessonIDs: completed,
		Progress:           ComputeProgress(lessons, completed),
	}, nil
}

func completedLessonIDs(ctx context.Context, st store.Completions, studentID, courseID string) ([]string, error) {
	items, err := st.ListCompletions(ctx, studentID, courseID)
	if err != nil {
		return nil, WrapError(err, "list completions")
	}
	seen := map[string]bool{}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item.LessonID] {
			continue
		}
		seen[item.LessonID] = true
		ids = append(ids, item.LessonID)
	}
	return ids, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
