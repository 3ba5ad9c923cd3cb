package services

import (
	"context"
	"strconv"

	"elearning-backend-go/internal/store"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

func Slugify(value string) string {
	s := slug.Make(value)
	if s == "" {
		return uuid.NewString()
	}
	return s
}

// ResolveCourseSlug returns the first free slug among base, base-2, base-3...
func ResolveCourseSlug(ctx context.Context, st store.Courses, title string) (string, error) {
	base := Slugify(title)
	candidate := base
	counter := 2
	for {
		exists, err := st.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(counter)
		counter++
	}
}
