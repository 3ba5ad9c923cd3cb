package models

import "time"

type Role string

const (
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

func (r Role) Valid() bool {
	return r == RoleInstructor || r == RoleStudent
}

type LessonKind string

const (
	LessonVideo   LessonKind = "video"
	LessonArticle LessonKind = "article"
)

// Identity is an authenticated principal. Credentials never leave the store layer
// except through PasswordHash.
type Identity struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type Profile struct {
	IdentityID string    `db:"identity_id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	Role       Role      `db:"role"`
	CreatedAt  time.Time `db:"created_at"`
}

type Course struct {
	ID          string    `db:"id"`
	Slug        string    `db:"slug"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	ImageURL    *string   `db:"image_url"`
	OwnerID     string    `db:"owner_id"`
	OwnerName   string    `db:"owner_name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Lesson belongs to exactly one course. Body holds the video URL for video
// lessons and the article text otherwise.
type Lesson struct {
	ID            string     `db:"id"`
	CourseID      string     `db:"course_id"`
	Title         string     `db:"title"`
	Kind          LessonKind `db:"kind"`
	Body          string     `db:"body"`
	AttachmentURL *string    `db:"attachment_url"`
	CreatedAt     time.Time  `db:"created_at"`
}

type Enrollment struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	CourseID   string    `db:"course_id"`
	EnrolledAt time.Time `db:"enrolled_at"`
}

type Completion struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	CourseID    string    `db:"course_id"`
	LessonID    string    `db:"lesson_id"`
	CompletedAt time.Time `db:"completed_at"`
}

// CompletionID is deterministic so that re-marking a lesson overwrites the
// existing record.
func CompletionID(studentID, lessonID string) string {
	return studentID + "_" + lessonID
}

type RevokedToken struct {
	TokenID   string    `db:"token_id"`
	ExpiresAt time.Time `db:"expires_at"`
}
