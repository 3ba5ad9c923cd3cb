package httpapi

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"elearning-backend-go/internal/config"
	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/services"
	"elearning-backend-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Server struct {
	Store    store.Store
	DB       services.Pinger
	Config   config.Config
	Tokens   services.TokenService
	Uploader services.Uploader
}

// NewServer wires the handlers. db is only used by the health check and may be
// nil when the store lives in memory; a nil uploader turns uploads into 503s.
func NewServer(st store.Store, db services.Pinger, cfg config.Config, uploader services.Uploader) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	return &Server{
		Store:    st,
		DB:       db,
		Config:   cfg,
		Tokens:   tokens,
		Uploader: uploader,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.Health)

		api.Post("/auth/register", s.Register)
		api.Post("/auth/login", s.Login)
		api.Post("/auth/refresh", s.Refresh)
		api.With(s.WithAuth).Post("/auth/logout", s.Logout)

		api.With(s.WithAuth).Get("/me", s.Me)

		api.Route("/courses", func(courses chi.Router) {
			courses.Use(s.WithAuth)
			courses.Get("/slug/{slug}", s.CourseBySlug)
			courses.Get("/{courseId}", s.CourseDetail)
			courses.Get("/{courseId}/learn", s.Learn)
			courses.Get("/{courseId}/lessons/{lessonId}", s.LessonDetail)
		})

		api.Route("/instructor/courses", func(courses chi.Router) {
			courses.Use(s.WithAuth)
			courses.Use(RequireRole(models.RoleInstructor))
			courses.Get("/", s.InstructorCourses)
			courses.Post("/", s.CreateCourse)
			courses.Put("/{courseId}", s.UpdateCourse)
			courses.Delete("/{courseId}", s.DeleteCourse)
			courses.Get("/{courseId}/lessons", s.ManageLessons)
			courses.Post("/{courseId}/lessons", s.AddLesson)
			courses.Delete("/{courseId}/lessons/{lessonId}", s.DeleteLesson)
		})

		api.Route("/student", func(student chi.Router) {
			student.Use(s.WithAuth)
			student.Use(RequireRole(models.RoleStudent))
			student.Get("/catalog", s.Catalog)
			student.Get("/enrollments", s.StudentEnrollments)
			student.Post("/courses/{courseId}/enroll", s.Enroll)
			student.Post("/courses/{courseId}/lessons/{lessonId}/complete", s.MarkComplete)
			student.Get("/courses/{courseId}/progress", s.CourseProgress)
		})

		api.Route("/media", func(media chi.Router) {
			media.With(s.WithAuth, RequireRole(models.RoleInstructor)).Post("/uploads/image", s.UploadImage)
			media.With(s.WithAuth, RequireRole(models.RoleInstructor)).Post("/uploads/attachment", s.UploadAttachment)
			if s.servesLocalMedia() {
				files := http.StripPrefix(localMediaPrefix+"/", http.FileServer(http.Dir(s.Config.MediaStoragePath)))
				media.Get("/files/*", func(w http.ResponseWriter, r *http.Request) {
					if strings.HasSuffix(r.URL.Path, "/") {
						WriteError(w, http.StatusNotFound, "Not found")
						return
					}
					files.ServeHTTP(w, r)
				})
			}
		})
	})
	return r
}

const localMediaPrefix = "/api/media/files"

// servesLocalMedia is true when local uploads are published under this server's
// own /api/media/files, either as a relative or an absolute URL.
func (s *Server) servesLocalMedia() bool {
	if s.Config.MediaBackend != config.MediaLocal || strings.TrimSpace(s.Config.MediaStoragePath) == "" {
		return false
	}
	base, err := url.Parse(s.Config.MediaPublicBaseURL)
	if err != nil {
		return false
	}
	return strings.TrimRight(base.Path, "/") == localMediaPrefix
}
