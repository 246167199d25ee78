package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/srt-studio/backend/internal/api/handlers"
	"github.com/srt-studio/backend/internal/api/middleware"
	"github.com/srt-studio/backend/internal/auth"
	"github.com/srt-studio/backend/internal/config"
	"github.com/srt-studio/backend/internal/db"
	"github.com/srt-studio/backend/internal/job"
	"github.com/srt-studio/backend/internal/pipeline"
	"github.com/srt-studio/backend/internal/storage"
	"github.com/srt-studio/backend/internal/subtitle/translate"
)

// jsonBodyLimit caps JSON request bodies; uploads use MAX_UPLOAD_MB
const jsonBodyLimit = 4 << 20

// Deps are the services the router hands to its handlers
type Deps struct {
	Config   *config.Config
	Database *db.Database
	JWT      *auth.JWTService
	Queue    *job.JobQueue
	Pipeline *pipeline.Service
	Registry *translate.Registry
	Sink     *storage.FilesystemSink
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	cfg := d.Config

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Handlers
	authHandler := handlers.NewAuthHandler(d.Database, d.JWT)
	metaHandler := handlers.NewMetaHandler(d.Registry)
	subtitleHandler := handlers.NewSubtitleHandler(d.Pipeline, d.Queue, cfg.UploadPath, cfg.MaxUploadBytes())
	filesHandler := handlers.NewFilesHandler(d.Sink)
	jobHandler := handlers.NewJobHandler(d.Queue, d.Sink)
	settingsHandler := handlers.NewSettingsHandler(d.Database, d.Registry)
	presetsHandler := handlers.NewPresetsHandler(d.Database)
	adminHandler := handlers.NewAdminHandler(d.Database, loginLimiter)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.With(loginLimiter.Handler, middleware.MaxBodySize(jsonBodyLimit)).Post("/auth/login", authHandler.Login)
		r.Get("/health", metaHandler.Health)
		r.Get("/languages", metaHandler.Languages)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(d.JWT))

			r.Get("/auth/me", authHandler.Me)

			// Uploads (multipart, limited by MAX_UPLOAD_MB in the handler)
			r.Post("/translate", subtitleHandler.Translate)
			r.Post("/jobs/translate", subtitleHandler.EnqueueTranslate)
			r.Post("/convert", subtitleHandler.Convert)

			// Outputs
			r.Get("/outputs/search", filesHandler.Search)
			r.Get("/outputs/{stage}", filesHandler.ListOutputs)
			r.Get("/outputs/{stage}/{name}", filesHandler.Download)

			// Jobs
			r.Get("/jobs", jobHandler.ListJobs)
			r.Get("/jobs/{id}", jobHandler.GetJob)
			r.Delete("/jobs/{id}", jobHandler.CancelJob)
			r.Post("/jobs/{id}/retry", jobHandler.RetryJob)
			r.Get("/jobs/{id}/download", jobHandler.Download)

			// JSON routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.MaxBodySize(jsonBodyLimit))

				r.Post("/duplicate", subtitleHandler.Duplicate)
				r.Post("/replace/words", subtitleHandler.ReplaceWords)
				r.Post("/replace/speakers", subtitleHandler.ReplaceSpeakers)

				r.Get("/presets", presetsHandler.ListPresets)
				r.Post("/presets", presetsHandler.CreatePreset)
				r.Put("/presets/{id}", presetsHandler.UpdatePreset)
				r.Delete("/presets/{id}", presetsHandler.DeletePreset)

				// Admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole("admin"))

					r.Get("/settings", settingsHandler.GetSettings)
					r.Put("/settings", settingsHandler.UpdateSettings)

					r.Get("/admin/users", adminHandler.ListUsers)
					r.Post("/admin/users", adminHandler.CreateUser)
					r.Delete("/admin/users/{id}", adminHandler.DeleteUser)
					r.Get("/admin/ratelimit", adminHandler.RateLimits)
					r.Delete("/admin/ratelimit", adminHandler.ClearRateLimits)
				})
			})
		})
	})

	return r
}
