package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/synthworks/gengate/internal/api"
	apiMiddleware "github.com/synthworks/gengate/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	submitHandler := api.NewSubmitHandler(app.runner, app.fileManager)
	taskHandler := api.NewTaskHandler(app.taskStore, app.fileManager)
	statusHandler := api.NewStatusHandler(app.runner, app.taskStore)
	runHandler := api.NewRunHandler(app.runner)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Submission endpoints
		r.Post("/submit/voice-design", submitHandler.SubmitVoiceDesign)
		r.Post("/submit/tts", submitHandler.SubmitTTS)
		r.Post("/submit/env-audio", submitHandler.SubmitEnvAudio)

		// Task inspection and artifact download
		r.Get("/task/{id}", taskHandler.GetTask)
		r.Get("/download/{id}", taskHandler.DownloadOutput)

		// Service status endpoints
		r.Get("/health", statusHandler.HealthCheck)
		r.Get("/queue", statusHandler.QueueStatus)
		r.Get("/status", statusHandler.StatusAlias)
		r.Get("/modules", statusHandler.ListModules)

		// Compatibility alias for older front-end builds
		r.Post("/run/{app}", runHandler.RunApp)
	})

	// Front-end page and static assets
	if app.config.Storage.StaticDir != "" {
		r.Get("/", app.serveIndex)
		r.Handle("/static/*", http.StripPrefix("/static/",
			http.FileServer(http.Dir(app.config.Storage.StaticDir))))
	}

	return r
}

// serveIndex serves the bundled front-end page from the static directory.
func (app *application) serveIndex(w http.ResponseWriter, r *http.Request) {
	page := filepath.Join(app.config.Storage.StaticDir, "index.html")
	if _, err := os.Stat(page); err != nil {
		http.Error(w, "index.html not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, page)
}
