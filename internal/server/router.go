package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/otcheredev/notes-service/internal/config"
	"github.com/otcheredev/notes-service/internal/handlers"
	"github.com/otcheredev/notes-service/internal/middleware"
	"github.com/otcheredev/notes-service/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps holds everything the router wires into handlers
type Deps struct {
	Tokens  middleware.TokenVerifier
	Auth    *services.AuthService
	Notes   *services.NoteService
	Tenants *services.TenantService
	Audit   *services.AuditService
	Checks  map[string]handlers.CheckFunc
}

// NewRouter builds the HTTP handler for the service
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	healthHandler := handlers.NewHealthHandler(deps.Checks)
	authHandler := handlers.NewAuthHandler(deps.Auth)
	noteHandler := handlers.NewNoteHandler(deps.Notes)
	tenantHandler := handlers.NewTenantHandler(deps.Tenants)
	auditHandler := handlers.NewAuditHandler(deps.Audit)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics)
	}
	r.Use(chimiddleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public endpoints
	r.Get("/", handlers.Root)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Post("/login", authHandler.Login)

	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Tokens))

		r.Get("/tenants/{slug}", tenantHandler.Get)
		r.Post("/tenants/{slug}/upgrade", tenantHandler.Upgrade)

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", noteHandler.Create)
			r.Get("/", noteHandler.List)
			r.Get("/{id}", noteHandler.Get)
			r.Put("/{id}", noteHandler.Update)
			r.Delete("/{id}", noteHandler.Delete)
		})

		r.Get("/audit-logs", auditHandler.List)
	})

	return r
}
