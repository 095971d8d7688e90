package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/acgeoffrey/budget-tracker-api/internal/auth"
	"github.com/acgeoffrey/budget-tracker-api/internal/constants"
	"github.com/acgeoffrey/budget-tracker-api/internal/middleware"
	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// SetupRoutes configures the router hierarchy: open health endpoints,
// public credential endpoints behind a rate limiter, and the protected
// API surface behind session authentication.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.CORS(getAllowedOrigins()))
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogging())
	r.Use(middleware.SecurityHeaders())

	// Health and version (unprotected)
	r.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			if err := s.Db.HealthCheck(r.Context()); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				utils.Error(w, http.StatusServiceUnavailable, "service_unavailable", "Service is not healthy", nil)
				return
			}

			utils.JSON(w, http.StatusOK, map[string]string{
				"status":  "healthy",
				"version": s.Config.App.Version,
			})
		})

		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			utils.JSON(w, http.StatusOK, map[string]string{
				"version":     s.Config.App.Version,
				"environment": s.Config.App.Environment,
			})
		})
	})

	authenticate := auth.Authenticate(s.authProviders.JWTService, s.repos.userRepo)
	authLimiter := middleware.NewRateLimiter(constants.DefaultAuthRateLimit, constants.DefaultAuthRateWindow)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			// Public credential endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(authLimiter))

				r.Post("/signup", s.Handlers.AuthHandler.Signup)
				r.Post("/login", s.Handlers.AuthHandler.Login)
				r.Post("/forgotPassword", s.Handlers.AuthHandler.ForgotPassword)
				r.Patch("/resetPassword/{token}", s.Handlers.AuthHandler.ResetPassword)
			})

			// Protected user endpoints
			r.Group(func(r chi.Router) {
				r.Use(authenticate)

				r.Patch("/updateMyPassword", s.Handlers.AuthHandler.UpdatePassword)
				r.Get("/me", s.Handlers.UserHandler.GetMe)
				r.Patch("/updateMe", s.Handlers.UserHandler.UpdateMe)
				r.Delete("/deleteMe", s.Handlers.UserHandler.DeleteMe)
				r.Get("/settings", s.Handlers.UserHandler.GetSettings)
				r.Patch("/settings", s.Handlers.UserHandler.UpdateSettings)

				// Admin-only
				r.Group(func(r chi.Router) {
					r.Use(auth.AuthorizeOnlyTo(models.RoleAdmin))
					r.Get("/all", s.Handlers.UserHandler.ListUsers)
				})
			})
		})

		r.Route("/records", func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/", s.Handlers.RecordHandler.List)
			r.Post("/", s.Handlers.RecordHandler.Create)
			r.Get("/stats", s.Handlers.RecordHandler.Stats)
			r.Get("/{id}", s.Handlers.RecordHandler.Get)
			r.Delete("/{id}", s.Handlers.RecordHandler.Delete)
		})

		r.Route("/budget", func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/", s.Handlers.BudgetHandler.List)
			r.Post("/", s.Handlers.BudgetHandler.Create)
			r.Get("/{id}", s.Handlers.BudgetHandler.Get)
			r.Patch("/{id}", s.Handlers.BudgetHandler.Update)
			r.Delete("/{id}", s.Handlers.BudgetHandler.Delete)
		})
	})

	s.router = r
}

// getAllowedOrigins reads allowed CORS origins from the environment,
// falling back to local development hosts.
func getAllowedOrigins() []string {
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		origins := strings.Split(env, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		log.Info().Strs("allowed_origins", origins).Msg("Using CORS allowed origins from environment")
		return origins
	}

	return []string{"http://localhost:3000", "http://localhost:5173"}
}
