// Package server wires the application together: database, auth
// providers, repositories, services, handlers and routes, plus server
// lifecycle management with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/acgeoffrey/budget-tracker-api/internal/auth"
	"github.com/acgeoffrey/budget-tracker-api/internal/config"
	"github.com/acgeoffrey/budget-tracker-api/internal/database"
	"github.com/acgeoffrey/budget-tracker-api/internal/handlers"
	"github.com/acgeoffrey/budget-tracker-api/internal/repository"
	"github.com/acgeoffrey/budget-tracker-api/internal/service"
	"github.com/acgeoffrey/budget-tracker-api/migrations"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	AuthHandler   *handlers.AuthHandler
	UserHandler   *handlers.UserHandler
	RecordHandler *handlers.RecordHandler
	BudgetHandler *handlers.BudgetHandler
}

// AuthProviders contains the authentication building blocks shared by the
// middleware and the auth service.
type AuthProviders struct {
	JWTService  *auth.JWTService
	PasswordCfg *auth.PasswordConfig
}

// repositories groups the data access layer.
type repositories struct {
	userRepo     repository.UserRepository
	recordRepo   repository.RecordRepository
	budgetRepo   repository.BudgetRepository
	settingsRepo repository.SettingsRepository
}

// services groups the business logic layer.
type services struct {
	authService   *service.AuthService
	userService   *service.UserService
	recordService *service.RecordService
	budgetService *service.BudgetService
}

// Server is the API server. Initialization order is database, auth
// providers, repositories, services, handlers, routes.
type Server struct {
	Config   *config.AppConfig
	Db       *database.Pool
	Handlers *Handlers

	router        chi.Router
	authProviders *AuthProviders
	repos         repositories
	svcs          services
	httpServer    *http.Server
}

// NewServer creates a fully wired server ready to start.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config: cfg,
	}

	if err := s.setupDatabase(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	s.setupAuthProviders()
	s.setupRepositories()
	s.setupServices()
	s.setupHandlers()
	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s, nil
}

// setupDatabase connects to PostgreSQL and brings the schema up to date.
func (s *Server) setupDatabase() error {
	db, err := database.Connect(s.Config)
	if err != nil {
		return err
	}

	s.Db = db

	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

func (s *Server) setupAuthProviders() {
	s.authProviders = &AuthProviders{
		JWTService:  auth.NewJWTService(&s.Config.JWT),
		PasswordCfg: auth.ConfigFromAppConfig(s.Config),
	}
}

func (s *Server) setupRepositories() {
	s.repos.userRepo = repository.NewUserRepository(s.Db)
	s.repos.recordRepo = repository.NewRecordRepository(s.Db)
	s.repos.budgetRepo = repository.NewBudgetRepository(s.Db)
	s.repos.settingsRepo = repository.NewSettingsRepository(s.Db)
}

func (s *Server) setupServices() {
	emailSender := service.NewSendGridSender(&s.Config.Email)

	s.svcs.authService = service.NewAuthService(
		s.repos.userRepo,
		s.repos.settingsRepo,
		s.authProviders.JWTService,
		emailSender,
		s.authProviders.PasswordCfg,
		s.Config,
	)

	s.svcs.userService = service.NewUserService(s.repos.userRepo, s.repos.settingsRepo)
	s.svcs.recordService = service.NewRecordService(s.repos.recordRepo, &s.Config.Stats)
	s.svcs.budgetService = service.NewBudgetService(s.repos.budgetRepo)
}

func (s *Server) setupHandlers() {
	s.Handlers = &Handlers{
		AuthHandler:   handlers.NewAuthHandler(s.svcs.authService),
		UserHandler:   handlers.NewUserHandler(s.svcs.userService),
		RecordHandler: handlers.NewRecordHandler(s.svcs.recordService),
		BudgetHandler: handlers.NewBudgetHandler(s.svcs.budgetService),
	}
}

// GetRouter returns the configured router, used by tests.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// Start runs the HTTP server until an error or a shutdown signal.
func (s *Server) Start() error {
	errCh := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.httpServer.Addr).
			Str("environment", s.Config.App.Environment).
			Msg("Starting HTTP server")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		return s.Shutdown()
	}
}

// Shutdown gracefully stops the server, draining in-flight requests
// before closing the database pool.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Db.Close()

	log.Info().Msg("Server stopped")
	return nil
}
