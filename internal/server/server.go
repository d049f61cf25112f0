// Package server provides the HTTP server of the forum backend.
// It wires the database, event bus, services, handlers and the
// maintenance scheduler together and manages their lifecycle.
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

	"github.com/yasinhessnawi1/Forum_Backend/internal/archive"
	"github.com/yasinhessnawi1/Forum_Backend/internal/auth"
	"github.com/yasinhessnawi1/Forum_Backend/internal/config"
	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/database"
	"github.com/yasinhessnawi1/Forum_Backend/internal/events"
	"github.com/yasinhessnawi1/Forum_Backend/internal/handlers"
	"github.com/yasinhessnawi1/Forum_Backend/internal/lifecycle"
	"github.com/yasinhessnawi1/Forum_Backend/internal/metrics"
	"github.com/yasinhessnawi1/Forum_Backend/internal/middleware"
	"github.com/yasinhessnawi1/Forum_Backend/internal/repository"
	"github.com/yasinhessnawi1/Forum_Backend/internal/scheduler"
	"github.com/yasinhessnawi1/Forum_Backend/internal/service"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils/ratelimit"
	"github.com/yasinhessnawi1/Forum_Backend/migrations"
	"github.com/yasinhessnawi1/Forum_Backend/scripts"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	BanHandler         *handlers.BanHandler
	MaintenanceHandler *handlers.MaintenanceHandler
	SystemHandler      *handlers.SystemHandler
}

// AuthProviders contains the token and password configuration.
type AuthProviders struct {
	JWTService  *auth.JWTService
	PasswordCfg *auth.PasswordConfig
}

type repositories struct {
	users       repository.UserRepository
	bans        repository.BanRepository
	auditTrails repository.AuditTrailRepository
	nameChanges repository.NameChangeRepository
	avatars     repository.AvatarRepository
}

type services struct {
	auth      *service.AuthService
	users     *service.UserService
	bans      *service.BanService
	archive   *service.ArchiveService
	retention *service.RetentionService
}

// Server represents the API server.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database access
	Db *database.Pool

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	router        chi.Router
	httpServer    *http.Server
	authProviders *AuthProviders

	repos    repositories
	services services

	bus       *events.Bus
	metrics   *metrics.Collector
	scheduler *scheduler.Scheduler
	limiter   *ratelimit.Store

	trustedProxies middleware.TrustedProxies

	stopBackground context.CancelFunc
}

// NewServer connects to the database, brings the schema up to date and
// builds a server ready to start.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	db, err := setupDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	s, err := newServer(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// newServer builds every component on top of an open database.
//
// Order: auth providers → repositories → event bus → services → handlers →
// scheduler → routes.
func newServer(cfg *config.AppConfig, db *database.Pool) (*Server, error) {
	s := &Server{
		Config:  cfg,
		Db:      db,
		metrics: metrics.New(nil),
	}

	s.setupAuthProviders()
	s.setupRepositories()
	s.setupEvents()

	if err := s.setupServices(); err != nil {
		return nil, fmt.Errorf("failed to set up services: %w", err)
	}

	s.setupHandlers()

	if err := s.setupScheduler(); err != nil {
		return nil, fmt.Errorf("failed to set up scheduler: %w", err)
	}

	s.setupRateLimiter()

	trusted, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trusted proxies: %w", err)
	}
	s.trustedProxies = trusted

	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return s, nil
}

// setupDatabase connects, runs migrations and seeds initial data.
func setupDatabase(cfg *config.AppConfig) (*database.Pool, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	seeder := scripts.NewSeeder(db)
	if err := seeder.SeedDatabase(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return db, nil
}

func (s *Server) setupAuthProviders() {
	s.authProviders = &AuthProviders{
		JWTService:  auth.NewJWTService(&s.Config.JWT),
		PasswordCfg: auth.ConfigFromAppConfig(s.Config),
	}
}

func (s *Server) setupRepositories() {
	s.repos = repositories{
		users:       repository.NewUserRepository(s.Db),
		bans:        repository.NewBanRepository(s.Db),
		auditTrails: repository.NewAuditTrailRepository(s.Db),
		nameChanges: repository.NewNameChangeRepository(s.Db),
		avatars:     repository.NewAvatarRepository(s.Db),
	}
}

// setupEvents creates the bus and subscribes the lifecycle handlers.
func (s *Server) setupEvents() {
	s.bus = events.NewBus()
	s.bus.SetObserver(s.metrics)

	lifecycle.Register(s.bus, lifecycle.Deps{
		Users:               s.repos.users,
		AuditTrails:         s.repos.auditTrails,
		NameChanges:         s.repos.nameChanges,
		Avatars:             s.repos.avatars,
		ProfileFields:       s.Config.ProfileFields,
		IPStoreTimeDays:     s.Config.Users.IPStoreTimeDays,
		AuditTrailChunkSize: s.Config.Users.AuditTrailChunkSize,
		Metrics:             s.metrics,
	})
}

func (s *Server) setupServices() error {
	if s.authProviders == nil || s.authProviders.JWTService == nil {
		return fmt.Errorf("JWT service not initialized")
	}
	if s.authProviders.PasswordCfg == nil {
		return fmt.Errorf("password config not initialized")
	}

	bans := service.NewBanService(s.repos.bans, s.metrics)

	s.services = services{
		bans: bans,
		auth: service.NewAuthService(
			s.repos.users,
			s.repos.auditTrails,
			bans,
			s.authProviders.JWTService,
			s.authProviders.PasswordCfg,
			s.metrics,
		),
		users: service.NewUserService(
			s.repos.users,
			s.repos.nameChanges,
			bans,
			s.bus,
			s.Db,
		),
		archive: service.NewArchiveService(
			s.repos.users,
			s.bus,
			archive.Config{
				WorkingDir: s.Config.Archive.WorkingDir,
				OutputDir:  s.Config.Archive.OutputDir,
				MediaRoot:  s.Config.Archive.MediaRoot,
				MaxAge:     s.Config.Archive.MaxAge,
			},
			s.metrics,
		),
		retention: service.NewRetentionService(s.bus),
	}

	return nil
}

func (s *Server) setupHandlers() {
	s.Handlers = &Handlers{
		AuthHandler:        handlers.NewAuthHandler(s.services.auth),
		UserHandler:        handlers.NewUserHandler(s.services.users, s.services.archive),
		BanHandler:         handlers.NewBanHandler(s.services.bans),
		MaintenanceHandler: handlers.NewMaintenanceHandler(s.services.retention, s.services.bans),
		SystemHandler:      handlers.NewSystemHandler(s.Db, s.Config.App.Version, s.Config.App.Environment),
	}
}

// setupScheduler registers the maintenance jobs. All of them follow the
// retention schedule; a disabled schedule still allows RunJob.
func (s *Server) setupScheduler() error {
	s.scheduler = scheduler.New()
	schedule := s.Config.Users.RemoveOldIPsSchedule

	if err := s.scheduler.Add(constants.JobRemoveOldIPs, schedule, s.services.retention.RemoveOldIPs); err != nil {
		return err
	}

	if err := s.scheduler.Add(constants.JobPruneDataArchives, schedule, s.services.archive.PruneArchives); err != nil {
		return err
	}

	return s.scheduler.Add(constants.JobDeleteExpiredBans, schedule, func(ctx context.Context) error {
		count, err := s.services.bans.DeleteExpiredBans(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			log.Info().Int64("count", count).Msg("Deleted expired bans")
		}
		return nil
	})
}

func (s *Server) setupRateLimiter() {
	s.limiter = ratelimit.NewStore(ratelimit.Rate{
		RequestsPerSecond: constants.LoginRequestsPerSecond,
		Burst:             constants.LoginBurst,
	}, constants.RateLimitIdleTTL)

	s.limiter.SetRate(constants.RateLimitCategoryLogin, ratelimit.Rate{
		RequestsPerSecond: constants.LoginRequestsPerSecond,
		Burst:             constants.LoginBurst,
	})
	s.limiter.SetRate(constants.RateLimitCategorySignup, ratelimit.Rate{
		RequestsPerSecond: constants.SignupRequestsPerSecond,
		Burst:             constants.SignupBurst,
	})
}

// RunJob runs a maintenance job once on the caller's goroutine.
func (s *Server) RunJob(ctx context.Context, name string) error {
	return s.scheduler.RunNow(ctx, name)
}

// StartBackground starts the scheduler and the rate limiter cleanup.
func (s *Server) StartBackground(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.stopBackground = cancel

	s.scheduler.Start(ctx)
	go s.limiter.Run(ctx, constants.RateLimitCleanupInterval)

	if next := s.scheduler.NextRun(constants.JobRemoveOldIPs); next != nil {
		log.Info().Time("next_run", *next).Msg("IP retention sweep scheduled")
	}
}

// Start starts the HTTP server and blocks until it fails or a shutdown
// signal arrives.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	s.StartBackground(context.Background())

	select {
	case err := <-serverErrors:
		s.stopJobs()
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			middleware.LogAndContinueOnError(s.httpServer.Close(), "failed to close server")
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown stops the scheduler, waits for in-flight requests and closes
// the database.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopJobs()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")

	s.Close()
	return nil
}

// Close releases the database connection.
func (s *Server) Close() {
	s.Db.Close()
	log.Info().Msg("Database connection closed")
}

func (s *Server) stopJobs() {
	s.scheduler.Stop()
	if s.stopBackground != nil {
		s.stopBackground()
	}
}
