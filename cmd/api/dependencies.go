package main

import (
	"fmt"
	"log/slog"
	"time"

	authhandler "github.com/propdesk/backoffice/internal/domain/auth/handler"
	authmiddleware "github.com/propdesk/backoffice/internal/domain/auth/middleware"
	authrepo "github.com/propdesk/backoffice/internal/domain/auth/repository"
	authservice "github.com/propdesk/backoffice/internal/domain/auth/service"
	ingesthandler "github.com/propdesk/backoffice/internal/domain/ingest/handler"
	ingestrepo "github.com/propdesk/backoffice/internal/domain/ingest/repository"
	ingestservice "github.com/propdesk/backoffice/internal/domain/ingest/service"
	notificationhandler "github.com/propdesk/backoffice/internal/domain/notification/handler"
	notificationrepo "github.com/propdesk/backoffice/internal/domain/notification/repository"
	notificationservice "github.com/propdesk/backoffice/internal/domain/notification/service"
	performancehandler "github.com/propdesk/backoffice/internal/domain/performance/handler"
	performancerepo "github.com/propdesk/backoffice/internal/domain/performance/repository"
	performanceservice "github.com/propdesk/backoffice/internal/domain/performance/service"
	profilehandler "github.com/propdesk/backoffice/internal/domain/profile/handler"
	profilerepo "github.com/propdesk/backoffice/internal/domain/profile/repository"
	profileservice "github.com/propdesk/backoffice/internal/domain/profile/service"
	withdrawalhandler "github.com/propdesk/backoffice/internal/domain/withdrawal/handler"
	withdrawalrepo "github.com/propdesk/backoffice/internal/domain/withdrawal/repository"
	withdrawalservice "github.com/propdesk/backoffice/internal/domain/withdrawal/service"
	"github.com/propdesk/backoffice/pkg/config"
	"github.com/propdesk/backoffice/pkg/cron"
	"github.com/propdesk/backoffice/pkg/db"
)

// Dependencies wires repositories, services, and handlers together.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *db.DB

	Scheduler *cron.Scheduler

	AuthMiddleware *authmiddleware.Middleware

	AuthHandler         *authhandler.Handler
	IngestHandler       *ingesthandler.Handler
	NotificationHandler *notificationhandler.Handler
	PerformanceHandler  *performancehandler.Handler
	ProfileHandler      *profilehandler.Handler
	WithdrawalHandler   *withdrawalhandler.Handler
}

// newDependencies builds the full dependency graph from configuration.
func newDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	database, err := db.New(db.Config{
		DSN:             cfg.Database.DSN(),
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("migrations applied")

	// Repositories
	users := authrepo.NewPostgresUserRepository(database.Pool)
	profiles := profilerepo.NewPostgresProfileRepository(database.Pool)
	ledger := ingestrepo.NewPostgresLedgerRepository(database.Pool)
	notifications := notificationrepo.NewPostgresNotificationRepository(database.Pool)
	performance := performancerepo.NewPostgresPerformanceRepository(database.Pool)
	withdrawals := withdrawalrepo.NewPostgresWithdrawalRepository(database.Pool)

	// Services
	notificationSvc := notificationservice.NewService(notifications, logger)
	authSvc := authservice.NewService(users, profiles, cfg.Auth.JWTSecret, logger)
	ingestSvc := ingestservice.NewService(ledger, profiles, notificationSvc, logger)
	performanceSvc := performanceservice.NewService(performance, profiles, logger)
	profileSvc := profileservice.NewService(profiles, notificationSvc, logger)
	withdrawalSvc := withdrawalservice.NewService(withdrawals, profiles, notificationSvc, logger)

	// Background jobs
	scheduler := cron.NewScheduler(logger)
	if err := scheduler.AddJob("0 3 * * *", "notification-cleanup", notificationSvc.CleanupExpired); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to schedule notification cleanup: %w", err)
	}

	return &Dependencies{
		Config: cfg,
		Logger: logger,
		DB:     database,

		Scheduler: scheduler,

		AuthMiddleware: authmiddleware.New(authSvc),

		AuthHandler:         authhandler.NewHandler(authSvc, logger),
		IngestHandler:       ingesthandler.NewHandler(ingestSvc, cfg.Server.MaxUploadBytes, logger),
		NotificationHandler: notificationhandler.NewHandler(notificationSvc, logger),
		PerformanceHandler:  performancehandler.NewHandler(performanceSvc, logger),
		ProfileHandler:      profilehandler.NewHandler(profileSvc, logger),
		WithdrawalHandler:   withdrawalhandler.NewHandler(withdrawalSvc, logger),
	}, nil
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.Scheduler != nil {
		d.Scheduler.Stop()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
