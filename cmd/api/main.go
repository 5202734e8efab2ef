// Copyright (c) 2026 Mangetsu. All rights reserved.

// Command api is the entry point for the Mangetsu HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Connect to object storage (MinIO).
//  6. Run database migrations (idempotent).
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mangetsu-app/mangetsu/internal/analytics/visitor"
	"github.com/mangetsu-app/mangetsu/internal/api"
	"github.com/mangetsu-app/mangetsu/internal/core/chapter"
	"github.com/mangetsu-app/mangetsu/internal/core/genre"
	"github.com/mangetsu-app/mangetsu/internal/core/title"
	"github.com/mangetsu-app/mangetsu/internal/platform/config"
	"github.com/mangetsu-app/mangetsu/internal/platform/constants"
	"github.com/mangetsu-app/mangetsu/internal/platform/mail"
	"github.com/mangetsu-app/mangetsu/internal/platform/migration"
	pgstore "github.com/mangetsu-app/mangetsu/internal/platform/postgres"
	redisstore "github.com/mangetsu-app/mangetsu/internal/platform/redis"
	"github.com/mangetsu-app/mangetsu/internal/platform/sec"
	"github.com/mangetsu-app/mangetsu/internal/platform/storage"
	"github.com/mangetsu-app/mangetsu/internal/social/notification"
	"github.com/mangetsu-app/mangetsu/internal/social/reaction"
	"github.com/mangetsu-app/mangetsu/internal/upload"
	"github.com/mangetsu-app/mangetsu/internal/users/account"
	"github.com/mangetsu-app/mangetsu/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Application-lifetime context. Cancelled on shutdown so background
	// goroutines (rate limiter cleanup) stop with the process.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Startup context. A 30s deadline so misconfiguration is caught quickly
	// rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(appCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Object Storage ─────────────────────────────────────────────────
	objectStore, err := storage.NewMinioStore(startupCtx, storage.Options{
		Endpoint:     cfg.StorageEndpoint,
		AccessKey:    cfg.StorageAccessKey,
		SecretKey:    cfg.StorageSecretKey,
		Bucket:       cfg.StorageBucket,
		UseSSL:       cfg.StorageUseSSL,
		PublicDomain: cfg.StoragePublicDomain,
	}, log)
	must(log, err, "connect to object storage")

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Platform Collaborators ─────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	var mailer mail.Sender = mail.NoopSender{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckStorage: func() error {
			return objectStore.Healthy(context.Background())
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	// Identity and accounts.
	userRepository := auth.NewUserRepository(pool)
	authSessionRepository := auth.NewSessionRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)
	verificationTokenRepository := auth.NewVerificationTokenRepository(rdb)
	authService := auth.NewService(userRepository, authSessionRepository, resetTokenRepository, verificationTokenRepository, jwtSvc, mailer, log)
	authHandler := auth.NewHandler(authService)

	accountRepository := account.NewAccountRepository(pool)
	preferencesRepository := account.NewPreferencesRepository(pool)
	accountSessionRepository := account.NewSessionRepository(pool)
	accountService := account.NewService(accountRepository, preferencesRepository, accountSessionRepository, log)
	accountHandler := account.NewHandler(accountService)

	// Notifications feed first; the catalogue and reactions fan out into it.
	notificationRepository := notification.NewNotificationRepository(pool)
	notificationService := notification.NewService(notificationRepository, log)
	notificationHandler := notification.NewHandler(notificationService)

	// Asset ingestion.
	uploadService := upload.NewService(objectStore, cfg.UploadMaxBytes, log)
	uploadHandler := upload.NewHandler(uploadService, cfg.UploadMaxBytes)

	// Publication catalogue.
	titleRepository := title.NewTitleRepository(pool)
	titleService := title.NewService(titleRepository, notificationService, log)
	titleHandler := title.NewHandler(titleService)

	chapterRepository := chapter.NewChapterRepository(pool)
	chapterService := chapter.NewService(chapterRepository, titleService, uploadService, notificationService, log)
	chapterHandler := chapter.NewHandler(chapterService, cfg.UploadMaxBytes)

	genreRepository := genre.NewPostgresRepository(pool)
	genreService := genre.NewService(genreRepository, log)
	genreHandler := genre.NewHandler(genreService)

	// Reactions write through to target tallies and fan out to owner
	// stats and notifications.
	reactionRepository := reaction.NewReactionRepository(pool)
	targetStore := reaction.NewTargetStore(pool)
	reactionService := reaction.NewService(reactionRepository, targetStore, notificationService, accountService, log)
	reactionHandler := reaction.NewHandler(reactionService)

	// Traffic analytics.
	visitorRepository := visitor.NewVisitorRepository(pool)
	visitorService := visitor.NewService(visitorRepository, log)
	visitorHandler := visitor.NewHandler(visitorService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:       liveness,
		Readiness:      readiness,
		Auth:           authHandler,
		Account:        accountHandler,
		Title:          titleHandler,
		Chapter:        chapterHandler,
		Genre:          genreHandler,
		Upload:         uploadHandler,
		Reaction:       reactionHandler,
		Notification:   notificationHandler,
		Analytics:      visitorHandler,
		VisitorTracker: visitorService,
	}

	server := api.NewServer(appCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
