// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

// Command api is the entry point for the Workhive HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
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

	"github.com/workhive/workhive/internal/api"
	"github.com/workhive/workhive/internal/crm/customer"
	"github.com/workhive/workhive/internal/crm/job"
	"github.com/workhive/workhive/internal/platform/config"
	"github.com/workhive/workhive/internal/platform/constants"
	"github.com/workhive/workhive/internal/platform/mailer"
	"github.com/workhive/workhive/internal/platform/migration"
	pgstore "github.com/workhive/workhive/internal/platform/postgres"
	redisstore "github.com/workhive/workhive/internal/platform/redis"
	"github.com/workhive/workhive/internal/platform/sec"
	"github.com/workhive/workhive/internal/platform/totp"
	"github.com/workhive/workhive/internal/users/account"
	"github.com/workhive/workhive/internal/users/auth"
	"github.com/workhive/workhive/internal/users/device"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "workhive"))
	slog.SetDefault(log)

	log.Info("[Workhive] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "workhive"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Platform Services ──────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	totpEngine := totp.NewEngine(constants.AuthIssuer)
	mail := mailer.New(cfg, log)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	verifyTokenRepository := auth.NewVerificationTokenRepository(rdb)
	loginLimiter := auth.NewLoginLimiter(rdb)
	tokenService := auth.NewTokenService(sessionRepository, userRepository, jwtSvc)

	deviceRepository := device.NewRepository(pool)
	deviceService := device.NewService(deviceRepository, tokenService)
	deviceHandler := device.NewHandler(deviceService)

	authService := auth.NewService(
		userRepository,
		verifyTokenRepository,
		loginLimiter,
		tokenService,
		deviceService,
		mail,
		totpEngine,
		cfg.SecretEncryptionKey,
	)
	authHandler := auth.NewHandler(authService)

	accountRepository := account.NewAccountRepository(pool)
	accountService := account.NewService(accountRepository, tokenService, log)
	accountHandler := account.NewHandler(accountService)

	customerRepository := customer.NewPostgresRepository(pool)
	customerService := customer.NewService(customerRepository, log)
	customerHandler := customer.NewHandler(customerService)

	jobRepository := job.NewPostgresRepository(pool)
	jobService := job.NewService(jobRepository, customerRepository, userRepository, log)
	jobHandler := job.NewHandler(jobService)

	// ── 9. Session Janitor ────────────────────────────────────────────────
	// Expired sessions are rejected at read time; this sweep only keeps the
	// table from growing without bound.
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	go runSessionJanitor(janitorCtx, sessionRepository, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Device:    deviceHandler,
		Account:   accountHandler,
		Customer:  customerHandler,
		Job:       jobHandler,
	}

	server := api.NewServer(janitorCtx, cfg, log, jwtSvc, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
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

// runSessionJanitor periodically removes expired session rows.
func runSessionJanitor(ctx context.Context, sessions auth.SessionRepository, log *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				log.Error("session_cleanup_failed", slog.Any("error", err))
			}
		}
	}
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
