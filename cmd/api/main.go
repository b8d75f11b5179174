package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/roadrulez/roadrulez/internal/auth"
	"github.com/roadrulez/roadrulez/internal/background"
	"github.com/roadrulez/roadrulez/internal/config"
	"github.com/roadrulez/roadrulez/internal/database"
	"github.com/roadrulez/roadrulez/internal/handlers"
	middlewareCustom "github.com/roadrulez/roadrulez/internal/middleware"
	"github.com/roadrulez/roadrulez/internal/models"
	"github.com/roadrulez/roadrulez/internal/repositories"
	"github.com/roadrulez/roadrulez/internal/routes"
	"github.com/roadrulez/roadrulez/internal/services"
	pkgauth "github.com/roadrulez/roadrulez/pkg/auth"
	pkglogger "github.com/roadrulez/roadrulez/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	auditLogRepo := repositories.NewAuditLogRepository(db)

	// Background runner for fire-and-forget side effects (counter writes,
	// audit emission, stale-row cleanup)
	tasks := background.NewRunner(logger, 10*time.Second)

	// Services
	rateLimitService := services.NewRateLimitService(loginAttemptRepo, services.RateLimitConfig{
		MaxAttempts:      cfg.Security.MaxLoginAttempts,
		LockoutDuration:  cfg.Security.LockoutDuration,
		AttemptRetention: cfg.Security.AttemptRetention,
	}, logger, tasks)

	auditFallback := pkglogger.NewFallbackAuditWriter(cfg.Security.AuditFallbackDir, logger)
	auditService := services.NewAuditService(auditLogRepo, auditFallback, logger)

	authService := services.NewAuthService(userRepo, rateLimitService, auditService, tasks, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.SessionSecret, cfg.Auth.SessionExpiry)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokenManager)

	// Bootstrap first admin user if configured
	bootstrapCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(bootstrapCtx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	// Router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, tokenManager, middlewareCustom.RateLimitConfig{
		RequestsPerMinute: cfg.Security.LoginRequestsPerMin,
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Let in-flight counter and audit writes finish before exiting.
	if err := tasks.Shutdown(shutdownCtx); err != nil {
		logger.Error("background runner shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the first admin user if ADMIN_EMAIL and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	if err := pkgauth.ValidatePassword(adminPassword); err != nil {
		return fmt.Errorf("weak admin password: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        adminEmail,
		PasswordHash: &hashedPassword,
		Name:         "Admin",
		Role:         models.RoleAdmin,
	}

	if _, err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
