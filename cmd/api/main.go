package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BradenHooton/sentinel/internal/alerts"
	"github.com/BradenHooton/sentinel/internal/auth"
	"github.com/BradenHooton/sentinel/internal/background"
	"github.com/BradenHooton/sentinel/internal/config"
	"github.com/BradenHooton/sentinel/internal/database"
	"github.com/BradenHooton/sentinel/internal/detection"
	"github.com/BradenHooton/sentinel/internal/handlers"
	middlewareCustom "github.com/BradenHooton/sentinel/internal/middleware"
	"github.com/BradenHooton/sentinel/internal/repositories"
	"github.com/BradenHooton/sentinel/internal/routes"
	"github.com/BradenHooton/sentinel/internal/services"
	pkghttp "github.com/BradenHooton/sentinel/pkg/http"
	pkglogger "github.com/BradenHooton/sentinel/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db.Pool); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	attemptRepo := repositories.NewLoginAttemptRepository(db)
	alertRepo := repositories.NewAlertRepository(db)

	// Risk model with live weight reloads
	model, err := detection.LoadModel(cfg.Detection.ModelPath, logger)
	if err != nil {
		logger.Error("failed to load risk model", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.Detection.ModelPath != "" {
		if err := model.Watch(); err != nil {
			logger.Error("failed to watch risk model file", slog.Any("error", err))
			os.Exit(1)
		}
		defer model.Close()
	}

	// Detection pipeline
	extractor := detection.NewExtractor(attemptRepo, cfg.Detection.Window, nil)
	classifier := detection.NewClassifier(model, detection.ClassifierConfig{
		BaseRisk:       cfg.Detection.BaseRisk,
		WarnThreshold:  cfg.Detection.WarnThreshold,
		BlockThreshold: cfg.Detection.BlockThreshold,
	}, logger)
	patternDetector := detection.NewPatternDetector(detection.PatternConfig{
		BruteWindow:    cfg.Detection.BruteWindow,
		BruteThreshold: cfg.Detection.BruteThreshold,
		StuffWindow:    cfg.Detection.StuffWindow,
		StuffThreshold: cfg.Detection.StuffThreshold,
	})
	alertManager := alerts.NewManager(alertRepo, cfg.Detection.Cooldown, logger, nil)
	gate := detection.NewGate(extractor, classifier, alertManager, cfg.Detection.StoreTimeout, logger, nil)

	// Background loops
	scheduler := background.NewScheduler(attemptRepo, patternDetector, classifier, alertManager, background.SchedulerConfig{
		Interval:         cfg.Detection.Interval,
		Lookback:         cfg.Detection.Window,
		ScanLimit:        cfg.Detection.ScanLimit,
		AggregateScoring: cfg.Detection.AggregateScoring,
	}, logger, nil)
	cleanupManager := background.NewCleanupManager(attemptRepo, logger, cfg.Detection.CleanupInterval)

	// Initialize token manager and audit logging
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)
	authMiddleware := auth.NewMiddleware(tokenManager)
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize services
	authService := services.NewAuthService(
		userRepo, attemptRepo, gate, tokenManager,
		cfg.Detection.AttemptRetention, logger, auditLogger, nil,
	)
	dashboardService := services.NewDashboardService(attemptRepo, alertRepo, cfg.Detection.Window, logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, dashboardHandler, authMiddleware, db)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background loops
	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()

	go scheduler.Start(backgroundCtx)
	go cleanupManager.Start(backgroundCtx)

	// Start server
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

	backgroundCancel()
	scheduler.Stop()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")
}
