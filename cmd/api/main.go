package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/shield/internal/api"
	"github.com/saturnino-fabrica-de-software/shield/internal/authz"
	"github.com/saturnino-fabrica-de-software/shield/internal/config"
	"github.com/saturnino-fabrica-de-software/shield/internal/database"
	"github.com/saturnino-fabrica-de-software/shield/internal/directory"
	"github.com/saturnino-fabrica-de-software/shield/internal/enroll"
	"github.com/saturnino-fabrica-de-software/shield/internal/intake"
	"github.com/saturnino-fabrica-de-software/shield/internal/recognition"
	"github.com/saturnino-fabrica-de-software/shield/internal/repository"
	"github.com/saturnino-fabrica-de-software/shield/internal/samplestore"
	"github.com/saturnino-fabrica-de-software/shield/internal/training"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision/lbph"
	visionmock "github.com/saturnino-fabrica-de-software/shield/internal/vision/mock"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision/pigo"
	"github.com/saturnino-fabrica-de-software/shield/internal/vision/rekognition"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; the file is optional.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Shield API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Vision providers
	registry := vision.NewRegistry()
	registry.RegisterDetector(vision.DetectorTypePigo, func(context.Context) (vision.Detector, error) {
		return pigo.NewDetector(cfg.CascadeFile)
	})
	registry.RegisterDetector(vision.DetectorTypeRekognition, func(ctx context.Context) (vision.Detector, error) {
		return rekognition.NewDetector(ctx, rekognition.Config{Region: cfg.AWSRegion})
	})
	registry.RegisterDetector(vision.DetectorTypeMock, func(context.Context) (vision.Detector, error) {
		return visionmock.NewDetector(), nil
	})
	registry.RegisterModel(vision.ModelTypeLBPH, func() (vision.Model, error) {
		return lbph.New(), nil
	})
	registry.RegisterModel(vision.ModelTypeMock, func() (vision.Model, error) {
		return visionmock.NewModel(), nil
	})

	detector, err := registry.NewDetector(ctx, cfg.DetectorType)
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}
	model, err := registry.NewModel(cfg.ModelType)
	if err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}

	// Durable state
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	modelPath := filepath.Join(cfg.DataDir, "model.json")
	labelPath := filepath.Join(cfg.DataDir, "labels.json")

	labels, err := training.LoadLabelMap(labelPath)
	if err != nil {
		return fmt.Errorf("failed to load label map: %w", err)
	}

	guard := vision.NewGuard(model)
	if err := training.Restore(modelPath, guard, labels); err != nil {
		return fmt.Errorf("failed to restore model: %w", err)
	}
	if err := training.Verify(guard, labels); err != nil {
		// Startable, but recognition output is suspect until repaired.
		logger.Warn("persisted state inconsistent", slog.Any("error", err))
	}

	// Core pipeline
	store, err := samplestore.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create sample store: %w", err)
	}
	validator := intake.NewValidator(detector, cfg.CropPadding)
	trainer := training.NewTrainer(store, detector, guard, labels, modelPath, cfg.TrainTimeout, logger)
	tracker := enroll.NewTracker(validator, store, trainer, cfg.TargetFrames, logger)
	scorer := recognition.NewScorer(guard, labels, logger)

	// Persistence and decisions
	userRepo := repository.NewUserRepository(pool)
	authLogRepo := repository.NewAuthorizationLogRepository(pool)
	auditLogger := authz.NewSlogLogger(logger)
	engine := authz.NewEngine(cfg.ConfidenceThreshold, authLogRepo, auditLogger, logger)

	// Directory
	jwtService := directory.NewJWTService(cfg.TokenSecret, cfg.TokenIssuer, 24*time.Hour)
	dirService := directory.NewService(userRepo)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		UserRepo:    userRepo,
		AuthLogRepo: authLogRepo,
		JWTService:  jwtService,
		Directory:   dirService,
		Tracker:     tracker,
		Validator:   validator,
		Scorer:      scorer,
		Engine:      engine,
		Audit:       auditLogger,
		DB:          pool,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")

	return nil
}
