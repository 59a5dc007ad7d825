package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hrscreen/resume-screener/internal/api/handler"
	"github.com/hrscreen/resume-screener/internal/api/router"
	"github.com/hrscreen/resume-screener/internal/config"
	"github.com/hrscreen/resume-screener/internal/orchestrator"
	"github.com/hrscreen/resume-screener/internal/scoring"
	"github.com/hrscreen/resume-screener/internal/store"
	"github.com/hrscreen/resume-screener/shared/logger"
	"github.com/hrscreen/resume-screener/shared/sqldb"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("SCREENER_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(&logger.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cfg.Logging.Output,
		EnableSource: cfg.Logging.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting resume screener",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := sqldb.NewClient(&sqldb.Config{
		Driver:          cfg.Database.Driver,
		Path:            cfg.Database.Path,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	jobStore := store.NewSQL(dbClient.DB())
	if err := jobStore.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	engine, err := initScoringEngine(&cfg.Scoring, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scoring engine: %w", err)
	}

	orch := orchestrator.New(&orchestrator.Config{
		Store:              jobStore,
		Engine:             engine,
		Logger:             appLogger.Logger,
		Concurrency:        cfg.Worker.Concurrency,
		ScoringConcurrency: cfg.Worker.ScoringConcurrency,
	})

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.SetupRouter(&handler.Dependencies{
		Logger:       appLogger.Logger,
		Store:        jobStore,
		Orchestrator: orch,
		MaxFiles:     cfg.Upload.MaxFiles,
		Health:       dbClient,
	}, cfg.Server.CORSOrigins)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("Resume screener is running",
		slog.String("address", addr),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initScoringEngine wires the remote scoring client when one is configured;
// otherwise the engine runs on the keyword fallback alone.
func initScoringEngine(cfg *config.ScoringConfig, logger *slog.Logger) (*scoring.Engine, error) {
	if cfg.BaseURL == "" {
		logger.Warn("No scoring service configured, using keyword fallback only")
		return scoring.NewEngine(nil, logger), nil
	}

	remote, err := scoring.NewRemoteClient(scoring.RemoteConfig{
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		APIKey:         cfg.APIKey,
		Timeout:        cfg.Timeout,
		MaxJDChars:     cfg.MaxJDChars,
		MaxResumeChars: cfg.MaxResumeChars,
	}, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Remote scoring service configured",
		slog.String("base_url", cfg.BaseURL),
		slog.String("model", cfg.Model),
		slog.Duration("timeout", cfg.Timeout),
	)
	return scoring.NewEngine(remote, logger), nil
}
