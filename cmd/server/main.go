package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/application/service"
	"github.com/soglasovach/soglasovach/internal/application/workflow"
	"github.com/soglasovach/soglasovach/internal/auth"
	"github.com/soglasovach/soglasovach/internal/config"
	"github.com/soglasovach/soglasovach/internal/infrastructure/persistence/repository"
	"github.com/soglasovach/soglasovach/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/soglasovach/soglasovach/internal/interfaces/http"
	"github.com/soglasovach/soglasovach/internal/storage"
	"github.com/soglasovach/soglasovach/pkg/database"
	"github.com/soglasovach/soglasovach/pkg/utils"
)

func main() {
	// Optional .env for local development
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Soglasovach approval workflow service",
		zap.Int("port", cfg.Server.Port))

	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer sqlDB.Close()

	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Storage.BaseDir, 0755); err != nil {
		logger.Fatal("Failed to create object store directory", zap.Error(err))
	}

	db := sqlite.NewDB(sqlDB, logger)

	userRepo := repository.NewUserRepository(sqlDB, logger)
	templateRepo := repository.NewTemplateRepository(sqlDB, logger)
	stepRepo := repository.NewStepRepository(sqlDB, logger)
	instanceRepo := repository.NewInstanceRepository(sqlDB, logger)
	historyRepo := repository.NewHistoryRepository(sqlDB, logger)
	attachmentRepo := repository.NewAttachmentRepository(sqlDB, logger)

	objectStore := storage.NewLocalObjectStore(cfg.Storage.BaseDir, logger)
	tokens := auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry)

	templateService := service.NewTemplateService(templateRepo, stepRepo, db, logger)
	userService := service.NewUserService(userRepo, logger)
	attachmentService := service.NewAttachmentService(attachmentRepo, instanceRepo, objectStore, logger)

	engine := workflow.NewEngine(
		templateRepo,
		stepRepo,
		instanceRepo,
		historyRepo,
		attachmentRepo,
		userRepo,
		db,
		logger,
	)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		templateService,
		engine,
		attachmentService,
		userService,
		tokens,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}
