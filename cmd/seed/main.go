// Command seed populates the database with an initial admin user and a demo
// approval template so a fresh deployment is usable immediately. Safe to run
// more than once: existing records are left untouched.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/application/service"
	"github.com/soglasovach/soglasovach/internal/config"
	"github.com/soglasovach/soglasovach/internal/domain/workflow"
	"github.com/soglasovach/soglasovach/internal/infrastructure/persistence/repository"
	"github.com/soglasovach/soglasovach/internal/infrastructure/persistence/sqlite"
	"github.com/soglasovach/soglasovach/pkg/database"
	"github.com/soglasovach/soglasovach/pkg/utils"
)

func main() {
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

	db := sqlite.NewDB(sqlDB, logger)
	userRepo := repository.NewUserRepository(sqlDB, logger)
	templateRepo := repository.NewTemplateRepository(sqlDB, logger)
	stepRepo := repository.NewStepRepository(sqlDB, logger)

	userService := service.NewUserService(userRepo, logger)
	templateService := service.NewTemplateService(templateRepo, stepRepo, db, logger)

	ctx := context.Background()

	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@soglasovach.local"
	}
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme"
		logger.Warn("SEED_ADMIN_PASSWORD not set, using default password")
	}

	admin, err := userService.Register(ctx, adminEmail, adminPassword, "Administrator")
	switch {
	case err == nil:
		logger.Info("Admin user created",
			zap.String("user_id", admin.ID),
			zap.String("email", adminEmail))
	case errors.Is(err, workflow.ErrConflict):
		logger.Info("Admin user already exists", zap.String("email", adminEmail))
	default:
		logger.Fatal("Failed to create admin user", zap.Error(err))
	}

	templateName := "Document Approval"
	if _, err := templateService.GetTemplateByName(ctx, templateName); err == nil {
		logger.Info("Demo template already exists", zap.String("name", templateName))
		return
	} else if !errors.Is(err, workflow.ErrNotFound) {
		logger.Fatal("Failed to look up demo template", zap.Error(err))
	}

	template, err := templateService.CreateTemplate(ctx, templateName,
		"Two-stage review followed by final sign-off",
		[]service.StepInput{
			{Name: "Manager Review", Description: "First-line manager reviews the request", Order: 1},
			{Name: "Compliance Review", Description: "Compliance checks policy conformance", Order: 2},
			{Name: "Final Sign-off", Description: "Director signs off on the request", Order: 3},
		})
	if err != nil {
		logger.Fatal("Failed to create demo template", zap.Error(err))
	}

	logger.Info("Demo template created",
		zap.String("template_id", template.ID),
		zap.String("name", template.Name),
		zap.Int("steps", len(template.Steps)))
}
