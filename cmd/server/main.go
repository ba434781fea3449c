package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/malqarni/sitepay/internal/application/service"
	"github.com/malqarni/sitepay/internal/config"
	"github.com/malqarni/sitepay/internal/infrastructure/persistence/repository"
	"github.com/malqarni/sitepay/internal/infrastructure/persistence/sqlite"
	httpadapter "github.com/malqarni/sitepay/internal/interfaces/http"
	"github.com/malqarni/sitepay/pkg/database"
	"github.com/malqarni/sitepay/pkg/utils"
)

func main() {
	// Local overrides for development; absent .env is fine
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
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

	logger.Info("Starting attendance payroll engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories and the transaction manager share one connection pool
	txManager := sqlite.NewDB(db.DB, logger)
	projectRepo := repository.NewProjectRepository(db.DB, logger)
	attendanceRepo := repository.NewAttendanceRepository(db.DB, logger)
	payrollRepo := repository.NewPayrollRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)

	serviceLogger := &zapLoggerAdapter{logger: logger.Sugar()}

	activityService := service.NewActivityService(auditRepo, serviceLogger)
	projectService := service.NewProjectService(projectRepo, activityService, txManager, serviceLogger)
	attendanceService := service.NewAttendanceService(attendanceRepo, projectRepo, activityService, txManager, serviceLogger)
	payrollService := service.NewPayrollService(payrollRepo, attendanceRepo, projectRepo, activityService, txManager, serviceLogger)
	reportService := service.NewReportService(payrollService, serviceLogger)

	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		attendanceService,
		payrollService,
		projectService,
		activityService,
		reportService,
		serviceLogger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// zapLoggerAdapter adapts zap's sugared logger to the service.Logger interface
type zapLoggerAdapter struct {
	logger *zap.SugaredLogger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Infow(msg, keysAndValues...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Errorw(msg, keysAndValues...)
}
