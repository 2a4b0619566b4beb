package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/smart-edu-api/api/swagger"
	"github.com/noah-isme/smart-edu-api/internal/fixtures"
	"github.com/noah-isme/smart-edu-api/internal/handler"
	"github.com/noah-isme/smart-edu-api/internal/models"
	"github.com/noah-isme/smart-edu-api/internal/repository"
	"github.com/noah-isme/smart-edu-api/internal/service"
	"github.com/noah-isme/smart-edu-api/pkg/cache"
	"github.com/noah-isme/smart-edu-api/pkg/config"
	"github.com/noah-isme/smart-edu-api/pkg/database"
	"github.com/noah-isme/smart-edu-api/pkg/export"
	"github.com/noah-isme/smart-edu-api/pkg/jobs"
	"github.com/noah-isme/smart-edu-api/pkg/logger"
	"github.com/noah-isme/smart-edu-api/pkg/storage"
)

// @title Smart Education API
// @version 1.0.0
// @description Timetable, exam results, reports and school directory.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	var db *sqlx.DB
	if cfg.Directory.Enabled || cfg.Messaging.Enabled {
		conn, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer conn.Close() //nolint:errcheck
		if err := database.EnsureSchema(ctx, conn); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		db = conn
		checks["postgres"] = database.Check(db)
	}

	snapshots, closeSnapshots, err := snapshotStore(ctx, cfg, logr, checks)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	exporter := service.NewExportService(service.ExportRenderers{
		CSV: export.NewCSVExporter(cfg.Export.CSVDelimiter),
	}, metrics, logr)

	timetable, err := service.NewTimetableService(ctx, snapshots, exporter, metrics, logr)
	if err != nil {
		return fmt.Errorf("restore timetable: %w", err)
	}
	seed, err := fixtures.ExamResults(cfg.Exams.FixturePath)
	if err != nil {
		return fmt.Errorf("load exam fixtures: %w", err)
	}
	exams, err := service.NewExamResultService(ctx, snapshots, seed, cfg.Exams.PassThreshold, exporter, metrics, logr)
	if err != nil {
		return fmt.Errorf("restore exam results: %w", err)
	}
	courses, err := service.NewCourseService(ctx, snapshots, metrics, logr)
	if err != nil {
		return fmt.Errorf("restore courses: %w", err)
	}
	assignmentSeed, err := fixtures.Assignments()
	if err != nil {
		return fmt.Errorf("load assignment fixtures: %w", err)
	}
	assignments, err := service.NewAssignmentService(ctx, snapshots, assignmentSeed, metrics, logr)
	if err != nil {
		return fmt.Errorf("restore assignments: %w", err)
	}

	sources := service.DashboardSources{Exams: exams, Timetable: timetable}
	handlers := handler.Handlers{
		Timetable:   handler.NewTimetableHandler(timetable),
		Exams:       handler.NewExamHandler(exams),
		Courses:     handler.NewCourseHandler(courses),
		Assignments: handler.NewAssignmentHandler(assignments),
		Metrics:     handler.NewMetricsHandler(metrics, checks),
	}

	if cfg.Directory.Enabled {
		students := service.NewDirectoryService[models.Student](repository.NewStudentRepository(db), "students", metrics, logr)
		teachers := service.NewDirectoryService[models.Teacher](repository.NewTeacherRepository(db), "teachers", metrics, logr)
		admins := service.NewDirectoryService[models.Admin](repository.NewAdminRepository(db), "admins", metrics, logr)
		sources.Students, sources.Teachers, sources.Admins = students, teachers, admins
		handlers.Directory = map[string]handler.RouteRegistrar{
			students.Kind(): handler.NewDirectoryHandler[models.Student](students),
			teachers.Kind(): handler.NewDirectoryHandler[models.Teacher](teachers),
			admins.Kind():   handler.NewDirectoryHandler[models.Admin](admins),
		}
	}

	uploadsDir := ""
	if cfg.Messaging.Enabled {
		uploads, err := storage.NewLocalStorage(cfg.Uploads.Dir)
		if err != nil {
			return fmt.Errorf("prepare uploads: %w", err)
		}
		uploadsDir = uploads.Dir()

		validate := validator.New()
		messages := service.NewMessageService(repository.NewMessageRepository(db), uploads, validate, service.MessageServiceConfig{
			URLPrefix:   "/uploads/",
			MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
		}, logr)
		cleanup := jobs.NewPool("attachment-cleanup", service.CleanupHandler(uploads), jobs.PoolConfig{Workers: 1, Logger: logr})
		cleanup.Start(ctx)
		defer cleanup.Stop()
		messages.UseCleanupQueue(cleanup)

		notifications := service.NewNotificationService(repository.NewNotificationRepository(db), validate, logr)
		handlers.Messages = handler.NewMessageHandler(messages, notifications)
	}

	reports, err := service.NewReportService(ctx, snapshots, sources, metrics, logr)
	if err != nil {
		return fmt.Errorf("restore reports: %w", err)
	}
	handlers.Reports = handler.NewReportHandler(reports)

	r := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		UploadsDir:     uploadsDir,
	}, logr, metrics, handlers)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env),
			zap.String("snapshot_backend", cfg.Snapshot.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func snapshotStore(ctx context.Context, cfg *config.Config, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (service.SnapshotStore, func(), error) {
	switch cfg.Snapshot.Backend {
	case config.SnapshotBackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		checks["redis"] = cache.Check(client)
		store := repository.NewRedisSnapshotRepository(client, cfg.Snapshot.KeyPrefix, logr)
		return store, func() { _ = store.Close() }, nil
	case config.SnapshotBackendMemory:
		return repository.NewMemorySnapshotRepository(), func() {}, nil
	default:
		dir, err := storage.NewLocalStorage(cfg.Snapshot.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("prepare snapshot dir: %w", err)
		}
		return repository.NewFileSnapshotRepository(dir), func() {}, nil
	}
}
