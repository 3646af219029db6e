package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/darsa-school/darsa-api/internal/config"
	"github.com/darsa-school/darsa-api/internal/database"
	"github.com/darsa-school/darsa-api/internal/handler"
	"github.com/darsa-school/darsa-api/internal/middleware"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/observability"
	"github.com/darsa-school/darsa-api/internal/repository"
	"github.com/darsa-school/darsa-api/internal/router"
	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/pkg/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "darsa-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.AdminPermission{},
		&models.Semester{},
		&models.SchoolClass{},
		&models.Subject{},
		&models.Student{},
		&models.Teacher{},
		&models.StudentScore{},
		&models.StudentAttendance{},
		&models.TeacherAttendance{},
		&models.Document{},
		&models.ActivityLog{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	store, err := storage.NewLocal(cfg.DocumentRoot, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise document storage")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	permissionService := service.NewPermissionService(permissionRepo, userRepo, activityService, logger)
	userService := service.NewUserService(userRepo, studentRepo, teacherRepo, validate, activityService, logger)
	authService := service.NewAuthService(userRepo, service.NewRedisTokenStore(redisClient), service.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}, validate, logger)
	academicsService := service.NewAcademicsService(semesterRepo, classRepo, subjectRepo, studentRepo, validate, logger)
	scoreService := service.NewScoreService(scoreRepo, studentRepo, subjectRepo, teacherRepo, validate, activityService, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentRepo, teacherRepo, validate, activityService, logger)
	documentService := service.NewDocumentService(documentRepo, studentRepo, teacherRepo, store, cfg.MaxUploadBytes, validate, activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:   cfg.AppName,
		BodyLimit: int(cfg.MaxUploadBytes) + 1024*1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, userService, logger),
		UserHandler:       handler.NewUserHandler(userService, permissionService, cfg.PendingExpiry, logger),
		PermissionHandler: handler.NewPermissionHandler(permissionService, logger),
		AcademicsHandler:  handler.NewAcademicsHandler(academicsService, logger),
		ScoreHandler:      handler.NewScoreHandler(scoreService, permissionService, logger),
		AttendanceHandler: handler.NewAttendanceHandler(attendanceService, permissionService, logger),
		DocumentHandler:   handler.NewDocumentHandler(documentService, permissionService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		HealthHandler:     handler.NewHealthHandler(db, redisClient),
		PermissionService: permissionService,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.ExpirySweepCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		deleted, err := userService.ExpirePending(ctx, cfg.PendingExpiry)
		if err != nil {
			logger.Error().Err(err).Msg("pending account expiry sweep failed")
			return
		}
		observability.ObserveExpiredPending(deleted)
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule expiry sweep")
	}
	sweeper.Start()

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	logger.Info().Str("addr", cfg.HTTPAddress()).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	sweeper.Stop()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close redis client")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
