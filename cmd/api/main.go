package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizhub-api/internal/config"
	"github.com/noah-isme/quizhub-api/internal/database"
	"github.com/noah-isme/quizhub-api/internal/events"
	"github.com/noah-isme/quizhub-api/internal/handler"
	"github.com/noah-isme/quizhub-api/internal/middleware"
	"github.com/noah-isme/quizhub-api/internal/repository"
	"github.com/noah-isme/quizhub-api/internal/router"
	"github.com/noah-isme/quizhub-api/internal/service"
	cloud "github.com/noah-isme/quizhub-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, stats caching disabled")
		redisClient = nil
	}

	natsConn, err := events.Connect(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, domain events disabled")
		natsConn = nil
	}
	var publisher events.Publisher = events.Noop{}
	if natsConn != nil {
		publisher = events.NewNATSPublisher(natsConn, cfg.NATSSubjectPrefix, logger)
	}

	var materials service.MaterialStorage
	if cfg.CloudinaryEnabled() {
		store, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		materials = store
	} else {
		logger.Info().Msg("cloudinary not configured, material uploads disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	statsService := service.NewStatsService(statsRepo, userRepo, redisClient, cfg.StatsCacheTTL, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTTTL, logger)
	quizService := service.NewQuizService(quizRepo, userRepo, validate, service.QuizServiceOptions{
		CodeLength: cfg.QuizCodeLength,
		Activity:   activityService,
		Events:     publisher,
		Stats:      statsService,
	}, logger)
	questionService := service.NewQuestionService(quizRepo, questionRepo, userRepo, validate, logger)
	materialService := service.NewMaterialService(quizRepo, userRepo, materials, cfg.MaterialMaxSizeMB, logger)
	enrollmentService := service.NewEnrollmentService(quizRepo, enrollmentRepo, attemptRepo, validate, publisher, statsService, logger)
	attemptService := service.NewAttemptService(service.AttemptServiceDeps{
		Quizzes:     quizRepo,
		Questions:   questionRepo,
		Enrollments: enrollmentRepo,
		Attempts:    attemptRepo,
	}, validate, publisher, statsService, logger)
	adminUserService := service.NewAdminUserService(userRepo, validate, activityService, statsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaterialMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DB:                   db,
		AuthHandler:          handler.NewAuthHandler(authService, logger),
		QuizHandler:          handler.NewQuizHandler(quizService, questionService, materialService, logger),
		StudentHandler:       handler.NewStudentHandler(enrollmentService, attemptService, logger),
		AttemptHandler:       handler.NewAttemptHandler(attemptService, logger),
		StatsHandler:         handler.NewStatsHandler(statsService, logger),
		AdminUserHandler:     handler.NewAdminUserHandler(adminUserService, logger),
		AdminActivityHandler: handler.NewAdminActivityHandler(activityService, logger),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("driver", cfg.DatabaseDriver).Msg("server starting")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger, redisClient, natsConn)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.AppEnv == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger, redisClient *redis.Client, natsConn *nats.Conn) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info().Msg("server stopped")
}
