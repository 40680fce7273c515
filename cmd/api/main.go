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
	"github.com/rs/zerolog"

	"github.com/apsas-edu/apsas-api/internal/cache"
	"github.com/apsas-edu/apsas-api/internal/config"
	"github.com/apsas-edu/apsas-api/internal/database"
	"github.com/apsas-edu/apsas-api/internal/export"
	"github.com/apsas-edu/apsas-api/internal/handler"
	"github.com/apsas-edu/apsas-api/internal/middleware"
	"github.com/apsas-edu/apsas-api/internal/models"
	"github.com/apsas-edu/apsas-api/internal/observability"
	"github.com/apsas-edu/apsas-api/internal/repository"
	"github.com/apsas-edu/apsas-api/internal/router"
	"github.com/apsas-edu/apsas-api/internal/service"
	"github.com/apsas-edu/apsas-api/pkg/ai"
	cloud "github.com/apsas-edu/apsas-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.CourseElement{},
		&models.GradingGroup{},
		&models.AssessmentTemplate{},
		&models.AssessmentPaper{},
		&models.AssessmentQuestion{},
		&models.RubricItem{},
		&models.Submission{},
		&models.GradingSession{},
		&models.GradeItem{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	store := cache.NewNoopStore()
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient, logger)
	}

	mongoClient, err := database.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var events service.EventPublisher
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Close()
		events = conn
	}

	evaluator := buildEvaluator(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	groupRepo := repository.NewGradingGroupRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	sessionRepo := repository.NewGradingSessionRepository(db)
	itemRepo := repository.NewGradeItemRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	releaseRepo := repository.NewAppReleaseRepository(mongoClient.Database(cfg.MongoDatabase).Collection("app_releases"))

	overviewService := service.NewGradingOverviewService(groupRepo, submissionRepo, sessionRepo, itemRepo, store, cfg.OverviewCacheTTL, logger)
	reportService := service.NewGradeReportService(groupRepo, submissionRepo, sessionRepo, itemRepo, assessmentRepo, export.NewExcelReportWriter(), logger)
	submissionService := service.NewSubmissionService(submissionRepo, groupRepo, validate, uploader, store, logger)
	gradingService := service.NewGradingSessionService(sessionRepo, itemRepo, submissionRepo, groupRepo, assessmentRepo, evaluator, events, store, validate, logger)
	releaseService := service.NewAppReleaseService(releaseRepo, validate, logger)

	gradingGroupHandler := handler.NewGradingGroupHandler(overviewService, reportService, submissionService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	gradingSessionHandler := handler.NewGradingSessionHandler(gradingService, logger)
	appReleaseHandler := handler.NewAppReleaseHandler(releaseService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GradingGroupHandler:   gradingGroupHandler,
		SubmissionHandler:     submissionHandler,
		GradingSessionHandler: gradingSessionHandler,
		AppReleaseHandler:     appReleaseHandler,
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildEvaluator(cfg config.Config, logger zerolog.Logger) ai.Evaluator {
	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn().Msg("openai api key missing, ai grading disabled")
			return nil
		}
		evaluator, err := ai.NewOpenAIEvaluator(ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Logger: logger})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to build openai evaluator, ai grading disabled")
			return nil
		}
		return evaluator
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			logger.Warn().Msg("anthropic api key missing, ai grading disabled")
			return nil
		}
		evaluator, err := ai.NewAnthropicEvaluator(ai.AnthropicConfig{APIKey: cfg.AnthropicAPIKey})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to build anthropic evaluator, ai grading disabled")
			return nil
		}
		return evaluator
	default:
		logger.Warn().Str("provider", cfg.AIProvider).Msg("unknown ai provider, ai grading disabled")
		return nil
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
