package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/johnquangdev/meeting-processor/docs"
	"github.com/johnquangdev/meeting-processor/internal/adapter/handler"
	"github.com/johnquangdev/meeting-processor/internal/adapter/repository"
	"github.com/johnquangdev/meeting-processor/internal/domain/repositories"
	"github.com/johnquangdev/meeting-processor/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-processor/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-processor/internal/infrastructure/external/assemblyai"
	"github.com/johnquangdev/meeting-processor/internal/infrastructure/external/jira"
	httpmw "github.com/johnquangdev/meeting-processor/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-processor/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-processor/internal/usecase/idempotency"
	"github.com/johnquangdev/meeting-processor/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-processor/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-processor/internal/usecase/scheduler"
	pkgai "github.com/johnquangdev/meeting-processor/pkg/ai"
	"github.com/johnquangdev/meeting-processor/pkg/config"
	"github.com/johnquangdev/meeting-processor/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/meeting-processor/pkg/validator"
)

// @title           Meeting Processor API
// @version         1.0
// @description     Turns ended meeting transcripts into summaries, action items and tracker issues.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize persistence
	logger.Info("📦 Initializing store", zap.String("driver", cfg.Database.Driver))
	meetings, logs, db, closers := mustStore(cfg, logger)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("close failed", zap.Error(err))
			}
		}
	}()
	if db != nil {
		defer func() {
			if err := database.CloseDB(db); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
			}
		}()
	}

	tracker := idempotency.NewTracker(meetings)

	// Initialize collaborators
	logger.Info("🤖 Initializing collaborators...")
	groqClient := pkgai.NewGroqClient(cfg.Groq)

	var issues pipeline.IssueCreator
	if cfg.JiraConfigured() {
		issues = jira.NewClient(cfg.Jira, logger)
		logger.Info("✅ Jira issue creation enabled", zap.String("project", cfg.Jira.ProjectKey))
	} else {
		logger.Warn("⚠️  Jira not configured; CREATE_ISSUES will be skipped")
	}

	executor := pipeline.NewExecutor(
		groqClient,
		groqClient,
		issues,
		meetings,
		logs,
		pipeline.Config{
			StageTimeout: cfg.Pipeline.StageTimeout,
			LogStarted:   cfg.Pipeline.LogStarted,
		},
		logger,
	)
	meetingService := meeting.NewMeetingService(executor, tracker, meetings, logs, logger)

	// Initialize scheduler
	source, err := newTranscriptSource(cfg, meetings, logger)
	if err != nil {
		logger.Fatal("Failed to initialize transcript source", zap.Error(err))
	}
	sched := scheduler.NewScheduler(source, executor, tracker, scheduler.Config{
		PollInterval:  cfg.Scheduler.PollInterval,
		MaxConcurrent: cfg.Scheduler.MaxConcurrent,
		FetchTimeout:  cfg.Scheduler.FetchTimeout,
		RunTimeout:    cfg.Pipeline.RunTimeout,
	}, logger)
	if cfg.Scheduler.AutoStart {
		sched.Start()
	}

	// Initialize Echo instance
	e := newEcho(cfg, logger)

	var authMW echo.MiddlewareFunc
	if cfg.JWT.AccessSecret != "" {
		authMW = httpmw.EchoAuth(jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.Issuer))
	} else {
		logger.Warn("⚠️  JWT_ACCESS_SECRET not set; control API is unauthenticated")
	}

	router := handler.NewRouter(
		cfg,
		handler.NewMeetingHandler(meetingService, logger),
		handler.NewSchedulerHandler(sched, logger),
		handler.NewWebhookHandler(sched, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, cfg.AssemblyAI.WebhookSecret, logger),
		authMW,
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down...")

	// stop ticking and drain runs before the store closes
	sched.Stop()
	sched.Wait()
	logger.Info("✅ Scheduler stopped")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
	}

	logger.Info("✅ Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Server.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newEcho(cfg *config.Config, logger *zap.Logger) *echo.Echo {
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http.request",
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	return e
}

// mustStore builds the meeting and log repositories for the configured
// drivers. The meeting repository is wrapped with the completion cache.
func mustStore(cfg *config.Config, logger *zap.Logger) (repositories.MeetingRepository, repositories.ProcessingLogRepository, *gorm.DB, []io.Closer) {
	var (
		meetings repositories.MeetingRepository
		logs     repositories.ProcessingLogRepository
		db       *gorm.DB
		closers  []io.Closer
	)

	switch cfg.Database.Driver {
	case config.StoreDriverPostgres:
		var err error
		db, err = database.NewPostgresDB(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(db, logger); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
		} else {
			logger.Info("🔄 Skipping migrations; run cmd/migrate to manage the schema")
		}
		meetings = repository.NewMeetingRepository(db)
		logs = repository.NewProcessingLogRepository(db)
	default:
		logger.Warn("⚠️  Using in-memory store; records are lost on restart")
		meetings = repository.NewMemoryMeetingRepository()
		logs = repository.NewMemoryLogRepository()
	}

	var completion cache.CompletionCache
	switch cfg.Redis.Driver {
	case config.CacheDriverRedis:
		client, err := cache.NewRedisClient(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		closers = append(closers, client)
		completion = cache.NewRedisCompletionCache(client, cfg.Redis.TTL)
	default:
		mem := cache.NewMemoryStore(cfg.Redis.TTL)
		closers = append(closers, mem)
		completion = mem
	}

	return repository.NewCachedMeetingRepository(meetings, completion, logger), logs, db, closers
}

func newTranscriptSource(cfg *config.Config, completed repositories.MeetingRepository, logger *zap.Logger) (scheduler.TranscriptSource, error) {
	switch cfg.Scheduler.TranscriptSource {
	case config.TranscriptSourceAssemblyAI:
		logger.Info("🎙️ Transcript source: AssemblyAI")
		return assemblyai.NewTranscriptSource(cfg.AssemblyAI, completed, logger), nil
	default:
		logger.Info("🗄️ Transcript source: MinIO", zap.String("bucket", cfg.Storage.BucketName))
		return storage.NewMinIOClient(&cfg.Storage, completed, logger)
	}
}
