package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	migrate "github.com/rubenv/sql-migrate"

	_ "github.com/johnquangdev/talk-assistant/docs"
	pkgvalidator "github.com/johnquangdev/talk-assistant/pkg/validator"

	"github.com/johnquangdev/talk-assistant/internal/adapter/handler"
	"github.com/johnquangdev/talk-assistant/internal/adapter/repository"
	"github.com/johnquangdev/talk-assistant/internal/adapter/stream"
	"github.com/johnquangdev/talk-assistant/internal/infrastructure/checkpoint"
	"github.com/johnquangdev/talk-assistant/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/talk-assistant/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/talk-assistant/internal/infrastructure/storage"
	"github.com/johnquangdev/talk-assistant/internal/usecase/archive"
	"github.com/johnquangdev/talk-assistant/internal/usecase/gateway"
	"github.com/johnquangdev/talk-assistant/internal/usecase/pipeline"
	pkgai "github.com/johnquangdev/talk-assistant/pkg/ai"
	"github.com/johnquangdev/talk-assistant/pkg/config"
	"github.com/johnquangdev/talk-assistant/pkg/jwt"
)

// @title           Talk Assistant API
// @version         1.0
// @description     Live talk pipeline: streams audio chunks in and derives transcripts, chapters, summaries, illustrations, vocabulary and attendee questions.

// @contact.name   API Support
// @contact.email  support@infoquang.id.vn

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

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	logger.Info("🔧 Initializing dependencies...")

	// Model clients
	logger.Info("🤖 Initializing AI clients...", zap.String("transcriber", cfg.Pipeline.Transcriber))
	openaiClient := pkgai.NewOpenAIClient(&cfg.OpenAI)
	clients := gateway.Clients{
		Chat:        openaiClient,
		Images:      openaiClient,
		Transcriber: openaiClient,
	}
	if cfg.Pipeline.Transcriber == "assemblyai" {
		clients.Transcriber = pkgai.NewAssemblyAIClient(&cfg.AssemblyAI)
	}
	speechClient, err := pkgai.NewTextToSpeechClient(ctx, &cfg.Speech)
	if err != nil {
		logger.Warn("⚠️  Text-to-speech disabled", zap.Error(err))
	} else {
		clients.Speech = speechClient
	}

	gw := gateway.New(clients, gateway.Options{
		Attempts:      cfg.Pipeline.CallAttempts,
		CallTimeout:   cfg.Pipeline.CallTimeout,
		Rates:         pkgai.DefaultRates(),
		ChatModel:     cfg.OpenAI.ChatModel,
		QuestionModel: cfg.OpenAI.QuestionModel,
		Logger:        logger.Named("gateway"),
	})

	healthChecks := map[string]handler.HealthChecker{}

	// Object storage for generated media
	var media pipeline.MediaStore
	if cfg.Storage.Enabled {
		logger.Info("🪣 Connecting to object storage...", zap.String("endpoint", cfg.Storage.Endpoint))
		minioClient, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			logger.Fatal("Failed to connect to object storage", zap.Error(err))
		}
		media = minioClient
		healthChecks["storage"] = minioClient.Ping
	} else {
		logger.Info("🪣 Object storage disabled; media stays in memory")
	}

	// Snapshot checkpoints
	observers := []pipeline.Observer{}
	logger.Info("💾 Opening checkpoint store...", zap.String("backend", cfg.Checkpoint.Backend))
	store, err := checkpoint.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open checkpoint store", zap.Error(err))
	}
	if store != nil {
		observers = append(observers, checkpoint.NewObserver(store, 0, logger.Named("checkpoint")))
	}

	// Archive persistence
	var persister *archive.Persister
	if cfg.Database.Enabled {
		logger.Info("📦 Connecting to database...")
		db, err := database.NewPostgresDB(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer database.CloseDB(db, logger)

		if cfg.Database.AutoMigrate {
			if cfg.Server.Environment == "production" {
				logger.Fatal("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE and run cmd/migrate instead.")
			}
			logger.Info("🔄 Applying migrations (development only) ...")
			if _, err := database.Migrate(db, migrate.Up, 0, logger); err != nil {
				logger.Fatal("Failed to apply migrations", zap.Error(err))
			}
		}

		healthChecks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}

		persister = archive.NewPersister(repository.NewArchiveRepository(db), archive.DefaultFlushInterval, logger.Named("archive"))
		persister.Start()
		observers = append(observers, persister)
	} else {
		logger.Info("📦 Database disabled; recordings are not archived")
	}

	// Live event stream
	hub := stream.NewHub(stream.DefaultBuffer, logger.Named("stream"))
	observers = append(observers, hub)

	// Pipeline
	logger.Info("⚙️  Initializing pipeline...",
		zap.Int("chunks_per_chapter", cfg.Pipeline.ChunksPerChapter),
		zap.Int("chunks_per_illustration", cfg.Pipeline.ChunksPerIllustration),
	)
	orchestrator, err := pipeline.NewOrchestrator(pipeline.Dependencies{
		Gateway:   gw,
		Media:     media,
		Observers: observers,
		Logger:    logger.Named("pipeline"),
	}, pipeline.OptionsFromConfig(cfg))
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}

	// API auth
	var authMW echo.MiddlewareFunc
	if cfg.JWT.AccessSecret != "" {
		logger.Info("🔑 Initializing JWT manager...")
		authMW = httpmw.EchoAuth(jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer), logger)
	} else {
		logger.Warn("⚠️  JWT_ACCESS_SECRET not set; API is unauthenticated")
		authMW = httpmw.EchoAuth(nil, logger)
	}

	logger.Info("🛣️  Setting up routes...")
	recordingHandler := handler.NewRecordingHandler(orchestrator, logger)
	eventsHandler := handler.NewEventsHandler(hub, orchestrator, cfg.Server.AllowedOrigins, logger)
	router := handler.NewRouter(cfg, recordingHandler, eventsHandler, authMW)
	for name, check := range healthChecks {
		router.AddHealthCheck(name, check)
	}
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("🚀 Starting server", zap.String("addr", addr), zap.String("environment", cfg.Server.Environment))
		logger.Info(fmt.Sprintf("🔗 Health check: http://%s/health", addr))

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
	}
	if err := orchestrator.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Pipeline tasks did not finish", zap.Error(err))
	}
	if persister != nil {
		persister.Stop(shutdownCtx)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close checkpoint store", zap.Error(err))
		}
	}

	logger.Info("✅ Server stopped gracefully")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
