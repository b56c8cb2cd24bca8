package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/handlers"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/seed"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/SAP-F-2025/quiz-service/pkg"
)

const usage = `usage: quiz-service [command]

commands:
  serve         run the HTTP API (default)
  create-admin  create the admin account from ADMIN_USERNAME / ADMIN_EMAIL
  seed          load demo users, catalog and attempts`

// app holds everything the commands share
type app struct {
	cfg            *config.Config
	logger         *slog.Logger
	db             repositories.RepositoryManager
	validator      *validator.Validator
	serviceManager services.ServiceManager
}

func main() {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(slogLogger)

	switch command {
	case "serve":
		err = runServer(cfg, slogLogger)
	case "create-admin":
		err = runCreateAdmin(cfg, slogLogger)
	case "seed":
		err = runSeed(cfg, slogLogger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		slogLogger.Error("Command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

// newApp connects to storage and builds the services
func newApp(cfg *config.Config, logger *slog.Logger, publisher events.EventPublisher) (*app, error) {
	db, err := pkg.InitDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Redis is optional; without it every cache call is a no-op
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		return nil, err
	}

	v := validator.New()

	serviceManager := services.NewServiceManager(
		repoManager.GetRepository(),
		cache.NewCacheManager(redisClient),
		publisher,
		logger,
		v,
		services.ServiceManagerConfig{ReportCacheTTL: cfg.ReportCacheTTL},
	)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &app{
		cfg:            cfg,
		logger:         logger,
		db:             repoManager,
		validator:      v,
		serviceManager: serviceManager,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.serviceManager.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to shutdown services", "error", err)
	}
	if err := a.db.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to close repositories", "error", err)
	}
}

// newPublisher publishes to Kafka when brokers are configured, otherwise to an
// in-process channel whose events are logged
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (events.EventPublisher, error) {
	if len(cfg.KafkaBrokers) > 0 {
		return events.NewKafkaEventPublisher(cfg.KafkaBrokers, cfg.EventsTopic, logger)
	}

	publisher, pubSub := events.NewGoChannelEventPublisher(cfg.EventsTopic, logger)
	messages, err := pubSub.Subscribe(ctx, cfg.EventsTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", cfg.EventsTopic, err)
	}
	go logEvents(messages, logger)

	return publisher, nil
}

func logEvents(messages <-chan *message.Message, logger *slog.Logger) {
	for msg := range messages {
		logger.Info("Event received",
			"event_id", msg.UUID,
			"event_type", msg.Metadata.Get("event_type"),
			"payload", string(msg.Payload),
		)
		msg.Ack()
	}
}

func runServer(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger, publisher)
	if err != nil {
		_ = publisher.Close()
		return err
	}

	resolver, err := handlers.NewIdentityResolver(cfg, a.serviceManager.User())
	if err != nil {
		a.close(context.Background())
		return err
	}
	if !cfg.Casdoor.Enabled() {
		logger.Warn("Casdoor not configured, trusting the X-User-ID header", "environment", cfg.Environment)
	}

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	handlerLogger := utils.NewSlogLogger(logger)
	handlers.SetupMiddleware(router, handlerLogger)
	handlers.NewHandlerManager(a.serviceManager, a.validator, handlerLogger, resolver).SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		a.close(context.Background())
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	a.close(shutdownCtx)

	logger.Info("Server exited")
	return nil
}

func runCreateAdmin(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger, publisher)
	if err != nil {
		_ = publisher.Close()
		return err
	}
	defer a.close(ctx)

	admin, created, err := a.serviceManager.User().EnsureAdmin(ctx, services.AdminAccount{
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		FullName: cfg.Admin.FullName,
	})
	if err != nil {
		return err
	}

	switch {
	case created:
		logger.Info("Admin created", "user_id", admin.ID, "username", admin.Username)
	case admin == nil:
		// The email belongs to a different account
		logger.Warn("Admin email already in use", "email", cfg.Admin.Email)
	default:
		logger.Info("Admin already exists", "user_id", admin.ID, "username", admin.Username)
	}
	return nil
}

func runSeed(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	publisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger, publisher)
	if err != nil {
		_ = publisher.Close()
		return err
	}
	defer a.close(ctx)

	seeder := seed.NewSeeder(a.db.GetRepository(), a.validator, logger)
	if _, err := seeder.Run(ctx); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	return nil
}
