package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	ReportCacheTTL time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo         repositories.Repository
	cacheManager *cache.CacheManager
	publisher    events.EventPublisher
	logger       *slog.Logger
	validator    *validator.Validator
	config       ServiceManagerConfig

	// Service instances
	attemptService   AttemptService
	studentService   StudentService
	dashboardService DashboardService
	exportService    ExportService
	catalogService   CatalogService
	userService      UserService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	config ServiceManagerConfig,
) ServiceManager {
	return &serviceManager{
		repo:         repo,
		cacheManager: cacheManager,
		publisher:    publisher,
		logger:       logger,
		validator:    validator,
		config:       config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.repo == nil {
		return fmt.Errorf("failed to initialize services: repository is required")
	}

	sm.logger.Info("Initializing service manager")

	sm.attemptService = NewAttemptService(sm.repo, sm.cacheManager, sm.publisher, sm.logger)
	sm.studentService = NewStudentService(sm.repo, sm.cacheManager, sm.logger, sm.config.ReportCacheTTL)
	sm.dashboardService = NewDashboardService(sm.repo, sm.cacheManager, sm.logger, sm.config.ReportCacheTTL)
	sm.exportService = NewExportService(sm.dashboardService, sm.logger)
	sm.catalogService = NewCatalogService(sm.repo, sm.logger)
	sm.userService = NewUserService(sm.repo, sm.cacheManager, sm.logger, sm.validator)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Attempt() AttemptService {
	sm.mustBeInitialized()
	return sm.attemptService
}

func (sm *serviceManager) Student() StudentService {
	sm.mustBeInitialized()
	return sm.studentService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mustBeInitialized()
	return sm.dashboardService
}

func (sm *serviceManager) Export() ExportService {
	sm.mustBeInitialized()
	return sm.exportService
}

func (sm *serviceManager) Catalog() CatalogService {
	sm.mustBeInitialized()
	return sm.catalogService
}

func (sm *serviceManager) User() UserService {
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
