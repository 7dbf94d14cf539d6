package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/exam-grading-service/internal/cache"
	"github.com/SAP-F-2025/exam-grading-service/internal/events"
	"github.com/SAP-F-2025/exam-grading-service/internal/grading"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
	"github.com/SAP-F-2025/exam-grading-service/internal/validator"
)

// ServiceManagerConfig holds the dependencies shared by all services
type ServiceManagerConfig struct {
	Repository   repositories.Repository
	Engine       *grading.Engine
	CacheManager *cache.CacheManager
	Publisher    events.EventPublisher
	Logger       *slog.Logger
	Validator    *validator.Validator
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	config ServiceManagerConfig

	// Service instances
	gradingService GradingService
	exportService  ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(config ServiceManagerConfig) ServiceManager {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Validator == nil {
		config.Validator = validator.New()
	}
	if config.Engine == nil {
		config.Engine = grading.NewEngine(0, config.Logger)
	}
	return &serviceManager{config: config}
}

// Initialize sets up all services
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.config.Repository == nil {
		return fmt.Errorf("failed to initialize services: repository is required")
	}

	logger := sm.config.Logger
	logger.Info("Initializing service manager")

	sm.gradingService = NewGradingService(
		sm.config.Repository,
		sm.config.Engine,
		sm.config.CacheManager,
		sm.config.Publisher,
		logger.With("service", "grading"),
		sm.config.Validator,
	)
	logger.Info("Grading service initialized")

	sm.exportService = NewExportService(sm.config.Repository, logger.With("service", "export"), sm.config.Validator)
	logger.Info("Export service initialized")

	sm.initialized = true
	logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Grading() GradingService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.gradingService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
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

	if err := sm.config.Repository.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// Shutdown closes the event publisher; repository connections are owned by
// the repository manager
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.config.Logger.Info("Shutting down service manager")

	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			sm.config.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.config.Logger.Info("Service manager shut down completed")

	return nil
}
