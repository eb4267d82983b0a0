package main

import (
	"context"
	"fmt"

	"github.com/threepillars/storefront/internal/config"
	"github.com/threepillars/storefront/internal/handlers"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/internal/utils"
	"github.com/threepillars/storefront/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg            *config.Config
	taskQueue      services.TaskQueue
	worker         *services.Worker
	cleanupService *services.CleanupService

	authHandler     *handlers.AuthHandler
	companyHandler  *handlers.CompanyHandler
	settingsHandler *handlers.SettingsHandler
	catalogHandler  *handlers.CatalogHandler
	cartHandler     *handlers.CartHandler
	orderHandler    *handlers.OrderHandler
	yocoHandler     *handlers.YocoHandler
	courierHandler  *handlers.CourierHandler
	pushHandler     *handlers.PushHandler
	newsHandler     *handlers.NewsHandler
	auditHandler    *handlers.AuditHandler
	configHandler   *handlers.SystemConfigHandler
	healthHandler   *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	db := models.GetDB()

	// Audit trail writes through a package-level logger
	services.InitAuditLogger(db)

	// Delivery processor shared by the sync queue and the async worker
	processor := newDispatchProcessor()

	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(processor)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(processor)
			if err := worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start async worker")
			}
		}
	}

	// Hourly cart expiry and nightly audit purge
	cleanupService := services.NewCleanupService(db)
	cleanupService.StartScheduler()

	// Create default admin user
	authService := services.NewAuthService(db, &cfg.JWT)
	if err := authService.EnsureAdminUser("admin", "admin123"); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:             cfg,
		taskQueue:       taskQueue,
		worker:          worker,
		cleanupService:  cleanupService,
		authHandler:     handlers.NewAuthHandler(db, cfg),
		companyHandler:  handlers.NewCompanyHandler(db),
		settingsHandler: handlers.NewSettingsHandler(db),
		catalogHandler:  handlers.NewCatalogHandler(db),
		cartHandler:     handlers.NewCartHandler(db),
		orderHandler:    handlers.NewOrderHandler(db),
		yocoHandler:     handlers.NewYocoHandler(db),
		courierHandler:  handlers.NewCourierHandler(db),
		pushHandler:     handlers.NewPushHandler(db),
		newsHandler:     handlers.NewNewsHandler(db),
		auditHandler:    handlers.NewAuditHandler(db),
		configHandler:   handlers.NewSystemConfigHandler(db),
		healthHandler:   handlers.NewHealthHandler(),
	}
}

// newDispatchProcessor routes delivery tasks to push or email sending.
func newDispatchProcessor() func(context.Context, *services.DispatchTask) error {
	db := models.GetDB()
	pushService := services.NewPushService(db)
	emailService := services.NewEmailService(db)
	orderService := services.NewOrderService(db)

	return func(ctx context.Context, task *services.DispatchTask) error {
		switch task.Kind {
		case services.DispatchPush:
			return pushService.Deliver(ctx, task.MessageID)
		case services.DispatchOrderEmail:
			order, err := orderService.Get(task.CompanyID, task.OrderID)
			if err != nil {
				return err
			}
			var company models.Company
			if err := db.First(&company, "id = ?", task.CompanyID).Error; err != nil {
				return err
			}
			return emailService.SendOrderConfirmation(order, &company)
		default:
			return fmt.Errorf("unknown dispatch kind %q", task.Kind)
		}
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.cleanupService.StopScheduler()
	logger.Info().Msg("Schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
