package services

import (
	"github.com/robfig/cron/v3"
	"github.com/threepillars/storefront/pkg/logger"
	"gorm.io/gorm"
)

// CleanupService runs the nightly maintenance jobs: expiring stale carts
// and purging old audit rows.
type CleanupService struct {
	db            *gorm.DB
	cartSvc       *CartService
	auditSvc      *AuditService
	configSvc     *SystemConfigService
	cronScheduler *cron.Cron
}

func NewCleanupService(db *gorm.DB) *CleanupService {
	return &CleanupService{
		db:        db,
		cartSvc:   NewCartService(db),
		auditSvc:  NewAuditService(db),
		configSvc: NewSystemConfigService(db),
	}
}

func (s *CleanupService) StartScheduler() {
	s.cronScheduler = cron.New()

	// Carts hourly, audit purge nightly.
	if _, err := s.cronScheduler.AddFunc("0 * * * *", s.runCartExpiry); err != nil {
		logger.Errorf("[Cleanup] Failed to schedule cart expiry: %v", err)
	}
	if _, err := s.cronScheduler.AddFunc("30 2 * * *", s.runAuditPurge); err != nil {
		logger.Errorf("[Cleanup] Failed to schedule audit purge: %v", err)
	}

	s.cronScheduler.Start()
	logger.Infof("[Cleanup] Scheduler started")
}

func (s *CleanupService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

func (s *CleanupService) runCartExpiry() {
	expired, err := s.cartSvc.ExpireStale()
	if err != nil {
		logger.Errorf("[Cleanup] Cart expiry failed: %v", err)
		return
	}
	if expired > 0 {
		logger.Infof("[Cleanup] Expired %d stale carts", expired)
	}
}

func (s *CleanupService) runAuditPurge() {
	retention := s.configSvc.GetInt("audit_retention_days", 30)
	purged, err := s.auditSvc.Purge(retention)
	if err != nil {
		logger.Errorf("[Cleanup] Audit purge failed: %v", err)
		return
	}
	if purged > 0 {
		logger.Infof("[Cleanup] Purged %d audit rows older than %d days", purged, retention)
	}
}
