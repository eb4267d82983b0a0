package services

import (
	"time"

	"github.com/threepillars/storefront/internal/models"
	"gorm.io/gorm"
)

var auditDB *gorm.DB

// InitAuditLogger wires the persisted audit trail to the database. Audit
// writes are best-effort and never fail a request.
func InitAuditLogger(db *gorm.DB) {
	auditDB = db
}

type AuditEntry struct {
	Category  string
	Message   string
	Detail    string
	CompanyID string
	UserID    uint
	Username  string
	IP        string
}

func AuditInfo(entry AuditEntry) {
	writeAudit(models.AuditLevelInfo, entry)
}

func AuditWarn(entry AuditEntry) {
	writeAudit(models.AuditLevelWarn, entry)
}

func AuditError(entry AuditEntry) {
	writeAudit(models.AuditLevelError, entry)
}

func writeAudit(level string, entry AuditEntry) {
	if auditDB == nil {
		return
	}
	auditDB.Create(&models.AuditLog{
		Level:     level,
		Category:  entry.Category,
		Message:   entry.Message,
		Detail:    entry.Detail,
		CompanyID: entry.CompanyID,
		UserID:    entry.UserID,
		Username:  entry.Username,
		IP:        entry.IP,
		CreatedAt: time.Now(),
	})
}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

type AuditListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Level     string `form:"level"`
	Category  string `form:"category"`
	CompanyID string `form:"company_id"`
}

type AuditPage struct {
	Items    []models.AuditLog `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func (s *AuditService) List(req *AuditListRequest) (*AuditPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.AuditLog{})
	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.CompanyID != "" {
		query = query.Where("company_id = ?", req.CompanyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").
		Offset((req.Page - 1) * req.PageSize).
		Limit(req.PageSize).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return &AuditPage{Items: logs, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}

// Purge deletes audit rows older than the retention window. Returns the
// number of rows removed.
func (s *AuditService) Purge(retentionDays int) (int64, error) {
	if retentionDays < 1 {
		retentionDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}
