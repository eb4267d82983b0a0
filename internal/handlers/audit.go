package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type AuditHandler struct {
	auditService  *services.AuditService
	configService *services.SystemConfigService
}

func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{
		auditService:  services.NewAuditService(db),
		configService: services.NewSystemConfigService(db),
	}
}

// List returns the audit trail, filtered and paginated
// GET /api/admin/audit-logs
func (h *AuditHandler) List(c *gin.Context) {
	var req services.AuditListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.auditService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetRetentionDays returns how long audit entries are kept
// GET /api/admin/audit-logs/retention
func (h *AuditHandler) GetRetentionDays(c *gin.Context) {
	days := h.configService.GetInt("audit_retention_days", 30)
	response.Success(c, gin.H{"retention_days": days})
}

// SetRetentionDays updates the audit retention window
// PUT /api/admin/audit-logs/retention
func (h *AuditHandler) SetRetentionDays(c *gin.Context) {
	var req struct {
		RetentionDays int `json:"retention_days" binding:"required,min=1,max=365"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.Set("audit_retention_days", strconv.Itoa(req.RetentionDays)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"retention_days": req.RetentionDays})
}

// Cleanup prunes audit entries past the retention window now
// POST /api/admin/audit-logs/cleanup
func (h *AuditHandler) Cleanup(c *gin.Context) {
	days := h.configService.GetInt("audit_retention_days", 30)
	deleted, err := h.auditService.Purge(days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": deleted, "retention_days": days})
}
