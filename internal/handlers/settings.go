package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/middleware"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/internal/utils"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type SettingsHandler struct {
	credService *services.CredentialService
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{
		credService: services.NewCredentialService(db),
	}
}

// integrationView is the masked representation returned to clients. Secrets
// are never echoed back in full.
type integrationView struct {
	YocoSecretKey     string `json:"yoco_secret_key"`
	YocoPublicKey     string `json:"yoco_public_key"`
	YocoWebhookSecret string `json:"yoco_webhook_secret"`
	YocoSandboxMode   bool   `json:"yoco_sandbox_mode"`
	YocoConfigured    bool   `json:"yoco_configured"`

	CourierAPIKey        string `json:"courier_guy_api_key"`
	CourierAPISecret     string `json:"courier_guy_api_secret"`
	CourierAccountNumber string `json:"courier_guy_account_number"`
	CourierSandboxMode   bool   `json:"courier_guy_sandbox_mode"`
	CourierConfigured    bool   `json:"courier_guy_configured"`
}

func maskCompanyView(s *models.CompanyIntegrationSettings) *integrationView {
	return &integrationView{
		YocoSecretKey:        utils.MaskSecret(s.YocoSecretKey),
		YocoPublicKey:        s.YocoPublicKey,
		YocoWebhookSecret:    utils.MaskSecret(s.YocoWebhookSecret),
		YocoSandboxMode:      s.YocoSandboxMode,
		YocoConfigured:       s.HasYoco(),
		CourierAPIKey:        utils.MaskSecret(s.CourierAPIKey),
		CourierAPISecret:     utils.MaskSecret(s.CourierAPISecret),
		CourierAccountNumber: s.CourierAccountNumber,
		CourierSandboxMode:   s.CourierSandboxMode,
		CourierConfigured:    s.HasCourier(),
	}
}

func maskGlobalView(s *models.GlobalIntegrationSettings) *integrationView {
	return &integrationView{
		YocoSecretKey:        utils.MaskSecret(s.YocoSecretKey),
		YocoPublicKey:        s.YocoPublicKey,
		YocoWebhookSecret:    utils.MaskSecret(s.YocoWebhookSecret),
		YocoSandboxMode:      s.YocoSandboxMode,
		YocoConfigured:       s.HasYoco(),
		CourierAPIKey:        utils.MaskSecret(s.CourierAPIKey),
		CourierAPISecret:     utils.MaskSecret(s.CourierAPISecret),
		CourierAccountNumber: s.CourierAccountNumber,
		CourierSandboxMode:   s.CourierSandboxMode,
		CourierConfigured:    s.HasCourier(),
	}
}

// GetCompanySettings returns the resolved company's integration settings
// GET /api/company/integrations
func (h *SettingsHandler) GetCompanySettings(c *gin.Context) {
	company := middleware.GetCompany(c)
	settings, err := h.credService.CompanySettingsOrNew(company.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, maskCompanyView(settings))
}

// UpdateCompanySettings updates the resolved company's integration settings
// PUT /api/company/integrations
func (h *SettingsHandler) UpdateCompanySettings(c *gin.Context) {
	var req services.UpdateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	settings, err := h.credService.UpdateCompanySettings(company.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, maskCompanyView(settings))
}

// GetGlobalSettings returns the platform-wide integration settings
// GET /api/admin/integrations
func (h *SettingsHandler) GetGlobalSettings(c *gin.Context) {
	settings, err := h.credService.GlobalSettings()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, maskGlobalView(settings))
}

// UpdateGlobalSettings updates the platform-wide integration settings
// PUT /api/admin/integrations
func (h *SettingsHandler) UpdateGlobalSettings(c *gin.Context) {
	var req services.UpdateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	settings, err := h.credService.UpdateGlobalSettings(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, maskGlobalView(settings))
}

// ResolveIntegration reports which settings layer serves an integration for
// the resolved company, without exposing the credentials themselves
// GET /api/company/integrations/:integration/resolve
func (h *SettingsHandler) ResolveIntegration(c *gin.Context) {
	company := middleware.GetCompany(c)
	creds, err := h.credService.Resolve(company.ID, c.Param("integration"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, creds)
}
