package services

import (
	"fmt"

	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

// CredentialService resolves third-party integration credentials for a
// company. Company rows override the global row per integration, as a whole:
// a company with a partially filled credential set falls back to global for
// every field of that integration, never field by field.
type CredentialService struct {
	db *gorm.DB
}

func NewCredentialService(db *gorm.DB) *CredentialService {
	return &CredentialService{db: db}
}

// ResolveYoco returns the Yoco credential set to use for a company.
func (s *CredentialService) ResolveYoco(companyID string) (*models.IntegrationCredentials, error) {
	company, err := s.companySettings(companyID)
	if err != nil {
		return nil, err
	}
	if company != nil && company.HasYoco() {
		return &models.IntegrationCredentials{
			Integration:       models.IntegrationYoco,
			Source:            models.CredentialSourceCompany,
			YocoSecretKey:     company.YocoSecretKey,
			YocoPublicKey:     company.YocoPublicKey,
			YocoWebhookSecret: company.YocoWebhookSecret,
			SandboxMode:       company.YocoSandboxMode,
		}, nil
	}

	global, err := s.GlobalSettings()
	if err != nil {
		return nil, err
	}
	if global.HasYoco() {
		return &models.IntegrationCredentials{
			Integration:       models.IntegrationYoco,
			Source:            models.CredentialSourceGlobal,
			YocoSecretKey:     global.YocoSecretKey,
			YocoPublicKey:     global.YocoPublicKey,
			YocoWebhookSecret: global.YocoWebhookSecret,
			SandboxMode:       global.YocoSandboxMode,
		}, nil
	}

	return nil, s.notConfigured(models.IntegrationYoco)
}

// ResolveCourier returns the Courier Guy credential set to use for a company.
func (s *CredentialService) ResolveCourier(companyID string) (*models.IntegrationCredentials, error) {
	company, err := s.companySettings(companyID)
	if err != nil {
		return nil, err
	}
	if company != nil && company.HasCourier() {
		return &models.IntegrationCredentials{
			Integration:          models.IntegrationCourierGuy,
			Source:               models.CredentialSourceCompany,
			CourierAPIKey:        company.CourierAPIKey,
			CourierAPISecret:     company.CourierAPISecret,
			CourierAccountNumber: company.CourierAccountNumber,
			SandboxMode:          company.CourierSandboxMode,
		}, nil
	}

	global, err := s.GlobalSettings()
	if err != nil {
		return nil, err
	}
	if global.HasCourier() {
		return &models.IntegrationCredentials{
			Integration:          models.IntegrationCourierGuy,
			Source:               models.CredentialSourceGlobal,
			CourierAPIKey:        global.CourierAPIKey,
			CourierAPISecret:     global.CourierAPISecret,
			CourierAccountNumber: global.CourierAccountNumber,
			SandboxMode:          global.CourierSandboxMode,
		}, nil
	}

	return nil, s.notConfigured(models.IntegrationCourierGuy)
}

// Resolve dispatches by integration name.
func (s *CredentialService) Resolve(companyID, integration string) (*models.IntegrationCredentials, error) {
	switch integration {
	case models.IntegrationYoco:
		return s.ResolveYoco(companyID)
	case models.IntegrationCourierGuy:
		return s.ResolveCourier(companyID)
	default:
		return nil, response.NewBadRequest(fmt.Sprintf("unknown integration %q", integration))
	}
}

// companySettings loads the per-company settings row, nil when none exists.
func (s *CredentialService) companySettings(companyID string) (*models.CompanyIntegrationSettings, error) {
	var settings models.CompanyIntegrationSettings
	err := s.db.Where("company_id = ?", companyID).First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// GlobalSettings returns the single global settings row, creating it if
// absent. The unique singleton key makes concurrent first access safe: the
// loser of the insert race falls back to reading the winner's row.
// A freshly created row starts in sandbox mode for both integrations.
func (s *CredentialService) GlobalSettings() (*models.GlobalIntegrationSettings, error) {
	var settings models.GlobalIntegrationSettings
	err := s.db.
		Where(models.GlobalIntegrationSettings{SingletonKey: models.GlobalSettingsKey}).
		Attrs(models.GlobalIntegrationSettings{YocoSandboxMode: true, CourierSandboxMode: true}).
		FirstOrCreate(&settings).Error
	if err != nil {
		var retry models.GlobalIntegrationSettings
		if e := s.db.Where("singleton_key = ?", models.GlobalSettingsKey).First(&retry).Error; e == nil {
			return &retry, nil
		}
		return nil, err
	}
	return &settings, nil
}

// CompanySettingsOrNew returns the company's settings row, or an unsaved
// row bound to the company when none exists yet. New rows default to
// sandbox mode; an explicit sandbox=false in the first update sticks.
func (s *CredentialService) CompanySettingsOrNew(companyID string) (*models.CompanyIntegrationSettings, error) {
	settings, err := s.companySettings(companyID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &models.CompanyIntegrationSettings{
			CompanyID:          companyID,
			YocoSandboxMode:    true,
			CourierSandboxMode: true,
		}
	}
	return settings, nil
}

type UpdateIntegrationRequest struct {
	YocoSecretKey     *string `json:"yoco_secret_key"`
	YocoPublicKey     *string `json:"yoco_public_key"`
	YocoWebhookSecret *string `json:"yoco_webhook_secret"`
	YocoSandboxMode   *bool   `json:"yoco_sandbox_mode"`

	CourierAPIKey        *string `json:"courier_guy_api_key"`
	CourierAPISecret     *string `json:"courier_guy_api_secret"`
	CourierAccountNumber *string `json:"courier_guy_account_number"`
	CourierSandboxMode   *bool   `json:"courier_guy_sandbox_mode"`
}

// UpdateCompanySettings upserts the per-company settings row, touching only
// the fields present in the request.
func (s *CredentialService) UpdateCompanySettings(companyID string, req *UpdateIntegrationRequest) (*models.CompanyIntegrationSettings, error) {
	settings, err := s.CompanySettingsOrNew(companyID)
	if err != nil {
		return nil, err
	}
	applyIntegrationUpdate(req,
		&settings.YocoSecretKey, &settings.YocoPublicKey, &settings.YocoWebhookSecret, &settings.YocoSandboxMode,
		&settings.CourierAPIKey, &settings.CourierAPISecret, &settings.CourierAccountNumber, &settings.CourierSandboxMode)
	if err := s.db.Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateGlobalSettings applies a partial update to the global singleton row.
func (s *CredentialService) UpdateGlobalSettings(req *UpdateIntegrationRequest) (*models.GlobalIntegrationSettings, error) {
	settings, err := s.GlobalSettings()
	if err != nil {
		return nil, err
	}
	applyIntegrationUpdate(req,
		&settings.YocoSecretKey, &settings.YocoPublicKey, &settings.YocoWebhookSecret, &settings.YocoSandboxMode,
		&settings.CourierAPIKey, &settings.CourierAPISecret, &settings.CourierAccountNumber, &settings.CourierSandboxMode)
	if err := s.db.Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func applyIntegrationUpdate(req *UpdateIntegrationRequest,
	yocoSecret, yocoPublic, yocoWebhook *string, yocoSandbox *bool,
	courierKey, courierSecret, courierAccount *string, courierSandbox *bool) {
	if req.YocoSecretKey != nil {
		*yocoSecret = *req.YocoSecretKey
	}
	if req.YocoPublicKey != nil {
		*yocoPublic = *req.YocoPublicKey
	}
	if req.YocoWebhookSecret != nil {
		*yocoWebhook = *req.YocoWebhookSecret
	}
	if req.YocoSandboxMode != nil {
		*yocoSandbox = *req.YocoSandboxMode
	}
	if req.CourierAPIKey != nil {
		*courierKey = *req.CourierAPIKey
	}
	if req.CourierAPISecret != nil {
		*courierSecret = *req.CourierAPISecret
	}
	if req.CourierAccountNumber != nil {
		*courierAccount = *req.CourierAccountNumber
	}
	if req.CourierSandboxMode != nil {
		*courierSandbox = *req.CourierSandboxMode
	}
}

func (s *CredentialService) notConfigured(integration string) error {
	return response.NewUnprocessable(fmt.Sprintf(
		"%s integration is not configured: set company-level or global credentials first", integration))
}
