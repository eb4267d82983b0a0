package models

import "time"

// Integration names used by the credential resolver.
const (
	IntegrationYoco       = "yoco"
	IntegrationCourierGuy = "courier_guy"
)

// GlobalSettingsKey is the fixed key of the single global settings row.
const GlobalSettingsKey = "global"

// IntegrationCredentials is a resolved, ready-to-use credential set for one
// integration, after company/global fallback has been applied.
type IntegrationCredentials struct {
	Integration string `json:"integration"`
	Source      string `json:"source"` // "company" or "global"

	// Yoco
	YocoSecretKey     string `json:"-"`
	YocoPublicKey     string `json:"-"`
	YocoWebhookSecret string `json:"-"`

	// Courier Guy / Pudo
	CourierAPIKey        string `json:"-"`
	CourierAPISecret     string `json:"-"`
	CourierAccountNumber string `json:"-"`

	SandboxMode bool `json:"sandbox_mode"`
}

// Credential sources reported by the resolver.
const (
	CredentialSourceCompany = "company"
	CredentialSourceGlobal  = "global"
)

// CompanyIntegrationSettings holds per-company overrides for third-party
// integrations. All credential fields are optional; empty fields fall back
// to the global settings row per integration.
type CompanyIntegrationSettings struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	CompanyID string   `gorm:"type:varchar(36);uniqueIndex;not null" json:"company_id"`
	Company   *Company `gorm:"foreignKey:CompanyID" json:"-"`

	YocoSecretKey     string `gorm:"size:256" json:"yoco_secret_key"`
	YocoPublicKey     string `gorm:"size:256" json:"yoco_public_key"`
	YocoWebhookSecret string `gorm:"size:256" json:"yoco_webhook_secret"`
	YocoSandboxMode   bool   `json:"yoco_sandbox_mode"`

	CourierAPIKey        string `gorm:"size:256" json:"courier_guy_api_key"`
	CourierAPISecret     string `gorm:"size:256" json:"courier_guy_api_secret"`
	CourierAccountNumber string `gorm:"size:64" json:"courier_guy_account_number"`
	CourierSandboxMode   bool   `json:"courier_guy_sandbox_mode"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CompanyIntegrationSettings) TableName() string {
	return "company_integration_settings"
}

// HasYoco reports whether the company row carries a complete Yoco credential
// set. Partial sets do not count; the resolver falls back as a unit.
func (s *CompanyIntegrationSettings) HasYoco() bool {
	return s.YocoSecretKey != "" && s.YocoPublicKey != "" && s.YocoWebhookSecret != ""
}

// HasCourier reports whether the company row carries a complete Courier Guy
// credential set.
func (s *CompanyIntegrationSettings) HasCourier() bool {
	return s.CourierAPIKey != "" && s.CourierAPISecret != "" && s.CourierAccountNumber != ""
}

// GlobalIntegrationSettings is the platform-wide fallback credential row.
// Exactly one row exists, pinned by SingletonKey.
type GlobalIntegrationSettings struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SingletonKey string `gorm:"uniqueIndex;size:16;not null;default:global" json:"-"`

	YocoSecretKey     string `gorm:"size:256" json:"yoco_secret_key"`
	YocoPublicKey     string `gorm:"size:256" json:"yoco_public_key"`
	YocoWebhookSecret string `gorm:"size:256" json:"yoco_webhook_secret"`
	YocoSandboxMode   bool   `json:"yoco_sandbox_mode"`

	CourierAPIKey        string `gorm:"size:256" json:"courier_guy_api_key"`
	CourierAPISecret     string `gorm:"size:256" json:"courier_guy_api_secret"`
	CourierAccountNumber string `gorm:"size:64" json:"courier_guy_account_number"`
	CourierSandboxMode   bool   `json:"courier_guy_sandbox_mode"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (GlobalIntegrationSettings) TableName() string {
	return "global_integration_settings"
}

// HasYoco reports whether the global row carries a complete Yoco credential set.
func (s *GlobalIntegrationSettings) HasYoco() bool {
	return s.YocoSecretKey != "" && s.YocoPublicKey != "" && s.YocoWebhookSecret != ""
}

// HasCourier reports whether the global row carries a complete Courier Guy
// credential set.
func (s *GlobalIntegrationSettings) HasCourier() bool {
	return s.CourierAPIKey != "" && s.CourierAPISecret != "" && s.CourierAccountNumber != ""
}
