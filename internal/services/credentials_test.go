package services

import (
	"sync"
	"testing"

	"github.com/threepillars/storefront/internal/models"
	"gorm.io/gorm"
)

func seedGlobalYoco(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Create(&models.GlobalIntegrationSettings{
		SingletonKey:      models.GlobalSettingsKey,
		YocoSecretKey:     "sk_global_secret",
		YocoPublicKey:     "pk_global_public",
		YocoWebhookSecret: "whsec_global",
		YocoSandboxMode:   true,
	}).Error
	if err != nil {
		t.Fatalf("failed to seed global settings: %v", err)
	}
}

func TestResolveYoco_CompanyOverride(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)
	seedGlobalYoco(t, db)

	db.Create(&models.CompanyIntegrationSettings{
		CompanyID:         company.ID,
		YocoSecretKey:     "sk_company_secret",
		YocoPublicKey:     "pk_company_public",
		YocoWebhookSecret: "whsec_company",
		YocoSandboxMode:   false,
	})

	creds, err := svc.ResolveYoco(company.ID)
	if err != nil {
		t.Fatalf("ResolveYoco() error = %v", err)
	}
	if creds.Source != models.CredentialSourceCompany {
		t.Errorf("Source = %q, expected company", creds.Source)
	}
	if creds.YocoSecretKey != "sk_company_secret" {
		t.Errorf("YocoSecretKey = %q, expected company value", creds.YocoSecretKey)
	}
	if creds.SandboxMode {
		t.Error("SandboxMode should come from the company row (false)")
	}
}

func TestResolveYoco_GlobalFallback(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)
	seedGlobalYoco(t, db)

	creds, err := svc.ResolveYoco(company.ID)
	if err != nil {
		t.Fatalf("ResolveYoco() error = %v", err)
	}
	if creds.Source != models.CredentialSourceGlobal {
		t.Errorf("Source = %q, expected global", creds.Source)
	}
	if creds.YocoSecretKey != "sk_global_secret" {
		t.Errorf("YocoSecretKey = %q, expected global value", creds.YocoSecretKey)
	}
	if !creds.SandboxMode {
		t.Error("SandboxMode should come from the global row (true)")
	}
}

func TestResolveYoco_PartialCompanyFallsBackWhole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)
	seedGlobalYoco(t, db)

	// Secret key set but public key and webhook secret missing: the whole
	// set must come from global, never a mix of the two rows.
	db.Create(&models.CompanyIntegrationSettings{
		CompanyID:     company.ID,
		YocoSecretKey: "sk_company_secret",
	})

	creds, err := svc.ResolveYoco(company.ID)
	if err != nil {
		t.Fatalf("ResolveYoco() error = %v", err)
	}
	if creds.Source != models.CredentialSourceGlobal {
		t.Errorf("Source = %q, expected global for a partial company set", creds.Source)
	}
	if creds.YocoSecretKey != "sk_global_secret" {
		t.Errorf("YocoSecretKey = %q, company value must not leak into a global set", creds.YocoSecretKey)
	}
}

func TestResolveYoco_NotConfigured(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	_, err := svc.ResolveYoco(company.ID)
	assertAppErrorStatus(t, err, 422)
}

func TestResolveCourier_CompanyOverride(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	db.Create(&models.GlobalIntegrationSettings{
		SingletonKey:         models.GlobalSettingsKey,
		CourierAPIKey:        "cg_global_key",
		CourierAPISecret:     "cg_global_secret",
		CourierAccountNumber: "ACC-GLOBAL",
	})
	db.Create(&models.CompanyIntegrationSettings{
		CompanyID:            company.ID,
		CourierAPIKey:        "cg_company_key",
		CourierAPISecret:     "cg_company_secret",
		CourierAccountNumber: "ACC-COMPANY",
		CourierSandboxMode:   true,
	})

	creds, err := svc.ResolveCourier(company.ID)
	if err != nil {
		t.Fatalf("ResolveCourier() error = %v", err)
	}
	if creds.Source != models.CredentialSourceCompany {
		t.Errorf("Source = %q, expected company", creds.Source)
	}
	if creds.CourierAccountNumber != "ACC-COMPANY" {
		t.Errorf("CourierAccountNumber = %q, expected company value", creds.CourierAccountNumber)
	}
}

func TestResolve_IntegrationsIndependent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	// Company has complete Yoco credentials but no courier credentials;
	// global has only courier. Each integration resolves on its own.
	db.Create(&models.GlobalIntegrationSettings{
		SingletonKey:         models.GlobalSettingsKey,
		CourierAPIKey:        "cg_global_key",
		CourierAPISecret:     "cg_global_secret",
		CourierAccountNumber: "ACC-GLOBAL",
	})
	db.Create(&models.CompanyIntegrationSettings{
		CompanyID:         company.ID,
		YocoSecretKey:     "sk_company",
		YocoPublicKey:     "pk_company",
		YocoWebhookSecret: "whsec_company",
	})

	yoco, err := svc.ResolveYoco(company.ID)
	if err != nil {
		t.Fatalf("ResolveYoco() error = %v", err)
	}
	if yoco.Source != models.CredentialSourceCompany {
		t.Errorf("yoco Source = %q, expected company", yoco.Source)
	}

	courier, err := svc.ResolveCourier(company.ID)
	if err != nil {
		t.Fatalf("ResolveCourier() error = %v", err)
	}
	if courier.Source != models.CredentialSourceGlobal {
		t.Errorf("courier Source = %q, expected global", courier.Source)
	}
}

func TestResolve_UnknownIntegration(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	_, err := svc.Resolve(company.ID, "carrier_pigeon")
	assertAppErrorStatus(t, err, 400)
}

func TestGlobalSettings_LazyCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	first, err := svc.GlobalSettings()
	if err != nil {
		t.Fatalf("GlobalSettings() error = %v", err)
	}
	if first.SingletonKey != models.GlobalSettingsKey {
		t.Errorf("SingletonKey = %q, expected %q", first.SingletonKey, models.GlobalSettingsKey)
	}

	second, err := svc.GlobalSettings()
	if err != nil {
		t.Fatalf("GlobalSettings() second call error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected one singleton row, got IDs %d and %d", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.GlobalIntegrationSettings{}).Count(&count)
	if count != 1 {
		t.Errorf("global settings rows = %d, expected 1", count)
	}
}

func TestUpdateCompanySettings_Partial(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)

	secret := "sk_first"
	if _, err := svc.UpdateCompanySettings(company.ID, &UpdateIntegrationRequest{
		YocoSecretKey: &secret,
	}); err != nil {
		t.Fatalf("UpdateCompanySettings() error = %v", err)
	}

	public := "pk_second"
	updated, err := svc.UpdateCompanySettings(company.ID, &UpdateIntegrationRequest{
		YocoPublicKey: &public,
	})
	if err != nil {
		t.Fatalf("UpdateCompanySettings() second call error = %v", err)
	}

	if updated.YocoSecretKey != "sk_first" {
		t.Errorf("YocoSecretKey = %q, earlier value must survive a partial update", updated.YocoSecretKey)
	}
	if updated.YocoPublicKey != "pk_second" {
		t.Errorf("YocoPublicKey = %q, expected %q", updated.YocoPublicKey, "pk_second")
	}

	var count int64
	db.Model(&models.CompanyIntegrationSettings{}).Where("company_id = ?", company.ID).Count(&count)
	if count != 1 {
		t.Errorf("settings rows for company = %d, expected 1", count)
	}
}

func TestUpdateCompanySettings_LiveModeOnFirstSave(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	owner := createTestUser(t, db, "owner", models.RoleUser)
	company := createTestCompany(t, db, "acme", owner.ID)
	seedGlobalYoco(t, db)

	// First save of the company row goes straight to live mode.
	secret, public, webhook := "sk_live_secret", "pk_live_public", "whsec_live"
	live := false
	if _, err := svc.UpdateCompanySettings(company.ID, &UpdateIntegrationRequest{
		YocoSecretKey:     &secret,
		YocoPublicKey:     &public,
		YocoWebhookSecret: &webhook,
		YocoSandboxMode:   &live,
	}); err != nil {
		t.Fatalf("UpdateCompanySettings() error = %v", err)
	}

	var stored models.CompanyIntegrationSettings
	if err := db.Where("company_id = ?", company.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if stored.YocoSandboxMode {
		t.Error("YocoSandboxMode = true after saving an explicit false")
	}
	if !stored.CourierSandboxMode {
		t.Error("CourierSandboxMode should keep its sandbox default on a new row")
	}

	creds, err := svc.ResolveYoco(company.ID)
	if err != nil {
		t.Fatalf("ResolveYoco() error = %v", err)
	}
	if creds.SandboxMode {
		t.Error("resolved SandboxMode = true, the stored live flag must win")
	}
}

func TestGlobalSettings_ConcurrentFirstAccess(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCredentialService(db)

	const callers = 8
	ids := make([]uint, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			settings, err := svc.GlobalSettings()
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = settings.ID
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: GlobalSettings() error = %v", i, err)
		}
	}
	for i := 1; i < callers; i++ {
		if ids[i] != ids[0] {
			t.Errorf("caller %d resolved row %d, caller 0 resolved row %d", i, ids[i], ids[0])
		}
	}

	var count int64
	db.Model(&models.GlobalIntegrationSettings{}).Count(&count)
	if count != 1 {
		t.Errorf("global settings rows = %d, expected exactly 1", count)
	}
}
