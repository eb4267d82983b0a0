package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/config"
	"github.com/threepillars/storefront/internal/handlers"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/internal/utils"
	"gorm.io/gorm"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "routes.db"),
	}
	if err := models.InitDB(cfg); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db := models.GetDB()
	services.InitAuditLogger(db)
	utils.SetJWTSecret("routing-test-secret")

	appCfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("failed to load default config: %v", err)
	}

	svc := &appServices{
		cfg:             appCfg,
		authHandler:     handlers.NewAuthHandler(db, appCfg),
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

	r := gin.New()
	registerRoutes(r, svc)
	return r, db
}

func bearerToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, 24)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + token
}

// A fresh account owns no company yet; registering the first one must not
// require an existing company context.
func TestCreateFirstCompany(t *testing.T) {
	r, db := setupTestRouter(t)

	user := &models.User{
		Username: "founder",
		Email:    "founder@example.com",
		Password: "x",
		Role:     models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	auth := bearerToken(t, user)

	body, _ := json.Marshal(map[string]string{"name": "Acme Trading"})
	req := httptest.NewRequest(http.MethodPost, "/api/companies", bytes.NewReader(body))
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/companies = %d, expected %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	// The new company must now resolve as the caller's default context.
	req = httptest.NewRequest(http.MethodGet, "/api/company", nil)
	req.Header.Set("Authorization", auth)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/company = %d, expected %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

// Listing companies must also work before the caller owns one.
func TestListCompaniesWithoutCompany(t *testing.T) {
	r, db := setupTestRouter(t)

	user := &models.User{
		Username: "newcomer",
		Email:    "newcomer@example.com",
		Password: "x",
		Role:     models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set("Authorization", bearerToken(t, user))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/companies = %d, expected %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
}
