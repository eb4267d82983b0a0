package services

import (
	"path/filepath"
	"testing"

	"github.com/threepillars/storefront/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.CompanyMember{},
		&models.CompanyIntegrationSettings{},
		&models.GlobalIntegrationSettings{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PushDevice{},
		&models.PushMessage{},
		&models.NewsCategory{},
		&models.Article{},
		&models.SystemConfig{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestCompany(t *testing.T, db *gorm.DB, name string, ownerID uint) *models.Company {
	t.Helper()
	company := &models.Company{
		Name:    name,
		Slug:    name,
		Status:  models.CompanyStatusActive,
		OwnerID: ownerID,
	}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("failed to create test company: %v", err)
	}
	return company
}
