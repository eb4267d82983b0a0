package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/utils"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

type CreateCategoryRequest struct {
	Name      string  `json:"name" binding:"required"`
	Slug      string  `json:"slug"`
	ParentID  *string `json:"parent_id"`
	SortOrder int     `json:"sort_order"`
}

func (s *CatalogService) CreateCategory(companyID string, req *CreateCategoryRequest) (*models.Category, error) {
	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	var count int64
	s.db.Model(&models.Category{}).
		Where("company_id = ? AND slug = ?", companyID, slug).
		Count(&count)
	if count > 0 {
		return nil, response.NewConflict(fmt.Sprintf("category slug %q already exists", slug))
	}

	if req.ParentID != nil {
		var parent models.Category
		err := s.db.Where("id = ? AND company_id = ?", *req.ParentID, companyID).First(&parent).Error
		if err == gorm.ErrRecordNotFound {
			return nil, response.NewNotFound("parent category not found")
		}
		if err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		CompanyID: companyID,
		Name:      req.Name,
		Slug:      slug,
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) ListCategories(companyID string) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Where("company_id = ?", companyID).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (s *CatalogService) DeleteCategory(companyID, categoryID string) error {
	var count int64
	s.db.Model(&models.Product{}).
		Where("company_id = ? AND category_id = ?", companyID, categoryID).
		Count(&count)
	if count > 0 {
		return response.NewConflict("category still has products")
	}
	result := s.db.Where("id = ? AND company_id = ?", categoryID, companyID).
		Delete(&models.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("category not found")
	}
	return nil
}

type CreateProductRequest struct {
	SKU          string          `json:"sku" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" binding:"required"`
	ComparePrice decimal.Decimal `json:"compare_price"`
	Stock        int             `json:"stock"`
	CategoryID   *string         `json:"category_id"`
	Images       []string        `json:"images"`
}

func (s *CatalogService) CreateProduct(companyID string, req *CreateProductRequest) (*models.Product, error) {
	if req.Price.IsNegative() {
		return nil, response.NewBadRequest("price cannot be negative")
	}

	var count int64
	s.db.Model(&models.Product{}).
		Where("company_id = ? AND sku = ?", companyID, req.SKU).
		Count(&count)
	if count > 0 {
		return nil, response.NewConflict(fmt.Sprintf("sku %q already exists", req.SKU))
	}

	product := &models.Product{
		CompanyID:    companyID,
		CategoryID:   req.CategoryID,
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		ComparePrice: req.ComparePrice,
		Stock:        req.Stock,
		Status:       models.ProductStatusDraft,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		for i, url := range req.Images {
			img := models.ProductImage{
				ProductID: product.ID,
				URL:       url,
				SortOrder: i,
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) GetProduct(companyID, productID string) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Images").Preload("Category").
		Where("id = ? AND company_id = ?", productID, companyID).
		First(&product).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

type ProductFilter struct {
	Status     string
	CategoryID string
	Search     string
	Page       int
	PageSize   int
}

type ProductPage struct {
	Items    []models.Product `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func (s *CatalogService) ListProducts(companyID string, filter ProductFilter) (*ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	query := s.db.Model(&models.Product{}).Where("company_id = ?", companyID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var products []models.Product
	err := query.Preload("Images").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Items:    products,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

type UpdateProductRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	ComparePrice *decimal.Decimal `json:"compare_price"`
	Stock        *int             `json:"stock"`
	CategoryID   *string          `json:"category_id"`
}

func (s *CatalogService) UpdateProduct(companyID, productID string, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(companyID, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, response.NewBadRequest("price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.ComparePrice != nil {
		updates["compare_price"] = *req.ComparePrice
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return product, nil
}

// SetProductStatus transitions a product between draft, active and archived.
// First activation stamps PublishedAt.
func (s *CatalogService) SetProductStatus(companyID, productID, status string) (*models.Product, error) {
	switch status {
	case models.ProductStatusDraft, models.ProductStatusActive, models.ProductStatusArchived:
	default:
		return nil, response.NewBadRequest(fmt.Sprintf("invalid product status %q", status))
	}

	product, err := s.GetProduct(companyID, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if status == models.ProductStatusActive && product.PublishedAt == nil {
		now := time.Now()
		updates["published_at"] = now
		product.PublishedAt = &now
	}
	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, err
	}
	product.Status = status
	return product, nil
}

func (s *CatalogService) DeleteProduct(companyID, productID string) error {
	product, err := s.GetProduct(companyID, productID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
}

// AdjustStock applies a relative stock change, refusing to go negative.
func (s *CatalogService) AdjustStock(companyID, productID string, delta int) (*models.Product, error) {
	product, err := s.GetProduct(companyID, productID)
	if err != nil {
		return nil, err
	}
	newStock := product.Stock + delta
	if newStock < 0 {
		return nil, response.NewConflict("insufficient stock")
	}
	if err := s.db.Model(product).Update("stock", newStock).Error; err != nil {
		return nil, err
	}
	product.Stock = newStock
	return product, nil
}
