package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/middleware"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{
		catalogService: services.NewCatalogService(db),
	}
}

// ListCategories returns the company's categories
// GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	company := middleware.GetCompany(c)
	categories, err := h.catalogService.ListCategories(company.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, categories)
}

// CreateCategory creates a category
// POST /api/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	category, err := h.catalogService.CreateCategory(company.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, category)
}

// DeleteCategory removes an empty category
// DELETE /api/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	company := middleware.GetCompany(c)
	if err := h.catalogService.DeleteCategory(company.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "category deleted"})
}

// ListProducts returns a filtered, paginated product list
// GET /api/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	company := middleware.GetCompany(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := services.ProductFilter{
		Status:     c.Query("status"),
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := h.catalogService.ListProducts(company.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListStorefrontProducts returns only active products for public browsing
// GET /api/shop/products
func (h *CatalogHandler) ListStorefrontProducts(c *gin.Context) {
	company := middleware.GetCompany(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := services.ProductFilter{
		Status:     "active",
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := h.catalogService.ListProducts(company.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetProduct returns a single product with images and category
// GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	company := middleware.GetCompany(c)
	product, err := h.catalogService.GetProduct(company.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, product)
}

// CreateProduct creates a product in draft status
// POST /api/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	product, err := h.catalogService.CreateProduct(company.ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, product)
}

// UpdateProduct modifies product fields
// PUT /api/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	product, err := h.catalogService.UpdateProduct(company.ID, c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, product)
}

// SetProductStatus transitions a product between draft/active/archived
// PUT /api/products/:id/status
func (h *CatalogHandler) SetProductStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	product, err := h.catalogService.SetProductStatus(company.ID, c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, product)
}

// AdjustStock applies a signed stock delta
// POST /api/products/:id/stock
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	var req struct {
		Delta int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	product, err := h.catalogService.AdjustStock(company.ID, c.Param("id"), req.Delta)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, product)
}

// DeleteProduct removes a product and its images
// DELETE /api/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	company := middleware.GetCompany(c)
	if err := h.catalogService.DeleteProduct(company.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "product deleted"})
}
