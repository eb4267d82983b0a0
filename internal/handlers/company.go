package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/middleware"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

type CompanyHandler struct {
	db             *gorm.DB
	companyService *services.CompanyService
}

func NewCompanyHandler(db *gorm.DB) *CompanyHandler {
	return &CompanyHandler{
		db:             db,
		companyService: services.NewCompanyService(db),
	}
}

// List returns the companies visible to the current user
// GET /api/companies
func (h *CompanyHandler) List(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, middleware.GetUserID(c)).Error; err != nil {
		response.Unauthorized(c, "user not found")
		return
	}

	companies, err := h.companyService.ListForUser(&user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, companies)
}

// Create registers a new company owned by the current user
// POST /api/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	var req services.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company, err := h.companyService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, company)
}

// GetCurrent returns the company resolved for this request
// GET /api/company
func (h *CompanyHandler) GetCurrent(c *gin.Context) {
	response.Success(c, middleware.GetCompany(c))
}

// Update modifies the resolved company
// PUT /api/company
func (h *CompanyHandler) Update(c *gin.Context) {
	var req services.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	if err := h.companyService.Update(company, &req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, company)
}

// AddMember grants a user access to the resolved company
// POST /api/company/members
func (h *CompanyHandler) AddMember(c *gin.Context) {
	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	company := middleware.GetCompany(c)
	if err := h.companyService.AddMember(company.ID, req.UserID, req.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member added"})
}

// RemoveMember revokes a user's access to the resolved company
// DELETE /api/company/members/:user_id
func (h *CompanyHandler) RemoveMember(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	company := middleware.GetCompany(c)
	if err := h.companyService.RemoveMember(company, uint(userID)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member removed"})
}
