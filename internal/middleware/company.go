package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/services"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

const ContextCompany = "company"

// CompanyContext resolves the acting company for an authenticated request
// and stores it in the context. Header beats query parameter beats the
// caller's first owned company; a header naming a company the caller cannot
// act on aborts with 403 rather than falling through.
//
// Must run after AuthRequired.
func CompanyContext(db *gorm.DB) gin.HandlerFunc {
	companySvc := services.NewCompanyService(db)

	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			response.AbortError(c, response.NewUnauthorized("authentication required"))
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			response.AbortError(c, response.NewUnauthorized("account not found"))
			return
		}
		if !user.IsActive {
			response.AbortError(c, response.NewForbidden("account is disabled"))
			return
		}

		company, err := companySvc.Resolve(services.ResolveInput{
			HeaderID: c.GetHeader(services.CompanyHeader),
			QueryID:  c.Query(services.CompanyQueryParam),
			User:     &user,
		})
		if err != nil {
			response.AbortError(c, err)
			return
		}

		c.Set(ContextCompany, company)
		c.Next()
	}
}

// StorefrontCompany resolves the company for public storefront traffic.
// The company must be named explicitly by header or query parameter, and
// suspended or cancelled companies are withheld from shoppers. No access
// check applies: anyone may browse an operational store.
func StorefrontCompany(db *gorm.DB) gin.HandlerFunc {
	companySvc := services.NewCompanyService(db)

	return func(c *gin.Context) {
		idOrSlug := c.GetHeader(services.CompanyHeader)
		if idOrSlug == "" {
			idOrSlug = c.Query(services.CompanyQueryParam)
		}
		if idOrSlug == "" {
			response.AbortError(c, response.NewBadRequest("company identifier required"))
			return
		}

		company, err := companySvc.GetByIDOrSlug(idOrSlug)
		if err != nil {
			response.AbortError(c, err)
			return
		}
		if !company.IsOperational() {
			response.AbortError(c, response.NewForbidden("store is not available"))
			return
		}

		c.Set(ContextCompany, company)
		c.Next()
	}
}

// GetCompany returns the resolved company from context, nil when absent.
func GetCompany(c *gin.Context) *models.Company {
	if v, exists := c.Get(ContextCompany); exists {
		if company, ok := v.(*models.Company); ok {
			return company
		}
	}
	return nil
}
