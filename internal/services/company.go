package services

import (
	"fmt"

	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/internal/utils"
	"github.com/threepillars/storefront/pkg/response"
	"gorm.io/gorm"
)

// CompanyHeader and CompanyQueryParam identify the tenant on a request.
// The header wins over the query parameter, which wins over ownership.
const (
	CompanyHeader     = "X-Company-ID"
	CompanyQueryParam = "company"
)

type CompanyService struct {
	db *gorm.DB
}

func NewCompanyService(db *gorm.DB) *CompanyService {
	return &CompanyService{db: db}
}

// ResolveInput carries the tenant identifiers extracted from a request.
type ResolveInput struct {
	HeaderID string       // X-Company-ID header value, ID or slug
	QueryID  string       // ?company= query parameter, ID or slug
	User     *models.User // nil when the request is unauthenticated
}

// Resolve picks exactly one company for a request, or fails.
//
// Priority order: explicit header, then superuser query parameter, then the
// first company owned by the user. The header path distinguishes "no such
// company" from "company exists but you may not act on it": a denied header
// is an authorization failure, never a silent fall-through to the next rule.
func (s *CompanyService) Resolve(in ResolveInput) (*models.Company, error) {
	if in.User == nil {
		return nil, response.NewUnauthorized("authentication required")
	}

	if in.HeaderID != "" {
		company, err := s.GetByIDOrSlug(in.HeaderID)
		if err != nil {
			return nil, err
		}
		if in.User.IsSuperuser() {
			return company, nil
		}
		ok, err := s.HasAccess(in.User.ID, company)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, response.NewForbidden("you do not have access to this company")
		}
		return company, nil
	}

	if in.QueryID != "" && in.User.IsSuperuser() {
		return s.GetByIDOrSlug(in.QueryID)
	}

	var company models.Company
	err := s.db.Where("owner_id = ?", in.User.ID).
		Order("created_at ASC").
		First(&company).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("no company found for this account")
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetByIDOrSlug looks a company up by primary key first, then by slug.
func (s *CompanyService) GetByIDOrSlug(idOrSlug string) (*models.Company, error) {
	var company models.Company
	err := s.db.Where("id = ?", idOrSlug).First(&company).Error
	if err == gorm.ErrRecordNotFound {
		err = s.db.Where("slug = ?", idOrSlug).First(&company).Error
	}
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("company not found")
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// HasAccess reports whether the user owns the company or is a member of it.
func (s *CompanyService) HasAccess(userID uint, company *models.Company) (bool, error) {
	if company.OwnerID == userID {
		return true, nil
	}
	var count int64
	err := s.db.Model(&models.CompanyMember{}).
		Where("company_id = ? AND user_id = ?", company.ID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type CreateCompanyRequest struct {
	Name    string `json:"name" binding:"required"`
	Slug    string `json:"slug"`
	Plan    string `json:"plan"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (s *CompanyService) Create(ownerID uint, req *CreateCompanyRequest) (*models.Company, error) {
	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}
	if slug == "" {
		return nil, response.NewBadRequest("company name produces an empty slug")
	}

	var count int64
	if err := s.db.Model(&models.Company{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict(fmt.Sprintf("slug %q is already taken", slug))
	}

	plan := req.Plan
	if plan == "" {
		plan = models.PlanFree
	}
	if !validCompanyPlans[plan] {
		return nil, response.NewBadRequest(fmt.Sprintf("invalid plan %q", plan))
	}

	company := &models.Company{
		Name:    req.Name,
		Slug:    slug,
		Status:  models.CompanyStatusTrial,
		Plan:    plan,
		OwnerID: ownerID,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := s.db.Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

type UpdateCompanyRequest struct {
	Name    *string `json:"name"`
	Status  *string `json:"status"`
	Plan    *string `json:"plan"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

var validCompanyStatuses = map[string]bool{
	models.CompanyStatusActive:    true,
	models.CompanyStatusTrial:     true,
	models.CompanyStatusSuspended: true,
	models.CompanyStatusCancelled: true,
}

var validCompanyPlans = map[string]bool{
	models.PlanFree:       true,
	models.PlanBasic:      true,
	models.PlanPremium:    true,
	models.PlanEnterprise: true,
}

func (s *CompanyService) Update(company *models.Company, req *UpdateCompanyRequest) error {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		if !validCompanyStatuses[*req.Status] {
			return response.NewBadRequest(fmt.Sprintf("invalid status %q", *req.Status))
		}
		updates["status"] = *req.Status
	}
	if req.Plan != nil {
		if !validCompanyPlans[*req.Plan] {
			return response.NewBadRequest(fmt.Sprintf("invalid plan %q", *req.Plan))
		}
		updates["plan"] = *req.Plan
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(company).Updates(updates).Error
}

// ListForUser returns the companies a user can act on: owned first, then
// memberships. Superusers list everything.
func (s *CompanyService) ListForUser(user *models.User) ([]models.Company, error) {
	var companies []models.Company
	if user.IsSuperuser() {
		err := s.db.Order("created_at ASC").Find(&companies).Error
		return companies, err
	}
	err := s.db.
		Where("owner_id = ?", user.ID).
		Or("id IN (?)", s.db.Model(&models.CompanyMember{}).
			Select("company_id").
			Where("user_id = ?", user.ID)).
		Order("created_at ASC").
		Find(&companies).Error
	return companies, err
}

// AddMember registers a user as staff of a company. Idempotent.
func (s *CompanyService) AddMember(companyID string, userID uint, role string) error {
	if role == "" {
		role = "staff"
	}
	var existing models.CompanyMember
	err := s.db.Where("company_id = ? AND user_id = ?", companyID, userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return s.db.Create(&models.CompanyMember{
		CompanyID: companyID,
		UserID:    userID,
		Role:      role,
	}).Error
}

// RemoveMember drops a user's membership. The owner cannot be removed.
func (s *CompanyService) RemoveMember(company *models.Company, userID uint) error {
	if company.OwnerID == userID {
		return response.NewBadRequest("cannot remove the company owner")
	}
	return s.db.Where("company_id = ? AND user_id = ?", company.ID, userID).
		Delete(&models.CompanyMember{}).Error
}
