package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company lifecycle statuses.
const (
	CompanyStatusActive    = "active"
	CompanyStatusTrial     = "trial"
	CompanyStatusSuspended = "suspended"
	CompanyStatusCancelled = "cancelled"
)

// Subscription plans.
const (
	PlanFree       = "free"
	PlanBasic      = "basic"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

// Company is a tenant. Every storefront record hangs off one.
type Company struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;size:128;not null" json:"slug"`
	Status    string    `gorm:"size:16;default:trial;index" json:"status"`
	Plan      string    `gorm:"size:16;default:free" json:"plan"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	Owner     *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Email     string    `gorm:"size:128" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Address   string    `gorm:"size:256" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsOperational reports whether the company may serve storefront traffic.
func (c *Company) IsOperational() bool {
	return c.Status == CompanyStatusActive || c.Status == CompanyStatusTrial
}

// CompanyMember grants a non-owner user access to a company.
type CompanyMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID string    `gorm:"type:varchar(36);uniqueIndex:idx_company_user;not null" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	UserID    uint      `gorm:"uniqueIndex:idx_company_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string    `gorm:"size:16;default:staff" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (CompanyMember) TableName() string {
	return "company_members"
}
